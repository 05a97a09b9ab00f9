package models

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/abrezinsky/contestvote/internal/errors"
)

// ConfigVersion is the current ContestConfig layout.
const ConfigVersion = 1

// VotingMethod names a group of voters admitted to vote
type VotingMethod string

const (
	VotingMethodPublic      VotingMethod = "public"
	VotingMethodLoggedUsers VotingMethod = "logged_users"
	VotingMethodJury        VotingMethod = "jury"
)

// Currency tags the unit of every prize value in a contest
type Currency string

const (
	CurrencyGlory Currency = "GLORY"
	CurrencySOL   Currency = "SOL"
	CurrencyUSDC  Currency = "USDC"
)

// Eligibility controls who may submit entries
type Eligibility string

const (
	EligibilityEveryone    Eligibility = "everyone"
	EligibilityLoggedUsers Eligibility = "logged_users"
)

// MediaType is the kind of media a submission carries
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
	MediaTypeAudio MediaType = "audio"
)

// Defaults applied to unset authoring fields.
const (
	DefaultVotesPerUserPerPeriod = 1
	DefaultPeriodDurationHours   = 24
	DefaultMaxSubmissions        = 1
	DefaultFileSizeLimitMB       = 10
	MinPeriodDurationHours       = 1
	MaxPeriodDurationHours       = 168
)

// DefaultPrizeShares are the percentages of the pool paid to places 1..5.
var DefaultPrizeShares = []int64{40, 25, 15, 12, 8}

// ContestConfig holds the voting, prize and submission rules of a contest.
// Instances are built by NewConfig so every field carries a concrete value.
type ContestConfig struct {
	Version               int             `json:"version"`
	VotingMethods         []VotingMethod  `json:"voting_methods"`
	JuryMembers           []string        `json:"jury_members"`
	VotesPerUserPerPeriod int             `json:"votes_per_user_per_period"`
	PeriodDurationHours   int             `json:"period_duration_hours"`
	TotalVotesPerUser     int             `json:"total_votes_per_user"`
	PrizePool             decimal.Decimal `json:"prize_pool"`
	PrizeDistribution     []PrizePlace    `json:"prize_distribution"`
	Currency              Currency        `json:"currency"`
	Eligibility           Eligibility     `json:"eligibility"`
	MaxSubmissions        int             `json:"max_submissions"`
	AllowedMediaTypes     []MediaType     `json:"allowed_media_types"`
	FileSizeLimitMB       int             `json:"file_size_limit_mb"`
	NSFWAllowed           bool            `json:"nsfw_allowed"`
	EntryFee              bool            `json:"entry_fee"`
	EntryFeeAmount        decimal.Decimal `json:"entry_fee_amount"`
	AutoActivate          bool            `json:"auto_activate"`
}

// ConfigInput is the authoring form of a ContestConfig. Nil means "use the default".
type ConfigInput struct {
	VotingMethods         []VotingMethod   `json:"voting_methods,omitempty"`
	JuryMembers           []string         `json:"jury_members,omitempty"`
	VotesPerUserPerPeriod *int             `json:"votes_per_user_per_period,omitempty"`
	PeriodDurationHours   *int             `json:"period_duration_hours,omitempty"`
	TotalVotesPerUser     *int             `json:"total_votes_per_user,omitempty"`
	PrizePool             *decimal.Decimal `json:"prize_pool,omitempty"`
	PrizeDistribution     []PrizePlace     `json:"prize_distribution,omitempty"`
	Currency              *Currency        `json:"currency,omitempty"`
	Eligibility           *Eligibility     `json:"eligibility,omitempty"`
	MaxSubmissions        *int             `json:"max_submissions,omitempty"`
	AllowedMediaTypes     []MediaType      `json:"allowed_media_types,omitempty"`
	FileSizeLimitMB       *int             `json:"file_size_limit_mb,omitempty"`
	NSFWAllowed           *bool            `json:"nsfw_allowed,omitempty"`
	EntryFee              *bool            `json:"entry_fee,omitempty"`
	EntryFeeAmount        *decimal.Decimal `json:"entry_fee_amount,omitempty"`
	AutoActivate          *bool            `json:"auto_activate,omitempty"`
}

// DefaultPrizeDistribution splits pool across five places using DefaultPrizeShares.
func DefaultPrizeDistribution(pool decimal.Decimal) []PrizePlace {
	hundred := decimal.NewFromInt(100)
	dist := make([]PrizePlace, len(DefaultPrizeShares))
	for i, share := range DefaultPrizeShares {
		dist[i] = PrizePlace{
			Place: i + 1,
			Value: pool.Mul(decimal.NewFromInt(share)).Div(hundred),
		}
	}
	return dist
}

// DefaultConfig returns a config with every default applied.
func DefaultConfig() ContestConfig {
	return NewConfig(ConfigInput{})
}

// NewConfig builds a versioned config, filling unset fields with defaults.
func NewConfig(in ConfigInput) ContestConfig {
	cfg := ContestConfig{
		Version:               ConfigVersion,
		VotingMethods:         []VotingMethod{VotingMethodPublic},
		JuryMembers:           []string{},
		VotesPerUserPerPeriod: DefaultVotesPerUserPerPeriod,
		PeriodDurationHours:   DefaultPeriodDurationHours,
		PrizePool:             decimal.Zero,
		Currency:              CurrencyGlory,
		Eligibility:           EligibilityEveryone,
		MaxSubmissions:        DefaultMaxSubmissions,
		AllowedMediaTypes:     []MediaType{MediaTypeImage},
		FileSizeLimitMB:       DefaultFileSizeLimitMB,
		EntryFeeAmount:        decimal.Zero,
	}

	if in.VotingMethods != nil {
		cfg.VotingMethods = append([]VotingMethod(nil), in.VotingMethods...)
	}
	if in.JuryMembers != nil {
		cfg.JuryMembers = append([]string(nil), in.JuryMembers...)
	}
	if in.VotesPerUserPerPeriod != nil {
		cfg.VotesPerUserPerPeriod = *in.VotesPerUserPerPeriod
	}
	if in.PeriodDurationHours != nil {
		cfg.PeriodDurationHours = *in.PeriodDurationHours
	}
	if in.TotalVotesPerUser != nil {
		cfg.TotalVotesPerUser = *in.TotalVotesPerUser
	}
	if in.PrizePool != nil {
		cfg.PrizePool = *in.PrizePool
	}
	if in.PrizeDistribution != nil {
		cfg.PrizeDistribution = append([]PrizePlace(nil), in.PrizeDistribution...)
	} else {
		cfg.PrizeDistribution = DefaultPrizeDistribution(cfg.PrizePool)
	}
	if in.Currency != nil {
		cfg.Currency = *in.Currency
	}
	if in.Eligibility != nil {
		cfg.Eligibility = *in.Eligibility
	}
	if in.MaxSubmissions != nil {
		cfg.MaxSubmissions = *in.MaxSubmissions
	}
	if in.AllowedMediaTypes != nil {
		cfg.AllowedMediaTypes = append([]MediaType(nil), in.AllowedMediaTypes...)
	}
	if in.FileSizeLimitMB != nil {
		cfg.FileSizeLimitMB = *in.FileSizeLimitMB
	}
	if in.NSFWAllowed != nil {
		cfg.NSFWAllowed = *in.NSFWAllowed
	}
	if in.EntryFee != nil {
		cfg.EntryFee = *in.EntryFee
	}
	if in.EntryFeeAmount != nil {
		cfg.EntryFeeAmount = *in.EntryFeeAmount
	}
	if in.AutoActivate != nil {
		cfg.AutoActivate = *in.AutoActivate
	}
	return cfg
}

// HasMethod reports whether m is enabled.
func (c ContestConfig) HasMethod(m VotingMethod) bool {
	for _, enabled := range c.VotingMethods {
		if enabled == m {
			return true
		}
	}
	return false
}

// IsJuryMember reports whether voterID is listed as a juror.
func (c ContestConfig) IsJuryMember(voterID string) bool {
	for _, id := range c.JuryMembers {
		if id == voterID {
			return true
		}
	}
	return false
}

// AllowsMediaType reports whether submissions of type t are accepted.
func (c ContestConfig) AllowsMediaType(t MediaType) bool {
	for _, allowed := range c.AllowedMediaTypes {
		if allowed == t {
			return true
		}
	}
	return false
}

// Validate checks the voting and submission rules. Prize distribution
// consistency is checked separately by the prize package.
func (c ContestConfig) Validate() errors.ValidationErrors {
	var problems errors.ValidationErrors

	if c.Version != ConfigVersion {
		problems.Add("version", fmt.Sprintf("unsupported config version %d", c.Version))
	}

	if len(c.VotingMethods) == 0 {
		problems.Add("voting_methods", "at least one voting method is required")
	}
	seen := make(map[VotingMethod]bool, len(c.VotingMethods))
	for _, m := range c.VotingMethods {
		switch m {
		case VotingMethodPublic, VotingMethodLoggedUsers, VotingMethodJury:
		default:
			problems.Add("voting_methods", fmt.Sprintf("unknown voting method %q", m))
			continue
		}
		if seen[m] {
			problems.Add("voting_methods", fmt.Sprintf("voting method %q listed twice", m))
		}
		seen[m] = true
	}
	if seen[VotingMethodJury] && len(c.JuryMembers) == 0 {
		problems.Add("jury_members", "jury voting requires at least one jury member")
	}

	if c.VotesPerUserPerPeriod < 0 {
		problems.Add("votes_per_user_per_period", "must not be negative")
	}
	if c.PeriodDurationHours < MinPeriodDurationHours || c.PeriodDurationHours > MaxPeriodDurationHours {
		problems.Add("period_duration_hours", fmt.Sprintf("must be between %d and %d", MinPeriodDurationHours, MaxPeriodDurationHours))
	}
	if c.TotalVotesPerUser < 0 {
		problems.Add("total_votes_per_user", "must not be negative")
	}
	if c.PrizePool.IsNegative() {
		problems.Add("prize_pool", "must not be negative")
	}

	switch c.Currency {
	case CurrencyGlory, CurrencySOL, CurrencyUSDC:
	default:
		problems.Add("currency", fmt.Sprintf("unsupported currency %q", c.Currency))
	}
	switch c.Eligibility {
	case EligibilityEveryone, EligibilityLoggedUsers:
	default:
		problems.Add("eligibility", fmt.Sprintf("unknown eligibility %q", c.Eligibility))
	}

	if c.MaxSubmissions < 1 {
		problems.Add("max_submissions", "must be at least 1")
	}
	if len(c.AllowedMediaTypes) == 0 {
		problems.Add("allowed_media_types", "at least one media type is required")
	}
	for _, t := range c.AllowedMediaTypes {
		switch t {
		case MediaTypeImage, MediaTypeVideo, MediaTypeAudio:
		default:
			problems.Add("allowed_media_types", fmt.Sprintf("unknown media type %q", t))
		}
	}
	if c.FileSizeLimitMB <= 0 {
		problems.Add("file_size_limit_mb", "must be positive")
	}

	if c.EntryFeeAmount.IsNegative() {
		problems.Add("entry_fee_amount", "must not be negative")
	} else if c.EntryFee && !c.EntryFeeAmount.IsPositive() {
		problems.Add("entry_fee_amount", "must be positive when an entry fee is charged")
	}

	return problems
}
