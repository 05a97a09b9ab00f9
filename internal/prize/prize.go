// Package prize validates prize distributions against a contest's pool.
package prize

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/abrezinsky/contestvote/internal/errors"
	"github.com/abrezinsky/contestvote/internal/models"
)

// Validate checks that dist is non-empty, that places run 1..N without
// gaps or duplicates, that no value is negative and that the total does
// not exceed pool. Every violation is reported.
func Validate(dist []models.PrizePlace, pool decimal.Decimal) errors.ValidationErrors {
	var problems errors.ValidationErrors

	if len(dist) == 0 {
		problems.Add("prize_distribution", "at least one prize place is required")
		return problems
	}

	seen := make(map[int]bool, len(dist))
	for _, p := range dist {
		if p.Place < 1 {
			problems.Add("prize_distribution", fmt.Sprintf("place %d must be 1 or greater", p.Place))
		} else if seen[p.Place] {
			problems.Add("prize_distribution", fmt.Sprintf("place %d is listed more than once", p.Place))
		}
		seen[p.Place] = true

		if p.Value.IsNegative() {
			problems.Add("prize_distribution", fmt.Sprintf("place %d has a negative value", p.Place))
		}
	}

	for want := 1; want <= len(dist); want++ {
		if !seen[want] {
			problems.Add("prize_distribution", fmt.Sprintf("places must run from 1 to %d without gaps, missing place %d", len(dist), want))
			break
		}
	}

	if total := Total(dist); total.GreaterThan(pool) {
		problems.Add("prize_pool", fmt.Sprintf("prize total %s exceeds pool %s", total.String(), pool.String()))
	}

	return problems
}

// Total sums the values of dist.
func Total(dist []models.PrizePlace) decimal.Decimal {
	total := decimal.Zero
	for _, p := range dist {
		total = total.Add(p.Value)
	}
	return total
}

// AmountFor returns the prize for place, or false when the place is unfunded.
func AmountFor(dist []models.PrizePlace, place int) (decimal.Decimal, bool) {
	for _, p := range dist {
		if p.Place == place {
			return p.Value, true
		}
	}
	return decimal.Zero, false
}

// Default returns the standard five-place split of pool.
func Default(pool decimal.Decimal) []models.PrizePlace {
	return models.DefaultPrizeDistribution(pool)
}
