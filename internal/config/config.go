// Package config loads process configuration from an optional .env file,
// CONTESTVOTE_* environment variables and command-line flags, in that
// order of increasing precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "CONTESTVOTE_"

// Config holds every runtime setting of the server.
type Config struct {
	Port          int           `env:"PORT" envDefault:"8081"`
	DBPath        string        `env:"DB" envDefault:"contestvote.db"`
	AdminPassword string        `env:"ADMIN_PASSWORD"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string        `env:"LOG_FORMAT" envDefault:"text"`
	HTTPLog       bool          `env:"HTTP_LOG" envDefault:"false"`
	JWTSecret     string        `env:"JWT_SECRET"`
	PayoutURL     string        `env:"PAYOUT_URL"`
	PayoutToken   string        `env:"PAYOUT_TOKEN"`
	Timezone      string        `env:"TIMEZONE" envDefault:"UTC"`
	SyncInterval  time.Duration `env:"SYNC_INTERVAL" envDefault:"1m"`
	ShowVersion   bool
}

// ParseEnv fills target from CONTESTVOTE_* environment variables.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadDotEnv loads path into the process environment. A missing file is
// not an error. Variables already set are left alone.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads .env, the environment and then args. Usage output goes to out.
func Load(args []string, out io.Writer) (*Config, error) {
	envFile := ".env"
	for i, a := range args {
		switch {
		case (a == "-env" || a == "--env") && i+1 < len(args):
			envFile = args[i+1]
		case strings.HasPrefix(a, "-env="), strings.HasPrefix(a, "--env="):
			envFile = a[strings.Index(a, "=")+1:]
		}
	}
	if err := LoadDotEnv(envFile); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}

	flags := flag.NewFlagSet("contestvote", flag.ContinueOnError)
	flags.SetOutput(out)
	flags.String("env", envFile, "Path to a .env file (optional)")
	flags.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flags.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	flags.StringVar(&cfg.AdminPassword, "adminpw", cfg.AdminPassword, "Admin password (auto-generated if not set)")
	flags.StringVar(&cfg.LogLevel, "loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flags.StringVar(&cfg.LogFormat, "logformat", cfg.LogFormat, "Log format (text, json)")
	flags.BoolVar(&cfg.HTTPLog, "httplog", cfg.HTTPLog, "Log every HTTP request")
	flags.StringVar(&cfg.JWTSecret, "jwtsecret", cfg.JWTSecret, "HS256 secret for voter bearer tokens (voting disabled if empty)")
	flags.StringVar(&cfg.PayoutURL, "payouturl", cfg.PayoutURL, "Prize settlement service URL")
	flags.StringVar(&cfg.PayoutToken, "payouttoken", cfg.PayoutToken, "Bearer token for the settlement service")
	flags.StringVar(&cfg.Timezone, "tz", cfg.Timezone, "IANA timezone used to interpret schedule dates")
	flags.DurationVar(&cfg.SyncInterval, "sync", cfg.SyncInterval, "Contest status sync interval")
	flags.BoolVar(&cfg.ShowVersion, "version", false, "Show version and exit")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and that the timezone exists.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.DBPath == "" {
		return errors.New("database path is required")
	}
	if c.SyncInterval <= 0 {
		return fmt.Errorf("sync interval must be positive, got %s", c.SyncInterval)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Addr is the listen address for Port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
