// Package config defines the top-level configuration for the matka core and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shaikhsameershabbir/matka-core/internal/domain"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by MATKA_* environment variables.
type Config struct {
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Clock    ClockConfig    `toml:"clock"`
	Rates    RatesConfig    `toml:"rates"`
	Exposure ExposureConfig `toml:"exposure"`
	Archive  ArchiveConfig  `toml:"archive"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// ClockConfig holds lifecycle clock and phase poller parameters.
type ClockConfig struct {
	PollInterval duration `toml:"poll_interval"`
	MemoWindow   duration `toml:"memo_window"`
	PhaseTTL     duration `toml:"phase_ttl"`
}

// RatesConfig holds the payout multiplier per game type. A zero value for a
// game type falls back to the built-in default.
type RatesConfig struct {
	Single          int64 `toml:"single"`
	Jodi            int64 `toml:"jodi"`
	SinglePanna     int64 `toml:"single_panna"`
	DoublePanna     int64 `toml:"double_panna"`
	TriplePanna     int64 `toml:"triple_panna"`
	HalfSangamOpen  int64 `toml:"half_sangam_open"`
	HalfSangamClose int64 `toml:"half_sangam_close"`
	FullSangam      int64 `toml:"full_sangam"`
}

// ExposureConfig holds exposure report parameters.
type ExposureConfig struct {
	// MinAmount is the cutting amount: buckets whose total stake falls
	// strictly below it are dropped from reports.
	MinAmount int64 `toml:"min_amount"`
	// LegacyExclusions keeps the historical carve-outs applied to reports.
	LegacyExclusions bool `toml:"legacy_exclusions"`
}

// ArchiveConfig holds cold-storage archival parameters.
type ArchiveConfig struct {
	Interval  duration `toml:"interval"`
	Retention duration `toml:"retention"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns the built-in configuration baseline.
func Defaults() Config {
	return Config{
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "matka",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "matka-archive",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Clock: ClockConfig{
			PollInterval: duration{30 * time.Second},
			MemoWindow:   duration{30 * time.Second},
			PhaseTTL:     duration{90 * time.Second},
		},
		Rates: RatesConfig{
			Single:          10,
			Jodi:            90,
			SinglePanna:     150,
			DoublePanna:     300,
			TriplePanna:     1000,
			HalfSangamOpen:  1000,
			HalfSangamClose: 1000,
			FullSangam:      10000,
		},
		Exposure: ExposureConfig{
			MinAmount:        0,
			LegacyExclusions: true,
		},
		Archive: ArchiveConfig{
			Interval:  duration{6 * time.Hour},
			Retention: duration{90 * 24 * time.Hour},
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// RateTable converts the configured multipliers to the per-game-type table
// the settlement engine consumes.
func (c *Config) RateTable() map[domain.GameType]int64 {
	return map[domain.GameType]int64{
		domain.GameSingle:          c.Rates.Single,
		domain.GameJodi:            c.Rates.Jodi,
		domain.GameSinglePanna:     c.Rates.SinglePanna,
		domain.GameDoublePanna:     c.Rates.DoublePanna,
		domain.GameTriplePanna:     c.Rates.TriplePanna,
		domain.GameHalfSangamOpen:  c.Rates.HalfSangamOpen,
		domain.GameHalfSangamClose: c.Rates.HalfSangamClose,
		domain.GameFullSangam:      c.Rates.FullSangam,
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"worker":  true,
	"archive": true,
	"full":    true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: worker, archive, full)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Postgres
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.PoolMaxConns < 1 {
		errs = append(errs, "postgres: pool_max_conns must be >= 1")
	}
	if c.Postgres.PoolMinConns < 0 {
		errs = append(errs, "postgres: pool_min_conns must be >= 0")
	}
	if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
		errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3 fields only matter when archival is enabled.
	if c.S3.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when enabled")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when enabled")
		}
	}

	// Clock
	if c.Clock.PollInterval.Duration <= 0 {
		errs = append(errs, "clock: poll_interval must be > 0")
	}
	if c.Clock.PhaseTTL.Duration <= c.Clock.PollInterval.Duration {
		errs = append(errs, "clock: phase_ttl must exceed poll_interval or entries expire between sweeps")
	}

	// Rates: every game type needs a positive multiplier.
	for gt, mult := range c.RateTable() {
		if mult <= 0 {
			errs = append(errs, fmt.Sprintf("rates: %s must be > 0, got %d", gt, mult))
		}
	}

	// Exposure
	if c.Exposure.MinAmount < 0 {
		errs = append(errs, "exposure: min_amount must be >= 0")
	}

	// Archive
	if c.Mode == "archive" || (c.Mode == "full" && c.S3.Enabled) {
		if c.Archive.Interval.Duration <= 0 {
			errs = append(errs, "archive: interval must be > 0")
		}
		if c.Archive.Retention.Duration <= 0 {
			errs = append(errs, "archive: retention must be > 0")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
