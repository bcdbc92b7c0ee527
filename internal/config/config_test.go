package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shaikhsameershabbir/matka-core/internal/domain"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown mode", func(c *Config) { c.Mode = "turbo" }, "unknown mode"},
		{"unknown log level", func(c *Config) { c.LogLevel = "loud" }, "unknown log_level"},
		{"empty redis addr", func(c *Config) { c.Redis.Addr = "" }, "redis: addr"},
		{"zero rate", func(c *Config) { c.Rates.Jodi = 0 }, "rates: jodi"},
		{"negative cutting amount", func(c *Config) { c.Exposure.MinAmount = -1 }, "exposure: min_amount"},
		{"phase ttl below poll interval", func(c *Config) {
			c.Clock.PhaseTTL = duration{10 * time.Second}
		}, "phase_ttl"},
		{"s3 enabled without bucket", func(c *Config) {
			c.S3.Enabled = true
			c.S3.Bucket = ""
		}, "s3: bucket"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate passed, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matka.toml")
	data := `
mode = "worker"

[postgres]
database = "matka_test"

[rates]
jodi = 95

[clock]
poll_interval = "15s"
phase_ttl = "45s"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != "worker" {
		t.Errorf("mode = %q, want worker", cfg.Mode)
	}
	if cfg.Postgres.Database != "matka_test" {
		t.Errorf("database = %q, want matka_test", cfg.Postgres.Database)
	}
	if cfg.Rates.Jodi != 95 {
		t.Errorf("jodi rate = %d, want 95", cfg.Rates.Jodi)
	}
	if cfg.Clock.PollInterval.Duration != 15*time.Second {
		t.Errorf("poll interval = %v, want 15s", cfg.Clock.PollInterval.Duration)
	}
	// Untouched fields keep defaults.
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("redis addr = %q, want default", cfg.Redis.Addr)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("MATKA_REDIS_ADDR", "redis.internal:6380")
	t.Setenv("MATKA_RATES_SINGLE", "9")
	t.Setenv("MATKA_POSTGRES_RUN_MIGRATIONS", "false")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Redis.Addr != "redis.internal:6380" {
		t.Errorf("redis addr = %q, want env override", cfg.Redis.Addr)
	}
	if cfg.Rates.Single != 9 {
		t.Errorf("single rate = %d, want 9", cfg.Rates.Single)
	}
	if cfg.Postgres.RunMigrations {
		t.Error("run_migrations = true, want env override false")
	}
}

func TestRateTableCoversEveryGameType(t *testing.T) {
	cfg := Defaults()
	table := cfg.RateTable()
	for _, gt := range domain.AllGameTypes() {
		if table[gt] <= 0 {
			t.Errorf("game type %s has no positive rate", gt)
		}
	}
}
