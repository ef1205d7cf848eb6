package configparser

import (
	"testing"
	"time"
)

type testConfig struct {
	Nested struct {
		Host string `env:"PARSETEST_HOST" default:"localhost"`
		Port int    `env:"PARSETEST_PORT" default:"5432"`
	}

	Interval time.Duration `env:"PARSETEST_INTERVAL" default:"30s"`
	Enabled  bool          `env:"PARSETEST_ENABLED" default:"true"`
	NoTag    string
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg testConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Nested.Host != "localhost" {
		t.Errorf("Host = %q, want %q", cfg.Nested.Host, "localhost")
	}
	if cfg.Nested.Port != 5432 {
		t.Errorf("Port = %d, want 5432", cfg.Nested.Port)
	}
	if cfg.Interval != 30*time.Second {
		t.Errorf("Interval = %v, want 30s", cfg.Interval)
	}
	if !cfg.Enabled {
		t.Error("Enabled = false, want true")
	}
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("PARSETEST_HOST", "db.internal")
	t.Setenv("PARSETEST_PORT", "6432")
	t.Setenv("PARSETEST_INTERVAL", "1m30s")
	t.Setenv("PARSETEST_ENABLED", "false")

	var cfg testConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Nested.Host != "db.internal" {
		t.Errorf("Host = %q, want %q", cfg.Nested.Host, "db.internal")
	}
	if cfg.Nested.Port != 6432 {
		t.Errorf("Port = %d, want 6432", cfg.Nested.Port)
	}
	if cfg.Interval != 90*time.Second {
		t.Errorf("Interval = %v, want 1m30s", cfg.Interval)
	}
	if cfg.Enabled {
		t.Error("Enabled = true, want false")
	}
}

func TestParseEnvRejectsNonPointer(t *testing.T) {
	var cfg testConfig
	if err := ParseEnv(cfg); err == nil {
		t.Fatal("expected an error for a non-pointer destination")
	}
}

func TestParseEnvBadValue(t *testing.T) {
	t.Setenv("PARSETEST_PORT", "not-a-number")

	var cfg testConfig
	if err := ParseEnv(&cfg); err == nil {
		t.Fatal("expected an error for a malformed int")
	}
}
