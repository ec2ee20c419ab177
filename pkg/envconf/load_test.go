package envconf

import (
	"errors"
	"testing"
	"time"
)

type nested struct {
	DSN     string        `env:"TEST_DSN"`
	Timeout time.Duration `env:"TEST_TIMEOUT" envDefault:"5s"`
}

type testConfig struct {
	Port   uint16  `env:"TEST_PORT" envDefault:"8080"`
	Rate   float64 `env:"TEST_RATE" envDefault:"2.5"`
	Debug  bool    `env:"TEST_DEBUG" envDefault:"false"`
	Nested nested
}

//nolint:paralleltest
func TestLoad_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("TEST_DSN", "postgres://localhost/db")
	t.Setenv("TEST_PORT", "9090")

	cfg := new(testConfig)

	err := Load(cfg)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want env override 9090", cfg.Port)
	}
	if cfg.Rate != 2.5 {
		t.Errorf("Rate = %v, want default 2.5", cfg.Rate)
	}
	if cfg.Debug {
		t.Errorf("Debug = true, want default false")
	}
	if cfg.Nested.DSN != "postgres://localhost/db" {
		t.Errorf("Nested.DSN = %q", cfg.Nested.DSN)
	}
	if cfg.Nested.Timeout != 5*time.Second {
		t.Errorf("Nested.Timeout = %v, want default 5s", cfg.Nested.Timeout)
	}
}

//nolint:paralleltest
func TestLoad_MissingRequired(t *testing.T) {
	// TEST_DSN has no default and is not set.
	cfg := new(testConfig)

	err := Load(cfg)
	if !errors.Is(err, ErrMissingRequired) {
		t.Fatalf("expected ErrMissingRequired, got: %v", err)
	}
}

//nolint:paralleltest
func TestLoad_ParseError(t *testing.T) {
	t.Setenv("TEST_DSN", "x")
	t.Setenv("TEST_PORT", "not-a-number")

	err := Load(new(testConfig))
	if err == nil {
		t.Fatalf("expected parse error for TEST_PORT")
	}
}

func TestLoad_RejectsNonStructDestinations(t *testing.T) {
	t.Parallel()

	if err := Load(nil); err == nil {
		t.Errorf("expected error for nil destination")
	}

	var s string
	if err := Load(&s); err == nil {
		t.Errorf("expected error for non-struct destination")
	}
}
