package engine

import (
	"time"

	"github.com/formcheck-go/formcheck/pkg/config"
)

// Config holds the engine's recognized options.
type Config struct {
	// StopAtFirstError selects the sequential short-circuit strategy;
	// disabled, every constraint runs concurrently and all failures are
	// collected.
	StopAtFirstError bool `env:"FORMCHECK_STOP_AT_FIRST_ERROR" envDefault:"true"`

	// ShowMultipleErrors reports every failed constraint instead of only
	// the highest-priority one.
	ShowMultipleErrors bool `env:"FORMCHECK_SHOW_MULTIPLE_ERRORS" envDefault:"false"`

	// DebounceMs coalesces bursts of change notifications into one pending
	// evaluation. Zero or negative runs re-validation synchronously.
	DebounceMs int `env:"FORMCHECK_DEBOUNCE_MS" envDefault:"100"`

	// ValidationThreshold is the minimum input length before live
	// re-validation fires for a field that has never failed.
	ValidationThreshold int `env:"FORMCHECK_VALIDATION_THRESHOLD" envDefault:"3"`
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		StopAtFirstError:    true,
		ShowMultipleErrors:  false,
		DebounceMs:          100,
		ValidationThreshold: 3,
	}
}

// ConfigFromEnv loads the configuration from FORMCHECK_* environment
// variables, falling back to defaults.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}
