package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formcheck-go/formcheck/pkg/config"
)

type testConfig struct {
	Name    string `env:"TEST_CFG_NAME" envDefault:"anonymous"`
	Retries int    `env:"TEST_CFG_RETRIES" envDefault:"3"`
	Debug   bool   `env:"TEST_CFG_DEBUG" envDefault:"false"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults apply when the environment is empty", func(t *testing.T) {
		var cfg testConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "anonymous", cfg.Name)
		assert.Equal(t, 3, cfg.Retries)
		assert.False(t, cfg.Debug)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("TEST_CFG_NAME", "live")
		t.Setenv("TEST_CFG_RETRIES", "7")
		t.Setenv("TEST_CFG_DEBUG", "true")

		var cfg testConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "live", cfg.Name)
		assert.Equal(t, 7, cfg.Retries)
		assert.True(t, cfg.Debug)
	})

	t.Run("nil pointer", func(t *testing.T) {
		assert.ErrorIs(t, config.Load[testConfig](nil), config.ErrNilPointer)
	})

	t.Run("unparsable value", func(t *testing.T) {
		t.Setenv("TEST_CFG_RETRIES", "many")

		var cfg testConfig
		assert.ErrorIs(t, config.Load(&cfg), config.ErrParsingConfig)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("returns on success", func(t *testing.T) {
		var cfg testConfig
		assert.NotPanics(t, func() { config.MustLoad(&cfg) })
	})

	t.Run("panics on failure", func(t *testing.T) {
		t.Setenv("TEST_CFG_RETRIES", "many")

		var cfg testConfig
		assert.Panics(t, func() { config.MustLoad(&cfg) })
	})
}
