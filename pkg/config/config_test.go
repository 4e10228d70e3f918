package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Should serve defaults with no environment", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, 0, cfg.Engine.MaxInFlight)
		assert.Equal(t, 100*time.Millisecond, cfg.Engine.RetryBackoffBase)
		assert.Equal(t, 5*time.Second, cfg.Engine.RetryBackoffCap)
	})

	t.Run("Should layer environment variables over defaults", func(t *testing.T) {
		t.Setenv("FLOWMESH_ENGINE_MAX_IN_FLIGHT", "8")
		t.Setenv("FLOWMESH_ENGINE_RUN_TIMEOUT", "90s")
		t.Setenv("FLOWMESH_LOG_LEVEL", "debug")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 8, cfg.Engine.MaxInFlight)
		assert.Equal(t, 90*time.Second, cfg.Engine.RunTimeout)
		assert.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("Should reject invalid log levels", func(t *testing.T) {
		t.Setenv("FLOWMESH_LOG_LEVEL", "loud")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("Should reject negative bounds", func(t *testing.T) {
		t.Setenv("FLOWMESH_ENGINE_MAX_IN_FLIGHT", "-1")
		_, err := Load()
		require.Error(t, err)
	})
}
