package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 8, cfg.DepartHour)
	assert.Equal(t, 15.0, cfg.SpeedKmh)
	assert.Equal(t, 5*time.Minute, cfg.DeliveryTime)
	assert.Equal(t, time.Hour, cfg.WindowSize)
	assert.Equal(t, 8, cfg.PermutationMax)
	assert.Equal(t, 10*time.Second, cfg.SearchBudget)
	assert.Equal(t, 4, cfg.ComputeWorkers)
	assert.Equal(t, 24*time.Hour, cfg.PathCacheTTL)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SPEED_KMH", "20.5")
	t.Setenv("SEARCH_BUDGET", "250ms")
	t.Setenv("DELIVERY_MINUTES", "0")
	t.Setenv("COMPUTE_WORKERS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 20.5, cfg.SpeedKmh)
	assert.Equal(t, 250*time.Millisecond, cfg.SearchBudget)
	assert.Equal(t, time.Duration(0), cfg.DeliveryTime)
	assert.Equal(t, 1, cfg.ComputeWorkers)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"SPEED_KMH":        "fast",
		"DEPART_HOUR":      "25",
		"WINDOW_MINUTES":   "0",
		"SEARCH_BUDGET":    "ten seconds",
		"DELIVERY_MINUTES": "-5",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetFallback(t *testing.T) {
	t.Setenv("MAP_ID", "")
	assert.Equal(t, "fallback", Get("MAP_ID", "fallback"))

	t.Setenv("MAP_ID", "villeurbanne")
	assert.Equal(t, "villeurbanne", Get("MAP_ID", "fallback"))
}
