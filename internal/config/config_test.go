package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8090", cfg.HTTPPort)
	assert.Equal(t, 10, cfg.CountdownSeconds)
	assert.Equal(t, 1000, cfg.TickIntervalMS)
	assert.Equal(t, 200, cfg.AlarmLogCapacity)
	assert.Equal(t, 6, cfg.RoomCodeLength)
	assert.Equal(t, 47.0, cfg.FreqMinHz)
	assert.Equal(t, 52.0, cfg.FreqMaxHz)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("COUNTDOWN_SECONDS", "3")
	t.Setenv("APP_PORT", "9001")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.CountdownSeconds)
	assert.Equal(t, "9001", cfg.HTTPPort)
}

func TestValidateRejectsBadBand(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	cfg.FreqMinHz = 53.0
	assert.Error(t, cfg.Validate())

	cfg, _ = Load()
	cfg.FreqNominalHz = 60.0
	assert.Error(t, cfg.Validate())

	cfg, _ = Load()
	cfg.AlarmLogCapacity = 0
	assert.Error(t, cfg.Validate())
}
