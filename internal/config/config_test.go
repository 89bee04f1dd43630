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

	assert.Equal(t, "safebox", cfg.GuestUser)
	assert.Equal(t, 2222, cfg.SSHPort)
	assert.Equal(t, "./reports", cfg.ReportsDir)
	assert.Equal(t, 120*time.Second, cfg.BootTimeout)
	assert.Equal(t, 120*time.Second, cfg.AgentTimeout)
	assert.False(t, cfg.Debug)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SAFEBOX_GUEST_USER", "analyst")
	t.Setenv("SAFEBOX_SSH_PORT", "2322")
	t.Setenv("SAFEBOX_BOOT_TIMEOUT", "30s")
	t.Setenv("SAFEBOX_DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "analyst", cfg.GuestUser)
	assert.Equal(t, 2322, cfg.SSHPort)
	assert.Equal(t, 30*time.Second, cfg.BootTimeout)
	assert.True(t, cfg.Debug)
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("SAFEBOX_SSH_PORT", "not-a-port")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	t.Setenv("SAFEBOX_BOOT_TIMEOUT", "soon")
	_, err := Load()
	assert.Error(t, err)
}
