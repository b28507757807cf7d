package config

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("HOLIDAZE_API_KEY", "key-123")
	t.Setenv("TOKEN_PASSPHRASE", "passphrase")
}

func TestFromEnvDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "https://v2.api.noroff.dev", cfg.APIBaseURL)
	assert.Equal(t, "key-123", cfg.APIKey)
	assert.Equal(t, 15*time.Second, cfg.APITimeout)
	assert.Equal(t, 30*time.Second, cfg.RefreshInterval)
	assert.False(t, cfg.FetchFailClosed)
}

func TestFromEnvRequiresAPIKey(t *testing.T) {
	t.Setenv("HOLIDAZE_API_KEY", "")
	t.Setenv("TOKEN_PASSPHRASE", "passphrase")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HOLIDAZE_API_KEY")
}

func TestFromEnvRequiresPassphrase(t *testing.T) {
	t.Setenv("HOLIDAZE_API_KEY", "key-123")
	t.Setenv("TOKEN_PASSPHRASE", "")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOKEN_PASSPHRASE")
}

func TestFromEnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("API_TIMEOUT_SECONDS", "5")
	t.Setenv("REFRESH_SECONDS", "60")
	t.Setenv("FETCH_FAIL_CLOSED", "1")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.APITimeout)
	assert.Equal(t, time.Minute, cfg.RefreshInterval)
	assert.True(t, cfg.FetchFailClosed)
}

func TestFromEnvRejectsBadTimeout(t *testing.T) {
	setRequired(t)
	t.Setenv("API_TIMEOUT_SECONDS", "zero")

	_, err := FromEnv()
	assert.Error(t, err)
}

func TestCookieKeys(t *testing.T) {
	setRequired(t)
	key := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	t.Setenv("COOKIE_HASH_KEY", key)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Len(t, cfg.CookieHashKey, 32)

	assert.Error(t, cfg.RequireWeb(), "block key still missing")

	t.Setenv("COOKIE_BLOCK_KEY", key)
	cfg, err = FromEnv()
	require.NoError(t, err)
	assert.NoError(t, cfg.RequireWeb())
}
