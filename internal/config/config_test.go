package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STAGELINK_CONFIG", filepath.Join(t.TempDir(), "missing.json"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Bridge.Host)
	assert.Equal(t, 18890, cfg.Bridge.Port)
	assert.Empty(t, cfg.Bridge.Token)
	assert.Equal(t, []string{"*"}, cfg.Bridge.Origins())
	assert.False(t, cfg.Bridge.RateLimit.Enabled)
	assert.Equal(t, 15*time.Second, cfg.Upstream.Timeout())
	assert.Equal(t, 20*time.Second, cfg.Upstream.HealthTimeout())
	assert.Equal(t, "@every 30s", cfg.Upstream.WatchdogSchedule)
	assert.Equal(t, 15*time.Minute, cfg.Grant.TTL())
	assert.Equal(t, 10*time.Second, cfg.Grant.ClockSkew())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stagelink.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"bridge": {"host": "0.0.0.0", "port": 9090, "token": "${TEST_BRIDGE_TOKEN}"},
		"upstream": {"commandUrl": "http://unreal:30010/remote/object/call", "timeoutSeconds": 5},
		"grant": {"serverUrl": "wss://sessions.example.com", "apiKey": "key", "apiSecret": "${TEST_GRANT_SECRET}"}
	}`), 0600))

	t.Setenv("STAGELINK_CONFIG", path)
	t.Setenv("TEST_BRIDGE_TOKEN", "sekret")
	t.Setenv("TEST_GRANT_SECRET", "signing")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Bridge.Host)
	assert.Equal(t, 9090, cfg.Bridge.Port)
	assert.Equal(t, "sekret", cfg.Bridge.Token)
	assert.Equal(t, "http://unreal:30010/remote/object/call", cfg.Upstream.CommandURL)
	assert.Equal(t, 5*time.Second, cfg.Upstream.Timeout())
	assert.Equal(t, "signing", cfg.Grant.APISecret)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("STAGELINK_CONFIG", filepath.Join(t.TempDir(), "missing.json"))
	t.Setenv("STAGELINK_BRIDGE_TOKEN", "env-token")
	t.Setenv("STAGELINK_UPSTREAM_COMMANDURL", "http://localhost:30010/cmd")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Bridge.Token)
	assert.Equal(t, "http://localhost:30010/cmd", cfg.Upstream.CommandURL)
}

func TestOrigins(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", []string{"*"}},
		{"*", []string{"*"}},
		{"https://a.example.com", []string{"https://a.example.com"}},
		{"https://a.example.com, https://b.example.com", []string{"https://a.example.com", "https://b.example.com"}},
		{" , ", []string{"*"}},
	}

	for _, tt := range tests {
		b := BridgeConfig{AllowedOrigins: tt.raw}
		assert.Equal(t, tt.want, b.Origins(), "raw %q", tt.raw)
	}
}
