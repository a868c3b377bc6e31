package bridge

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagelink/stagelink/internal/config"
)

func TestDecodeUpstreamBody(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want any
	}{
		{"empty", "", map[string]any{}},
		{"whitespace", "  \n", map[string]any{}},
		{"object", `{"a":1}`, map[string]any{"a": float64(1)}},
		{"array", `[1,2]`, []any{float64(1), float64(2)}},
		{"non-json wrapped", "pong", map[string]any{"upstreamRaw": "pong"}},
		{"truncated json wrapped", `{"a":`, map[string]any{"upstreamRaw": `{"a":`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeUpstreamBody([]byte(tt.in)))
		})
	}
}

func TestCheckHealthNotConfigured(t *testing.T) {
	relay := NewRelay(config.UpstreamConfig{}, zerolog.Nop())
	_, err := relay.CheckHealth()
	assert.ErrorIs(t, err, ErrHealthNotConfigured)
}

func TestWatchdogTracksUpstream(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer upstream.Close()

	relay := NewRelay(config.UpstreamConfig{HealthURL: upstream.URL}, zerolog.Nop())
	w := NewWatchdog(relay, "@every 30s", zerolog.Nop())

	_, _, ok := w.Snapshot()
	require.False(t, ok, "no observation before the first probe")

	w.probe()
	lastSeen, healthy, ok := w.Snapshot()
	require.True(t, ok)
	assert.True(t, healthy)
	assert.False(t, lastSeen.IsZero())

	upstream.Close()
	w.probe()
	_, healthy, ok = w.Snapshot()
	require.True(t, ok)
	assert.False(t, healthy)
}
