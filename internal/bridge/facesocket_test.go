package bridge

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagelink/stagelink/internal/config"
	"github.com/stagelink/stagelink/internal/face"
)

func TestFaceStream(t *testing.T) {
	s := newTestServer(nil)
	srv := httptest.NewServer(s.echo)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/face"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()

	require.NoError(t, ws.WriteJSON(FaceSample{Amplitude: 0.15}))

	var frame face.ControlFrame
	require.NoError(t, ws.ReadJSON(&frame))
	assert.Equal(t, face.Map(0.15, 0, 0), frame)

	// Malformed frames are skipped, not fatal
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, ws.WriteJSON(FaceSample{Amplitude: 0.08, Low: 0.5, High: 0.5}))
	require.NoError(t, ws.ReadJSON(&frame))
	assert.Equal(t, face.Map(0.08, 0.5, 0.5), frame)
}

func TestOriginAllowed(t *testing.T) {
	s := newTestServer(func(cfg *config.Config) {
		cfg.Bridge.AllowedOrigins = "https://studio.example.com, https://ops.example.com"
	})

	assert.True(t, s.originAllowed(""))
	assert.True(t, s.originAllowed("https://studio.example.com"))
	assert.True(t, s.originAllowed("https://ops.example.com"))
	assert.False(t, s.originAllowed("https://evil.example.com"))

	open := newTestServer(nil)
	assert.True(t, open.originAllowed("https://anything.example.com"))
}
