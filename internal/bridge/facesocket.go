package bridge

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/stagelink/stagelink/internal/face"
)

// FaceSample is one inbound audio measurement on the face stream.
type FaceSample struct {
	Amplitude float64 `json:"amplitude"`
	Low       float64 `json:"low"`
	High      float64 `json:"high"`
}

// handleFaceSocket handles GET /v1/face.
//
// Edge-side variant of the signal mapper: each JSON sample on the socket
// is answered with its mapped control frame. Malformed frames are skipped
// rather than closing the stream; the mapper itself is pure so the loop
// holds no state across frames.
func (s *Server) handleFaceSocket(c echo.Context) error {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return s.originAllowed(r.Header.Get("Origin"))
		},
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("Face stream upgrade failed")
		return err
	}
	defer ws.Close()

	s.logger.Info().Msg("Face stream client connected")

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Info().Msg("Face stream client disconnected")
			} else {
				s.logger.Error().Err(err).Msg("Face stream read error")
			}
			break
		}

		var sample FaceSample
		if err := json.Unmarshal(msg, &sample); err != nil {
			continue
		}

		frame := face.Map(sample.Amplitude, sample.Low, sample.High)
		if err := ws.WriteJSON(frame); err != nil {
			s.logger.Error().Err(err).Msg("Face stream write error")
			break
		}
	}
	return nil
}

// originAllowed applies the configured CORS origin list to websocket
// upgrades. Browsers always send Origin; non-browser clients that omit it
// are allowed.
func (s *Server) originAllowed(origin string) bool {
	if origin == "" {
		return true
	}
	for _, allowed := range s.cfg.Bridge.Origins() {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
