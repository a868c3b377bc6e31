package bridge

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stagelink/stagelink/internal/grant"
)

// bridgeEndpoints is the fixed route surface reported by /health.
var bridgeEndpoints = []string{"/health", "/v1/command", "/v1/token", "/v1/face"}

// handleCommand handles POST /v1/command.
//
// The inbound payload is relayed to the upstream control endpoint without
// inspecting or mutating its content. One attempt, no retries; transport
// failures come back as 502 with the error named, and the upstream status
// code is mirrored when the call itself succeeds.
func (s *Server) handleCommand(c echo.Context) error {
	if s.cfg.Upstream.CommandURL == "" {
		return echo.NewHTTPError(http.StatusInternalServerError, "upstream command endpoint is not configured")
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
	}
	payload := normalizeCommandBody(body)

	status, upstream, err := s.relay.Forward(payload)
	if err != nil {
		s.logger.Error().Err(err).Msg("Upstream relay failed")
		return c.JSON(http.StatusBadGateway, map[string]any{
			"ok":    false,
			"error": err.Error(),
		})
	}

	return c.JSON(status, map[string]any{
		"ok":       status >= 200 && status < 300,
		"status":   status,
		"upstream": upstream,
	})
}

// normalizeCommandBody keeps the relay total: an empty or non-JSON body
// degrades to an empty object instead of a parse error.
func normalizeCommandBody(body []byte) []byte {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return []byte("{}")
	}
	return trimmed
}

// handleToken handles POST /v1/token.
//
// Signing configuration is checked before any minting is attempted; a
// blank secret is a 500, never a mint with an empty key.
func (s *Server) handleToken(c echo.Context) error {
	g := s.cfg.Grant
	if g.APIKey == "" || g.APISecret == "" || g.ServerURL == "" {
		return echo.NewHTTPError(http.StatusInternalServerError, "server is not configured for token generation")
	}

	var req grant.Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, err := grant.Mint(&req, grant.Options{
		APIKey:    g.APIKey,
		APISecret: g.APISecret,
		TTL:       g.TTL(),
		ClockSkew: g.ClockSkew(),
	})
	if errors.Is(err, grant.ErrRoomRequired) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Session grant minting failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to mint session grant")
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"server_url":        g.ServerURL,
		"participant_token": token,
	})
}

// handleHealth handles GET /health.
//
// The bridge answers 200 whenever it can answer at all; upstream failure
// is embedded under "unreal" so callers can tell "bridge is alive" from
// "upstream is alive" without treating the pair as one hard failure.
func (s *Server) handleHealth(c echo.Context) error {
	unreal, err := s.relay.CheckHealth()
	if err != nil {
		unreal = map[string]any{"ok": false, "error": err.Error()}
	}

	bridge := map[string]any{
		"host":          s.cfg.Bridge.Host,
		"port":          s.cfg.Bridge.Port,
		"endpoints":     bridgeEndpoints,
		"tokenRequired": s.cfg.Bridge.Token != "",
	}
	if s.watchdog != nil {
		if lastSeen, up, ok := s.watchdog.Snapshot(); ok {
			bridge["upstreamUp"] = up
			bridge["upstreamLastSeen"] = lastSeen.UTC().Format(time.RFC3339)
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"ok":     true,
		"bridge": bridge,
		"unreal": unreal,
	})
}
