package bridge

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// AuthMiddleware returns a middleware that validates the bridge bearer token.
//
// When no token is configured the gate is a no-op: the bridge is open.
// That is intentional for trusted-network deployments (see README).
// The comparison is constant-time over the whole trimmed Authorization
// header value, so header shape and token content leak nothing via timing.
func (s *Server) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := s.cfg.Bridge.Token
		if token == "" {
			return next(c)
		}

		auth := strings.TrimSpace(c.Request().Header.Get("Authorization"))
		if auth == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Missing authentication token")
		}

		expected := "Bearer " + token
		if subtle.ConstantTimeCompare([]byte(auth), []byte(expected)) != 1 {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authentication token")
		}

		return next(c)
	}
}
