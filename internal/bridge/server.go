// Package bridge provides the StageLink bridge server.
// This is the relay between web clients and the engine's control and
// health endpoints, plus the session-grant minting surface.
package bridge

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/term"
	"golang.org/x/time/rate"

	"github.com/stagelink/stagelink/internal/config"
)

// Server represents the StageLink bridge server.
type Server struct {
	cfg    *config.Config
	echo   *echo.Echo
	logger zerolog.Logger

	relay    *Relay
	watchdog *Watchdog

	mu        sync.RWMutex
	running   bool
	startTime time.Time
}

// New creates a new bridge server. The configuration is immutable for the
// process lifetime; nothing re-reads it at request time.
func New(cfg *config.Config) *Server {
	// Standard JSON logger to avoid terminal compatibility issues with ConsoleWriter
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("component", "bridge").Logger()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewCustomValidator()

	s := &Server{
		cfg:    cfg,
		echo:   e,
		logger: logger,
		relay:  NewRelay(cfg.Upstream, logger),
	}
	if cfg.Upstream.HealthURL != "" {
		s.watchdog = NewWatchdog(s.relay, cfg.Upstream.WatchdogSchedule, logger)
	}
	e.HTTPErrorHandler = s.httpErrorHandler
	return s
}

// Start starts the bridge server and blocks until interrupted.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("bridge already running")
	}
	s.running = true
	s.startTime = time.Now()
	s.mu.Unlock()

	if s.cfg.Bridge.Token == "" {
		s.logger.Warn().Msg("No bridge token configured; /v1/command is an open relay. Set bridge.token outside trusted networks.")
	}
	if s.cfg.Upstream.CommandURL == "" {
		s.logger.Warn().Msg("No upstream command endpoint configured; /v1/command will return 500")
	}

	s.setupMiddleware()
	s.setupRoutes()

	if s.watchdog != nil {
		if err := s.watchdog.Start(); err != nil {
			s.logger.Warn().Err(err).Msg("Upstream watchdog failed to start")
			s.watchdog = nil
		}
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Bridge.Host, s.cfg.Bridge.Port)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("Bridge server starting")
		if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal().Err(err).Msg("Bridge server failed")
		}
	}()

	s.printStartupBanner()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Fallback: if terminal is in raw/no-ISIG mode, Ctrl+C may appear as byte 0x03.
	// Capture it so operators can still stop the bridge.
	manualQuit := make(chan struct{}, 1)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		go func() {
			reader := bufio.NewReader(os.Stdin)
			for {
				b, err := reader.ReadByte()
				if err != nil {
					return
				}
				if b == 3 {
					manualQuit <- struct{}{}
					return
				}
			}
		}()
	}

	select {
	case <-quit:
	case <-manualQuit:
	}

	s.logger.Info().Msg("Shutting down bridge server...")

	if s.watchdog != nil {
		s.watchdog.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info().Msg("Server stopped")
	return nil
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	// Request logging
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Msg("request")
			return nil
		},
	}))

	// Recover from panics
	s.echo.Use(middleware.Recover())

	// Rate limiting (optional)
	s.echo.Use(s.RateLimitMiddleware())

	// CORS; preflight answers 204 with these headers
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.cfg.Bridge.Origins(),
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// Responses carry live control state; never cache them
	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("Cache-Control", "no-store")
			return next(c)
		}
	})
}

// RateLimitMiddleware returns a middleware that limits requests per IP.
func (s *Server) RateLimitMiddleware() echo.MiddlewareFunc {
	rl := s.cfg.Bridge.RateLimit
	if !rl.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	rps := rl.RPS
	if rps <= 0 {
		rps = 10
	}
	burst := rl.Burst
	if burst <= 0 {
		burst = 20
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:  rate.Limit(rps),
				Burst: burst,
			},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]any{"ok": false, "error": "Too many requests"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]any{"ok": false, "error": "Rate limit exceeded"})
		},
	})
}

// setupRoutes configures HTTP routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.handleHealth)

	// Preflight with an Origin header is answered by the CORS middleware;
	// this catches bare OPTIONS so every method probe gets a 204.
	s.echo.OPTIONS("/*", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	v1 := s.echo.Group("/v1")
	{
		v1.POST("/command", s.handleCommand, s.AuthMiddleware)
		v1.POST("/token", s.handleToken)
		v1.GET("/face", s.handleFaceSocket)
	}
}

// httpErrorHandler renders every error as a stable JSON envelope. Unknown
// routes and methods collapse into one not-found shape naming the path;
// nothing leaks stack traces or internal paths.
func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	he, ok := err.(*echo.HTTPError)
	if !ok {
		s.logger.Error().Err(err).Msg("Unhandled error")
		_ = c.JSON(http.StatusInternalServerError, map[string]any{"ok": false, "error": "Internal Server Error"})
		return
	}

	switch he.Code {
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		_ = c.JSON(http.StatusNotFound, map[string]any{
			"ok":    false,
			"error": "Not Found",
			"path":  c.Request().URL.Path,
		})
	default:
		_ = c.JSON(he.Code, map[string]any{"ok": false, "error": fmt.Sprintf("%v", he.Message)})
	}
}

func (s *Server) printStartupBanner() {
	fmt.Println()
	fmt.Println("  StageLink Bridge")
	fmt.Println("  ================")
	fmt.Printf("  HTTP server listening on http://%s:%d\n", s.cfg.Bridge.Host, s.cfg.Bridge.Port)
	fmt.Printf("  Face stream endpoint: ws://%s:%d/v1/face\n", s.cfg.Bridge.Host, s.cfg.Bridge.Port)
	if s.cfg.Bridge.Token == "" {
		fmt.Println("  WARNING: open bridge (no bearer token configured)")
	}
	fmt.Println()
	fmt.Println("  Press Ctrl+C to stop")
	fmt.Println()
}

// IsRunning returns whether the bridge is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Uptime returns how long the bridge has been running.
func (s *Server) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return 0
	}
	return time.Since(s.startTime)
}
