package bridge

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/stagelink/stagelink/internal/config"
)

// ErrHealthNotConfigured indicates no upstream health endpoint is set.
var ErrHealthNotConfigured = errors.New("upstream health endpoint is not configured")

// Relay issues outbound calls to the upstream engine. It is a pure
// authenticated relay: command payloads are forwarded byte-for-byte and a
// single attempt is made per inbound request, never a retry.
type Relay struct {
	commandURL   string
	healthURL    string
	client       *resty.Client
	healthClient *resty.Client
	logger       zerolog.Logger
}

// NewRelay creates a relay for the configured upstream endpoints. The
// command and health clients carry independent bounded timeouts so a slow
// control endpoint cannot stall health checks.
func NewRelay(cfg config.UpstreamConfig, logger zerolog.Logger) *Relay {
	return &Relay{
		commandURL:   cfg.CommandURL,
		healthURL:    cfg.HealthURL,
		client:       resty.New().SetTimeout(cfg.Timeout()),
		healthClient: resty.New().SetTimeout(cfg.HealthTimeout()),
		logger:       logger,
	}
}

// Forward posts the JSON body to the upstream control endpoint and returns
// the upstream status code with the decoded body. A transport failure
// (connection refused, timeout) is returned as an error; the caller maps
// it to 502.
//
// The call deliberately does not use the inbound request context: if the
// client disconnects mid-relay the upstream call finishes or fails on its
// own timeout and the result is discarded.
func (r *Relay) Forward(body []byte) (int, any, error) {
	resp, err := r.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(r.commandURL)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode(), decodeUpstreamBody(resp.Body()), nil
}

// CheckHealth issues one GET to the upstream health endpoint and returns
// the decoded body. Transport failures are returned as errors for the
// caller to embed; they never escalate past the bridge.
func (r *Relay) CheckHealth() (any, error) {
	if r.healthURL == "" {
		return nil, ErrHealthNotConfigured
	}
	resp, err := r.healthClient.R().Get(r.healthURL)
	if err != nil {
		return nil, err
	}
	return decodeUpstreamBody(resp.Body()), nil
}

// decodeUpstreamBody parses an upstream response body as JSON. Non-JSON
// bodies are wrapped rather than discarded so the client still sees what
// the upstream said.
func decodeUpstreamBody(b []byte) any {
	if len(bytes.TrimSpace(b)) == 0 {
		return map[string]any{}
	}
	var parsed any
	if err := json.Unmarshal(b, &parsed); err != nil {
		return map[string]any{"upstreamRaw": string(b)}
	}
	return parsed
}
