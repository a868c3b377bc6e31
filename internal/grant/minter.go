package grant

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrRoomRequired is returned when the request carries no room name.
// The signing secret is never touched in that case.
var ErrRoomRequired = errors.New("room_name is required")

const (
	// DefaultTTL bounds a grant's lifetime when no TTL is configured.
	DefaultTTL = 15 * time.Minute

	// DefaultClockSkew is subtracted from the not-before claim so grants
	// validate on verifiers whose clocks lag slightly.
	DefaultClockSkew = 10 * time.Second
)

// Options carries the static signing configuration. The secret is held
// only for the duration of the call and never logged.
type Options struct {
	APIKey    string
	APISecret string
	TTL       time.Duration
	ClockSkew time.Duration
}

// VideoGrant is the capability block naming the room and the permissions
// granted to the participant.
type VideoGrant struct {
	Room           string `json:"room"`
	RoomJoin       bool   `json:"roomJoin"`
	CanPublish     bool   `json:"canPublish"`
	CanSubscribe   bool   `json:"canSubscribe"`
	CanPublishData bool   `json:"canPublishData"`
}

// AgentDispatch instructs the session fabric to invoke a named server-side
// agent when the participant joins.
type AgentDispatch struct {
	AgentName string `json:"agent_name"`
	Metadata  string `json:"metadata,omitempty"`
}

// RoomConfig carries per-room instructions embedded in the grant.
type RoomConfig struct {
	Agents []AgentDispatch `json:"agents,omitempty"`
}

// Claims is the full claim set of a session grant.
type Claims struct {
	jwt.RegisteredClaims
	Name       string            `json:"name,omitempty"`
	Metadata   string            `json:"metadata,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Video      VideoGrant        `json:"video"`
	RoomConfig *RoomConfig       `json:"roomConfig,omitempty"`
}

// Mint builds and signs a session grant for the given request. The result
// is a standard three-segment HS256 token verifiable by any bearer-token
// verifier holding the same secret. Mint holds no state between calls.
func Mint(req *Request, opts Options) (string, error) {
	room := strings.TrimSpace(req.RoomName)
	if room == "" {
		return "", ErrRoomRequired
	}

	identity := strings.TrimSpace(req.Identity)
	if identity == "" {
		// uuid.NewString reads crypto/rand; collisions are negligible at
		// session scale.
		identity = "guest-" + uuid.NewString()
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = identity
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	skew := opts.ClockSkew
	if skew <= 0 {
		skew = DefaultClockSkew
	}

	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    opts.APIKey,
			Subject:   identity,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-skew)),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Name:       name,
		Attributes: req.Attributes,
		Video: VideoGrant{
			Room:           room,
			RoomJoin:       true,
			CanPublish:     true,
			CanSubscribe:   true,
			CanPublishData: true,
		},
	}

	if md, ok := NormalizeMetadata(req.Metadata); ok {
		claims.Metadata = md
	}

	if agent := strings.TrimSpace(req.AgentName); agent != "" {
		dispatch := AgentDispatch{AgentName: agent}
		if md, ok := NormalizeMetadata(req.AgentMetadata); ok {
			dispatch.Metadata = md
		}
		claims.RoomConfig = &RoomConfig{Agents: []AgentDispatch{dispatch}}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(opts.APISecret))
	if err != nil {
		return "", fmt.Errorf("sign session grant: %w", err)
	}
	return signed, nil
}
