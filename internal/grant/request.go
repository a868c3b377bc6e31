// Package grant mints signed session grants for the streaming session fabric.
package grant

import (
	"encoding/json"
	"strings"
)

// Request is the session grant request body.
// Only the room name is required; identity and display name are derived
// when absent.
type Request struct {
	RoomName      string            `json:"room_name" validate:"required"`
	Identity      string            `json:"identity,omitempty"`
	Name          string            `json:"name,omitempty"`
	Metadata      any               `json:"metadata,omitempty"`
	Attributes    map[string]string `json:"attributes,omitempty"`
	AgentName     string            `json:"agent_name,omitempty"`
	AgentMetadata any               `json:"agent_metadata,omitempty"`
}

// NormalizeMetadata converts an opaque metadata value into the string form
// carried in a grant claim. It is total: strings pass through trimmed,
// structured values serialize to compact JSON, and anything empty or
// unserializable degrades to absent (ok=false) rather than an error.
func NormalizeMetadata(v any) (string, bool) {
	switch m := v.(type) {
	case nil:
		return "", false
	case string:
		trimmed := strings.TrimSpace(m)
		return trimmed, trimmed != ""
	default:
		data, err := json.Marshal(m)
		if err != nil {
			return "", false
		}
		s := string(data)
		if s == "" || s == "null" || s == "{}" || s == "[]" {
			return "", false
		}
		return s, true
	}
}
