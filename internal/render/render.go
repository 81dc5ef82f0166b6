package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/haldane-io/progressd/internal/config"
)

// Body is the show response payload. Only the fields relevant to State
// are populated; encode leaves the nil ones out of the body.
type Body struct {
	State        string  `json:"state"`
	Received     *uint64 `json:"received,omitempty"`
	Sent         *uint64 `json:"sent,omitempty"`
	RequestSize  *uint64 `json:"request_size,omitempty"`
	ResponseSize *uint64 `json:"response_size,omitempty"`
	Status       *int    `json:"status,omitempty"`
}

// Unknown builds the {"state": "unknown"} body for a missing or collided-
// away entry.
func Unknown() Body {
	return Body{State: "unknown"}
}

// Running builds the "running" body for a Live entry's currently-observed
// counters.
func Running(bytesIn, bytesOut, requestSize, responseSize uint64) Body {
	return Body{
		State:        "running",
		Received:     &bytesIn,
		Sent:         &bytesOut,
		RequestSize:  &requestSize,
		ResponseSize: &responseSize,
	}
}

// Done builds the "done" body for a Tombstone whose stored status was 200.
func Done(bytesIn, bytesOut, requestSize, responseSize uint64) Body {
	b := Running(bytesIn, bytesOut, requestSize, responseSize)
	b.State = "done"
	return b
}

// Errored builds the "error" body for a Tombstone whose stored status was
// not 200.
func Errored(status int) Body {
	return Body{State: "error", Status: &status}
}

// defaultCallback is substituted whenever X-Progress-Callback is missing
// or contains a character outside [A-Za-z0-9._].
const defaultCallback = "progress"

// SanitizeCallback validates a jsonp callback name: every character must
// be in [A-Za-z0-9._], otherwise the literal name "progress" is
// substituted. An empty name also falls back to "progress".
func SanitizeCallback(name string) string {
	if name == "" {
		return defaultCallback
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '_':
		default:
			return defaultCallback
		}
	}
	return name
}

// encode renders body the way the original mod_progress.c's
// g_string_append_printf calls did: a space after every ':' and ',', in
// the fixed field order state/received/sent/request_size/response_size,
// or state/status for an error body. Body has no nested structure, so a
// hand-built literal is simpler here than reconciling encoding/json's
// compact output with that framing.
func encode(body Body) []byte {
	var sb strings.Builder
	sb.WriteString(`{"state": `)
	sb.WriteString(strconv.Quote(body.State))
	if body.Received != nil {
		fmt.Fprintf(&sb, `, "received": %d`, *body.Received)
	}
	if body.Sent != nil {
		fmt.Fprintf(&sb, `, "sent": %d`, *body.Sent)
	}
	if body.RequestSize != nil {
		fmt.Fprintf(&sb, `, "request_size": %d`, *body.RequestSize)
	}
	if body.ResponseSize != nil {
		fmt.Fprintf(&sb, `, "response_size": %d`, *body.ResponseSize)
	}
	if body.Status != nil {
		fmt.Fprintf(&sb, `, "status": %d`, *body.Status)
	}
	sb.WriteString("}")
	return []byte(sb.String())
}

// Frame encodes body and wraps it per format: json unwrapped, legacy as
// "new Object(...)", jsonp as "<callback>(...)", dump identically to
// json. callback is only consulted for FormatJSONP and is passed through
// SanitizeCallback here, so callers may hand in the raw query value.
func Frame(format config.Format, body Body, callback string) ([]byte, error) {
	encoded := encode(body)

	switch format {
	case config.FormatLegacy:
		var sb strings.Builder
		sb.WriteString("new Object(")
		sb.Write(encoded)
		sb.WriteString(")")
		return []byte(sb.String()), nil
	case config.FormatJSONP:
		var sb strings.Builder
		sb.WriteString(SanitizeCallback(callback))
		sb.WriteString("(")
		sb.Write(encoded)
		sb.WriteString(")")
		return []byte(sb.String()), nil
	case config.FormatJSON, config.FormatDump, "":
		return encoded, nil
	default:
		return encoded, nil
	}
}
