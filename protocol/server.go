package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ServerMessage is one decoded inbound frame. The server sends plain JSON
// objects; the kind of a message follows from which keys are present.
type ServerMessage struct {
	raw    json.RawMessage
	fields map[string]json.RawMessage
}

// Decode parses one wire line (delimiter already stripped). Frames must be
// JSON objects; anything else is ErrMalformed.
func Decode(line []byte) (ServerMessage, error) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ServerMessage{}, fmt.Errorf("%w: frame is not a JSON object: %q", ErrMalformed, truncate(line))
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return ServerMessage{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	raw := make(json.RawMessage, len(trimmed))
	copy(raw, trimmed)
	return ServerMessage{raw: raw, fields: fields}, nil
}

func truncate(line []byte) string {
	const max = 64
	if len(line) <= max {
		return string(line)
	}
	return string(line[:max]) + "..."
}

// Raw returns the frame as it appeared on the wire.
func (m ServerMessage) Raw() json.RawMessage { return m.raw }

// Has reports whether the frame carries the given top-level key.
func (m ServerMessage) Has(key string) bool {
	_, ok := m.fields[key]
	return ok
}

// GameOver reports whether the frame is terminal. The original server sends
// {"game-over":{"reason":...}}; the reason is best-effort and may be empty
// for other shapes, but any value under the key terminates the game.
func (m ServerMessage) GameOver() (reason string, ok bool) {
	v, ok := m.fields["game-over"]
	if !ok {
		return "", false
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(v, &body); err == nil && body.Reason != "" {
		return body.Reason, true
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s, true
	}
	return "", true
}

// TurnState returns the payload of a your-turn frame.
func (m ServerMessage) TurnState() (json.RawMessage, bool) {
	v, ok := m.fields["your-turn"]
	return v, ok
}

// State returns the game state a policy should decide on: the your-turn
// payload when present, otherwise the whole frame.
func (m ServerMessage) State() json.RawMessage {
	if v, ok := m.TurnState(); ok {
		return v
	}
	return m.raw
}

// ErrorReason extracts the reason of an {"error":...} frame. Error frames
// are not terminal; the server keeps the session open after sending one.
func (m ServerMessage) ErrorReason() (string, bool) {
	v, ok := m.fields["error"]
	if !ok {
		return "", false
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(v, &body); err == nil {
		return body.Reason, true
	}
	return "", true
}
