package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed reports a frame that is not a valid protocol message.
var ErrMalformed = errors.New("malformed protocol message")

// Auth carries the plaintext credentials of the auth handshake.
type Auth struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Move is one board placement.
type Move struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type authEnvelope struct {
	Auth Auth `json:"auth"`
}

type moveEnvelope struct {
	Move Move `json:"move"`
}

// Encode serializes v as the compact JSON text of one frame. The result
// never contains the line delimiter; WriteLine on the transport appends it.
func Encode(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	if bytes.ContainsRune(data, '\n') {
		return nil, fmt.Errorf("%w: frame contains embedded newline", ErrMalformed)
	}
	return data, nil
}

// EncodeAuth builds the auth frame for the given credentials.
func EncodeAuth(a Auth) ([]byte, error) {
	return Encode(authEnvelope{Auth: a})
}

// EncodeMove builds the move frame for one placement.
func EncodeMove(m Move) ([]byte, error) {
	return Encode(moveEnvelope{Move: m})
}
