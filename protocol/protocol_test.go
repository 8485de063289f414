package protocol

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestEncodeAuth_WireFormat(t *testing.T) {
	frame, err := EncodeAuth(Auth{Username: "user", Password: "pass"})
	if err != nil {
		t.Fatalf("EncodeAuth failed: %v", err)
	}

	expected := `{"auth":{"username":"user","password":"pass"}}`
	if string(frame) != expected {
		t.Errorf("Expected %s, got %s", expected, frame)
	}
}

func TestEncodeMove_WireFormat(t *testing.T) {
	frame, err := EncodeMove(Move{X: 4, Y: 2})
	if err != nil {
		t.Fatalf("EncodeMove failed: %v", err)
	}

	expected := `{"move":{"x":4,"y":2}}`
	if string(frame) != expected {
		t.Errorf("Expected %s, got %s", expected, frame)
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	messages := []map[string]interface{}{
		{"auth": map[string]interface{}{"username": "bob", "password": "kermit"}},
		{"move": map[string]interface{}{"x": float64(3), "y": float64(7)}},
		{"your-turn": map[string]interface{}{"width": float64(2), "height": float64(1), "cells": []interface{}{"empty", "empty"}}},
		{"game-over": map[string]interface{}{"reason": "winner: alice"}},
	}

	for _, original := range messages {
		frame, err := Encode(original)
		if err != nil {
			t.Fatalf("Encode(%v) failed: %v", original, err)
		}

		msg, err := Decode(frame)
		if err != nil {
			t.Fatalf("Decode(%s) failed: %v", frame, err)
		}

		var decoded map[string]interface{}
		if err := json.Unmarshal(msg.Raw(), &decoded); err != nil {
			t.Fatalf("Raw() is not valid JSON: %v", err)
		}
		if !reflect.DeepEqual(decoded, original) {
			t.Errorf("Round trip changed the message: want %v, got %v", original, decoded)
		}
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"not json", "not-json"},
		{"array frame", `[1,2,3]`},
		{"null frame", `null`},
		{"bare string", `"hello"`},
		{"empty line", ""},
		{"truncated object", `{"partial":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.line))
			if err == nil {
				t.Fatalf("Decode(%q) should have failed", tt.line)
			}
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestServerMessage_GameOver(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		wantOver   bool
		wantReason string
	}{
		{"reason object", `{"game-over":{"reason":"winner: alice"}}`, true, "winner: alice"},
		{"bare bool", `{"game-over":true}`, true, ""},
		{"string value", `{"game-over":"draw"}`, true, "draw"},
		{"null value", `{"game-over":null}`, true, ""},
		{"live state", `{"your-turn":{"cells":[],"width":0,"height":0}}`, false, ""},
		{"move ack", `{"move-ack":1}`, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Decode([]byte(tt.line))
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}

			reason, over := msg.GameOver()
			if over != tt.wantOver {
				t.Errorf("GameOver() = %v, want %v", over, tt.wantOver)
			}
			if reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", reason, tt.wantReason)
			}
		})
	}
}

func TestServerMessage_State(t *testing.T) {
	t.Run("your-turn payload", func(t *testing.T) {
		msg, err := Decode([]byte(`{"your-turn":{"width":3}}`))
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if string(msg.State()) != `{"width":3}` {
			t.Errorf("State() = %s, want the your-turn payload", msg.State())
		}
	})

	t.Run("opaque state", func(t *testing.T) {
		msg, err := Decode([]byte(`{"board":[1,2,3]}`))
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if string(msg.State()) != `{"board":[1,2,3]}` {
			t.Errorf("State() = %s, want the whole frame", msg.State())
		}
	})
}

func TestServerMessage_ErrorReason(t *testing.T) {
	msg, err := Decode([]byte(`{"error":{"reason":"wrong password"}}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	reason, ok := msg.ErrorReason()
	if !ok {
		t.Fatal("Expected an error frame")
	}
	if reason != "wrong password" {
		t.Errorf("Reason = %q, want %q", reason, "wrong password")
	}

	if _, over := msg.GameOver(); over {
		t.Error("Error frames must not be terminal")
	}
}
