// Package protocol defines the wire format spoken by the code-challenge
// game server: newline-delimited JSON over a byte stream, one message per
// line, UTF-8 encoded.
//
// Client to server:
//
//	{"auth":{"username":"bob","password":"kermit"}}
//	{"move":{"x":4,"y":2}}
//
// Server to client, distinguished by key presence rather than a type tag:
//
//	{"your-turn":{...game state...}}
//	{"game-over":{"reason":"winner: alice"}}
//	{"error":{"reason":"invalid move"}}
//
// Any inbound object carrying a "game-over" key is terminal, whatever the
// value looks like. Every other object is live state and expects exactly
// one move in response.
//
// Encode produces the JSON text of one frame without the delimiter; the
// transport layer owns the trailing newline. Decode takes one delimited
// line (delimiter stripped) and returns a ServerMessage.
package protocol
