// Package client implements the protocol client for the code-challenge
// game server: it owns one connection, performs the auth handshake, and
// runs the synchronous receive-state/send-move loop until the game ends.
//
// Protocol flow:
//
//	c, err := client.Dial("localhost:7654", transport.Options{}, log)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := c.Authenticate(client.Credentials{Username: "bob", Password: "kermit"}); err != nil {
//		log.Fatal(err)
//	}
//	result, err := c.Run(ctx, myPolicy)
//
// The loop is a two-state machine. While awaiting state, the client blocks
// on the next server frame. A frame carrying a "game-over" key terminates
// the session without a reply; any other frame is handed to the MovePolicy
// and answered with exactly one move. The client never sends two moves
// without an intervening state frame.
//
// Authentication is fire-and-forget: the server does not acknowledge the
// auth frame, it simply starts sending turns (or an error frame, or a
// close, both of which surface from Run).
//
// Error handling is strictly propagating. Transport establishment failures
// are transport.ErrConnect, a peer close mid-frame is
// transport.ErrConnectionClosed, malformed frames are protocol.ErrMalformed
// and failed sends are ErrWrite. None of them are retried; the session ends
// and the connection is closed exactly once regardless of the exit path.
//
// Move selection is not this package's business. A MovePolicy only sees
// decoded state and returns coordinates; implementations live in the policy
// package or with the caller.
package client
