package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/souze/code-challenge-client/protocol"
	"github.com/souze/code-challenge-client/transport"
)

// ErrWrite reports a failed send on an established connection.
var ErrWrite = errors.New("write failed")

// Credentials identify a player. The protocol carries them in plaintext.
type Credentials struct {
	Username string
	Password string
}

// MovePolicy chooses the next move for a live game state. Policies only see
// decoded state; they never touch the connection.
type MovePolicy interface {
	Choose(ctx context.Context, state protocol.ServerMessage) (x, y int, err error)
}

// Client drives one game session over one exclusively-owned stream.
type Client struct {
	stream transport.Stream
	log    *zap.SugaredLogger

	closeOnce sync.Once
	closeErr  error
}

// Dial connects to a game server over TCP and wraps the connection in a
// Client. The caller still runs authentication and the game loop.
func Dial(addr string, opts transport.Options, log *zap.SugaredLogger) (*Client, error) {
	stream, err := transport.Dial(addr, opts)
	if err != nil {
		return nil, err
	}
	return New(stream, log), nil
}

// New builds a Client on an established stream: TCP, WebSocket, or an
// in-memory stream in tests. A nil logger disables logging.
func New(stream transport.Stream, log *zap.SugaredLogger) *Client {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{stream: stream, log: log}
}

// Authenticate sends the auth frame. There is no acknowledgment to wait
// for; a rejected login shows up later as an error frame or a peer close.
func (c *Client) Authenticate(creds Credentials) error {
	frame, err := protocol.EncodeAuth(protocol.Auth{
		Username: creds.Username,
		Password: creds.Password,
	})
	if err != nil {
		return err
	}
	return c.send(frame)
}

// Result summarizes a finished session.
type Result struct {
	// Moves counts the move frames sent.
	Moves int

	// GameOver reports whether the server sent a terminal frame, as
	// opposed to closing the stream between turns.
	GameOver bool

	// Reason is the server's game-over reason, when it sent one.
	Reason string
}

// Run executes the receive/decide/send loop until the server ends the game,
// the stream closes, the context is canceled, or the session fails. The
// connection is closed on every exit path. Exactly one move is sent per
// live state received; a terminal frame is never answered.
func (c *Client) Run(ctx context.Context, policy MovePolicy) (Result, error) {
	defer c.Close()

	var res Result
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		msg, err := c.receive()
		if errors.Is(err, io.EOF) {
			c.log.Debugw("server closed the stream", "moves", res.Moves)
			return res, nil
		}
		if err != nil {
			return res, err
		}

		if reason, over := msg.GameOver(); over {
			res.GameOver = true
			res.Reason = reason
			c.log.Infow("game over", "reason", reason, "moves", res.Moves)
			return res, nil
		}
		if reason, ok := msg.ErrorReason(); ok {
			c.log.Warnw("server reported an error", "reason", reason)
		}

		x, y, err := policy.Choose(ctx, msg)
		if err != nil {
			return res, fmt.Errorf("move policy: %w", err)
		}

		frame, err := protocol.EncodeMove(protocol.Move{X: x, Y: y})
		if err != nil {
			return res, err
		}
		if err := c.send(frame); err != nil {
			return res, err
		}
		res.Moves++
	}
}

// Close releases the connection. Safe to call more than once; only the
// first call reaches the stream.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.stream.Close()
	})
	return c.closeErr
}

func (c *Client) receive() (protocol.ServerMessage, error) {
	line, err := c.stream.ReadLine()
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, transport.ErrConnectionClosed) {
			return protocol.ServerMessage{}, err
		}
		return protocol.ServerMessage{}, fmt.Errorf("receive frame: %w", err)
	}
	c.log.Debugw("received", "frame", string(line))
	return protocol.Decode(line)
}

func (c *Client) send(line []byte) error {
	c.log.Debugw("sending", "frame", string(line))
	if err := c.stream.WriteLine(line); err != nil {
		if errors.Is(err, transport.ErrConnectionClosed) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// Play runs a full session end to end: dial, authenticate, loop.
func Play(ctx context.Context, addr string, creds Credentials, policy MovePolicy, opts transport.Options, log *zap.SugaredLogger) (Result, error) {
	c, err := Dial(addr, opts, log)
	if err != nil {
		return Result{}, err
	}
	defer c.Close()

	if err := c.Authenticate(creds); err != nil {
		return Result{}, err
	}
	return c.Run(ctx, policy)
}
