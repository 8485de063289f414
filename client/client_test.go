package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/souze/code-challenge-client/protocol"
	"github.com/souze/code-challenge-client/transport"
)

// scriptStream is an in-memory Stream fed from a fixed server script. It
// records every frame the client writes and the order of stream operations
// so tests can assert the send/receive alternation.
type scriptStream struct {
	incoming []string // frames the fake server delivers, in order
	finalErr error    // returned once the script runs out; nil means io.EOF

	sent   []string
	ops    []string // "read" / "write" in call order
	closed int
}

func (s *scriptStream) ReadLine() ([]byte, error) {
	s.ops = append(s.ops, "read")
	if len(s.incoming) == 0 {
		if s.finalErr != nil {
			return nil, s.finalErr
		}
		return nil, io.EOF
	}
	line := s.incoming[0]
	s.incoming = s.incoming[1:]
	return []byte(line), nil
}

func (s *scriptStream) WriteLine(line []byte) error {
	s.ops = append(s.ops, "write")
	s.sent = append(s.sent, string(line))
	return nil
}

func (s *scriptStream) Close() error {
	s.closed++
	return nil
}

// fixedPolicy always plays the same coordinates.
type fixedPolicy struct{ x, y int }

func (p fixedPolicy) Choose(context.Context, protocol.ServerMessage) (int, int, error) {
	return p.x, p.y, nil
}

func TestAuthenticate_SendsAuthFrame(t *testing.T) {
	stream := &scriptStream{}
	c := New(stream, nil)

	err := c.Authenticate(Credentials{Username: "example_python", Password: "kermit"})
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	if len(stream.sent) != 1 {
		t.Fatalf("Expected one frame, got %d", len(stream.sent))
	}
	expected := `{"auth":{"username":"example_python","password":"kermit"}}`
	if stream.sent[0] != expected {
		t.Errorf("Expected %s, got %s", expected, stream.sent[0])
	}
}

func TestRun_OneMovePerStateThenGameOver(t *testing.T) {
	stream := &scriptStream{incoming: []string{
		`{"move-ack":1}`,
		`{"game-over":true}`,
	}}
	c := New(stream, nil)

	res, err := c.Run(context.Background(), fixedPolicy{x: 3, y: 4})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(stream.sent) != 1 {
		t.Fatalf("Expected exactly one move, got %d: %v", len(stream.sent), stream.sent)
	}
	if stream.sent[0] != `{"move":{"x":3,"y":4}}` {
		t.Errorf("Unexpected move frame: %s", stream.sent[0])
	}
	if !res.GameOver {
		t.Error("Expected a terminal result")
	}
	if res.Moves != 1 {
		t.Errorf("Expected Moves = 1, got %d", res.Moves)
	}
	if stream.closed == 0 {
		t.Error("Expected the stream to be closed")
	}
}

func TestRun_GameOverReason(t *testing.T) {
	stream := &scriptStream{incoming: []string{
		`{"game-over":{"reason":"winner: alice"}}`,
	}}
	c := New(stream, nil)

	res, err := c.Run(context.Background(), fixedPolicy{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Reason != "winner: alice" {
		t.Errorf("Expected reason %q, got %q", "winner: alice", res.Reason)
	}
	if len(stream.sent) != 0 {
		t.Errorf("A terminal frame must not be answered, but sent %v", stream.sent)
	}
}

func TestRun_SendReceiveAlternation(t *testing.T) {
	stream := &scriptStream{incoming: []string{
		`{"your-turn":{"cells":["empty"],"width":1,"height":1}}`,
		`{"move-ack":1}`,
		`{"your-turn":{"cells":["empty"],"width":1,"height":1}}`,
		`{"game-over":{"reason":"board full"}}`,
	}}
	c := New(stream, nil)

	if _, err := c.Run(context.Background(), fixedPolicy{}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	got := strings.Join(stream.ops, ",")
	want := "read,write,read,write,read,write,read"
	if got != want {
		t.Errorf("Operation order %s, want %s", got, want)
	}
}

func TestRun_CleanCloseBetweenTurns(t *testing.T) {
	stream := &scriptStream{incoming: []string{`{"move-ack":1}`}}
	c := New(stream, nil)

	res, err := c.Run(context.Background(), fixedPolicy{})
	if err != nil {
		t.Fatalf("A clean close between frames is not an error, got %v", err)
	}
	if res.GameOver {
		t.Error("A clean close is not a game-over")
	}
	if res.Moves != 1 {
		t.Errorf("Expected Moves = 1, got %d", res.Moves)
	}
}

func TestRun_MidFrameClose(t *testing.T) {
	stream := &scriptStream{finalErr: fmt.Errorf("%w: stream ended mid-frame", transport.ErrConnectionClosed)}
	c := New(stream, nil)

	_, err := c.Run(context.Background(), fixedPolicy{})
	if !errors.Is(err, transport.ErrConnectionClosed) {
		t.Errorf("Expected ErrConnectionClosed, got %v", err)
	}
	if stream.closed == 0 {
		t.Error("Expected the stream to be closed on the error path")
	}
}

func TestRun_MalformedFrame(t *testing.T) {
	stream := &scriptStream{incoming: []string{`not-json`}}
	c := New(stream, nil)

	_, err := c.Run(context.Background(), fixedPolicy{})
	if !errors.Is(err, protocol.ErrMalformed) {
		t.Errorf("Expected ErrMalformed, got %v", err)
	}
	if len(stream.sent) != 0 {
		t.Errorf("No move may follow a malformed frame, but sent %v", stream.sent)
	}
	if stream.closed == 0 {
		t.Error("Expected the stream to be closed after a protocol error")
	}
}

func TestRun_PolicyErrorAbortsSession(t *testing.T) {
	stream := &scriptStream{incoming: []string{`{"your-turn":{}}`, `{"your-turn":{}}`}}
	c := New(stream, nil)

	policyErr := errors.New("no move available")
	failing := policyFunc(func(context.Context, protocol.ServerMessage) (int, int, error) {
		return 0, 0, policyErr
	})

	_, err := c.Run(context.Background(), failing)
	if !errors.Is(err, policyErr) {
		t.Errorf("Expected the policy error to propagate, got %v", err)
	}
	if len(stream.sent) != 0 {
		t.Errorf("Expected no move after a policy failure, sent %v", stream.sent)
	}
}

type policyFunc func(context.Context, protocol.ServerMessage) (int, int, error)

func (f policyFunc) Choose(ctx context.Context, state protocol.ServerMessage) (int, int, error) {
	return f(ctx, state)
}

func TestRun_ContextCanceled(t *testing.T) {
	stream := &scriptStream{incoming: []string{`{"your-turn":{}}`}}
	c := New(stream, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Run(ctx, fixedPolicy{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if stream.closed == 0 {
		t.Error("Expected the stream to be closed after cancellation")
	}
}

func TestRun_ErrorFrameIsLiveState(t *testing.T) {
	stream := &scriptStream{incoming: []string{
		`{"error":{"reason":"invalid move"}}`,
		`{"game-over":true}`,
	}}
	c := New(stream, nil)

	res, err := c.Run(context.Background(), fixedPolicy{x: 1, y: 1})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Moves != 1 {
		t.Errorf("An error frame still gets one move in reply, got %d", res.Moves)
	}
}

func TestClose_Idempotent(t *testing.T) {
	stream := &scriptStream{}
	c := New(stream, nil)

	c.Close()
	c.Close()
	if stream.closed != 1 {
		t.Errorf("Expected exactly one close, got %d", stream.closed)
	}
}
