// Package websocket carries the game protocol over a WebSocket instead of
// a raw TCP stream. Each protocol line travels as one text message; the
// line delimiter never appears on the wire.
package websocket

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/souze/code-challenge-client/transport"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to complete the opening handshake.
	handshakeWait = 10 * time.Second
)

// Dial opens a Stream over a WebSocket. url must be a ws:// or wss:// URL.
func Dial(ctx context.Context, url string, opts transport.Options) (transport.Stream, error) {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeWait}
	if opts.DialTimeout > 0 {
		dialer.HandshakeTimeout = opts.DialTimeout
	}

	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: dial websocket %s: %v", transport.ErrConnect, url, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	return &wsStream{conn: conn, readTimeout: opts.ReadTimeout}, nil
}

type wsStream struct {
	conn        *websocket.Conn
	readTimeout time.Duration

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

func (s *wsStream) ReadLine() ([]byte, error) {
	if s.readTimeout > 0 {
		if err := s.conn.SetReadDeadline(time.Now().Add(s.readTimeout)); err != nil {
			return nil, fmt.Errorf("set read deadline: %w", err)
		}
	}

	_, data, err := s.conn.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: %v", transport.ErrConnectionClosed, err)
	}

	// Tolerate peers that keep the delimiter inside the message payload.
	data = bytes.TrimSuffix(data, []byte("\n"))
	return data, nil
}

func (s *wsStream) WriteLine(line []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, line); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

func (s *wsStream) Close() error {
	s.closeOnce.Do(func() {
		deadline := time.Now().Add(writeWait)
		s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}
