// Package transport provides the line-oriented byte streams the game
// protocol runs on. A Stream carries whole frames: WriteLine appends the
// single delimiter, ReadLine strips it. The TCP implementation lives here;
// transport/websocket provides the same contract over a WebSocket.
package transport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

var (
	// ErrConnect reports that the transport could not be established.
	ErrConnect = errors.New("cannot establish connection")

	// ErrConnectionClosed reports that the peer closed the stream before a
	// complete frame arrived. A close between frames is not an error and
	// surfaces as io.EOF instead.
	ErrConnectionClosed = errors.New("connection closed by peer")
)

// Stream is a bidirectional line-oriented stream to one peer. Lines passed
// to WriteLine and returned by ReadLine never contain the delimiter.
type Stream interface {
	ReadLine() ([]byte, error)
	WriteLine(line []byte) error
	Close() error
}

// Options control connection establishment and per-read behavior.
type Options struct {
	// DialTimeout bounds connection establishment. Zero means the
	// operating system default.
	DialTimeout time.Duration

	// ReadTimeout, when non-zero, bounds each ReadLine call. The baseline
	// protocol has no read timeout: the client blocks until the server's
	// next frame or a stream close.
	ReadTimeout time.Duration
}

// Dial opens a TCP stream to addr (host:port).
func Dial(addr string, opts Options) (Stream, error) {
	d := net.Dialer{Timeout: opts.DialTimeout}
	conn, err := d.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: dial tcp %s: %v", ErrConnect, addr, err)
	}
	return NewStream(conn, opts), nil
}

// NewStream wraps an established connection in the protocol's line framing.
func NewStream(conn net.Conn, opts Options) Stream {
	return &tcpStream{
		conn:        conn,
		r:           bufio.NewReader(conn),
		readTimeout: opts.ReadTimeout,
	}
}

type tcpStream struct {
	conn        net.Conn
	r           *bufio.Reader
	readTimeout time.Duration

	closeOnce sync.Once
	closeErr  error
}

// ReadLine blocks until a full delimited line arrives, reassembling it
// across however many reads the network delivers it in. End of stream
// between frames is io.EOF; end of stream with a partial line buffered is
// ErrConnectionClosed.
func (s *tcpStream) ReadLine() ([]byte, error) {
	if s.readTimeout > 0 {
		if err := s.conn.SetReadDeadline(time.Now().Add(s.readTimeout)); err != nil {
			return nil, fmt.Errorf("set read deadline: %w", err)
		}
	}

	line, err := s.r.ReadBytes('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if len(line) == 0 {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("%w: stream ended mid-frame", ErrConnectionClosed)
		}
		return nil, fmt.Errorf("read frame: %w", err)
	}

	line = line[:len(line)-1]
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line, nil
}

// WriteLine writes one frame: the line followed by a single delimiter.
func (s *tcpStream) WriteLine(line []byte) error {
	frame := make([]byte, 0, len(line)+1)
	frame = append(frame, line...)
	frame = append(frame, '\n')

	if _, err := s.conn.Write(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Close releases the connection. Only the first call reaches the socket.
func (s *tcpStream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}
