// Package transport carries bridge commands to the engine peer over TCP
// or Redis pub/sub, and provides a stand-in peer for development.
package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/jwebster45206/worldforge/pkg/bridge"
)

const (
	MsgConnected = "CONNECTED"
	MsgAck       = "ACK"
	StatusOK     = "ok"
	StatusError  = "error"

	DefaultDialTimeout = 5 * time.Second
	DefaultIOTimeout   = 10 * time.Second
)

var ErrNotConnected = errors.New("not connected")

// peerMessage is a line sent by the engine peer.
type peerMessage struct {
	Type    string `json:"type"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// TCPTransport speaks newline-delimited JSON to the engine plugin. The
// peer greets each connection with a CONNECTED line and answers every
// command with an ACK line.
type TCPTransport struct {
	dialTimeout time.Duration
	ioTimeout   time.Duration
	logger      *slog.Logger

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
}

var (
	_ bridge.Transport = (*TCPTransport)(nil)
	_ io.Closer        = (*TCPTransport)(nil)
)

// NewTCPTransport creates a transport. Zero timeouts use the defaults.
func NewTCPTransport(dialTimeout, ioTimeout time.Duration, logger *slog.Logger) *TCPTransport {
	if dialTimeout <= 0 {
		dialTimeout = DefaultDialTimeout
	}
	if ioTimeout <= 0 {
		ioTimeout = DefaultIOTimeout
	}
	return &TCPTransport{
		dialTimeout: dialTimeout,
		ioTimeout:   ioTimeout,
		logger:      logger,
	}
}

// Connect dials host:port and waits for the greeting. A peer that answers
// with anything else is reported as (false, nil).
func (t *TCPTransport) Connect(ctx context.Context, host string, port int) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closeLocked()

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	d := net.Dialer{Timeout: t.dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false, fmt.Errorf("failed to dial engine: %w", err)
	}

	reader := bufio.NewReader(conn)
	stop := t.bindDeadline(ctx, conn)
	msg, err := readMessage(reader)
	stop()
	if err != nil {
		_ = conn.Close()
		return false, fmt.Errorf("failed to read greeting: %w", err)
	}
	if msg.Type != MsgConnected {
		_ = conn.Close()
		t.logger.Warn("Unexpected greeting from engine", "addr", addr, "type", msg.Type)
		return false, nil
	}

	t.logger.Debug("Engine greeting received", "addr", addr, "message", msg.Message)
	t.conn = conn
	t.reader = reader
	return true, nil
}

// Deliver writes cmd as one JSON line and waits for its ACK. I/O errors
// drop the connection.
func (t *TCPTransport) Deliver(ctx context.Context, cmd bridge.Command) (bool, error) {
	data, err := json.Marshal(cmd)
	if err != nil {
		return false, fmt.Errorf("failed to marshal command: %w", err)
	}
	data = append(data, '\n')

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil {
		return false, ErrNotConnected
	}

	stop := t.bindDeadline(ctx, t.conn)
	defer stop()

	if _, err := t.conn.Write(data); err != nil {
		t.closeLocked()
		return false, fmt.Errorf("failed to write command: %w", err)
	}

	msg, err := readMessage(t.reader)
	if err != nil {
		t.closeLocked()
		return false, fmt.Errorf("failed to read ack: %w", err)
	}

	return msg.Type == MsgAck && msg.Status == StatusOK, nil
}

// Close drops the connection, if any.
func (t *TCPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closeLocked()
}

func (t *TCPTransport) closeLocked() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	t.reader = nil
	return err
}

// bindDeadline applies the I/O timeout, tightened by the ctx deadline,
// and unblocks pending I/O when ctx is canceled.
func (t *TCPTransport) bindDeadline(ctx context.Context, conn net.Conn) (stop func()) {
	deadline := time.Now().Add(t.ioTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	cancel := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Unix(1, 0))
	})
	return func() {
		cancel()
		_ = conn.SetDeadline(time.Time{})
	}
}

// readMessage reads the next non-empty line and decodes it.
func readMessage(r *bufio.Reader) (peerMessage, error) {
	for {
		line, err := r.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			var msg peerMessage
			if jerr := json.Unmarshal(line, &msg); jerr != nil {
				return peerMessage{}, fmt.Errorf("malformed peer message: %w", jerr)
			}
			return msg, nil
		}
		if err != nil {
			return peerMessage{}, err
		}
	}
}
