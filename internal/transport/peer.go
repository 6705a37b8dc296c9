package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"slices"
	"sync"

	"github.com/jwebster45206/worldforge/pkg/bridge"
)

const (
	peerGreeting = "WorldForge UE5 Ready"
	maxLineBytes = 4 << 20
)

// PeerServer stands in for the engine plugin: it greets each client,
// records every command it receives and answers with an ACK.
type PeerServer struct {
	logger   *slog.Logger
	accept   func(bridge.Command) bool
	onCmd    func(bridge.Command)
	listener net.Listener

	mu       sync.Mutex
	received []bridge.Command
	conns    map[net.Conn]struct{}
	closed   bool
	wg       sync.WaitGroup
}

type PeerOption func(*PeerServer)

// WithAcceptFunc decides per command whether the ACK status is ok.
func WithAcceptFunc(fn func(bridge.Command) bool) PeerOption {
	return func(s *PeerServer) { s.accept = fn }
}

// WithCommandHandler is called for every decoded command.
func WithCommandHandler(fn func(bridge.Command)) PeerOption {
	return func(s *PeerServer) { s.onCmd = fn }
}

func NewPeerServer(logger *slog.Logger, opts ...PeerOption) *PeerServer {
	s := &PeerServer{
		logger: logger,
		accept: func(bridge.Command) bool { return true },
		conns:  make(map[net.Conn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Listen binds addr, e.g. ":8765" or "127.0.0.1:0".
func (s *PeerServer) Listen(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = l
	s.logger.Info("Engine peer listening", "addr", l.Addr().String())
	return nil
}

// Addr is the bound address. Listen must have succeeded.
func (s *PeerServer) Addr() *net.TCPAddr {
	return s.listener.Addr().(*net.TCPAddr)
}

// Serve accepts clients until ctx is canceled or Close is called.
func (s *PeerServer) Serve(ctx context.Context) error {
	if s.listener == nil {
		return errors.New("peer server is not listening")
	}

	stop := context.AfterFunc(ctx, func() { _ = s.Close() })
	defer stop()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				s.wg.Wait()
				return nil
			}
			return fmt.Errorf("accept failed: %w", err)
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			_ = conn.Close()
			continue
		}
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.handle(conn)
	}
}

func (s *PeerServer) handle(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		_ = conn.Close()
	}()

	remote := conn.RemoteAddr().String()
	s.logger.Info("Client connected", "remote", remote)

	if err := writeMessage(conn, peerMessage{Type: MsgConnected, Message: peerGreeting}); err != nil {
		s.logger.Warn("Failed to greet client", "remote", remote, "error", err)
		return
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		status := StatusOK
		var cmd bridge.Command
		if err := json.Unmarshal(line, &cmd); err != nil || cmd.Type == "" {
			s.logger.Warn("Malformed command", "remote", remote, "error", err)
			status = StatusError
		} else {
			s.record(cmd)
			if !s.accept(cmd) {
				status = StatusError
			}
		}

		if err := writeMessage(conn, peerMessage{Type: MsgAck, Status: status}); err != nil {
			s.logger.Warn("Failed to acknowledge command", "remote", remote, "error", err)
			return
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Warn("Client read failed", "remote", remote, "error", err)
	}
	s.logger.Info("Client disconnected", "remote", remote)
}

func (s *PeerServer) record(cmd bridge.Command) {
	s.mu.Lock()
	s.received = append(s.received, cmd)
	s.mu.Unlock()

	s.logger.Debug("Command received", "type", cmd.Type)
	if s.onCmd != nil {
		s.onCmd(cmd)
	}
}

// Received returns the commands seen so far, in arrival order.
func (s *PeerServer) Received() []bridge.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.received)
}

// Close stops accepting and drops every client.
func (s *PeerServer) Close() error {
	var err error
	if s.listener != nil {
		err = s.listener.Close()
		if errors.Is(err, net.ErrClosed) {
			err = nil
		}
	}

	s.mu.Lock()
	s.closed = true
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()
	return err
}

func writeMessage(conn net.Conn, msg peerMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_, err = conn.Write(append(data, '\n'))
	return err
}
