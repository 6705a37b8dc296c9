package bridge

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/jwebster45206/worldforge/pkg/state"
	"github.com/jwebster45206/worldforge/pkg/world"
)

// Status is the connection state of the bridge.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusError        Status = "error"
)

const (
	DefaultHost = "localhost"
	DefaultPort = 8765

	// ErrMsgConnectRefused is recorded when the transport reports a
	// failed connection without an error.
	ErrMsgConnectRefused = "Failed to connect to UE5. Is the plugin running?"
)

// State is a copy of the bridge's observable state.
type State struct {
	Status       Status    `json:"status"`
	LastError    string    `json:"lastError,omitempty"`
	CommandQueue []Command `json:"commandQueue"`
}

// Listener is notified with a copy of the state after every change.
type Listener func(State)

type subscription struct {
	id int
	fn Listener
}

// Bridge delivers commands to an engine peer. Commands issued while not
// connected are queued and flushed in order once a connection succeeds.
// Connection failures are recorded but never retried automatically.
type Bridge struct {
	transport Transport
	logger    *slog.Logger
	host      string
	port      int

	mu        sync.Mutex
	status    Status
	lastError string
	queue     []Command
	draining  bool // queued commands are being flushed; new sends join the queue

	listenerMu sync.Mutex
	listeners  []subscription
	nextID     int
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithDefaultAddress sets the address used when Connect is called with
// an empty host or zero port.
func WithDefaultAddress(host string, port int) Option {
	return func(b *Bridge) {
		b.host = host
		b.port = port
	}
}

// New creates a disconnected bridge over transport.
func New(transport Transport, logger *slog.Logger, opts ...Option) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bridge{
		transport: transport,
		logger:    logger,
		host:      DefaultHost,
		port:      DefaultPort,
		status:    StatusDisconnected,
		queue:     make([]Command, 0),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers fn and immediately calls it with the current state.
// Listeners run in registration order. The returned func removes fn.
func (b *Bridge) Subscribe(fn Listener) func() {
	b.listenerMu.Lock()
	b.nextID++
	id := b.nextID
	b.listeners = append(b.listeners, subscription{id: id, fn: fn})
	b.listenerMu.Unlock()

	fn(b.State())

	return func() {
		b.listenerMu.Lock()
		defer b.listenerMu.Unlock()
		b.listeners = slices.DeleteFunc(b.listeners, func(s subscription) bool { return s.id == id })
	}
}

// notify must be called without b.mu held.
func (b *Bridge) notify() {
	st := b.State()

	b.listenerMu.Lock()
	subs := slices.Clone(b.listeners)
	b.listenerMu.Unlock()

	for _, s := range subs {
		s.fn(st)
	}
}

// State returns a copy of the current state.
func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	return State{
		Status:       b.status,
		LastError:    b.lastError,
		CommandQueue: slices.Clone(b.queue),
	}
}

func (b *Bridge) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

func (b *Bridge) LastError() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastError
}

// QueueLen is the number of commands waiting for a connection.
func (b *Bridge) QueueLen() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// Connect attempts to reach the peer at host:port (defaults apply for an
// empty host or zero port). It returns true immediately when already
// connected and false immediately while another attempt is in flight.
// On success the pending queue is delivered in submission order before
// Connect returns. Commands sent by other goroutines during the flush are
// appended to the queue and delivered after everything queued before them.
func (b *Bridge) Connect(ctx context.Context, host string, port int) bool {
	if host == "" {
		host = b.host
	}
	if port == 0 {
		port = b.port
	}

	b.mu.Lock()
	switch b.status {
	case StatusConnected:
		b.mu.Unlock()
		return true
	case StatusConnecting:
		b.mu.Unlock()
		return false
	}
	b.status = StatusConnecting
	b.lastError = ""
	b.mu.Unlock()
	b.notify()

	b.logger.Info("Connecting to engine", "host", host, "port", port)
	ok, err := b.transport.Connect(ctx, host, port)
	if err != nil {
		b.logger.Error("Engine connection failed", "error", err, "host", host, "port", port)
		b.fail(err.Error())
		return false
	}
	if !ok {
		b.logger.Warn("Engine refused connection", "host", host, "port", port)
		b.fail(ErrMsgConnectRefused)
		return false
	}

	b.mu.Lock()
	b.status = StatusConnected
	b.draining = true
	pending := len(b.queue)
	b.mu.Unlock()
	b.notify()

	b.logger.Info("Connected to engine", "host", host, "port", port, "pending", pending)
	b.drain(ctx)
	return true
}

// drain delivers queued commands one at a time until the queue is empty
// or the bridge leaves the connected state.
func (b *Bridge) drain(ctx context.Context) {
	defer b.notify()
	for {
		b.mu.Lock()
		if b.status != StatusConnected || len(b.queue) == 0 {
			b.draining = false
			b.mu.Unlock()
			return
		}
		cmd := b.queue[0]
		b.queue = slices.Delete(b.queue, 0, 1)
		b.mu.Unlock()

		b.deliver(ctx, cmd)
	}
}

func (b *Bridge) fail(msg string) {
	b.mu.Lock()
	b.status = StatusError
	b.lastError = msg
	b.mu.Unlock()
	b.notify()
}

// Disconnect drops the connection. Queued commands are kept.
func (b *Bridge) Disconnect() {
	b.mu.Lock()
	b.status = StatusDisconnected
	b.mu.Unlock()

	if c, ok := b.transport.(io.Closer); ok {
		if err := c.Close(); err != nil {
			b.logger.Warn("Failed to close engine transport", "error", err)
		}
	}
	b.logger.Info("Disconnected from engine")
	b.notify()
}

// SendCommand delivers cmd when connected and returns whether the peer
// accepted it. Otherwise, or while the queue is still being flushed, cmd
// is queued and false is returned. Transport errors are logged, never
// returned.
func (b *Bridge) SendCommand(ctx context.Context, cmd Command) bool {
	b.mu.Lock()
	if b.status != StatusConnected || b.draining {
		b.queue = append(b.queue, cmd)
		depth := len(b.queue)
		b.mu.Unlock()

		b.logger.Debug("Engine not connected, command queued", "type", cmd.Type, "queue_depth", depth)
		b.notify()
		return false
	}
	b.mu.Unlock()

	return b.deliver(ctx, cmd)
}

func (b *Bridge) deliver(ctx context.Context, cmd Command) bool {
	ok, err := b.transport.Deliver(ctx, cmd)
	if err != nil {
		b.logger.Error("Failed to send command to engine", "type", cmd.Type, "error", err)
		return false
	}
	if !ok {
		b.logger.Warn("Engine rejected command", "type", cmd.Type)
	}
	return ok
}

// SyncWorldState sends the full snapshot.
func (b *Bridge) SyncWorldState(ctx context.Context, s state.Snapshot) bool {
	return b.SendCommand(ctx, SyncWorldStateCommand(s))
}

func (b *Bridge) SetEra(ctx context.Context, era world.Era) bool {
	return b.SendCommand(ctx, SetEraCommand(era))
}

func (b *Bridge) SetTrait(ctx context.Context, axis world.Axis, value float64) bool {
	return b.SendCommand(ctx, SetTraitCommand(axis, value))
}

func (b *Bridge) SetAtmosphere(ctx context.Context, a world.Atmosphere) bool {
	return b.SendCommand(ctx, SetAtmosphereCommand(a))
}

func (b *Bridge) SpawnSettlement(ctx context.Context, settlement world.Landmark) bool {
	return b.SendCommand(ctx, SpawnSettlementCommand(settlement))
}

func (b *Bridge) AddFaction(ctx context.Context, f world.Faction) bool {
	return b.SendCommand(ctx, AddFactionCommand(f))
}

func (b *Bridge) PlaceLandmark(ctx context.Context, l world.Landmark) bool {
	return b.SendCommand(ctx, PlaceLandmarkCommand(l))
}
