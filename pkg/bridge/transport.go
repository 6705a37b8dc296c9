package bridge

import "context"

//go:generate mockgen -destination=mock/mock_transport.go -package=bridgemock github.com/jwebster45206/worldforge/pkg/bridge Transport

// Transport carries commands to the engine peer. Both calls may fail;
// the bridge turns failures into state transitions and booleans.
// Transports that also implement io.Closer are closed on Disconnect.
type Transport interface {
	// Connect opens a connection and reports whether the peer accepted it.
	Connect(ctx context.Context, host string, port int) (bool, error)

	// Deliver sends one command and reports whether the peer accepted it.
	Deliver(ctx context.Context, cmd Command) (bool, error)
}
