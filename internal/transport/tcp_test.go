package transport

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/worldforge/pkg/bridge"
	"github.com/jwebster45206/worldforge/pkg/state"
	"github.com/jwebster45206/worldforge/pkg/world"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startPeer(t *testing.T, opts ...PeerOption) *PeerServer {
	t.Helper()
	peer := NewPeerServer(testLogger(), opts...)
	require.NoError(t, peer.Listen("127.0.0.1:0"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- peer.Serve(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("peer server did not stop")
		}
	})
	return peer
}

func TestTCPTransport_ConnectAndDeliver(t *testing.T) {
	peer := startPeer(t)
	tr := NewTCPTransport(time.Second, time.Second, testLogger())
	defer func() { _ = tr.Close() }()
	ctx := context.Background()

	ok, err := tr.Connect(ctx, "127.0.0.1", peer.Addr().Port)
	require.NoError(t, err)
	require.True(t, ok)

	cmds := []bridge.Command{
		bridge.SetTraitCommand(world.AxisMilitarism, 0.75),
		bridge.SetAtmosphereCommand(world.AtmosphereWarTorn),
		bridge.SyncWorldStateCommand(state.New().Snapshot()),
	}
	for _, c := range cmds {
		ok, err := tr.Deliver(ctx, c)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	got := peer.Received()
	require.Len(t, got, len(cmds))
	assert.Equal(t, bridge.CmdSetTrait, got[0].Type)
	assert.Equal(t, world.AxisMilitarism, got[0].Trait)
	assert.InDelta(t, 0.75, *got[0].Value, 1e-9)
	assert.Equal(t, world.AtmosphereWarTorn, got[1].Atmosphere)
	require.NotNil(t, got[2].State)
	assert.Equal(t, world.AtmosphereMysterious, got[2].State.Atmosphere)
}

func TestTCPTransport_Rejected(t *testing.T) {
	peer := startPeer(t, WithAcceptFunc(func(c bridge.Command) bool {
		return c.Type != bridge.CmdAddFaction
	}))
	tr := NewTCPTransport(0, 0, testLogger())
	defer func() { _ = tr.Close() }()
	ctx := context.Background()

	ok, err := tr.Connect(ctx, "127.0.0.1", peer.Addr().Port)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = tr.Deliver(ctx, bridge.AddFactionCommand(world.Faction{ID: "f1", Name: "Guild"}))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = tr.Deliver(ctx, bridge.SetAtmosphereCommand(world.AtmosphereVibrant))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTCPTransport_NotConnected(t *testing.T) {
	tr := NewTCPTransport(0, 0, testLogger())

	ok, err := tr.Deliver(context.Background(), bridge.SetAtmosphereCommand(world.AtmosphereSacred))
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.NoError(t, tr.Close())
}

func TestTCPTransport_ConnectRefused(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	tr := NewTCPTransport(time.Second, time.Second, testLogger())
	ok, err := tr.Connect(context.Background(), "127.0.0.1", port)
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestTCPTransport_UnexpectedGreeting(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = l.Close() }()

	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()
		_, _ = conn.Write([]byte(`{"type":"BUSY","message":"another client is attached"}` + "\n"))
		_, _ = io.Copy(io.Discard, conn)
	}()

	tr := NewTCPTransport(time.Second, time.Second, testLogger())
	ok, err := tr.Connect(context.Background(), "127.0.0.1", l.Addr().(*net.TCPAddr).Port)
	assert.NoError(t, err)
	assert.False(t, ok)

	_, err = tr.Deliver(context.Background(), bridge.SetAtmosphereCommand(world.AtmosphereSacred))
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestTCPTransport_SilentPeerTimesOut(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = l.Close() }()

	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()
		_, _ = io.Copy(io.Discard, conn)
	}()

	tr := NewTCPTransport(time.Second, 100*time.Millisecond, testLogger())
	ok, err := tr.Connect(context.Background(), "127.0.0.1", l.Addr().(*net.TCPAddr).Port)
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestTCPTransport_PeerGoesAway(t *testing.T) {
	peer := NewPeerServer(testLogger())
	require.NoError(t, peer.Listen("127.0.0.1:0"))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- peer.Serve(ctx) }()

	tr := NewTCPTransport(time.Second, time.Second, testLogger())
	ok, err := tr.Connect(context.Background(), "127.0.0.1", peer.Addr().Port)
	require.NoError(t, err)
	require.True(t, ok)

	cancel()
	require.NoError(t, <-done)

	// The first write may land in the socket buffer; the ACK read fails.
	ok, err = tr.Deliver(context.Background(), bridge.SetAtmosphereCommand(world.AtmosphereSacred))
	assert.False(t, ok)
	assert.Error(t, err)

	_, err = tr.Deliver(context.Background(), bridge.SetAtmosphereCommand(world.AtmosphereSacred))
	assert.ErrorIs(t, err, ErrNotConnected, "a failed delivery drops the connection")
}

// A bridge driving a real TCP transport: queued commands reach the peer
// in order once the connection is made.
func TestTCPTransport_WithBridge(t *testing.T) {
	peer := startPeer(t)
	tr := NewTCPTransport(time.Second, time.Second, testLogger())
	b := bridge.New(tr, testLogger(), bridge.WithDefaultAddress("127.0.0.1", peer.Addr().Port))
	ctx := context.Background()

	w := state.New()
	era, _ := world.EraByID("japan_16th")
	w.SelectEra(era)

	assert.False(t, b.SetEra(ctx, era))
	assert.False(t, b.SyncWorldState(ctx, w.Snapshot()))
	assert.Equal(t, 2, b.QueueLen())

	require.True(t, b.Connect(ctx, "", 0))
	assert.Equal(t, 0, b.QueueLen())
	assert.True(t, b.SetAtmosphere(ctx, world.AtmosphereSacred))

	got := peer.Received()
	require.Len(t, got, 3)
	assert.Equal(t, bridge.CmdSetEra, got[0].Type)
	assert.Equal(t, "japan_16th", got[0].Era.ID)
	assert.Equal(t, bridge.CmdSyncWorldState, got[1].Type)
	assert.Equal(t, "japan_16th", got[1].State.EraID())
	assert.Equal(t, bridge.CmdSetAtmosphere, got[2].Type)

	b.Disconnect()
	assert.Equal(t, bridge.StatusDisconnected, b.Status())
}
