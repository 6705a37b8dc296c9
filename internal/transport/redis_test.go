package transport

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/worldforge/pkg/bridge"
	"github.com/jwebster45206/worldforge/pkg/world"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)

	opts, err := redis.ParseURL("redis://" + mr.Addr())
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestRedisTransport_Connect(t *testing.T) {
	mr, client := setupTestRedis(t)
	tr := NewRedisTransport(client, "", testLogger())
	assert.Equal(t, DefaultCommandChannel, tr.Channel())

	ok, err := tr.Connect(context.Background(), "ignored", 0)
	require.NoError(t, err)
	assert.True(t, ok)

	mr.SetError("ERR server unavailable")
	ok, err = tr.Connect(context.Background(), "ignored", 0)
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestRedisTransport_DeliverWithoutSubscriber(t *testing.T) {
	_, client := setupTestRedis(t)
	tr := NewRedisTransport(client, "test:commands", testLogger())

	ok, err := tr.Deliver(context.Background(), bridge.SetAtmosphereCommand(world.AtmosphereSacred))
	require.NoError(t, err)
	assert.False(t, ok, "nobody listening means nobody accepted")
}

func TestRedisTransport_Listen(t *testing.T) {
	_, client := setupTestRedis(t)
	tr := NewRedisTransport(client, "test:commands", testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []bridge.Command
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- tr.Listen(ctx, ready, func(c bridge.Command) {
			mu.Lock()
			got = append(got, c)
			mu.Unlock()
		})
	}()

	select {
	case <-ready:
	case err := <-done:
		t.Fatalf("listen exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("subscription not ready")
	}

	ok, err := tr.Deliver(ctx, bridge.SetTraitCommand(world.AxisReligiosity, 0.9))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = tr.Deliver(ctx, bridge.SetAtmosphereCommand(world.AtmosphereSacred))
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, 5*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, bridge.CmdSetTrait, got[0].Type)
	assert.Equal(t, world.AxisReligiosity, got[0].Trait)
	assert.Equal(t, world.AtmosphereSacred, got[1].Atmosphere)
	mu.Unlock()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not stop")
	}
}
