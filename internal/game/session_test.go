package game

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jwebster45206/worldforge/internal/dilemma"
	"github.com/jwebster45206/worldforge/pkg/bridge"
	bridgemock "github.com/jwebster45206/worldforge/pkg/bridge/mock"
	"github.com/jwebster45206/worldforge/pkg/state"
	"github.com/jwebster45206/worldforge/pkg/storage"
	"github.com/jwebster45206/worldforge/pkg/world"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestSession returns a session over a disconnected bridge, so every
// command it sends ends up in the bridge queue.
func newTestSession(t *testing.T, opts ...Option) (*Session, *bridge.Bridge) {
	t.Helper()
	ctrl := gomock.NewController(t)
	b := bridge.New(bridgemock.NewMockTransport(ctrl), quietLogger())
	svc := dilemma.NewService(nil, dilemma.NewFallback(), quietLogger())
	return New(svc, b, quietLogger(), opts...), b
}

func queuedTypes(b *bridge.Bridge) []bridge.CommandType {
	var out []bridge.CommandType
	for _, c := range b.State().CommandQueue {
		out = append(out, c.Type)
	}
	return out
}

func TestSession_Start(t *testing.T) {
	store := storage.NewMockStorage()
	s, b := newTestSession(t, WithStorage(store))
	ctx := context.Background()

	require.NoError(t, s.Start(ctx, "normandy_10th"))

	era := s.World().Era()
	require.NotNil(t, era)
	assert.Equal(t, "normandy_10th", era.ID)
	assert.InDelta(t, 0.7, s.World().Traits().Militarism, 1e-9)
	assert.Equal(t, []bridge.CommandType{bridge.CmdSetEra}, queuedTypes(b))

	saved, err := store.LoadSnapshot(ctx, s.ID())
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "normandy_10th", saved.EraID())
}

func TestSession_StartUnknownEra(t *testing.T) {
	s, b := newTestSession(t)

	err := s.Start(context.Background(), "atlantis")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownEra))
	assert.Nil(t, s.World().Era())
	assert.Empty(t, b.State().CommandQueue)
}

func TestSession_NextDilemmaRequiresEra(t *testing.T) {
	s, _ := newTestSession(t)

	_, err := s.NextDilemma(context.Background())
	assert.ErrorIs(t, err, ErrNoEra)
}

func TestSession_ChooseRequiresDilemma(t *testing.T) {
	s, _ := newTestSession(t)
	require.NoError(t, s.Start(context.Background(), "normandy_10th"))

	_, err := s.Choose(context.Background(), world.SideA)
	assert.ErrorIs(t, err, ErrNoDilemma)
}

func TestSession_NextDilemmaUsesCardNumber(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, s.Start(ctx, "normandy_10th"))

	d, err := s.NextDilemma(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, d.CardNumber)
	assert.Equal(t, "conquest_vs_trade", d.ID)
	require.NotNil(t, s.Current())
	assert.Equal(t, d.ID, s.Current().ID)

	_, err = s.Choose(ctx, world.SideB)
	require.NoError(t, err)
	assert.Nil(t, s.Current())

	d, err = s.NextDilemma(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, d.CardNumber)
	assert.Equal(t, "faith_vs_pragmatism", d.ID)
}

func TestSession_Choose(t *testing.T) {
	tests := []struct {
		name           string
		side           world.Side
		wantCommands   []bridge.CommandType
		wantAtmosphere world.Atmosphere
		wantLandmark   world.LandmarkType
	}{
		{
			name: "conqueror crosses the war threshold",
			side: world.SideA,
			wantCommands: []bridge.CommandType{
				bridge.CmdSetEra, bridge.CmdPlaceLandmark, bridge.CmdSetAtmosphere, bridge.CmdSyncWorldState,
			},
			wantAtmosphere: world.AtmosphereWarTorn,
			wantLandmark:   world.LandmarkFortress,
		},
		{
			name: "merchant spawns a settlement and keeps the mood",
			side: world.SideB,
			wantCommands: []bridge.CommandType{
				bridge.CmdSetEra, bridge.CmdSpawnSettlement, bridge.CmdSyncWorldState,
			},
			wantAtmosphere: world.DefaultAtmosphere,
			wantLandmark:   world.LandmarkSettlement,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMockStorage()
			s, b := newTestSession(t, WithStorage(store))
			ctx := context.Background()
			require.NoError(t, s.Start(ctx, "normandy_10th"))
			_, err := s.NextDilemma(ctx)
			require.NoError(t, err)

			snap, err := s.Choose(ctx, tt.side)
			require.NoError(t, err)

			assert.Equal(t, tt.wantCommands, queuedTypes(b))
			assert.Equal(t, tt.wantAtmosphere, snap.Atmosphere)
			require.Len(t, snap.Choices, 1)
			assert.Equal(t, tt.side, snap.Choices[0].Chosen)

			require.Len(t, snap.Landmarks, 1)
			assert.Equal(t, tt.wantLandmark, snap.Landmarks[0].Type)
			_, err = uuid.Parse(snap.Landmarks[0].ID)
			assert.NoError(t, err, "generated landmark id should be a uuid")
			assert.Equal(t, snap.Landmarks[0].ID, snap.Choices[0].Dilemma.Choice(tt.side).Landmarks[0].ID)

			queue := b.State().CommandQueue
			last := queue[len(queue)-1]
			require.NotNil(t, last.State)
			assert.Equal(t, snap, *last.State)

			saved, err := store.LoadSnapshot(ctx, s.ID())
			require.NoError(t, err)
			require.NotNil(t, saved)
			assert.Len(t, saved.Choices, 1)
		})
	}
}

func TestSession_ChooseKeepsPlayingWhenSaveFails(t *testing.T) {
	store := storage.NewMockStorage()
	s, _ := newTestSession(t, WithStorage(store))
	ctx := context.Background()
	require.NoError(t, s.Start(ctx, "viking_9th"))
	_, err := s.NextDilemma(ctx)
	require.NoError(t, err)

	store.SetSaveError(errors.New("disk full"))
	snap, err := s.Choose(ctx, world.SideA)
	require.NoError(t, err)
	assert.Len(t, snap.Choices, 1)

	saved, err := store.LoadSnapshot(ctx, s.ID())
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Empty(t, saved.Choices, "only the pre-failure save should exist")
}

func TestSession_Resume(t *testing.T) {
	store := storage.NewMockStorage()
	ctx := context.Background()

	first, _ := newTestSession(t, WithStorage(store))
	require.NoError(t, first.Start(ctx, "normandy_10th"))
	_, err := first.NextDilemma(ctx)
	require.NoError(t, err)
	want, err := first.Choose(ctx, world.SideA)
	require.NoError(t, err)

	second, b := newTestSession(t, WithStorage(store))
	require.NotEqual(t, first.ID(), second.ID())
	require.NoError(t, second.Resume(ctx, first.ID()))

	assert.Equal(t, first.ID(), second.ID())
	assert.Equal(t, want, second.World().Snapshot())
	assert.Equal(t, []bridge.CommandType{bridge.CmdSetEra, bridge.CmdSyncWorldState}, queuedTypes(b))

	d, err := second.NextDilemma(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, d.CardNumber)
}

func TestSession_ResumeErrors(t *testing.T) {
	ctx := context.Background()

	s, _ := newTestSession(t)
	assert.ErrorIs(t, s.Resume(ctx, uuid.New()), ErrNoStorage)

	s, _ = newTestSession(t, WithStorage(storage.NewMockStorage()))
	assert.ErrorIs(t, s.Resume(ctx, uuid.New()), ErrSessionNotFound)
}

func TestSession_Reset(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, s.Start(ctx, "normandy_10th"))
	_, err := s.NextDilemma(ctx)
	require.NoError(t, err)

	s.Reset(ctx)

	assert.Nil(t, s.Current())
	assert.Nil(t, s.World().Era())
	assert.Equal(t, world.DefaultTraits(), s.World().Traits())
	assert.Equal(t, 0, s.World().ChoiceCount())
}

func TestSession_ExportJSON(t *testing.T) {
	id := uuid.New()
	w := state.New()
	s, _ := newTestSession(t, WithID(id), WithWorld(w))
	require.Equal(t, id, s.ID())
	require.NoError(t, s.Start(context.Background(), "byzantine_6th"))

	data, err := s.ExportJSON()
	require.NoError(t, err)

	var got state.Snapshot
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "byzantine_6th", got.EraID())
	assert.Equal(t, w.Snapshot(), got)
	assert.Contains(t, string(data), "\n  \"")
}
