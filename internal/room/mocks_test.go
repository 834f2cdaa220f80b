package room

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/rocketscienceinc/hangman-backend/internal/entity"
	"github.com/rocketscienceinc/hangman-backend/internal/hangman"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPersister struct {
	mock.Mock
}

func (m *mockPersister) Record(ctx context.Context, event entity.Event, snapshot *entity.Snapshot) error {
	args := m.Called(ctx, event, snapshot)
	return args.Error(0)
}

type mockBroadcaster struct {
	mock.Mock
}

func (m *mockBroadcaster) Broadcast(ctx context.Context, event entity.Event, snapshot *entity.Snapshot) error {
	args := m.Called(ctx, event, snapshot)
	return args.Error(0)
}

type mockPlayers struct {
	mock.Mock
}

func (m *mockPlayers) GetPlayer(ctx context.Context, id string) (*entity.Player, error) {
	args := m.Called(ctx, id)
	player, _ := args.Get(0).(*entity.Player)
	return player, args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCoordinator(t *testing.T, budget int, opts Options) *Coordinator {
	t.Helper()

	engine, err := hangman.NewEngine(budget, 1)
	require.NoError(t, err)
	opts.Engine = engine

	info := entity.RoomInfo{ID: "R1", Name: "R1", CreatedAt: time.Now()}
	coordinator := NewCoordinator(discardLogger(), info, opts)
	coordinator.Start()
	t.Cleanup(coordinator.Close)

	return coordinator
}

func outcomeIs(outcome entity.Outcome) any {
	return mock.MatchedBy(func(event entity.Event) bool {
		return event.Outcome == outcome
	})
}
