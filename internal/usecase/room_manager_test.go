package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/rocketscienceinc/hangman-backend/internal/apperror"
	"github.com/rocketscienceinc/hangman-backend/internal/entity"
	"github.com/rocketscienceinc/hangman-backend/internal/hangman"
	"github.com/rocketscienceinc/hangman-backend/internal/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errRedisDown = errors.New("redis down")

type mockRoomRepo struct {
	mock.Mock
}

func (m *mockRoomRepo) DeleteByID(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockArchive struct {
	mock.Mock
}

func (m *mockArchive) ListByRoom(ctx context.Context, roomID string) ([]*entity.RoundView, error) {
	args := m.Called(ctx, roomID)
	rounds, _ := args.Get(0).([]*entity.RoundView)
	return rounds, args.Error(1)
}

func newTestManager(t *testing.T, rooms *mockRoomRepo, archive *mockArchive) *RoomManager {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	engine, err := hangman.NewEngine(6, 1)
	require.NoError(t, err)

	registry, err := room.NewRegistry(logger, room.Options{Engine: engine})
	require.NoError(t, err)
	t.Cleanup(registry.Close)

	return NewRoomManager(logger, registry, rooms, archive)
}

func TestRoomManager_Gameplay(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(t, &mockRoomRepo{}, &mockArchive{})

	// Given: a room with a host and a guesser
	info, err := manager.CreateRoom(ctx, "lobby")
	require.NoError(t, err)

	_, err = manager.JoinRoom(ctx, info.ID, "H", true)
	require.NoError(t, err)
	_, err = manager.JoinRoom(ctx, info.ID, "P", false)
	require.NoError(t, err)

	// When: a round is played through the manager
	_, err = manager.StartRound(ctx, info.ID, "H", "cat")
	require.NoError(t, err)
	_, err = manager.GuessLetter(ctx, info.ID, "P", "c")
	require.NoError(t, err)
	result, err := manager.GuessWord(ctx, info.ID, "P", "cat")
	require.NoError(t, err)

	// Then: the room reports the win
	assert.Equal(t, entity.OutcomeRoundWon, result.Event.Outcome)

	snapshot, err := manager.GetRoom(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusWon, snapshot.Status)

	// And: moderation goes through as well
	_, err = manager.PromoteHost(ctx, info.ID, "H", "P")
	require.NoError(t, err)
	_, err = manager.BanPlayer(ctx, info.ID, "P", "H")
	require.NoError(t, err)
	_, err = manager.LeaveRoom(ctx, info.ID, "P")
	require.NoError(t, err)

	assert.Len(t, manager.ListRooms(ctx), 1)
}

func TestRoomManager_UnknownRoom(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(t, &mockRoomRepo{}, &mockArchive{})

	_, err := manager.GetRoom(ctx, "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = manager.JoinRoom(ctx, "missing", "P", false)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = manager.GuessLetter(ctx, "missing", "P", "a")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	err = manager.CloseRoom(ctx, "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestRoomManager_CloseRoom(t *testing.T) {
	ctx := context.Background()

	t.Run("Closing drops the room and its mirror", func(t *testing.T) {
		rooms := &mockRoomRepo{}
		manager := newTestManager(t, rooms, &mockArchive{})

		info, err := manager.CreateRoom(ctx, "lobby")
		require.NoError(t, err)
		rooms.On("DeleteByID", ctx, info.ID).Return(nil).Once()

		require.NoError(t, manager.CloseRoom(ctx, info.ID))

		_, err = manager.GetRoom(ctx, info.ID)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
		rooms.AssertExpectations(t)
	})

	t.Run("Mirror cleanup failure does not fail the close", func(t *testing.T) {
		rooms := &mockRoomRepo{}
		manager := newTestManager(t, rooms, &mockArchive{})

		info, err := manager.CreateRoom(ctx, "lobby")
		require.NoError(t, err)
		rooms.On("DeleteByID", ctx, info.ID).Return(errRedisDown)

		assert.NoError(t, manager.CloseRoom(ctx, info.ID))
	})
}

func TestRoomManager_ListRounds(t *testing.T) {
	ctx := context.Background()

	t.Run("Archived rounds are returned", func(t *testing.T) {
		archive := &mockArchive{}
		archive.On("ListByRoom", ctx, "R1").Return([]*entity.RoundView{{ID: "round-1"}}, nil)

		rounds, err := newTestManager(t, &mockRoomRepo{}, archive).ListRounds(ctx, "R1")

		require.NoError(t, err)
		require.Len(t, rounds, 1)
		assert.Equal(t, "round-1", rounds[0].ID)
	})

	t.Run("Archive failure is returned", func(t *testing.T) {
		archive := &mockArchive{}
		archive.On("ListByRoom", ctx, "R1").Return(nil, errRedisDown)

		_, err := newTestManager(t, &mockRoomRepo{}, archive).ListRounds(ctx, "R1")

		assert.ErrorIs(t, err, errRedisDown)
	})
}
