package room

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rocketscienceinc/hangman-backend/internal/apperror"
	"github.com/rocketscienceinc/hangman-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errStorageDown = errors.New("storage down")

func TestCoordinator_WolfScenario(t *testing.T) {
	ctx := context.Background()
	coordinator := newTestCoordinator(t, 6, Options{})

	// Given: host H and player P in room R1, H started WOLF
	_, err := coordinator.JoinRoom(ctx, "H", true)
	require.NoError(t, err)
	_, err = coordinator.JoinRoom(ctx, "P", false)
	require.NoError(t, err)

	result, err := coordinator.StartRound(ctx, "H", "WOLF")
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeRoundStarted, result.Event.Outcome)
	assert.Equal(t, entity.StatusInProgress, result.Snapshot.Status)
	assert.Empty(t, result.Snapshot.Round.Word, "word is hidden while in progress")

	// When: "o" is guessed
	result, err = coordinator.GuessLetter(ctx, "P", "o")
	require.NoError(t, err)

	// Then: position 1 is revealed
	assert.Equal(t, entity.OutcomeLetterAccepted, result.Event.Outcome)
	assert.Equal(t, []int{1}, result.Snapshot.Round.Revealed)

	// When: "z" is guessed
	result, err = coordinator.GuessLetter(ctx, "P", "z")
	require.NoError(t, err)

	// Then: one life is lost
	assert.Equal(t, entity.OutcomeLetterRejectedMiss, result.Event.Outcome)
	assert.Equal(t, 5, result.Snapshot.Round.Health)

	// When: the word is guessed
	result, err = coordinator.GuessWord(ctx, "P", "wolf")
	require.NoError(t, err)

	// Then: the round is won
	assert.Equal(t, entity.OutcomeRoundWon, result.Event.Outcome)
	assert.Equal(t, entity.StatusWon, result.Snapshot.Status)
	assert.Equal(t, []int{0, 1, 2, 3}, result.Snapshot.Round.Revealed)
	assert.Equal(t, "wolf", result.Snapshot.Round.Word)
	assert.Equal(t, "P", result.Event.PlayerID)
}

func TestCoordinator_BudgetOfOne(t *testing.T) {
	ctx := context.Background()
	coordinator := newTestCoordinator(t, 1, Options{})

	_, err := coordinator.JoinRoom(ctx, "H", true)
	require.NoError(t, err)
	_, err = coordinator.StartRound(ctx, "H", "wolf")
	require.NoError(t, err)

	// When: the first wrong letter is guessed
	result, err := coordinator.GuessLetter(ctx, "H", "z")
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeRoundLost, result.Event.Outcome)

	// Then: any other guess is a conflict and the state does not move
	_, err = coordinator.GuessLetter(ctx, "H", "w")
	require.ErrorIs(t, err, apperror.ErrConflict)

	_, err = coordinator.GuessWord(ctx, "H", "wolf")
	require.ErrorIs(t, err, apperror.ErrConflict)

	snapshot, err := coordinator.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, result.Snapshot.Version, snapshot.Version)
	assert.Equal(t, entity.StatusLost, snapshot.Status)
	assert.Equal(t, 0, snapshot.Round.Health)
}

func TestCoordinator_ConcurrentStartRound(t *testing.T) {
	ctx := context.Background()
	coordinator := newTestCoordinator(t, 6, Options{})

	// Given: ten hosts in the room, all promoted by the first one
	const hosts = 10
	_, err := coordinator.JoinRoom(ctx, "H0", true)
	require.NoError(t, err)
	for i := 1; i < hosts; i++ {
		_, err = coordinator.JoinRoom(ctx, fmt.Sprintf("H%d", i), false)
		require.NoError(t, err)
		_, err = coordinator.PromoteHost(ctx, "H0", fmt.Sprintf("H%d", i))
		require.NoError(t, err)
	}

	// When: all of them start a round at once
	var wg sync.WaitGroup
	errs := make(chan error, hosts)
	for i := 0; i < hosts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := coordinator.StartRound(ctx, fmt.Sprintf("H%d", i), "wolf")
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	// Then: exactly one succeeds, the rest conflict
	var succeeded, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, apperror.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, hosts-1, conflicts)
}

func TestCoordinator_ConcurrentWrongGuesses(t *testing.T) {
	ctx := context.Background()
	const budget = 5
	coordinator := newTestCoordinator(t, budget, Options{})

	_, err := coordinator.JoinRoom(ctx, "H", true)
	require.NoError(t, err)
	_, err = coordinator.StartRound(ctx, "H", "wolf")
	require.NoError(t, err)

	// When: twenty distinct wrong letters race each other
	letters := "abcdeghijkmnpqrstuvx"
	var wg sync.WaitGroup
	outcomes := make(chan entity.Outcome, len(letters))
	conflicts := make(chan error, len(letters))
	for _, letter := range letters {
		wg.Add(1)
		go func(letter string) {
			defer wg.Done()
			result, err := coordinator.GuessLetter(ctx, "H", letter)
			if err != nil {
				conflicts <- err
				return
			}
			outcomes <- result.Event.Outcome
		}(string(letter))
	}
	wg.Wait()
	close(outcomes)
	close(conflicts)

	// Then: exactly budget guesses were applied and the last one lost the round
	counts := map[entity.Outcome]int{}
	for outcome := range outcomes {
		counts[outcome]++
	}
	assert.Equal(t, budget-1, counts[entity.OutcomeLetterRejectedMiss])
	assert.Equal(t, 1, counts[entity.OutcomeRoundLost])

	for err := range conflicts {
		assert.ErrorIs(t, err, apperror.ErrConflict)
	}

	snapshot, err := coordinator.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, snapshot.Round.Health)
	assert.Equal(t, entity.StatusLost, snapshot.Status)
	assert.Len(t, snapshot.Round.Attempts, budget)
}

func TestCoordinator_Membership(t *testing.T) {
	ctx := context.Background()

	t.Run("Leave and rejoin keeps host and one record", func(t *testing.T) {
		coordinator := newTestCoordinator(t, 6, Options{})

		_, err := coordinator.JoinRoom(ctx, "P", true)
		require.NoError(t, err)

		result, err := coordinator.LeaveRoom(ctx, "P")
		require.NoError(t, err)
		assert.Equal(t, entity.OutcomePlayerLeft, result.Event.Outcome)

		result, err = coordinator.JoinRoom(ctx, "P", false)
		require.NoError(t, err)

		require.Len(t, result.Snapshot.Members, 1)
		member, ok := result.Snapshot.Member("P")
		require.True(t, ok)
		assert.True(t, member.IsHost)
		assert.True(t, member.IsInRoom)
	})

	t.Run("Repeat leave and repeat join are no-ops", func(t *testing.T) {
		coordinator := newTestCoordinator(t, 6, Options{})

		_, err := coordinator.JoinRoom(ctx, "P", false)
		require.NoError(t, err)

		result, err := coordinator.JoinRoom(ctx, "P", false)
		require.NoError(t, err)
		assert.Equal(t, entity.OutcomeNoChange, result.Event.Outcome)

		_, err = coordinator.LeaveRoom(ctx, "P")
		require.NoError(t, err)

		result, err = coordinator.LeaveRoom(ctx, "P")
		require.NoError(t, err)
		assert.Equal(t, entity.OutcomeNoChange, result.Event.Outcome)
	})

	t.Run("Leaving a room never joined is not in room", func(t *testing.T) {
		coordinator := newTestCoordinator(t, 6, Options{})

		_, err := coordinator.LeaveRoom(ctx, "ghost")

		assert.ErrorIs(t, err, apperror.ErrNotInRoom)
	})

	t.Run("Outsiders and leavers cannot guess", func(t *testing.T) {
		coordinator := newTestCoordinator(t, 6, Options{})

		_, err := coordinator.JoinRoom(ctx, "H", true)
		require.NoError(t, err)
		_, err = coordinator.StartRound(ctx, "H", "wolf")
		require.NoError(t, err)

		_, err = coordinator.GuessLetter(ctx, "ghost", "w")
		assert.ErrorIs(t, err, apperror.ErrNotInRoom)

		_, err = coordinator.LeaveRoom(ctx, "H")
		require.NoError(t, err)

		_, err = coordinator.GuessWord(ctx, "H", "wolf")
		assert.ErrorIs(t, err, apperror.ErrNotInRoom)
	})

	t.Run("Only hosts start rounds", func(t *testing.T) {
		coordinator := newTestCoordinator(t, 6, Options{})

		_, err := coordinator.JoinRoom(ctx, "P", false)
		require.NoError(t, err)

		_, err = coordinator.StartRound(ctx, "P", "wolf")

		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})
}

func TestCoordinator_Moderation(t *testing.T) {
	ctx := context.Background()

	t.Run("Host bans a player for good", func(t *testing.T) {
		coordinator := newTestCoordinator(t, 6, Options{})

		_, err := coordinator.JoinRoom(ctx, "H", true)
		require.NoError(t, err)
		_, err = coordinator.JoinRoom(ctx, "P", false)
		require.NoError(t, err)

		result, err := coordinator.BanPlayer(ctx, "H", "P")
		require.NoError(t, err)
		assert.Equal(t, entity.OutcomePlayerBanned, result.Event.Outcome)

		member, ok := result.Snapshot.Member("P")
		require.True(t, ok)
		assert.True(t, member.IsBanned)
		assert.False(t, member.IsInRoom)

		_, err = coordinator.JoinRoom(ctx, "P", false)
		assert.ErrorIs(t, err, apperror.ErrForbidden)

		_, err = coordinator.GuessLetter(ctx, "P", "a")
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("Non-host cannot ban or promote", func(t *testing.T) {
		coordinator := newTestCoordinator(t, 6, Options{})

		_, err := coordinator.JoinRoom(ctx, "H", true)
		require.NoError(t, err)
		_, err = coordinator.JoinRoom(ctx, "P", false)
		require.NoError(t, err)

		_, err = coordinator.BanPlayer(ctx, "P", "H")
		assert.ErrorIs(t, err, apperror.ErrForbidden)

		_, err = coordinator.PromoteHost(ctx, "P", "P")
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("Host promotes another player who can then start rounds", func(t *testing.T) {
		coordinator := newTestCoordinator(t, 6, Options{})

		_, err := coordinator.JoinRoom(ctx, "H", true)
		require.NoError(t, err)
		_, err = coordinator.JoinRoom(ctx, "P", false)
		require.NoError(t, err)

		result, err := coordinator.PromoteHost(ctx, "H", "P")
		require.NoError(t, err)
		assert.Equal(t, entity.OutcomeHostPromoted, result.Event.Outcome)

		result, err = coordinator.PromoteHost(ctx, "H", "P")
		require.NoError(t, err)
		assert.Equal(t, entity.OutcomeNoChange, result.Event.Outcome)

		_, err = coordinator.StartRound(ctx, "P", "wolf")
		require.NoError(t, err)
	})

	t.Run("Second player cannot claim host and take over", func(t *testing.T) {
		coordinator := newTestCoordinator(t, 6, Options{})

		// Given: H hosts the room
		_, err := coordinator.JoinRoom(ctx, "H", true)
		require.NoError(t, err)

		// When: X joins asking for host
		_, err = coordinator.JoinRoom(ctx, "X", true)

		// Then: the claim is refused and X cannot ban the host
		require.ErrorIs(t, err, apperror.ErrForbidden)

		_, err = coordinator.JoinRoom(ctx, "X", false)
		require.NoError(t, err)

		_, err = coordinator.BanPlayer(ctx, "X", "H")
		require.ErrorIs(t, err, apperror.ErrForbidden)

		snapshot, err := coordinator.GetSnapshot(ctx)
		require.NoError(t, err)
		host, ok := snapshot.Member("H")
		require.True(t, ok)
		assert.True(t, host.IsActiveHost())
	})

	t.Run("Host cannot ban themselves", func(t *testing.T) {
		coordinator := newTestCoordinator(t, 6, Options{})

		_, err := coordinator.JoinRoom(ctx, "H", true)
		require.NoError(t, err)

		_, err = coordinator.BanPlayer(ctx, "H", "H")
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	})
}

func TestCoordinator_Collaborators(t *testing.T) {
	ctx := context.Background()

	t.Run("Committed steps are broadcast and persisted", func(t *testing.T) {
		// Given: collaborators accepting every event
		persister := &mockPersister{}
		broadcaster := &mockBroadcaster{}
		persister.On("Record", mock.Anything, outcomeIs(entity.OutcomePlayerJoined), mock.Anything).Return(nil).Once()
		broadcaster.On("Broadcast", mock.Anything, outcomeIs(entity.OutcomePlayerJoined), mock.Anything).Return(nil).Once()

		coordinator := newTestCoordinator(t, 6, Options{Persister: persister, Broadcaster: broadcaster})

		// When: a player joins, then joins again
		_, err := coordinator.JoinRoom(ctx, "P", false)
		require.NoError(t, err)
		result, err := coordinator.JoinRoom(ctx, "P", false)
		require.NoError(t, err)

		// Then: only the first, state changing join reached the collaborators
		assert.Equal(t, entity.OutcomeNoChange, result.Event.Outcome)
		persister.AssertExpectations(t)
		broadcaster.AssertExpectations(t)
	})

	t.Run("Persistence failure is a warning and keeps the state", func(t *testing.T) {
		persister := &mockPersister{}
		persister.On("Record", mock.Anything, mock.Anything, mock.Anything).Return(errStorageDown)

		coordinator := newTestCoordinator(t, 6, Options{Persister: persister})

		// When: a join cannot be persisted
		result, err := coordinator.JoinRoom(ctx, "P", true)

		// Then: the caller gets the snapshot and a warning
		require.ErrorIs(t, err, apperror.ErrPersistenceWarning)
		require.ErrorIs(t, err, errStorageDown)
		require.NotNil(t, result)
		_, ok := result.Snapshot.Member("P")
		assert.True(t, ok)

		// And: the room kept the membership
		snapshot, err := coordinator.GetSnapshot(ctx)
		require.NoError(t, err)
		assert.Len(t, snapshot.Members, 1)
	})

	t.Run("Broadcast failure is not reported to the caller", func(t *testing.T) {
		broadcaster := &mockBroadcaster{}
		broadcaster.On("Broadcast", mock.Anything, mock.Anything, mock.Anything).Return(errStorageDown)

		coordinator := newTestCoordinator(t, 6, Options{Broadcaster: broadcaster})

		_, err := coordinator.JoinRoom(ctx, "P", true)

		require.NoError(t, err)
		broadcaster.AssertNumberOfCalls(t, "Broadcast", 1)
	})

	t.Run("Unknown players are not let in", func(t *testing.T) {
		players := &mockPlayers{}
		players.On("GetPlayer", mock.Anything, "ghost").Return(nil, apperror.ErrNotFound)
		players.On("GetPlayer", mock.Anything, "P").Return(&entity.Player{ID: "P"}, nil)

		coordinator := newTestCoordinator(t, 6, Options{Players: players})

		_, err := coordinator.JoinRoom(ctx, "ghost", false)
		require.ErrorIs(t, err, apperror.ErrNotFound)

		result, err := coordinator.JoinRoom(ctx, "P", false)
		require.NoError(t, err)
		assert.Len(t, result.Snapshot.Members, 1)
	})
}

func TestCoordinator_Lifecycle(t *testing.T) {
	t.Run("Closed room rejects operations", func(t *testing.T) {
		coordinator := newTestCoordinator(t, 6, Options{})
		coordinator.Close()

		_, err := coordinator.JoinRoom(context.Background(), "P", false)

		assert.ErrorIs(t, err, apperror.ErrRoomClosed)
	})

	t.Run("Cancelled context never queues", func(t *testing.T) {
		engine := newTestCoordinator(t, 6, Options{}).engine

		// Given: a room whose run loop is not started and whose inbox is full
		coordinator := NewCoordinator(discardLogger(), entity.RoomInfo{ID: "R2"}, Options{Engine: engine, InboxSize: 1})
		coordinator.inbox <- command{}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// When: an operation is submitted with a cancelled context
		_, err := coordinator.JoinRoom(ctx, "P", false)

		// Then: it fails with the context error
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("Versions only move on change", func(t *testing.T) {
		ctx := context.Background()
		coordinator := newTestCoordinator(t, 6, Options{})

		first, err := coordinator.JoinRoom(ctx, "H", true)
		require.NoError(t, err)
		second, err := coordinator.JoinRoom(ctx, "H", true)
		require.NoError(t, err)
		third, err := coordinator.StartRound(ctx, "H", "wolf")
		require.NoError(t, err)

		assert.Equal(t, uint64(1), first.Snapshot.Version)
		assert.Equal(t, uint64(1), second.Snapshot.Version)
		assert.Equal(t, uint64(2), third.Snapshot.Version)
	})
}
