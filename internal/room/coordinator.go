package room

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/hangman-backend/internal/apperror"
	"github.com/rocketscienceinc/hangman-backend/internal/entity"
	"github.com/rocketscienceinc/hangman-backend/internal/hangman"
	"github.com/rocketscienceinc/hangman-backend/internal/membership"
	"github.com/rocketscienceinc/hangman-backend/internal/pkg"
)

const defaultInboxSize = 64

// Result - what a room operation hands back to the request layer.
type Result struct {
	Snapshot *entity.Snapshot
	Event    entity.Event
}

type command struct {
	method   string
	playerID string
	apply    func() (hangman.Result, error)
	reply    chan reply
}

type reply struct {
	result *Result
	err    error
}

// Coordinator - single owner of one room's roster and round. Every operation is
// queued on inbox and applied by the run loop one at a time, so read-modify-write
// sequences on health and status never interleave.
type Coordinator struct {
	logger *slog.Logger
	info   entity.RoomInfo

	engine  *hangman.Engine
	members *membership.Manager
	round   *hangman.Round
	version uint64

	persister   Persister
	broadcaster Broadcaster
	players     PlayerProvider

	inbox     chan command
	done      chan struct{}
	stopped   chan struct{}
	startOnce sync.Once
	closeOnce sync.Once
}

func NewCoordinator(logger *slog.Logger, info entity.RoomInfo, opts Options) *Coordinator {
	opts = opts.withDefaults()

	return &Coordinator{
		logger: logger.With("component", "room", "roomID", info.ID),
		info:   info,

		engine:  opts.Engine,
		members: membership.NewManager(info.ID),

		persister:   opts.Persister,
		broadcaster: opts.Broadcaster,
		players:     opts.Players,

		inbox:   make(chan command, opts.InboxSize),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

func (that *Coordinator) Info() entity.RoomInfo {
	return that.info
}

// Start - launches the run loop. Calling it more than once has no effect.
func (that *Coordinator) Start() {
	that.startOnce.Do(func() {
		go that.run()
	})
}

// Close - stops the run loop. Operations still queued fail with ErrRoomClosed.
func (that *Coordinator) Close() {
	that.closeOnce.Do(func() {
		close(that.done)
	})
}

func (that *Coordinator) run() {
	defer close(that.stopped)

	for {
		select {
		case cmd := <-that.inbox:
			cmd.reply <- that.execute(cmd)
		case <-that.done:
			that.logger.Info("room closed")
			return
		}
	}
}

func (that *Coordinator) execute(cmd command) reply {
	result, err := cmd.apply()
	if err != nil {
		return reply{err: err}
	}

	if result.Outcome != entity.OutcomeNoChange {
		that.version++
	}

	event := entity.Event{
		RoomID:   that.info.ID,
		PlayerID: cmd.playerID,
		Outcome:  result.Outcome,
		Version:  that.version,
		NearMiss: result.NearMiss,
		At:       time.Now(),
	}

	that.logger.Debug("operation applied",
		"method", cmd.method, "playerID", cmd.playerID, "outcome", event.Outcome, "version", event.Version)

	return reply{result: &Result{Snapshot: that.snapshot(), Event: event}}
}

func (that *Coordinator) snapshot() *entity.Snapshot {
	snapshot := &entity.Snapshot{
		Room:    that.info,
		Version: that.version,
		Status:  entity.StatusWaitingForWord,
		Members: that.members.Members(),
	}

	if that.round != nil {
		snapshot.Round = that.round.View()
		snapshot.Status = snapshot.Round.Status
	}

	return snapshot
}

// submit - queues an operation, waits for its turn and result, then mirrors and
// broadcasts the committed step outside of the room's serialized section.
func (that *Coordinator) submit(ctx context.Context, method, playerID string, apply func() (hangman.Result, error)) (*Result, error) {
	cmd := command{
		method:   method,
		playerID: playerID,
		apply:    apply,
		reply:    make(chan reply, 1),
	}

	select {
	case <-that.done:
		return nil, apperror.ErrRoomClosed
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", method, ctx.Err())
	case that.inbox <- cmd:
	}

	// once queued the operation is not cancellable, it is short and synchronous
	var resp reply
	select {
	case resp = <-cmd.reply:
	case <-that.stopped:
		select {
		case resp = <-cmd.reply:
		default:
			return nil, apperror.ErrRoomClosed
		}
	}

	if resp.err != nil {
		return nil, fmt.Errorf("%s: %w", method, resp.err)
	}

	if resp.result.Event.Outcome == entity.OutcomeNoChange {
		return resp.result, nil
	}

	return resp.result, that.publish(ctx, resp.result)
}

func (that *Coordinator) publish(ctx context.Context, result *Result) error {
	log := that.logger.With("method", "publish", "outcome", result.Event.Outcome)

	if err := that.broadcaster.Broadcast(ctx, result.Event, result.Snapshot); err != nil {
		log.Error("failed to broadcast event", "error", err)
	}

	if err := that.persister.Record(ctx, result.Event, result.Snapshot); err != nil {
		log.Error("failed to persist event", "error", err)

		return fmt.Errorf("%w: %w", apperror.ErrPersistenceWarning, err)
	}

	return nil
}

// JoinRoom - lets a player in; the first join may claim host.
func (that *Coordinator) JoinRoom(ctx context.Context, playerID string, asHost bool) (*Result, error) {
	if that.players != nil {
		if _, err := that.players.GetPlayer(ctx, playerID); err != nil {
			return nil, fmt.Errorf("failed to resolve player %s: %w", playerID, err)
		}
	}

	return that.submit(ctx, "JoinRoom", playerID, func() (hangman.Result, error) {
		if member, err := that.members.Get(playerID); err == nil && member.IsActive() {
			return hangman.Result{Outcome: entity.OutcomeNoChange}, nil
		}

		if _, err := that.members.Join(playerID, asHost); err != nil {
			return hangman.Result{}, err
		}

		return hangman.Result{Outcome: entity.OutcomePlayerJoined}, nil
	})
}

// LeaveRoom - takes a player out of the room; leaving twice is a no-op.
func (that *Coordinator) LeaveRoom(ctx context.Context, playerID string) (*Result, error) {
	return that.submit(ctx, "LeaveRoom", playerID, func() (hangman.Result, error) {
		member, err := that.members.Get(playerID)
		if err != nil {
			return hangman.Result{}, err
		}

		if !member.IsInRoom {
			return hangman.Result{Outcome: entity.OutcomeNoChange}, nil
		}

		that.members.Leave(member)

		return hangman.Result{Outcome: entity.OutcomePlayerLeft}, nil
	})
}

// StartRound - the host hides a new word.
func (that *Coordinator) StartRound(ctx context.Context, playerID, word string) (*Result, error) {
	return that.submit(ctx, "StartRound", playerID, func() (hangman.Result, error) {
		member, err := that.members.RequireActiveMember(playerID)
		if err != nil {
			return hangman.Result{}, err
		}

		round, err := that.engine.StartRound(that.round, member, that.info.ID, pkg.GenerateID(), word)
		if err != nil {
			return hangman.Result{}, err
		}

		that.round = round

		return hangman.Result{Outcome: entity.OutcomeRoundStarted}, nil
	})
}

func (that *Coordinator) GuessLetter(ctx context.Context, playerID, letter string) (*Result, error) {
	return that.submit(ctx, "GuessLetter", playerID, func() (hangman.Result, error) {
		member, err := that.members.RequireActiveMember(playerID)
		if err != nil {
			return hangman.Result{}, err
		}

		return that.engine.SubmitLetterGuess(that.round, member, letter)
	})
}

func (that *Coordinator) GuessWord(ctx context.Context, playerID, word string) (*Result, error) {
	return that.submit(ctx, "GuessWord", playerID, func() (hangman.Result, error) {
		member, err := that.members.RequireActiveMember(playerID)
		if err != nil {
			return hangman.Result{}, err
		}

		return that.engine.SubmitWordGuess(that.round, member, word)
	})
}

// BanPlayer - host only. The target keeps its record but can never come back.
func (that *Coordinator) BanPlayer(ctx context.Context, hostID, targetID string) (*Result, error) {
	return that.submit(ctx, "BanPlayer", hostID, func() (hangman.Result, error) {
		if _, err := that.requireHost(hostID); err != nil {
			return hangman.Result{}, err
		}

		if hostID == targetID {
			return hangman.Result{}, fmt.Errorf("%w: host cannot ban themselves", apperror.ErrInvalidInput)
		}

		target, err := that.members.Get(targetID)
		if err != nil {
			return hangman.Result{}, err
		}

		if target.IsBanned {
			return hangman.Result{Outcome: entity.OutcomeNoChange}, nil
		}

		that.members.Ban(target)

		return hangman.Result{Outcome: entity.OutcomePlayerBanned}, nil
	})
}

// PromoteHost - host only, the target must be in the room.
func (that *Coordinator) PromoteHost(ctx context.Context, hostID, targetID string) (*Result, error) {
	return that.submit(ctx, "PromoteHost", hostID, func() (hangman.Result, error) {
		if _, err := that.requireHost(hostID); err != nil {
			return hangman.Result{}, err
		}

		target, err := that.members.RequireActiveMember(targetID)
		if err != nil {
			return hangman.Result{}, err
		}

		if target.IsHost {
			return hangman.Result{Outcome: entity.OutcomeNoChange}, nil
		}

		that.members.PromoteHost(target)

		return hangman.Result{Outcome: entity.OutcomeHostPromoted}, nil
	})
}

// GetSnapshot - current state of the room, read in turn with the writers.
func (that *Coordinator) GetSnapshot(ctx context.Context) (*entity.Snapshot, error) {
	result, err := that.submit(ctx, "GetSnapshot", "", func() (hangman.Result, error) {
		return hangman.Result{Outcome: entity.OutcomeNoChange}, nil
	})
	if err != nil {
		return nil, err
	}

	return result.Snapshot, nil
}

func (that *Coordinator) requireHost(playerID string) (*entity.Membership, error) {
	member, err := that.members.RequireActiveMember(playerID)
	if err != nil {
		return nil, err
	}

	if !member.IsHost {
		return nil, fmt.Errorf("%w: player %s is not a host of room %s", apperror.ErrForbidden, playerID, that.info.ID)
	}

	return member, nil
}
