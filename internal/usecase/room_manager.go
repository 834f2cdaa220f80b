package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/hangman-backend/internal/entity"
	"github.com/rocketscienceinc/hangman-backend/internal/room"
)

type roomRepo interface {
	DeleteByID(ctx context.Context, id string) error
}

type roundArchive interface {
	ListByRoom(ctx context.Context, roomID string) ([]*entity.RoundView, error)
}

// RoomManager - entry point of the request layer: looks rooms up in the registry and
// forwards each operation to the room's coordinator.
type RoomManager struct {
	logger   *slog.Logger
	registry *room.Registry
	roomRepo roomRepo
	archive  roundArchive
}

func NewRoomManager(logger *slog.Logger, registry *room.Registry, roomRepo roomRepo, archive roundArchive) *RoomManager {
	return &RoomManager{
		logger:   logger.With("component", "room-manager"),
		registry: registry,
		roomRepo: roomRepo,
		archive:  archive,
	}
}

func (that *RoomManager) CreateRoom(_ context.Context, name string) (entity.RoomInfo, error) {
	coordinator, err := that.registry.Create(name)
	if err != nil {
		return entity.RoomInfo{}, fmt.Errorf("failed to create room: %w", err)
	}

	return coordinator.Info(), nil
}

func (that *RoomManager) ListRooms(_ context.Context) []entity.RoomInfo {
	return that.registry.List()
}

func (that *RoomManager) GetRoom(ctx context.Context, roomID string) (*entity.Snapshot, error) {
	coordinator, err := that.registry.Get(roomID)
	if err != nil {
		return nil, err
	}

	return coordinator.GetSnapshot(ctx)
}

// ListRounds - finished rounds of a room, still available after the room is closed.
func (that *RoomManager) ListRounds(ctx context.Context, roomID string) ([]*entity.RoundView, error) {
	rounds, err := that.archive.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}

	return rounds, nil
}

// CloseRoom - stops the room and drops its mirrored snapshot; archived rounds stay.
func (that *RoomManager) CloseRoom(ctx context.Context, roomID string) error {
	log := that.logger.With("method", "CloseRoom", "roomID", roomID)

	if err := that.registry.Remove(roomID); err != nil {
		return err
	}

	if err := that.roomRepo.DeleteByID(ctx, roomID); err != nil {
		log.Error("failed to delete room snapshot", "error", err)
	}

	return nil
}

func (that *RoomManager) JoinRoom(ctx context.Context, roomID, playerID string, asHost bool) (*room.Result, error) {
	coordinator, err := that.registry.Get(roomID)
	if err != nil {
		return nil, err
	}

	return coordinator.JoinRoom(ctx, playerID, asHost)
}

func (that *RoomManager) LeaveRoom(ctx context.Context, roomID, playerID string) (*room.Result, error) {
	coordinator, err := that.registry.Get(roomID)
	if err != nil {
		return nil, err
	}

	return coordinator.LeaveRoom(ctx, playerID)
}

func (that *RoomManager) StartRound(ctx context.Context, roomID, playerID, word string) (*room.Result, error) {
	coordinator, err := that.registry.Get(roomID)
	if err != nil {
		return nil, err
	}

	return coordinator.StartRound(ctx, playerID, word)
}

func (that *RoomManager) GuessLetter(ctx context.Context, roomID, playerID, letter string) (*room.Result, error) {
	coordinator, err := that.registry.Get(roomID)
	if err != nil {
		return nil, err
	}

	return coordinator.GuessLetter(ctx, playerID, letter)
}

func (that *RoomManager) GuessWord(ctx context.Context, roomID, playerID, word string) (*room.Result, error) {
	coordinator, err := that.registry.Get(roomID)
	if err != nil {
		return nil, err
	}

	return coordinator.GuessWord(ctx, playerID, word)
}

func (that *RoomManager) BanPlayer(ctx context.Context, roomID, hostID, targetID string) (*room.Result, error) {
	coordinator, err := that.registry.Get(roomID)
	if err != nil {
		return nil, err
	}

	return coordinator.BanPlayer(ctx, hostID, targetID)
}

func (that *RoomManager) PromoteHost(ctx context.Context, roomID, hostID, targetID string) (*room.Result, error) {
	coordinator, err := that.registry.Get(roomID)
	if err != nil {
		return nil, err
	}

	return coordinator.PromoteHost(ctx, hostID, targetID)
}
