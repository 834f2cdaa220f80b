package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/hangman-backend/internal/apperror"
	"github.com/rocketscienceinc/hangman-backend/internal/entity"
)

const roomKeyPrefix = "room:"

// saveIfNewer writes the snapshot only when its version is above the stored one,
// so a slow writer can never roll the mirror back.
var saveIfNewer = redis.NewScript(`
local current = tonumber(redis.call('HGET', KEYS[1], 'version') or '0')
if tonumber(ARGV[1]) <= current then
	return 0
end
redis.call('HSET', KEYS[1], 'version', ARGV[1], 'snapshot', ARGV[2])
return 1
`)

type RoomRepository interface {
	// Save - returns false when a newer snapshot is already stored.
	Save(ctx context.Context, snapshot *entity.Snapshot) (bool, error)
	GetByID(ctx context.Context, id string) (*entity.Snapshot, error)
	DeleteByID(ctx context.Context, id string) error
}

type dbRoom struct {
	client *redis.Client
}

func NewRoomRepository(client *redis.Client) RoomRepository {
	return &dbRoom{
		client: client,
	}
}

func (that *dbRoom) Save(ctx context.Context, snapshot *entity.Snapshot) (bool, error) {
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return false, fmt.Errorf("could not marshal room: %w", err)
	}

	saved, err := saveIfNewer.Run(ctx, that.client, []string{roomKeyPrefix + snapshot.Room.ID}, snapshot.Version, snapshotJSON).Int()
	if err != nil {
		return false, fmt.Errorf("failed to set room: %w", err)
	}

	return saved == 1, nil
}

func (that *dbRoom) GetByID(ctx context.Context, id string) (*entity.Snapshot, error) {
	response, err := that.client.HGet(ctx, roomKeyPrefix+id, "snapshot").Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: room %s", apperror.ErrNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get room by ID: %w", err)
	}

	var snapshot entity.Snapshot
	if err = json.Unmarshal([]byte(response), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	return &snapshot, nil
}

func (that *dbRoom) DeleteByID(ctx context.Context, id string) error {
	if err := that.client.Del(ctx, roomKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete room by ID: %w", err)
	}

	return nil
}
