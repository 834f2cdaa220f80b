package room

import (
	"context"

	"github.com/rocketscienceinc/hangman-backend/internal/entity"
)

// Persister - mirrors committed transitions to durable storage. Called after the
// room has moved on; a failure never rolls the room back.
type Persister interface {
	Record(ctx context.Context, event entity.Event, snapshot *entity.Snapshot) error
}

// Broadcaster - fans an outcome out to the clients connected to the room.
type Broadcaster interface {
	Broadcast(ctx context.Context, event entity.Event, snapshot *entity.Snapshot) error
}

// PlayerProvider - resolves a player identity before it is let into a room.
type PlayerProvider interface {
	GetPlayer(ctx context.Context, id string) (*entity.Player, error)
}

type noopPersister struct{}

func (noopPersister) Record(context.Context, entity.Event, *entity.Snapshot) error { return nil }

type noopBroadcaster struct{}

func (noopBroadcaster) Broadcast(context.Context, entity.Event, *entity.Snapshot) error { return nil }
