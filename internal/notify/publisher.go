package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/hangman-backend/internal/entity"
)

const channelPrefix = "room-events:"

// Message - what subscribers of a room channel receive.
type Message struct {
	Event    entity.Event     `json:"event"`
	Snapshot *entity.Snapshot `json:"snapshot"`
}

func Channel(roomID string) string {
	return channelPrefix + roomID
}

// Publisher - relays room outcomes on redis pub/sub so other processes can follow a room
// by subscribing to Channel(roomID).
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

func (that *Publisher) Broadcast(ctx context.Context, event entity.Event, snapshot *entity.Snapshot) error {
	payload, err := json.Marshal(Message{Event: event, Snapshot: snapshot})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err = that.client.Publish(ctx, Channel(event.RoomID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

type broadcaster interface {
	Broadcast(ctx context.Context, event entity.Event, snapshot *entity.Snapshot) error
}

// Fanout - hands every event to each broadcaster, one failing does not stop the rest.
type Fanout struct {
	logger  *slog.Logger
	targets []broadcaster
}

func NewFanout(logger *slog.Logger, targets ...broadcaster) *Fanout {
	return &Fanout{
		logger:  logger.With("component", "fanout"),
		targets: targets,
	}
}

func (that *Fanout) Broadcast(ctx context.Context, event entity.Event, snapshot *entity.Snapshot) error {
	var errs []error
	for _, target := range that.targets {
		if err := target.Broadcast(ctx, event, snapshot); err != nil {
			that.logger.Warn("broadcast target failed", "roomID", event.RoomID, "error", err)
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
