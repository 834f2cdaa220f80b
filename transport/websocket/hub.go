package websocket

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/rocketscienceinc/hangman-backend/internal/entity"
)

// Hub - tracks which connections follow which room and relays room events to them.
type Hub struct {
	logger *slog.Logger

	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger.With("component", "ws-hub"),
		rooms:  make(map[string]map[*client]struct{}),
	}
}

func (that *Hub) subscribe(roomID string, c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	subscribers, ok := that.rooms[roomID]
	if !ok {
		subscribers = make(map[*client]struct{})
		that.rooms[roomID] = subscribers
	}

	subscribers[c] = struct{}{}
}

func (that *Hub) unsubscribe(roomID string, c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.rooms[roomID], c)
	if len(that.rooms[roomID]) == 0 {
		delete(that.rooms, roomID)
	}
}

func (that *Hub) unsubscribeAll(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for roomID, subscribers := range that.rooms {
		delete(subscribers, c)
		if len(subscribers) == 0 {
			delete(that.rooms, roomID)
		}
	}
}

// Broadcast - sends the event to every connection of an active member of the room.
// Slow connections drop the message instead of holding up the caller.
func (that *Hub) Broadcast(_ context.Context, event entity.Event, snapshot *entity.Snapshot) error {
	data, err := encode(actionEvent, ResponsePayload{Event: &event, Snapshot: snapshot})
	if err != nil {
		return err
	}

	active := snapshot.ActivePlayerIDs()

	that.mu.RLock()
	defer that.mu.RUnlock()

	for c := range that.rooms[event.RoomID] {
		if !slices.Contains(active, c.playerID) {
			continue
		}

		if !c.trySend(data) {
			that.logger.Warn("dropped event for slow connection", "roomID", event.RoomID, "playerID", c.playerID)
		}
	}

	return nil
}
