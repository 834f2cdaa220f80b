package room

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rocketscienceinc/hangman-backend/internal/apperror"
	"github.com/rocketscienceinc/hangman-backend/internal/entity"
	"github.com/rocketscienceinc/hangman-backend/internal/hangman"
	"github.com/rocketscienceinc/hangman-backend/internal/pkg"
)

const defaultMaxNameLength = 100

// Options - collaborators shared by every room of a registry.
type Options struct {
	Engine        *hangman.Engine
	Persister     Persister
	Broadcaster   Broadcaster
	Players       PlayerProvider
	InboxSize     int
	MaxNameLength int
}

func (that Options) withDefaults() Options {
	if that.Persister == nil {
		that.Persister = noopPersister{}
	}

	if that.Broadcaster == nil {
		that.Broadcaster = noopBroadcaster{}
	}

	if that.InboxSize <= 0 {
		that.InboxSize = defaultInboxSize
	}

	if that.MaxNameLength <= 0 {
		that.MaxNameLength = defaultMaxNameLength
	}

	return that
}

// Registry - arena of live rooms indexed by identity. Rooms share nothing, the
// registry lock only guards the index.
type Registry struct {
	logger *slog.Logger
	opts   Options

	mu    sync.RWMutex
	rooms map[string]*Coordinator
}

func NewRegistry(logger *slog.Logger, opts Options) (*Registry, error) {
	if opts.Engine == nil {
		return nil, fmt.Errorf("%w: round engine is required", apperror.ErrInvalidInput)
	}

	return &Registry{
		logger: logger,
		opts:   opts.withDefaults(),
		rooms:  make(map[string]*Coordinator),
	}, nil
}

// Create - registers a room and starts its coordinator.
func (that *Registry) Create(name string) (*Coordinator, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: room name is empty", apperror.ErrInvalidInput)
	}

	if utf8.RuneCountInString(name) > that.opts.MaxNameLength {
		return nil, fmt.Errorf("%w: room name can't exceed %d characters", apperror.ErrInvalidInput, that.opts.MaxNameLength)
	}

	info := entity.RoomInfo{
		ID:        pkg.GenerateID(),
		Name:      name,
		CreatedAt: time.Now(),
	}

	coordinator := NewCoordinator(that.logger, info, that.opts)
	coordinator.Start()

	that.mu.Lock()
	that.rooms[info.ID] = coordinator
	that.mu.Unlock()

	that.logger.Info("room created", "roomID", info.ID, "name", info.Name)

	return coordinator, nil
}

func (that *Registry) Get(id string) (*Coordinator, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	coordinator, ok := that.rooms[id]
	if !ok {
		return nil, fmt.Errorf("%w: room %s", apperror.ErrNotFound, id)
	}

	return coordinator, nil
}

// List - rooms ordered by creation time.
func (that *Registry) List() []entity.RoomInfo {
	that.mu.RLock()
	rooms := make([]entity.RoomInfo, 0, len(that.rooms))
	for _, coordinator := range that.rooms {
		rooms = append(rooms, coordinator.Info())
	}
	that.mu.RUnlock()

	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].ID < rooms[j].ID
		}
		return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
	})

	return rooms
}

// Remove - closes a room and forgets it.
func (that *Registry) Remove(id string) error {
	that.mu.Lock()
	coordinator, ok := that.rooms[id]
	delete(that.rooms, id)
	that.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: room %s", apperror.ErrNotFound, id)
	}

	coordinator.Close()
	that.logger.Info("room removed", "roomID", id)

	return nil
}

// Close - closes every room.
func (that *Registry) Close() {
	that.mu.Lock()
	rooms := that.rooms
	that.rooms = make(map[string]*Coordinator)
	that.mu.Unlock()

	for _, coordinator := range rooms {
		coordinator.Close()
	}
}
