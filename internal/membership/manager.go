package membership

import (
	"fmt"
	"sort"
	"time"

	"github.com/rocketscienceinc/hangman-backend/internal/apperror"
	"github.com/rocketscienceinc/hangman-backend/internal/entity"
)

// Manager - roster of one room, keyed by player identity. Records are created once
// and then only mutated in place; nothing is ever deleted.
//
// Manager is not safe for concurrent use, the owning room serializes access.
type Manager struct {
	roomID  string
	members map[string]*entity.Membership
	now     func() time.Time
}

func NewManager(roomID string) *Manager {
	return &Manager{
		roomID:  roomID,
		members: make(map[string]*entity.Membership),
		now:     time.Now,
	}
}

// Join - creates the membership on first join and reactivates it afterwards.
// Host can only be claimed by a newcomer while the room has no active host;
// a rejoin never changes the host flag, whatever asHost says.
func (that *Manager) Join(playerID string, asHost bool) (*entity.Membership, error) {
	if playerID == "" {
		return nil, fmt.Errorf("%w: player id is empty", apperror.ErrInvalidInput)
	}

	member, ok := that.members[playerID]
	if !ok {
		if asHost && that.hasActiveHost() {
			return nil, fmt.Errorf("%w: room %s already has a host", apperror.ErrForbidden, that.roomID)
		}

		member = &entity.Membership{
			RoomID:   that.roomID,
			PlayerID: playerID,
			IsHost:   asHost,
			IsInRoom: true,
			JoinedAt: that.now(),
		}
		that.members[playerID] = member

		return member, nil
	}

	if member.IsBanned {
		return nil, fmt.Errorf("%w: player %s is banned from room %s", apperror.ErrForbidden, playerID, that.roomID)
	}

	member.IsInRoom = true

	return member, nil
}

// Leave - marks the member as out of the room. Leaving twice is fine.
func (that *Manager) Leave(member *entity.Membership) *entity.Membership {
	member.IsInRoom = false

	return member
}

// Ban - bans the member for good and removes them from the room.
func (that *Manager) Ban(member *entity.Membership) *entity.Membership {
	member.IsBanned = true
	member.IsInRoom = false

	return member
}

func (that *Manager) PromoteHost(member *entity.Membership) *entity.Membership {
	member.IsHost = true

	return member
}

// RequireActiveMember - returns the membership of a player allowed to act in the room.
func (that *Manager) RequireActiveMember(playerID string) (*entity.Membership, error) {
	member, ok := that.members[playerID]
	if !ok {
		return nil, fmt.Errorf("%w: player %s never joined room %s", apperror.ErrNotInRoom, playerID, that.roomID)
	}

	if member.IsBanned {
		return nil, fmt.Errorf("%w: player %s is banned from room %s", apperror.ErrForbidden, playerID, that.roomID)
	}

	if !member.IsInRoom {
		return nil, fmt.Errorf("%w: player %s left room %s", apperror.ErrNotInRoom, playerID, that.roomID)
	}

	return member, nil
}

// Get - returns the membership record of a player whatever its state.
func (that *Manager) Get(playerID string) (*entity.Membership, error) {
	member, ok := that.members[playerID]
	if !ok {
		return nil, fmt.Errorf("%w: player %s never joined room %s", apperror.ErrNotInRoom, playerID, that.roomID)
	}

	return member, nil
}

// Members - copies of all records, oldest first.
func (that *Manager) Members() []entity.Membership {
	members := make([]entity.Membership, 0, len(that.members))
	for _, member := range that.members {
		members = append(members, *member)
	}

	sort.Slice(members, func(i, j int) bool {
		if members[i].JoinedAt.Equal(members[j].JoinedAt) {
			return members[i].PlayerID < members[j].PlayerID
		}
		return members[i].JoinedAt.Before(members[j].JoinedAt)
	})

	return members
}

func (that *Manager) hasActiveHost() bool {
	for _, member := range that.members {
		if member.IsActiveHost() {
			return true
		}
	}

	return false
}
