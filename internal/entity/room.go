package entity

import "time"

type RoomInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Snapshot - post-operation view of a room handed back to callers for relay.
type Snapshot struct {
	Room    RoomInfo     `json:"room"`
	Version uint64       `json:"version"`
	Status  RoundStatus  `json:"status"`
	Members []Membership `json:"members"`
	Round   *RoundView   `json:"round,omitempty"`
}

// Member - looks up the membership of playerID in the snapshot.
func (that *Snapshot) Member(playerID string) (Membership, bool) {
	for _, member := range that.Members {
		if member.PlayerID == playerID {
			return member, true
		}
	}

	return Membership{}, false
}

// ActivePlayerIDs - players currently in the room and not banned.
func (that *Snapshot) ActivePlayerIDs() []string {
	ids := make([]string, 0, len(that.Members))
	for _, member := range that.Members {
		if member.IsActive() {
			ids = append(ids, member.PlayerID)
		}
	}

	return ids
}
