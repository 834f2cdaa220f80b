package entity

import "time"

// Membership - the single record linking a player to a room. It is never deleted:
// leaving only clears IsInRoom so a rejoin can reactivate it.
type Membership struct {
	RoomID   string    `json:"room_id"`
	PlayerID string    `json:"player_id"`
	IsHost   bool      `json:"is_host"`
	IsBanned bool      `json:"is_banned"`
	IsInRoom bool      `json:"is_in_room"`
	JoinedAt time.Time `json:"joined_at"`
}

func (that *Membership) IsActive() bool {
	return that.IsInRoom && !that.IsBanned
}

func (that *Membership) IsActiveHost() bool {
	return that.IsActive() && that.IsHost
}
