package entity

import "time"

// Outcome - the single value every room operation emits for broadcasting.
type Outcome string

const (
	OutcomeNoChange           Outcome = "no_change"
	OutcomeLetterAccepted     Outcome = "letter_accepted"
	OutcomeLetterRejectedMiss Outcome = "letter_rejected_miss"
	OutcomeWordRejectedMiss   Outcome = "word_rejected_miss"
	OutcomeRoundWon           Outcome = "round_won"
	OutcomeRoundLost          Outcome = "round_lost"

	OutcomeRoundStarted Outcome = "round_started"
	OutcomePlayerJoined Outcome = "player_joined"
	OutcomePlayerLeft   Outcome = "player_left"
	OutcomePlayerBanned Outcome = "player_banned"
	OutcomeHostPromoted Outcome = "host_promoted"
)

func (that Outcome) IsTerminal() bool {
	return that == OutcomeRoundWon || that == OutcomeRoundLost
}

type Event struct {
	RoomID   string    `json:"room_id"`
	PlayerID string    `json:"player_id"`
	Outcome  Outcome   `json:"outcome"`
	Version  uint64    `json:"version"`
	NearMiss bool      `json:"near_miss,omitempty"`
	At       time.Time `json:"at"`
}
