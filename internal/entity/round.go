package entity

import "time"

type RoundStatus string

const (
	StatusWaitingForWord RoundStatus = "waiting_for_word"
	StatusInProgress     RoundStatus = "in_progress"
	StatusWon            RoundStatus = "won"
	StatusLost           RoundStatus = "lost"
)

func (that RoundStatus) IsTerminal() bool {
	return that == StatusWon || that == StatusLost
}

const (
	AttemptLetter = "letter"
	AttemptWord   = "word"
)

// Attempt - one applied guess as it appears in the round's attempt log.
type Attempt struct {
	PlayerID string    `json:"player_id"`
	Kind     string    `json:"kind"`
	Value    string    `json:"value"`
	Hit      bool      `json:"hit"`
	At       time.Time `json:"at"`
}

// RoundView - read-only projection of a round. Word is only filled once the round is over.
type RoundView struct {
	ID         string      `json:"id"`
	RoomID     string      `json:"room_id"`
	Status     RoundStatus `json:"status"`
	Masked     string      `json:"masked"`
	Word       string      `json:"word,omitempty"`
	Length     int         `json:"length"`
	Guessed    []string    `json:"guessed"`
	Revealed   []int       `json:"revealed"`
	Health     int         `json:"health"`
	MaxHealth  int         `json:"max_health"`
	Attempts   []Attempt   `json:"attempts"`
	StartedBy  string      `json:"started_by"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
}
