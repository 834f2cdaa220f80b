package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/hangman-backend/internal/entity"
)

const (
	actionJoin     = "room:join"
	actionLeave    = "room:leave"
	actionStart    = "round:start"
	actionLetter   = "guess:letter"
	actionWord     = "guess:word"
	actionSnapshot = "room:snapshot"
	actionBan      = "room:ban"
	actionPromote  = "room:promote"
	actionEvent    = "room:event"
	actionError    = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RequestPayload struct {
	RoomID   string `json:"room_id"`
	AsHost   bool   `json:"as_host,omitempty"`
	Letter   string `json:"letter,omitempty"`
	Word     string `json:"word,omitempty"`
	TargetID string `json:"target_id,omitempty"`
}

type ResponsePayload struct {
	Event    *entity.Event    `json:"event,omitempty"`
	Snapshot *entity.Snapshot `json:"snapshot,omitempty"`
	Warning  string           `json:"warning,omitempty"`
	Error    string           `json:"error,omitempty"`
	Message  string           `json:"message,omitempty"`
}

func encode(action string, payload ResponsePayload) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Message{Action: action, Payload: raw})
}
