package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

const (
	actionGameState     = "game:state"
	actionGameNew       = "game:new"
	actionGameTurn      = "game:turn"
	actionGameStep      = "game:step"
	actionGameResume    = "game:resume"
	actionTrainingState = "training:state"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload is the body of every response.
type Payload struct {
	Game     *entity.Game          `json:"game,omitempty"`
	Analysis *entity.Suggestion    `json:"analysis,omitempty"`
	Training *entity.TrainingState `json:"training,omitempty"`
	Error    string                `json:"error,omitempty"`
}

type newGameRequest struct {
	Mode string `json:"mode"`
}

type resumeRequest struct {
	ID string `json:"id"`
}

type turnRequest struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

func newMessage(action string, payload Payload) *Message {
	body, err := json.Marshal(payload)
	if err != nil {
		return errorMessage(action, "failed to encode response")
	}

	return &Message{Action: action, Payload: body}
}

func errorMessage(action, text string) *Message {
	body, _ := json.Marshal(Payload{Error: text}) //nolint: errchkjson // string-only payload

	return &Message{Action: action, Payload: body}
}
