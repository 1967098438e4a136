package events

import (
	"encoding/json"
	"time"
)

// Event is the base structure for all game events carried over the broadcast
// channel and fanned out to websocket clients.
type Event struct {
	ID        string          `json:"id"`        // Event UUID
	GameID    string          `json:"game_id"`   // Game UUID
	Kind      Kind            `json:"type"`      // Event kind
	Timestamp time.Time       `json:"timestamp"` // Event creation time
	Data      json.RawMessage `json:"data"`      // Kind-specific payload
}

// Kind represents the type of game event.
type Kind string

const (
	KindQuestionChanged   Kind = "QuestionChanged"
	KindVoteTallyChanged  Kind = "VoteTallyChanged"
	KindCustomAnswerAdded Kind = "CustomAnswerAdded"
	KindResultsShown      Kind = "ResultsShown"
	KindGameReset         Kind = "GameReset"
	KindLoadingQuestion   Kind = "LoadingQuestion"
)

// ParsePayload parses event data into the appropriate payload struct.
func ParsePayload(event *Event) (interface{}, error) {
	switch event.Kind {
	case KindQuestionChanged:
		var payload QuestionChangedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case KindVoteTallyChanged:
		var payload VoteTallyChangedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case KindCustomAnswerAdded:
		var payload CustomAnswerAddedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case KindResultsShown:
		return ResultsShownPayload{}, nil

	case KindGameReset:
		return GameResetPayload{}, nil

	case KindLoadingQuestion:
		var payload LoadingQuestionPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	default:
		return nil, nil // Unknown event kind
	}
}
