package messagequeue

import (
	"encoding/json"
	"fmt"

	"github.com/GSH-LAN/Unwindia_cricket/src/models"
	"github.com/GSH-LAN/Unwindia_cricket/src/scoring"
)

const (
	// MessageTypeCricket is the envelope type of every message this service publishes.
	MessageTypeCricket = "UNWINDIA_CRICKET"

	MetadataMatchID   = "match_id"
	MetadataEventType = "event_type"
)

// Message is the envelope of published scoring events.
type Message struct {
	Type    string          `json:"type"`
	SubType string          `json:"subType"`
	ID      string          `json:"id"`
	Data    json.RawMessage `json:"data"`
}

// NewEventMessage wraps an outbox event into its published envelope.
func NewEventMessage(event *models.Event) ([]byte, error) {
	return json.Marshal(Message{
		Type:    MessageTypeCricket,
		SubType: string(event.Type),
		ID:      event.EventID,
		Data:    event.Payload,
	})
}

type CommandType string

const (
	CommandScoreBall CommandType = "SCORE_BALL"
	CommandUndoBall  CommandType = "UNDO_BALL"
)

// Command is a scoring instruction received from the command topic.
type Command struct {
	Type     CommandType        `json:"type"`
	InningID string             `json:"inningId"`
	Ball     *scoring.BallInput `json:"ball,omitempty"`
	// MessageID is the broker key of the message that carried the command.
	MessageID string `json:"-"`
}

// Validate checks that the command names an operation and carries what it needs.
func (c *Command) Validate() error {
	switch c.Type {
	case CommandScoreBall:
		if c.Ball == nil {
			return fmt.Errorf("%s without ball", c.Type)
		}
	case CommandUndoBall:
	default:
		return fmt.Errorf("unknown command type %q", c.Type)
	}
	if c.InningID == "" {
		return fmt.Errorf("%s without inningId", c.Type)
	}
	return nil
}
