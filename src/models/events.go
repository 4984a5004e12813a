package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kamva/mgm/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventState int

const (
	EVENT_STATE_NEW EventState = iota
	EVENT_STATE_PUBLISHED
	EVENT_STATE_FAILED
	_maxEventState
)

var EventStateName = map[int]string{
	0: "NEW",
	1: "PUBLISHED",
	2: "FAILED",
}

var EventStateValue = map[string]EventState{
	EventStateName[0]: EVENT_STATE_NEW,
	EventStateName[1]: EVENT_STATE_PUBLISHED,
	EventStateName[2]: EVENT_STATE_FAILED,
}

func (e EventState) String() string {
	s, ok := EventStateName[int(e)]
	if ok {
		return s
	}
	return strconv.Itoa(int(e))
}

// MarshalJSON writes the state by name.
func (e EventState) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(e.String())), nil
}

// UnmarshalJSON unmarshals b into EventState. Both the numeric code and the name are accepted.
func (e *EventState) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if e == nil {
		return fmt.Errorf("nil receiver passed to UnmarshalJSON")
	}

	if ci, err := strconv.ParseUint(string(b), 10, 32); err == nil {
		if ci >= uint64(_maxEventState) {
			return fmt.Errorf("invalid code: %q", ci)
		}

		*e = EventState(ci)
		return nil
	}

	s := string(b)
	if len(s) > 0 && s[0] == '"' {
		s = s[1:]
	}
	if len(s) > 0 && s[len(s)-1] == '"' {
		s = s[:len(s)-1]
	}

	if ev, ok := EventStateValue[s]; ok {
		*e = ev
		return nil
	}
	return fmt.Errorf("invalid code: %q", string(b))
}

// EventType names a scoring event published to subscribers.
type EventType string

const (
	EventInningStarted   EventType = "INNING_STARTED"
	EventBallScored      EventType = "BALL_SCORED"
	EventBallUndone      EventType = "BALL_UNDONE"
	EventInningCompleted EventType = "INNING_COMPLETED"
	EventMatchUpdated    EventType = "MATCH_UPDATED"
)

// Event is an outbox entry written in the same transaction as the state change it describes.
type Event struct {
	mgm.DefaultModel `bson:",inline"`
	EventID          string             `json:"eventId" bson:"event_id"`
	Type             EventType          `json:"type" bson:"type"`
	MatchID          primitive.ObjectID `json:"matchId" bson:"match_id"`
	InningID         primitive.ObjectID `json:"inningId,omitempty" bson:"inning_id,omitempty"`
	Payload          []byte             `json:"payload" bson:"payload"`
	State            EventState         `json:"state" bson:"state"`
	Attempts         int                `json:"attempts" bson:"attempts"`
	OccurredAt       time.Time          `json:"occurredAt" bson:"occurred_at"`
	PublishedAt      *time.Time         `json:"publishedAt,omitempty" bson:"published_at,omitempty"`
}

func (*Event) CollectionName() string {
	return "cricket_event"
}
