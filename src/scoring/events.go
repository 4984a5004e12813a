package scoring

import (
	"context"
	"encoding/json"

	"github.com/GSH-LAN/Unwindia_cricket/src/cricket"
	"github.com/GSH-LAN/Unwindia_cricket/src/models"
	"github.com/google/uuid"
)

// InningSummary is the compact score line carried by events and the live scoreboard.
type InningSummary struct {
	MatchID          string                  `json:"matchId"`
	InningID         string                  `json:"inningId"`
	InningNumber     int                     `json:"inningNumber"`
	BattingTeam      string                  `json:"battingTeam"`
	BowlingTeam      string                  `json:"bowlingTeam"`
	Runs             int                     `json:"runs"`
	Wickets          int                     `json:"wickets"`
	Overs            int                     `json:"overs"`
	Balls            int                     `json:"balls"`
	Target           int                     `json:"target,omitempty"`
	Status           models.InningStatus     `json:"status"`
	CompletionReason models.CompletionReason `json:"completionReason,omitempty"`
	Striker          string                  `json:"striker,omitempty"`
	NonStriker       string                  `json:"nonStriker,omitempty"`
	Bowler           string                  `json:"bowler,omitempty"`
	RunRate          float64                 `json:"runRate"`
}

func Summarize(inning *models.Inning) InningSummary {
	return InningSummary{
		MatchID:          inning.MatchID.Hex(),
		InningID:         inning.ID.Hex(),
		InningNumber:     inning.InningNumber,
		BattingTeam:      inning.BattingTeam,
		BowlingTeam:      inning.BowlingTeam,
		Runs:             inning.Runs,
		Wickets:          inning.Wickets,
		Overs:            inning.Overs,
		Balls:            inning.Balls,
		Target:           inning.Target,
		Status:           inning.Status,
		CompletionReason: inning.CompletionReason,
		Striker:          inning.Striker,
		NonStriker:       inning.NonStriker,
		Bowler:           inning.CurrentBowler,
		RunRate:          cricket.RunRate(inning.Runs, inning.Overs, inning.Balls),
	}
}

// EventPayload is the body of every outbox event.
type EventPayload struct {
	MatchID           string             `json:"matchId"`
	MatchStatus       models.MatchStatus `json:"matchStatus"`
	Inning            *InningSummary     `json:"inning,omitempty"`
	Ball              *models.Ball       `json:"ball,omitempty"`
	Result            models.MatchResult `json:"result,omitempty"`
	Winner            string             `json:"winner,omitempty"`
	ResultDescription string             `json:"resultDescription,omitempty"`
}

// emit queues an outbox event describing the current state of the unit of work.
func (u *unitOfWork) emit(typ models.EventType, ball *models.Ball) error {
	payload := EventPayload{
		MatchID:           u.match.ID.Hex(),
		MatchStatus:       u.match.Status,
		Ball:              ball,
		Result:            u.match.Result,
		Winner:            u.match.Winner,
		ResultDescription: u.match.ResultDescription,
	}
	event := &models.Event{
		EventID:    uuid.NewString(),
		Type:       typ,
		MatchID:    u.match.ID,
		State:      models.EVENT_STATE_NEW,
		OccurredAt: u.now,
	}
	if u.inning != nil {
		summary := Summarize(u.inning)
		payload.Inning = &summary
		event.InningID = u.inning.ID
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	event.Payload = body
	u.events = append(u.events, event)
	return nil
}

func (u *unitOfWork) flush(ctx context.Context) error {
	for _, event := range u.events {
		if err := u.tx.CreateEvent(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
