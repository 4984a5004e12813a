package models

import (
	"time"

	"github.com/kamva/mgm/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RunOutDetails struct {
	IsDirectHit bool   `json:"isDirectHit,omitempty" bson:"is_direct_hit,omitempty"`
	End         string `json:"end,omitempty" bson:"end,omitempty"`
}

type LBWDetails struct {
	Pitching       string `json:"pitching,omitempty" bson:"pitching,omitempty"`
	Impact         string `json:"impact,omitempty" bson:"impact,omitempty"`
	WicketsHitting string `json:"wicketsHitting,omitempty" bson:"wickets_hitting,omitempty"`
}

type Dismissal struct {
	Type DismissalType `json:"type" bson:"type"`
	// PlayerOut defaults to the striker; set it for non-striker run outs.
	PlayerOut   string         `json:"playerOut,omitempty" bson:"player_out,omitempty"`
	Bowler      string         `json:"bowler,omitempty" bson:"bowler,omitempty"`
	Fielder     string         `json:"fielder,omitempty" bson:"fielder,omitempty"`
	Description string         `json:"description,omitempty" bson:"description,omitempty"`
	RunOut      *RunOutDetails `json:"runOutDetails,omitempty" bson:"run_out_details,omitempty"`
	LBW         *LBWDetails    `json:"lbwDetails,omitempty" bson:"lbw_details,omitempty"`
}

// BallExtras is the extras breakdown of a single delivery.
type BallExtras struct {
	Wides   int `json:"wides" bson:"wides"`
	NoBalls int `json:"noBalls" bson:"no_balls"`
	Byes    int `json:"byes" bson:"byes"`
	LegByes int `json:"legByes" bson:"leg_byes"`
	Penalty int `json:"penalty" bson:"penalty"`
}

func (e BallExtras) Total() int {
	return e.Wides + e.NoBalls + e.Byes + e.LegByes + e.Penalty
}

// Ledger converts the delivery extras into an aggregate breakdown.
func (e BallExtras) Ledger() Extras {
	return Extras{
		Wides:   e.Wides,
		NoBalls: e.NoBalls,
		Byes:    e.Byes,
		LegByes: e.LegByes,
		Penalty: e.Penalty,
		Total:   e.Total(),
	}
}

type Ball struct {
	BallNumber   int          `json:"ballNumber" bson:"ball_number"`
	OverNumber   int          `json:"overNumber" bson:"over_number"`
	Runs         int          `json:"runs" bson:"runs"`
	IsBoundary   bool         `json:"isBoundary" bson:"is_boundary"`
	BoundaryType string       `json:"boundaryType,omitempty" bson:"boundary_type,omitempty"`
	DeliveryType DeliveryType `json:"deliveryType" bson:"delivery_type"`
	IsWicket     bool         `json:"isWicket" bson:"is_wicket"`
	Dismissal    *Dismissal   `json:"dismissal,omitempty" bson:"dismissal,omitempty"`
	IsFreeHit    bool         `json:"isFreeHit,omitempty" bson:"is_free_hit,omitempty"`
	Batsman      string       `json:"batsman" bson:"batsman"`
	Bowler       string       `json:"bowler" bson:"bowler"`
	NonStriker   string       `json:"nonStriker" bson:"non_striker"`
	Fielder      string       `json:"fielder,omitempty" bson:"fielder,omitempty"`
	Extras       BallExtras   `json:"extras" bson:"extras"`
	Description  string       `json:"description,omitempty" bson:"description,omitempty"`
	Timestamp    time.Time    `json:"timestamp" bson:"timestamp"`
}

// DismissedPlayer returns the batsman dismissed on this ball.
func (b *Ball) DismissedPlayer() string {
	if !b.IsWicket {
		return ""
	}
	if b.Dismissal != nil && b.Dismissal.PlayerOut != "" {
		return b.Dismissal.PlayerOut
	}
	return b.Batsman
}

type Over struct {
	mgm.DefaultModel `bson:",inline"`
	InningID         primitive.ObjectID `json:"inningId" bson:"inning_id"`
	MatchID          primitive.ObjectID `json:"matchId" bson:"match_id"`
	OverNumber       int                `json:"overNumber" bson:"over_number"`
	Bowler           string             `json:"bowler" bson:"bowler"`
	Balls            []Ball             `json:"balls" bson:"balls"`
	Runs             int                `json:"runs" bson:"runs"`
	Wickets          int                `json:"wickets" bson:"wickets"`
	Extras           Extras             `json:"extras" bson:"extras"`
	LegalBalls       int                `json:"legalBalls" bson:"legal_balls"`
	IsMaiden         bool               `json:"isMaiden" bson:"is_maiden"`
	Status           OverStatus         `json:"status" bson:"status"`
	StartTime        time.Time          `json:"startTime" bson:"start_time"`
	EndTime          *time.Time         `json:"endTime,omitempty" bson:"end_time,omitempty"`
	Duration         int                `json:"duration" bson:"duration"`
}

func (*Over) CollectionName() string {
	return "cricket_over"
}

// LastBall returns the most recently appended ball, or nil for an empty over.
func (o *Over) LastBall() *Ball {
	if len(o.Balls) == 0 {
		return nil
	}
	return &o.Balls[len(o.Balls)-1]
}
