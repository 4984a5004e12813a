package models

import (
	"time"

	"github.com/kamva/mgm/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BattingSlot struct {
	Player          string `json:"player" bson:"player"`
	BattingPosition int    `json:"battingPosition" bson:"batting_position"`
	IsCaptain       bool   `json:"isCaptain,omitempty" bson:"is_captain,omitempty"`
	IsWicketKeeper  bool   `json:"isWicketKeeper,omitempty" bson:"is_wicket_keeper,omitempty"`
	Role            string `json:"role,omitempty" bson:"role,omitempty"`
}

type BowlingSlot struct {
	Player       string `json:"player" bson:"player"`
	IsCaptain    bool   `json:"isCaptain,omitempty" bson:"is_captain,omitempty"`
	BowlingOrder int    `json:"bowlingOrder,omitempty" bson:"bowling_order,omitempty"`
}

// PlayingXI holds the registered batting order and bowling pool of an inning.
type PlayingXI struct {
	Batting []BattingSlot `json:"batting" bson:"batting"`
	Bowling []BowlingSlot `json:"bowling" bson:"bowling"`
}

func (p PlayingXI) IsBatter(player string) bool {
	for _, s := range p.Batting {
		if s.Player == player {
			return true
		}
	}
	return false
}

func (p PlayingXI) IsBowler(player string) bool {
	for _, s := range p.Bowling {
		if s.Player == player {
			return true
		}
	}
	return false
}

// BattingPosition returns the declared position of player, or 0 if unknown.
func (p PlayingXI) BattingPosition(player string) int {
	for _, s := range p.Batting {
		if s.Player == player {
			return s.BattingPosition
		}
	}
	return 0
}

type Extras struct {
	Wides   int `json:"wides" bson:"wides"`
	NoBalls int `json:"noBalls" bson:"no_balls"`
	Byes    int `json:"byes" bson:"byes"`
	LegByes int `json:"legByes" bson:"leg_byes"`
	Penalty int `json:"penalty" bson:"penalty"`
	Total   int `json:"total" bson:"total"`
}

// Add accumulates o into e and refreshes the total.
func (e *Extras) Add(o Extras) {
	e.Wides += o.Wides
	e.NoBalls += o.NoBalls
	e.Byes += o.Byes
	e.LegByes += o.LegByes
	e.Penalty += o.Penalty
	e.Total = e.Wides + e.NoBalls + e.Byes + e.LegByes + e.Penalty
}

type FallOfWicket struct {
	WicketNumber int        `json:"wicketNumber" bson:"wicket_number"`
	Runs         int        `json:"runs" bson:"runs"`
	Partnership  int        `json:"partnership" bson:"partnership"`
	OverNumber   int        `json:"overNumber" bson:"over_number"`
	BallNumber   int        `json:"ballNumber" bson:"ball_number"`
	Batsman      string     `json:"batsman" bson:"batsman"`
	Dismissal    *Dismissal `json:"dismissal,omitempty" bson:"dismissal,omitempty"`
	Timestamp    time.Time  `json:"timestamp" bson:"timestamp"`
}

type Partnership struct {
	Batsman1  string     `json:"batsman1" bson:"batsman1"`
	Batsman2  string     `json:"batsman2" bson:"batsman2"`
	Runs      int        `json:"runs" bson:"runs"`
	Balls     int        `json:"balls" bson:"balls"`
	StartedAt time.Time  `json:"startedAt" bson:"started_at"`
	EndedAt   *time.Time `json:"endedAt,omitempty" bson:"ended_at,omitempty"`
}

// Open reports whether the partnership is still running.
func (p Partnership) Open() bool {
	return p.EndedAt == nil
}

// Involves reports whether a and b are the two batsmen of the partnership.
func (p Partnership) Involves(a, b string) bool {
	return (p.Batsman1 == a && p.Batsman2 == b) || (p.Batsman1 == b && p.Batsman2 == a)
}

type Powerplay struct {
	Type     PowerplayType `json:"type" bson:"type"`
	FromOver int           `json:"fromOver" bson:"from_over"`
	ToOver   int           `json:"toOver" bson:"to_over"`
	Runs     int           `json:"runs" bson:"runs"`
	Wickets  int           `json:"wickets" bson:"wickets"`
}

// Openers are the players nominated when the inning was started.
type Openers struct {
	Striker    string `json:"striker" bson:"striker"`
	NonStriker string `json:"nonStriker" bson:"non_striker"`
	Bowler     string `json:"bowler" bson:"bowler"`
}

type Declaration struct {
	DeclaredBy string    `json:"declaredBy" bson:"declared_by"`
	Reason     string    `json:"reason,omitempty" bson:"reason,omitempty"`
	DeclaredAt time.Time `json:"declaredAt" bson:"declared_at"`
}

// Interruption is a stoppage of play such as rain or bad light. Duration is in minutes and set
// when play resumes.
type Interruption struct {
	Reason    string     `json:"reason" bson:"reason"`
	StartTime time.Time  `json:"startTime" bson:"start_time"`
	EndTime   *time.Time `json:"endTime,omitempty" bson:"end_time,omitempty"`
	Duration  int        `json:"duration" bson:"duration"`
}

type Inning struct {
	mgm.DefaultModel `bson:",inline"`
	MatchID          primitive.ObjectID `json:"matchId" bson:"match_id"`
	InningNumber     int                `json:"inningNumber" bson:"inning_number"`
	BattingTeam      string             `json:"battingTeam" bson:"batting_team"`
	BowlingTeam      string             `json:"bowlingTeam" bson:"bowling_team"`
	PlayingXI        PlayingXI          `json:"playingXI" bson:"playing_xi"`
	Target           int                `json:"target,omitempty" bson:"target,omitempty"`
	OversLimit       int                `json:"oversLimit" bson:"overs_limit"`
	WicketsLimit     int                `json:"wicketsLimit" bson:"wickets_limit"`
	Status           InningStatus       `json:"status" bson:"status"`
	CompletionReason CompletionReason   `json:"completionReason,omitempty" bson:"completion_reason,omitempty"`

	Runs    int    `json:"runs" bson:"runs"`
	Wickets int    `json:"wickets" bson:"wickets"`
	Overs   int    `json:"overs" bson:"overs"`
	Balls   int    `json:"balls" bson:"balls"`
	Extras  Extras `json:"extras" bson:"extras"`

	Striker       string   `json:"striker,omitempty" bson:"striker,omitempty"`
	NonStriker    string   `json:"nonStriker,omitempty" bson:"non_striker,omitempty"`
	CurrentBowler string   `json:"currentBowler,omitempty" bson:"current_bowler,omitempty"`
	Openers       *Openers `json:"openers,omitempty" bson:"openers,omitempty"`

	FallOfWickets []FallOfWicket `json:"fallOfWickets" bson:"fall_of_wickets"`
	Partnerships  []Partnership  `json:"partnerships" bson:"partnerships"`
	Powerplays    []Powerplay    `json:"powerplays" bson:"powerplays"`

	Declaration   *Declaration   `json:"declaration,omitempty" bson:"declaration,omitempty"`
	FollowOn      *FollowOn      `json:"followOn,omitempty" bson:"follow_on,omitempty"`
	Interruptions []Interruption `json:"interruptions,omitempty" bson:"interruptions,omitempty"`

	StartTime *time.Time `json:"startTime,omitempty" bson:"start_time,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty" bson:"end_time,omitempty"`
	Duration  int        `json:"duration" bson:"duration"`

	// Version is incremented on every save and guards against interleaved writers.
	Version int64 `json:"version" bson:"version"`
}

func (*Inning) CollectionName() string {
	return "cricket_inning"
}

// LegalBalls is the number of legal deliveries bowled in the inning.
func (i *Inning) LegalBalls() int {
	return i.Overs*6 + i.Balls
}

// IsDismissed reports whether player already appears in the fall-of-wicket ledger.
func (i *Inning) IsDismissed(player string) bool {
	for _, fow := range i.FallOfWickets {
		if fow.Batsman == player {
			return true
		}
	}
	return false
}

// CurrentPartnership returns the open partnership, if any.
func (i *Inning) CurrentPartnership() *Partnership {
	if n := len(i.Partnerships); n > 0 && i.Partnerships[n-1].Open() {
		return &i.Partnerships[n-1]
	}
	return nil
}

// ActiveInterruption returns the interruption play has not resumed from, if any.
func (i *Inning) ActiveInterruption() *Interruption {
	if n := len(i.Interruptions); n > 0 && i.Interruptions[n-1].EndTime == nil {
		return &i.Interruptions[n-1]
	}
	return nil
}
