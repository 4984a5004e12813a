package models

import (
	"time"

	"github.com/kamva/mgm/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatKey identifies the per-player statistic record of one inning.
type StatKey struct {
	MatchID  primitive.ObjectID `json:"matchId" bson:"match_id"`
	InningID primitive.ObjectID `json:"inningId" bson:"inning_id"`
	Player   string             `json:"player" bson:"player"`
	Team     string             `json:"team" bson:"team"`
}

type BattingStat struct {
	mgm.DefaultModel `bson:",inline"`
	StatKey          `bson:",inline"`
	InningNumber     int `json:"inningNumber" bson:"inning_number"`
	BattingPosition  int `json:"battingPosition" bson:"batting_position"`

	Runs         int      `json:"runs" bson:"runs"`
	BallsFaced   int      `json:"ballsFaced" bson:"balls_faced"`
	Fours        int      `json:"fours" bson:"fours"`
	Sixes        int      `json:"sixes" bson:"sixes"`
	DotBalls     int      `json:"dotBalls" bson:"dot_balls"`
	ScoringShots int      `json:"scoringShots" bson:"scoring_shots"`
	StrikeRate   float64  `json:"strikeRate" bson:"strike_rate"`
	Milestones   []string `json:"milestones" bson:"milestones"`

	IsOut     bool       `json:"isOut" bson:"is_out"`
	IsNotOut  bool       `json:"isNotOut" bson:"is_not_out"`
	Dismissal *Dismissal `json:"dismissal,omitempty" bson:"dismissal,omitempty"`

	StartTime *time.Time `json:"startTime,omitempty" bson:"start_time,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty" bson:"end_time,omitempty"`
	Duration  int        `json:"duration" bson:"duration"`
}

func (*BattingStat) CollectionName() string {
	return "cricket_batting_stat"
}

type BowlingDismissal struct {
	Batsman    string        `json:"batsman" bson:"batsman"`
	Type       DismissalType `json:"type" bson:"type"`
	Fielder    string        `json:"fielder,omitempty" bson:"fielder,omitempty"`
	OverNumber int           `json:"overNumber" bson:"over_number"`
	BallNumber int           `json:"ballNumber" bson:"ball_number"`
}

type BowlingStat struct {
	mgm.DefaultModel `bson:",inline"`
	StatKey          `bson:",inline"`
	InningNumber     int `json:"inningNumber" bson:"inning_number"`

	Overs              int                `json:"overs" bson:"overs"`
	Balls              int                `json:"balls" bson:"balls"`
	Runs               int                `json:"runs" bson:"runs"`
	Wickets            int                `json:"wickets" bson:"wickets"`
	Maidens            int                `json:"maidens" bson:"maidens"`
	Extras             Extras             `json:"extras" bson:"extras"`
	DotBalls           int                `json:"dotBalls" bson:"dot_balls"`
	BoundariesConceded int                `json:"boundariesConceded" bson:"boundaries_conceded"`
	SixesConceded      int                `json:"sixesConceded" bson:"sixes_conceded"`
	Economy            float64            `json:"economy" bson:"economy"`
	Average            float64            `json:"average" bson:"average"`
	StrikeRate         float64            `json:"strikeRate" bson:"strike_rate"`
	Milestones         []string           `json:"milestones" bson:"milestones"`
	Dismissals         []BowlingDismissal `json:"dismissals" bson:"dismissals"`

	StartTime *time.Time `json:"startTime,omitempty" bson:"start_time,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty" bson:"end_time,omitempty"`
	Duration  int        `json:"duration" bson:"duration"`
}

func (*BowlingStat) CollectionName() string {
	return "cricket_bowling_stat"
}

// TotalBalls is the number of legal balls bowled.
func (s *BowlingStat) TotalBalls() int {
	return s.Overs*6 + s.Balls
}
