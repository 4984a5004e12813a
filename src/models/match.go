package models

import (
	"time"

	"github.com/kamva/mgm/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PowerplayWindow is an over range (1-based, inclusive) with a powerplay type.
type PowerplayWindow struct {
	Type     PowerplayType `json:"type" bson:"type"`
	FromOver int           `json:"fromOver" bson:"from_over"`
	ToOver   int           `json:"toOver" bson:"to_over"`
}

// MatchRules are the format-derived rules a match is scored with.
// Zero values for OversPerInning and MaxOversPerBowler mean unlimited.
type MatchRules struct {
	OversPerInning    int               `json:"oversPerInning" bson:"overs_per_inning"`
	MaxOversPerBowler int               `json:"maxOversPerBowler" bson:"max_overs_per_bowler"`
	WicketsPerInning  int               `json:"wicketsPerInning" bson:"wickets_per_inning"`
	Powerplays        []PowerplayWindow `json:"powerplays" bson:"powerplays"`
	FollowOnThreshold int               `json:"followOnThreshold" bson:"follow_on_threshold"`
}

type Toss struct {
	WonBy     string       `json:"wonBy" bson:"won_by"`
	ElectedTo TossDecision `json:"electedTo" bson:"elected_to"`
	At        *time.Time   `json:"at,omitempty" bson:"at,omitempty"`
}

type FollowOn struct {
	Enforced   bool       `json:"enforced" bson:"enforced"`
	EnforcedBy string     `json:"enforcedBy,omitempty" bson:"enforced_by,omitempty"`
	Lead       int        `json:"lead" bson:"lead"`
	At         *time.Time `json:"at,omitempty" bson:"at,omitempty"`
}

type Match struct {
	mgm.DefaultModel  `bson:",inline"`
	Title             string               `json:"title" bson:"title"`
	Team1             string               `json:"team1" bson:"team1"`
	Team2             string               `json:"team2" bson:"team2"`
	Format            Format               `json:"format" bson:"format"`
	Rules             MatchRules           `json:"rules" bson:"rules"`
	Toss              *Toss                `json:"toss,omitempty" bson:"toss,omitempty"`
	Status            MatchStatus          `json:"status" bson:"status"`
	Innings           []primitive.ObjectID `json:"innings" bson:"innings"`
	FollowOn          *FollowOn            `json:"followOn,omitempty" bson:"follow_on,omitempty"`
	Result            MatchResult          `json:"result,omitempty" bson:"result,omitempty"`
	Winner            string               `json:"winner,omitempty" bson:"winner,omitempty"`
	ResultDescription string               `json:"resultDescription,omitempty" bson:"result_description,omitempty"`
	SuperOverRequired bool                 `json:"superOverRequired,omitempty" bson:"super_over_required,omitempty"`
	StartTime         *time.Time           `json:"startTime,omitempty" bson:"start_time,omitempty"`
	EndTime           *time.Time           `json:"endTime,omitempty" bson:"end_time,omitempty"`
}

func (*Match) CollectionName() string {
	return "cricket_match"
}

// HasTeam reports whether team plays in the match.
func (m *Match) HasTeam(team string) bool {
	return team != "" && (team == m.Team1 || team == m.Team2)
}

// Opponent returns the other team of the match.
func (m *Match) Opponent(team string) string {
	if team == m.Team1 {
		return m.Team2
	}
	return m.Team1
}
