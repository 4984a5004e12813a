package scoring

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/GSH-LAN/Unwindia_cricket/src/cricket"
	"github.com/GSH-LAN/Unwindia_cricket/src/database"
	"github.com/GSH-LAN/Unwindia_cricket/src/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultCommentaryLimit = 20

// Situation describes the chase of an inning. BallsRemaining is -1 for innings without an over
// limit.
type Situation struct {
	Target           int     `json:"target,omitempty"`
	RunsNeeded       int     `json:"runsNeeded,omitempty"`
	BallsRemaining   int     `json:"ballsRemaining"`
	WicketsRemaining int     `json:"wicketsRemaining"`
	CurrentRunRate   float64 `json:"currentRunRate"`
	RequiredRunRate  float64 `json:"requiredRunRate,omitempty"`
}

type ScoringState struct {
	Match            *models.Match  `json:"match"`
	Inning           *models.Inning `json:"inning,omitempty"`
	CurrentOver      *models.Over   `json:"currentOver,omitempty"`
	AvailableBatsmen []string       `json:"availableBatsmen"`
	AvailableBowlers []string       `json:"availableBowlers"`
	Situation        *Situation     `json:"situation,omitempty"`
}

type CommentaryEntry struct {
	InningNumber int       `json:"inningNumber"`
	OverNumber   int       `json:"overNumber"`
	BallNumber   int       `json:"ballNumber"`
	Over         string    `json:"over"`
	Score        string    `json:"score"`
	Runs         int       `json:"runs"`
	Batsman      string    `json:"batsman"`
	Bowler       string    `json:"bowler"`
	IsWicket     bool      `json:"isWicket"`
	IsBoundary   bool      `json:"isBoundary"`
	Description  string    `json:"description"`
	Timestamp    time.Time `json:"timestamp"`
}

type Scorecard struct {
	Inning  *models.Inning        `json:"inning"`
	Batting []*models.BattingStat `json:"batting"`
	Bowling []*models.BowlingStat `json:"bowling"`
}

// GetScoringState returns everything a scoring client needs to record the next delivery.
func (s *Service) GetScoringState(ctx context.Context, matchID primitive.ObjectID) (*ScoringState, error) {
	var state *ScoringState
	err := s.view(ctx, func(ctx context.Context, tx database.Tx) error {
		match, err := tx.GetMatch(ctx, matchID)
		if err != nil {
			return lookup(err, "match", matchID)
		}
		state = &ScoringState{Match: match, AvailableBatsmen: []string{}, AvailableBowlers: []string{}}

		innings, err := tx.ListInnings(ctx, matchID)
		if err != nil || len(innings) == 0 {
			return err
		}
		inning := innings[len(innings)-1]
		state.Inning = inning

		overs, err := tx.ListOvers(ctx, inning.ID)
		if err != nil {
			return err
		}
		if len(overs) > 0 {
			state.CurrentOver = overs[len(overs)-1]
		}

		bowling, err := tx.ListBowlingStats(ctx, inning.ID)
		if err != nil {
			return err
		}

		state.AvailableBatsmen = availableBatsmen(inning)
		state.AvailableBowlers = availableBowlers(match, inning, bowling, state.CurrentOver)
		state.Situation = situation(inning)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

func availableBatsmen(inning *models.Inning) []string {
	players := []string{}
	for _, slot := range inning.PlayingXI.Batting {
		if slot.Player == inning.Striker || slot.Player == inning.NonStriker || inning.IsDismissed(slot.Player) {
			continue
		}
		players = append(players, slot.Player)
	}
	return players
}

// availableBowlers lists the bowlers that may bowl the next over: within quota and not a bowler
// of the over just completed.
func availableBowlers(match *models.Match, inning *models.Inning, stats []*models.BowlingStat, last *models.Over) []string {
	overs := make(map[string]int, len(stats))
	for _, stat := range stats {
		overs[stat.Player] = stat.Overs
	}

	players := []string{}
	for _, slot := range inning.PlayingXI.Bowling {
		if quota := match.Rules.MaxOversPerBowler; quota > 0 && overs[slot.Player] >= quota {
			continue
		}
		if last != nil && last.Status == models.OverCompleted && bowledIn(last, slot.Player) {
			continue
		}
		players = append(players, slot.Player)
	}
	return players
}

func situation(inning *models.Inning) *Situation {
	sit := &Situation{
		Target:           inning.Target,
		BallsRemaining:   -1,
		WicketsRemaining: wicketsLimit(inning) - inning.Wickets,
		CurrentRunRate:   cricket.RunRate(inning.Runs, inning.Overs, inning.Balls),
	}
	if inning.OversLimit > 0 {
		sit.BallsRemaining = inning.OversLimit*cricket.BallsPerOver - inning.LegalBalls()
	}
	if inning.Target > 0 {
		sit.RunsNeeded = max(inning.Target-inning.Runs, 0)
		if sit.BallsRemaining >= 0 {
			rrr := cricket.RequiredRunRate(inning.Target, inning.Runs, sit.BallsRemaining)
			if !math.IsInf(rrr, 0) {
				sit.RequiredRunRate = rrr
			}
		}
	}
	return sit
}

// GetCommentary lists the deliveries of an inning, most recent first. inningNumber 0 selects the
// latest inning, limit 0 the default page size.
func (s *Service) GetCommentary(ctx context.Context, matchID primitive.ObjectID, inningNumber, limit int) ([]CommentaryEntry, error) {
	if limit <= 0 {
		limit = DefaultCommentaryLimit
	}

	entries := []CommentaryEntry{}
	err := s.view(ctx, func(ctx context.Context, tx database.Tx) error {
		if _, err := tx.GetMatch(ctx, matchID); err != nil {
			return lookup(err, "match", matchID)
		}
		innings, err := tx.ListInnings(ctx, matchID)
		if err != nil {
			return err
		}
		inning, err := pickInning(innings, inningNumber)
		if err != nil || inning == nil {
			return err
		}

		overs, err := tx.ListOvers(ctx, inning.ID)
		if err != nil {
			return err
		}

		var runs, wickets, legal int
		for _, over := range overs {
			for _, ball := range over.Balls {
				added := cricket.CalculateBallRuns(ball.Runs, ball.Extras)
				runs += added
				if ball.IsWicket {
					wickets++
				}
				if cricket.CountsTowardsOver(ball.DeliveryType) {
					legal++
				}
				entries = append(entries, CommentaryEntry{
					InningNumber: inning.InningNumber,
					OverNumber:   ball.OverNumber,
					BallNumber:   ball.BallNumber,
					Over:         fmt.Sprintf("%d.%d", legal/cricket.BallsPerOver, legal%cricket.BallsPerOver),
					Score:        fmt.Sprintf("%d/%d", runs, wickets),
					Runs:         added,
					Batsman:      ball.Batsman,
					Bowler:       ball.Bowler,
					IsWicket:     ball.IsWicket,
					IsBoundary:   ball.IsBoundary,
					Description:  ball.Description,
					Timestamp:    ball.Timestamp,
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func pickInning(innings []*models.Inning, number int) (*models.Inning, error) {
	if len(innings) == 0 {
		return nil, nil
	}
	if number == 0 {
		return innings[len(innings)-1], nil
	}
	for _, in := range innings {
		if in.InningNumber == number {
			return in, nil
		}
	}
	return nil, &Error{Kind: KindNotFound, Message: fmt.Sprintf("inning %d not found", number)}
}

// GetScorecard returns an inning with its batting card in batting order and its bowling card in the
// order the bowlers came on.
func (s *Service) GetScorecard(ctx context.Context, inningID primitive.ObjectID) (*Scorecard, error) {
	var card *Scorecard
	err := s.view(ctx, func(ctx context.Context, tx database.Tx) error {
		inning, err := tx.GetInning(ctx, inningID)
		if err != nil {
			return lookup(err, "inning", inningID)
		}
		batting, err := tx.ListBattingStats(ctx, inningID)
		if err != nil {
			return err
		}
		bowling, err := tx.ListBowlingStats(ctx, inningID)
		if err != nil {
			return err
		}

		sort.SliceStable(batting, func(i, j int) bool { return batting[i].BattingPosition < batting[j].BattingPosition })
		if batting == nil {
			batting = []*models.BattingStat{}
		}
		if bowling == nil {
			bowling = []*models.BowlingStat{}
		}
		card = &Scorecard{Inning: inning, Batting: batting, Bowling: bowling}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}
