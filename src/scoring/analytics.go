package scoring

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/GSH-LAN/Unwindia_cricket/src/cricket"
	"github.com/GSH-LAN/Unwindia_cricket/src/database"
	"github.com/GSH-LAN/Unwindia_cricket/src/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultExpensiveOvers = 5
	summaryPartnerships   = 5
)

type PartnershipView struct {
	Batsman1  string    `json:"batsman1"`
	Batsman2  string    `json:"batsman2"`
	Runs      int       `json:"runs"`
	Balls     int       `json:"balls"`
	RunRate   float64   `json:"runRate"`
	StartedAt time.Time `json:"startedAt"`
	// Duration is in minutes.
	Duration int `json:"duration"`
}

type FallOfWicketView struct {
	WicketNumber int    `json:"wicketNumber"`
	Score        string `json:"score"`
	Batsman      string `json:"batsman"`
	Overs        string `json:"overs"`
	Partnership  int    `json:"partnership"`
}

// InningReport is the summary of an inning as printed under a scorecard.
type InningReport struct {
	InningNumber  int                   `json:"inningNumber"`
	BattingTeam   string                `json:"battingTeam"`
	BowlingTeam   string                `json:"bowlingTeam"`
	Total         string                `json:"total"`
	Overs         string                `json:"overs"`
	Extras        int                   `json:"extras"`
	RunRate       float64               `json:"runRate"`
	Status        models.InningStatus   `json:"status"`
	StartTime     *time.Time            `json:"startTime,omitempty"`
	EndTime       *time.Time            `json:"endTime,omitempty"`
	Duration      int                   `json:"duration"`
	Batting       []*models.BattingStat `json:"batting"`
	Bowling       []*models.BowlingStat `json:"bowling"`
	Partnerships  []PartnershipView     `json:"partnerships"`
	FallOfWickets []FallOfWicketView    `json:"fallOfWickets"`
	Powerplays    []models.Powerplay    `json:"powerplays"`
	Interruptions []models.Interruption `json:"interruptions"`
}

type PowerplayWindowStatus struct {
	models.PowerplayWindow
	OversCompleted int `json:"oversCompleted"`
	OversRemaining int `json:"oversRemaining"`
	OversUntil     int `json:"oversUntil,omitempty"`
}

type PowerplayStat struct {
	models.Powerplay
	RunRate float64 `json:"runRate"`
}

type PowerplayStatus struct {
	Current *PowerplayWindowStatus   `json:"current,omitempty"`
	Next    *PowerplayWindowStatus   `json:"next,omitempty"`
	Stats   []PowerplayStat          `json:"stats"`
	Windows []models.PowerplayWindow `json:"windows"`
}

// BallAnalysis counts deliveries of an over by outcome.
type BallAnalysis struct {
	DotBalls   int `json:"dotBalls"`
	Singles    int `json:"singles"`
	Doubles    int `json:"doubles"`
	Triples    int `json:"triples"`
	Boundaries int `json:"boundaries"`
	Fours      int `json:"fours"`
	Sixes      int `json:"sixes"`
	Wides      int `json:"wides"`
	NoBalls    int `json:"noBalls"`
	Byes       int `json:"byes"`
	LegByes    int `json:"legByes"`
	Wickets    int `json:"wickets"`
}

type BallDetail struct {
	Sequence       int         `json:"sequence"`
	Ball           models.Ball `json:"ball"`
	CumulativeRuns int         `json:"cumulativeRuns"`
}

type OverSummary struct {
	Over     *models.Over `json:"over"`
	Economy  float64      `json:"economy"`
	Analysis BallAnalysis `json:"analysis"`
	Balls    []BallDetail `json:"balls"`
}

// Spell is a run of overs a bowler sent down from one end, every other over.
type Spell struct {
	Number     int     `json:"number"`
	StartOver  int     `json:"startOver"`
	EndOver    int     `json:"endOver"`
	Overs      int     `json:"overs"`
	Runs       int     `json:"runs"`
	Wickets    int     `json:"wickets"`
	Extras     int     `json:"extras"`
	Maidens    int     `json:"maidens"`
	Economy    float64 `json:"economy"`
	Average    float64 `json:"average"`
	StrikeRate float64 `json:"strikeRate"`
}

type WicketOvers struct {
	Overs        []*models.Over `json:"overs"`
	TotalWickets int            `json:"totalWickets"`
}

type ProgressionPoint struct {
	OverNumber        int     `json:"overNumber"`
	Runs              int     `json:"runs"`
	Wickets           int     `json:"wickets"`
	Extras            int     `json:"extras"`
	CumulativeRuns    int     `json:"cumulativeRuns"`
	CumulativeWickets int     `json:"cumulativeWickets"`
	RunRate           float64 `json:"runRate"`
}

// oversNotation renders a count of legal balls as overs.balls.
func oversNotation(legal int) string {
	return fmt.Sprintf("%d.%d", legal/cricket.BallsPerOver, legal%cricket.BallsPerOver)
}

func partnershipView(p models.Partnership, now time.Time) PartnershipView {
	end := now
	if p.EndedAt != nil {
		end = *p.EndedAt
	}
	return PartnershipView{
		Batsman1:  p.Batsman1,
		Batsman2:  p.Batsman2,
		Runs:      p.Runs,
		Balls:     p.Balls,
		RunRate:   cricket.PartnershipRunRate(p.Runs, p.Balls),
		StartedAt: p.StartedAt,
		Duration:  int(math.Round(end.Sub(p.StartedAt).Minutes())),
	}
}

// GetInningSummary reports an inning with its cards, best partnerships and the fall of wickets.
// The bowling card is ordered by wickets, then by fewest runs.
func (s *Service) GetInningSummary(ctx context.Context, inningID primitive.ObjectID) (*InningReport, error) {
	card, err := s.GetScorecard(ctx, inningID)
	if err != nil {
		return nil, err
	}
	in := card.Inning
	now := s.now()

	bowling := append([]*models.BowlingStat{}, card.Bowling...)
	sort.SliceStable(bowling, func(i, j int) bool {
		if bowling[i].Wickets != bowling[j].Wickets {
			return bowling[i].Wickets > bowling[j].Wickets
		}
		return bowling[i].Runs < bowling[j].Runs
	})

	partnerships := make([]PartnershipView, 0, len(in.Partnerships))
	for _, p := range in.Partnerships {
		partnerships = append(partnerships, partnershipView(p, now))
	}
	sort.SliceStable(partnerships, func(i, j int) bool { return partnerships[i].Runs > partnerships[j].Runs })
	if len(partnerships) > summaryPartnerships {
		partnerships = partnerships[:summaryPartnerships]
	}

	fow := make([]FallOfWicketView, 0, len(in.FallOfWickets))
	for _, f := range in.FallOfWickets {
		fow = append(fow, FallOfWicketView{
			WicketNumber: f.WicketNumber,
			Score:        fmt.Sprintf("%d/%d", f.Runs, f.WicketNumber),
			Batsman:      f.Batsman,
			Overs:        oversNotation((f.OverNumber-1)*cricket.BallsPerOver + f.BallNumber),
			Partnership:  f.Partnership,
		})
	}

	report := &InningReport{
		InningNumber:  in.InningNumber,
		BattingTeam:   in.BattingTeam,
		BowlingTeam:   in.BowlingTeam,
		Total:         fmt.Sprintf("%d/%d", in.Runs, in.Wickets),
		Overs:         oversNotation(in.LegalBalls()),
		Extras:        in.Extras.Total,
		RunRate:       cricket.RunRate(in.Runs, in.Overs, in.Balls),
		Status:        in.Status,
		StartTime:     in.StartTime,
		EndTime:       in.EndTime,
		Duration:      in.Duration,
		Batting:       card.Batting,
		Bowling:       bowling,
		Partnerships:  partnerships,
		FallOfWickets: fow,
		Powerplays:    in.Powerplays,
		Interruptions: in.Interruptions,
	}
	if report.Powerplays == nil {
		report.Powerplays = []models.Powerplay{}
	}
	if report.Interruptions == nil {
		report.Interruptions = []models.Interruption{}
	}
	return report, nil
}

// GetCurrentPartnership returns the pair at the crease of a running inning.
func (s *Service) GetCurrentPartnership(ctx context.Context, inningID primitive.ObjectID) (*PartnershipView, error) {
	var view *PartnershipView
	err := s.view(ctx, func(ctx context.Context, tx database.Tx) error {
		inning, err := tx.GetInning(ctx, inningID)
		if err != nil {
			return lookup(err, "inning", inningID)
		}
		if inning.Status != models.InningInProgress {
			return stateError("inning %d is %s", inning.InningNumber, inning.Status)
		}
		current := inning.CurrentPartnership()
		if current == nil {
			return stateError("no partnership at the crease in inning %d", inning.InningNumber)
		}
		v := partnershipView(*current, s.now())
		view = &v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// GetPowerplayStatus reports the powerplay window of the over being bowled, or the next one to
// come, together with what was scored in each window so far.
func (s *Service) GetPowerplayStatus(ctx context.Context, inningID primitive.ObjectID) (*PowerplayStatus, error) {
	var status *PowerplayStatus
	err := s.view(ctx, func(ctx context.Context, tx database.Tx) error {
		inning, err := tx.GetInning(ctx, inningID)
		if err != nil {
			return lookup(err, "inning", inningID)
		}
		match, err := tx.GetMatch(ctx, inning.MatchID)
		if err != nil {
			return lookup(err, "match", inning.MatchID)
		}

		windows := append([]models.PowerplayWindow{}, match.Rules.Powerplays...)
		sort.SliceStable(windows, func(i, j int) bool { return windows[i].FromOver < windows[j].FromOver })
		status = &PowerplayStatus{Stats: []PowerplayStat{}, Windows: windows}

		current := inning.Overs + 1
		for _, w := range windows {
			switch {
			case status.Current == nil && w.FromOver <= current && current <= w.ToOver:
				status.Current = &PowerplayWindowStatus{
					PowerplayWindow: w,
					OversCompleted:  inning.Overs - (w.FromOver - 1),
					OversRemaining:  w.ToOver - inning.Overs,
				}
			case status.Next == nil && w.FromOver > current:
				status.Next = &PowerplayWindowStatus{
					PowerplayWindow: w,
					OversRemaining:  w.ToOver - w.FromOver + 1,
					OversUntil:      w.FromOver - current,
				}
			}
		}
		if status.Current != nil {
			status.Next = nil
		}

		legal := inning.LegalBalls()
		for _, pp := range inning.Powerplays {
			bowled := min(legal, pp.ToOver*cricket.BallsPerOver) - (pp.FromOver-1)*cricket.BallsPerOver
			status.Stats = append(status.Stats, PowerplayStat{
				Powerplay: pp,
				RunRate:   cricket.RunRate(pp.Runs, 0, max(bowled, 0)),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

// GetOverSummary breaks one over down ball by ball.
func (s *Service) GetOverSummary(ctx context.Context, inningID primitive.ObjectID, overNumber int) (*OverSummary, error) {
	var summary *OverSummary
	err := s.view(ctx, func(ctx context.Context, tx database.Tx) error {
		if _, err := tx.GetInning(ctx, inningID); err != nil {
			return lookup(err, "inning", inningID)
		}
		over, err := tx.GetOver(ctx, inningID, overNumber)
		if errors.Is(err, database.ErrNotFound) {
			return &Error{Kind: KindNotFound, Message: fmt.Sprintf("over %d not found", overNumber)}
		}
		if err != nil {
			return err
		}

		summary = &OverSummary{
			Over:    over,
			Economy: cricket.EconomyRate(over.Runs, 0, over.LegalBalls),
			Balls:   make([]BallDetail, 0, len(over.Balls)),
		}
		a := &summary.Analysis
		a.Wickets = over.Wickets

		var runs int
		for i, ball := range over.Balls {
			switch {
			case ball.Runs == 0 && ball.DeliveryType == models.DeliveryNormal && !ball.IsWicket:
				a.DotBalls++
			case ball.Runs == 1:
				a.Singles++
			case ball.Runs == 2:
				a.Doubles++
			case ball.Runs == 3:
				a.Triples++
			}
			switch ball.DeliveryType {
			case models.DeliveryWide:
				a.Wides++
			case models.DeliveryNoBall:
				a.NoBalls++
			}
			if ball.Extras.Byes > 0 {
				a.Byes++
			}
			if ball.Extras.LegByes > 0 {
				a.LegByes++
			}
			if ball.IsBoundary {
				a.Boundaries++
			}
			switch ball.BoundaryType {
			case "4":
				a.Fours++
			case "6":
				a.Sixes++
			}

			runs += cricket.CalculateBallRuns(ball.Runs, ball.Extras)
			summary.Balls = append(summary.Balls, BallDetail{Sequence: i + 1, Ball: ball, CumulativeRuns: runs})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *Service) completedOvers(ctx context.Context, inningID primitive.ObjectID) ([]*models.Over, error) {
	var completed []*models.Over
	err := s.view(ctx, func(ctx context.Context, tx database.Tx) error {
		if _, err := tx.GetInning(ctx, inningID); err != nil {
			return lookup(err, "inning", inningID)
		}
		overs, err := tx.ListOvers(ctx, inningID)
		if err != nil {
			return err
		}
		completed = make([]*models.Over, 0, len(overs))
		for _, o := range overs {
			if o.Status == models.OverCompleted {
				completed = append(completed, o)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

// GetBowlerSpells groups the completed overs opened by bowler into spells. An over that is not two
// after the previous one starts a new spell.
func (s *Service) GetBowlerSpells(ctx context.Context, inningID primitive.ObjectID, bowler string) ([]Spell, error) {
	overs, err := s.completedOvers(ctx, inningID)
	if err != nil {
		return nil, err
	}

	spells := []Spell{}
	var current *Spell
	for _, o := range overs {
		if o.Bowler != bowler {
			continue
		}
		if current == nil || o.OverNumber != current.EndOver+2 {
			spells = append(spells, Spell{Number: len(spells) + 1, StartOver: o.OverNumber})
			current = &spells[len(spells)-1]
		}
		current.EndOver = o.OverNumber
		current.Overs++
		if o.IsMaiden {
			current.Maidens++
		}
		for _, ball := range o.Balls {
			current.Runs += cricket.RunsConceded(ball.Runs, ball.Extras)
			current.Extras += ball.Extras.Wides + ball.Extras.NoBalls
			if ball.IsWicket && ball.Dismissal != nil && cricket.IsBowlerCredited(ball.Dismissal.Type) {
				current.Wickets++
			}
		}
	}
	if len(spells) == 0 {
		return nil, &Error{Kind: KindNotFound, Message: fmt.Sprintf("no completed overs by %s", bowler)}
	}

	for i := range spells {
		sp := &spells[i]
		sp.Economy = cricket.EconomyRate(sp.Runs, sp.Overs, 0)
		sp.Average = cricket.BowlingAverage(sp.Runs, sp.Wickets)
		sp.StrikeRate = cricket.BowlingStrikeRate(sp.Overs*cricket.BallsPerOver, sp.Wickets)
	}
	return spells, nil
}

// GetMaidenOvers lists the completed maiden overs in over order.
func (s *Service) GetMaidenOvers(ctx context.Context, inningID primitive.ObjectID) ([]*models.Over, error) {
	overs, err := s.completedOvers(ctx, inningID)
	if err != nil {
		return nil, err
	}
	maidens := []*models.Over{}
	for _, o := range overs {
		if o.IsMaiden {
			maidens = append(maidens, o)
		}
	}
	return maidens, nil
}

// GetWicketOvers lists the completed overs that took wickets, most wickets first.
func (s *Service) GetWicketOvers(ctx context.Context, inningID primitive.ObjectID) (*WicketOvers, error) {
	overs, err := s.completedOvers(ctx, inningID)
	if err != nil {
		return nil, err
	}
	res := &WicketOvers{Overs: []*models.Over{}}
	for _, o := range overs {
		if o.Wickets > 0 {
			res.Overs = append(res.Overs, o)
			res.TotalWickets += o.Wickets
		}
	}
	sort.SliceStable(res.Overs, func(i, j int) bool { return res.Overs[i].Wickets > res.Overs[j].Wickets })
	return res, nil
}

// GetExpensiveOvers lists the completed overs that cost the most runs. limit 0 selects the default.
func (s *Service) GetExpensiveOvers(ctx context.Context, inningID primitive.ObjectID, limit int) ([]*models.Over, error) {
	if limit <= 0 {
		limit = DefaultExpensiveOvers
	}
	overs, err := s.completedOvers(ctx, inningID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(overs, func(i, j int) bool { return overs[i].Runs > overs[j].Runs })
	if len(overs) > limit {
		overs = overs[:limit]
	}
	return overs, nil
}

// GetProgression is the over-by-over worm of an inning.
func (s *Service) GetProgression(ctx context.Context, inningID primitive.ObjectID) ([]ProgressionPoint, error) {
	overs, err := s.completedOvers(ctx, inningID)
	if err != nil {
		return nil, err
	}
	points := make([]ProgressionPoint, 0, len(overs))
	var runs, wickets int
	for i, o := range overs {
		runs += o.Runs
		wickets += o.Wickets
		points = append(points, ProgressionPoint{
			OverNumber:        o.OverNumber,
			Runs:              o.Runs,
			Wickets:           o.Wickets,
			Extras:            o.Extras.Total,
			CumulativeRuns:    runs,
			CumulativeWickets: wickets,
			RunRate:           cricket.RunRate(runs, i+1, 0),
		})
	}
	return points, nil
}
