package scoring

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/GSH-LAN/Unwindia_cricket/src/cricket"
	"github.com/GSH-LAN/Unwindia_cricket/src/database"
	"github.com/GSH-LAN/Unwindia_cricket/src/models"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testStart = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

// stepClock advances one second on every reading.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestService(t *testing.T, opts ...Option) (*Service, *database.MemoryClient) {
	t.Helper()
	db := database.NewMemoryClient()
	clock := &stepClock{now: testStart}
	return NewService(db, append([]Option{WithClock(clock.Now)}, opts...)...), db
}

// lineup bats all four players of batting and bowls the last two of bowling.
func lineup(batting, bowling string) models.PlayingXI {
	var xi models.PlayingXI
	for i := 1; i <= 4; i++ {
		xi.Batting = append(xi.Batting, models.BattingSlot{Player: player(batting, i), BattingPosition: i})
	}
	for i := 3; i <= 4; i++ {
		xi.Bowling = append(xi.Bowling, models.BowlingSlot{Player: player(bowling, i), BowlingOrder: i - 2})
	}
	return xi
}

func player(team string, n int) string {
	return fmt.Sprintf("%s-%d", team, n)
}

// newMatch sets up Lions against Tigers with Lions batting first. Custom matches default to two
// overs per inning.
func newMatch(t *testing.T, svc *Service, setup MatchSetup) *models.Match {
	t.Helper()
	ctx := context.Background()

	if setup.Format == "" {
		setup.Format = models.FormatCustom
	}
	if setup.Format == models.FormatCustom && setup.OversPerInning == 0 {
		setup.OversPerInning = 2
	}
	setup.Title = "Lions v Tigers"
	setup.Team1 = "Lions"
	setup.Team2 = "Tigers"

	match, err := svc.SetupMatch(ctx, setup)
	require.NoError(t, err)
	match, err = svc.RecordToss(ctx, match.ID, "Lions", models.TossBat)
	require.NoError(t, err)
	return match
}

// scorer drives one inning and fills in the players at the crease for every delivery. Bowlers
// alternate by over.
type scorer struct {
	t       *testing.T
	svc     *Service
	inning  *models.Inning
	bowlers []string
}

func startInning(t *testing.T, svc *Service, matchID primitive.ObjectID, number int, batting, bowling string) *scorer {
	t.Helper()
	ctx := context.Background()

	xi := lineup(batting, bowling)
	inning, err := svc.InitializeInning(ctx, InningSetup{
		MatchID:      matchID,
		InningNumber: number,
		BattingTeam:  batting,
		BowlingTeam:  bowling,
		PlayingXI:    xi,
	})
	require.NoError(t, err)

	bowlers := []string{xi.Bowling[0].Player, xi.Bowling[1].Player}
	inning, err = svc.StartInning(ctx, inning.ID, xi.Batting[0].Player, xi.Batting[1].Player, bowlers[0])
	require.NoError(t, err)
	return &scorer{t: t, svc: svc, inning: inning, bowlers: bowlers}
}

func (s *scorer) input(in BallInput) BallInput {
	if in.OverNumber == 0 {
		in.OverNumber = s.inning.Overs + 1
	}
	if in.BallNumber == 0 {
		in.BallNumber = min(s.inning.Balls+1, cricket.BallsPerOver)
	}
	if in.Batsman == "" {
		in.Batsman = s.inning.Striker
	}
	if in.NonStriker == "" {
		in.NonStriker = s.inning.NonStriker
	}
	if in.Bowler == "" {
		in.Bowler = s.bowlers[(in.OverNumber-1)%len(s.bowlers)]
	}
	if in.DeliveryType == "" {
		in.DeliveryType = models.DeliveryNormal
	}
	return in
}

func (s *scorer) try(in BallInput) (*BallResult, error) {
	res, err := s.svc.ScoreBall(context.Background(), s.inning.ID, s.input(in))
	if err == nil {
		s.inning = res.Inning
	}
	return res, err
}

func (s *scorer) ball(in BallInput) *BallResult {
	s.t.Helper()
	res, err := s.try(in)
	require.NoError(s.t, err)
	return res
}

func (s *scorer) runs(n int) *BallResult {
	s.t.Helper()
	return s.ball(BallInput{Runs: n})
}

func (s *scorer) dots(n int) *BallResult {
	s.t.Helper()
	var res *BallResult
	for i := 0; i < n; i++ {
		res = s.ball(BallInput{})
	}
	return res
}

func (s *scorer) undo() *UndoResult {
	s.t.Helper()
	res, err := s.svc.UndoBall(context.Background(), s.inning.ID)
	require.NoError(s.t, err)
	s.inning = res.Inning
	return res
}

func (s *scorer) declare() {
	s.t.Helper()
	inning, err := s.svc.DeclareInnings(context.Background(), s.inning.ID, s.inning.BattingTeam, "")
	require.NoError(s.t, err)
	s.inning = inning
}

func (s *scorer) card() *Scorecard {
	s.t.Helper()
	card, err := s.svc.GetScorecard(context.Background(), s.inning.ID)
	require.NoError(s.t, err)
	return card
}

func (s *scorer) batting(p string) *models.BattingStat {
	s.t.Helper()
	for _, stat := range s.card().Batting {
		if stat.Player == p {
			return stat
		}
	}
	require.Failf(s.t, "no batting record", "player %s", p)
	return nil
}

func (s *scorer) bowling(p string) *models.BowlingStat {
	s.t.Helper()
	for _, stat := range s.card().Bowling {
		if stat.Player == p {
			return stat
		}
	}
	require.Failf(s.t, "no bowling record", "player %s", p)
	return nil
}

func wicket(typ models.DismissalType) BallInput {
	return BallInput{IsWicket: true, Dismissal: &models.Dismissal{Type: typ}}
}

func loadMatch(t *testing.T, svc *Service, id primitive.ObjectID) *models.Match {
	t.Helper()
	state, err := svc.GetScoringState(context.Background(), id)
	require.NoError(t, err)
	return state.Match
}

func countEvents(t *testing.T, db database.DatabaseClient) int {
	t.Helper()
	events, err := db.ListEvents(context.Background(), models.EVENT_STATE_NEW, 0)
	require.NoError(t, err)
	return len(events)
}
