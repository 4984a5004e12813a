package scoring

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/GSH-LAN/Unwindia_cricket/src/cricket"
	"github.com/GSH-LAN/Unwindia_cricket/src/database"
	"github.com/GSH-LAN/Unwindia_cricket/src/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestScoreBall_Boundary(t *testing.T) {
	svc, _ := newTestService(t)
	match := newMatch(t, svc, MatchSetup{})
	s := startInning(t, svc, match.ID, 1, "Lions", "Tigers")

	res := s.runs(4)

	assert.True(t, res.Ball.IsBoundary)
	assert.Equal(t, "4", res.Ball.BoundaryType)
	assert.Equal(t, 4, res.Inning.Runs)
	assert.Equal(t, 1, res.Inning.Balls)
	assert.Equal(t, "Lions-1", res.Inning.Striker)

	batter := s.batting("Lions-1")
	assert.Equal(t, 4, batter.Runs)
	assert.Equal(t, 1, batter.BallsFaced)
	assert.Equal(t, 1, batter.Fours)
	assert.Equal(t, 4, s.bowling("Tigers-3").Runs)
}

func TestScoreBall_Wide(t *testing.T) {
	svc, _ := newTestService(t)
	match := newMatch(t, svc, MatchSetup{})
	s := startInning(t, svc, match.ID, 1, "Lions", "Tigers")

	res := s.ball(BallInput{DeliveryType: models.DeliveryWide, Extras: &models.BallExtras{Wides: 1}})

	assert.Equal(t, 1, res.Inning.Runs)
	assert.Zero(t, res.Inning.Balls)
	assert.Zero(t, res.Over.LegalBalls)
	assert.Equal(t, 1, res.Inning.Extras.Wides)
	assert.Equal(t, 1, s.bowling("Tigers-3").Runs)
	assert.Zero(t, s.batting("Lions-1").BallsFaced)

	// the wide is implied by the delivery type
	res = s.ball(BallInput{DeliveryType: models.DeliveryWide})
	assert.Equal(t, 1, res.Ball.Extras.Wides)
	assert.Equal(t, 2, res.Inning.Runs)
	assert.Equal(t, "Wide", res.Ball.Description)
}

func TestScoreBall_ByesMovedIntoExtras(t *testing.T) {
	svc, _ := newTestService(t)
	match := newMatch(t, svc, MatchSetup{})
	s := startInning(t, svc, match.ID, 1, "Lions", "Tigers")

	res := s.ball(BallInput{Runs: 2, DeliveryType: models.DeliveryLegBye})

	assert.Zero(t, res.Ball.Runs)
	assert.Equal(t, 2, res.Ball.Extras.LegByes)
	assert.Equal(t, 2, res.Inning.Runs)
	assert.Equal(t, 2, res.Inning.Extras.LegByes)
	assert.Zero(t, s.batting("Lions-1").Runs)
	assert.Equal(t, 1, s.batting("Lions-1").BallsFaced)
	assert.Zero(t, s.bowling("Tigers-3").Runs)
}

func TestScoreBall_Maiden(t *testing.T) {
	svc, _ := newTestService(t)
	match := newMatch(t, svc, MatchSetup{})
	s := startInning(t, svc, match.ID, 1, "Lions", "Tigers")

	s.dots(5)
	res := s.ball(BallInput{})

	assert.True(t, res.Over.IsMaiden)
	assert.Equal(t, models.OverCompleted, res.Over.Status)
	require.NotNil(t, res.Over.EndTime)
	assert.Equal(t, 1, res.Inning.Overs)
	assert.Zero(t, res.Inning.Balls)

	bowler := s.bowling("Tigers-3")
	assert.Equal(t, 1, bowler.Maidens)
	assert.Equal(t, 1, bowler.Overs)
	assert.Zero(t, bowler.Balls)
}

func TestScoreBall_MaidenIgnoresWidesAndLegByes(t *testing.T) {
	svc, _ := newTestService(t)
	match := newMatch(t, svc, MatchSetup{})
	s := startInning(t, svc, match.ID, 1, "Lions", "Tigers")

	s.ball(BallInput{DeliveryType: models.DeliveryWide})
	s.ball(BallInput{Runs: 1, DeliveryType: models.DeliveryLegBye})
	res := s.dots(5)

	assert.True(t, res.Over.IsMaiden)
	assert.Equal(t, 2, res.Over.Runs)
	assert.Equal(t, 7, len(res.Over.Balls))
	assert.Equal(t, 1, s.bowling("Tigers-3").Runs)
	assert.Equal(t, 1, s.bowling("Tigers-3").Maidens)

	s.runs(1)
	res = s.dots(5)
	assert.False(t, res.Over.IsMaiden)
}

func TestScoreBall_Wicket(t *testing.T) {
	svc, _ := newTestService(t)
	match := newMatch(t, svc, MatchSetup{})
	s := startInning(t, svc, match.ID, 1, "Lions", "Tigers")

	s.runs(2)
	res := s.ball(wicket(models.DismissalBowled))

	in := res.Inning
	assert.Equal(t, 1, in.Wickets)
	require.Len(t, in.FallOfWickets, 1)
	fow := in.FallOfWickets[0]
	assert.Equal(t, 1, fow.WicketNumber)
	assert.Equal(t, 2, fow.Runs)
	assert.Equal(t, 2, fow.Partnership)
	assert.Equal(t, "Lions-1", fow.Batsman)
	assert.Equal(t, 1, fow.OverNumber)
	assert.Equal(t, 2, fow.BallNumber)

	require.Len(t, in.Partnerships, 2)
	assert.NotNil(t, in.Partnerships[0].EndedAt)
	assert.Equal(t, 2, in.Partnerships[0].Runs)
	assert.True(t, in.Partnerships[1].Open())
	assert.True(t, in.Partnerships[1].Involves("Lions-3", "Lions-2"))

	assert.Equal(t, "Lions-3", in.Striker)
	assert.Equal(t, "Lions-2", in.NonStriker)

	out := s.batting("Lions-1")
	assert.True(t, out.IsOut)
	require.NotNil(t, out.Dismissal)
	assert.Equal(t, models.DismissalBowled, out.Dismissal.Type)
	assert.Equal(t, "Tigers-3", out.Dismissal.Bowler)

	bowler := s.bowling("Tigers-3")
	assert.Equal(t, 1, bowler.Wickets)
	require.Len(t, bowler.Dismissals, 1)
	assert.Equal(t, "Lions-1", bowler.Dismissals[0].Batsman)
}

func TestScoreBall_NonStrikerRunOut(t *testing.T) {
	svc, _ := newTestService(t)
	match := newMatch(t, svc, MatchSetup{})
	s := startInning(t, svc, match.ID, 1, "Lions", "Tigers")

	in := wicket(models.DismissalRunOut)
	in.Runs = 1
	in.Dismissal.PlayerOut = "Lions-2"
	in.Dismissal.Fielder = "Tigers-1"
	res := s.ball(in)

	assert.Equal(t, 1, res.Inning.Runs)
	assert.Equal(t, "Lions-2", res.Inning.FallOfWickets[0].Batsman)
	assert.ElementsMatch(t, []string{"Lions-1", "Lions-3"}, []string{res.Inning.Striker, res.Inning.NonStriker})
	assert.Zero(t, s.bowling("Tigers-3").Wickets)
}

func TestScoreBall_RunsAndBallsInvariant(t *testing.T) {
	svc, _ := newTestService(t)
	match := newMatch(t, svc, MatchSetup{OversPerInning: 3})
	s := startInning(t, svc, match.ID, 1, "Lions", "Tigers")

	deliveries := []BallInput{
		{Runs: 4},
		{Runs: 1},
		{DeliveryType: models.DeliveryWide},
		{Runs: 1, DeliveryType: models.DeliveryNoBall},
		{DeliveryType: models.DeliveryBye, Extras: &models.BallExtras{Byes: 2}},
		{Runs: 1, DeliveryType: models.DeliveryLegBye},
		{},
		{Runs: 6},
		{DeliveryType: models.DeliveryWide, Extras: &models.BallExtras{Wides: 3}},
		{Runs: 2},
		{Runs: 3},
		{DeliveryType: models.DeliveryDeadBall},
		{},
		{Runs: 1, Extras: &models.BallExtras{Penalty: 5}},
		{},
		{Runs: 2},
	}

	var runs, legal int
	for _, d := range deliveries {
		res := s.ball(d)
		runs += cricket.CalculateBallRuns(res.Ball.Runs, res.Ball.Extras)
		if cricket.CountsTowardsOver(res.Ball.DeliveryType) {
			legal++
		}

		assert.Equal(t, runs, res.Inning.Runs)
		assert.GreaterOrEqual(t, res.Inning.Balls, 0)
		assert.LessOrEqual(t, res.Inning.Balls, 5)
		assert.Equal(t, legal, res.Inning.LegalBalls())
		assert.NotEqual(t, res.Inning.Striker, res.Inning.NonStriker)
	}
	assert.Equal(t, legal/cricket.BallsPerOver, s.inning.Overs)

	extras := s.inning.Extras
	assert.Equal(t, extras.Wides+extras.NoBalls+extras.Byes+extras.LegByes+extras.Penalty, extras.Total)
	assert.Equal(t, 4, extras.Wides)
	assert.Equal(t, 5, extras.Penalty)
}

func TestScoreBall_OverEndSwapsOnce(t *testing.T) {
	svc, _ := newTestService(t)
	match := newMatch(t, svc, MatchSetup{OversPerInning: 3})
	s := startInning(t, svc, match.ID, 1, "Lions", "Tigers")

	s.dots(6)
	assert.Equal(t, "Lions-2", s.inning.Striker)
	assert.Equal(t, "Lions-1", s.inning.NonStriker)

	s.dots(5)
	res := s.runs(1)
	assert.Equal(t, "Lions-2", res.Inning.Striker)
	assert.Equal(t, "Lions-1", res.Inning.NonStriker)
}

func TestScoreBall_AllOut(t *testing.T) {
	svc, _ := newTestService(t)
	match := newMatch(t, svc, MatchSetup{})
	s := startInning(t, svc, match.ID, 1, "Lions", "Tigers")

	s.ball(wicket(models.DismissalBowled))
	s.ball(wicket(models.DismissalLBW))
	res := s.ball(wicket(models.DismissalStumped))

	assert.True(t, res.InningComplete)
	assert.Equal(t, models.ReasonAllOut, res.CompletionReason)
	assert.Equal(t, models.InningCompleted, res.Inning.Status)
	assert.Equal(t, 3, res.Inning.Wickets)
	assert.NotNil(t, res.Inning.EndTime)
	assert.Nil(t, res.Inning.CurrentPartnership())

	notOut := s.batting("Lions-2")
	assert.True(t, notOut.IsNotOut)
	assert.NotNil(t, notOut.EndTime)

	assert.Equal(t, models.MatchInning2, loadMatch(t, svc, match.ID).Status)

	_, err := s.try(BallInput{Batsman: "Lions-2", NonStriker: "Lions-1"})
	assert.True(t, IsState(err))
}

func TestScoreBall_WicketLimit(t *testing.T) {
	svc, _ := newTestService(t)
	match := newMatch(t, svc, MatchSetup{WicketsPerInning: 2})
	s := startInning(t, svc, match.ID, 1, "Lions", "Tigers")

	s.ball(wicket(models.DismissalBowled))
	res := s.ball(wicket(models.DismissalBowled))

	assert.Equal(t, models.ReasonAllOut, res.CompletionReason)
	assert.Equal(t, 2, res.Inning.Wickets)
	assert.LessOrEqual(t, res.Inning.Wickets, res.Inning.WicketsLimit)
}

func TestScoreBall_OversComplete(t *testing.T) {
	svc, _ := newTestService(t)
	match := newMatch(t, svc, MatchSetup{})
	s := startInning(t, svc, match.ID, 1, "Lions", "Tigers")

	s.dots(11)
	res := s.dots(1)

	assert.True(t, res.InningComplete)
	assert.Equal(t, models.ReasonOversComplete, res.CompletionReason)
	assert.Equal(t, 2, res.Inning.Overs)
	assert.Equal(t, "Tigers-4", s.bowling("Tigers-4").Player)
	assert.Equal(t, 1, s.bowling("Tigers-4").Overs)
}

func TestScoreBall_PowerplayLedger(t *testing.T) {
	svc, _ := newTestService(t)
	match := newMatch(t, svc, MatchSetup{
		OversPerInning: 3,
		Powerplays:     []models.PowerplayWindow{{Type: models.PowerplayMandatory, FromOver: 1, ToOver: 1}},
	})
	s := startInning(t, svc, match.ID, 1, "Lions", "Tigers")

	s.runs(4)
	s.ball(wicket(models.DismissalCaught))
	s.dots(4)
	s.runs(6)

	require.Len(t, s.inning.Powerplays, 1)
	pp := s.inning.Powerplays[0]
	assert.Equal(t, models.PowerplayMandatory, pp.Type)
	assert.Equal(t, 4, pp.Runs)
	assert.Equal(t, 1, pp.Wickets)
}

func TestScoreBall_FreeHit(t *testing.T) {
	svc, _ := newTestService(t)
	match := newMatch(t, svc, MatchSetup{})
	s := startInning(t, svc, match.ID, 1, "Lions", "Tigers")

	s.ball(BallInput{DeliveryType: models.DeliveryNoBall})
	_, err := s.try(wicket(models.DismissalBowled))
	assert.True(t, IsState(err))

	res := s.ball(BallInput{DeliveryType: models.DeliveryWide})
	assert.True(t, res.Ball.IsFreeHit)

	in := wicket(models.DismissalRunOut)
	res = s.ball(in)
	assert.True(t, res.Ball.IsFreeHit)
	assert.Equal(t, 1, res.Inning.Wickets)

	res = s.dots(1)
	assert.False(t, res.Ball.IsFreeHit)
}

func TestScoreBall_NoFreeHitInTests(t *testing.T) {
	svc, _ := newTestService(t)
	match := newMatch(t, svc, MatchSetup{Format: models.FormatTest})
	s := startInning(t, svc, match.ID, 1, "Lions", "Tigers")

	s.ball(BallInput{DeliveryType: models.DeliveryNoBall})
	res := s.ball(wicket(models.DismissalBowled))
	assert.False(t, res.Ball.IsFreeHit)
	assert.Equal(t, 1, res.Inning.Wickets)
}

func TestScoreBall_ValidationLeavesNoWrites(t *testing.T) {
	svc, db := newTestService(t)
	match := newMatch(t, svc, MatchSetup{})
	s := startInning(t, svc, match.ID, 1, "Lions", "Tigers")
	s.runs(1)
	events := countEvents(t, db)

	_, err := svc.ScoreBall(context.Background(), s.inning.ID, BallInput{
		OverNumber:   1,
		BallNumber:   7,
		Runs:         3,
		DeliveryType: models.DeliveryDeadBall,
		Extras:       &models.BallExtras{Byes: -1},
		IsWicket:     true,
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	var scoringErr *Error
	require.True(t, errors.As(err, &scoringErr))
	assert.ElementsMatch(t, []string{
		"ballNumber: must be between 1 and 6",
		"batsman: required",
		"bowler: required",
		"dismissal: required for a wicket",
		"extras.byes: must not be negative",
		"nonStriker: required",
		"runs: 3 not allowed on a dead_ball delivery",
	}, scoringErr.Fields)

	_, err = s.try(BallInput{DeliveryType: models.DeliveryWide, IsWicket: true, Dismissal: &models.Dismissal{Type: models.DismissalBowled}})
	assert.True(t, IsValidation(err))

	_, err = s.try(BallInput{Runs: 7})
	assert.True(t, IsValidation(err))

	state, err := svc.GetScoringState(context.Background(), match.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Inning.Runs)
	assert.Equal(t, 1, state.Inning.Balls)
	assert.Len(t, state.CurrentOver.Balls, 1)
	assert.Equal(t, events, countEvents(t, db))
}

func TestScoreBall_StateErrors(t *testing.T) {
	svc, db := newTestService(t)
	match := newMatch(t, svc, MatchSetup{OversPerInning: 3})
	s := startInning(t, svc, match.ID, 1, "Lions", "Tigers")
	s.runs(1)
	events := countEvents(t, db)

	tests := []struct {
		name string
		in   BallInput
	}{
		{name: "wrong striker", in: BallInput{Batsman: "Lions-1", NonStriker: "Lions-2"}},
		{name: "bowler outside the XI", in: BallInput{Bowler: "Tigers-1"}},
		{name: "bowler change mid over", in: BallInput{Bowler: "Tigers-4"}},
		{name: "over skipped", in: BallInput{OverNumber: 2}},
		{name: "ball out of sequence", in: BallInput{BallNumber: 4}},
		{name: "ball repeated", in: BallInput{BallNumber: 1}},
		{name: "player out not at the crease", in: BallInput{IsWicket: true, Dismissal: &models.Dismissal{Type: models.DismissalRunOut, PlayerOut: "Lions-4"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.try(tt.in)
			require.Error(t, err)
			assert.True(t, IsState(err), err.Error())
		})
	}
	assert.Equal(t, events, countEvents(t, db))
}

func TestScoreBall_ConsecutiveOvers(t *testing.T) {
	svc, _ := newTestService(t)
	match := newMatch(t, svc, MatchSetup{OversPerInning: 3})
	s := startInning(t, svc, match.ID, 1, "Lions", "Tigers")
	s.dots(6)

	_, err := s.try(BallInput{Bowler: "Tigers-3"})
	assert.True(t, IsState(err))

	_, err = svc.UpdateBowler(context.Background(), s.inning.ID, "Tigers-3")
	assert.True(t, IsState(err))

	res := s.ball(BallInput{Bowler: "Tigers-4"})
	assert.Equal(t, "Tigers-4", res.Inning.CurrentBowler)
	assert.Equal(t, "Tigers-4", res.Over.Bowler)
}

func TestScoreBall_BowlerQuota(t *testing.T) {
	svc, _ := newTestService(t)
	match := newMatch(t, svc, MatchSetup{OversPerInning: 3, MaxOversPerBowler: 1})
	s := startInning(t, svc, match.ID, 1, "Lions", "Tigers")
	ctx := context.Background()

	res := s.dots(6)
	assert.Empty(t, res.Inning.CurrentBowler)

	_, err := s.try(BallInput{})
	assert.True(t, IsState(err))

	_, err = svc.UpdateBowler(ctx, s.inning.ID, "Tigers-3")
	assert.True(t, IsState(err))

	inning, err := svc.UpdateBowler(ctx, s.inning.ID, "Tigers-4")
	require.NoError(t, err)
	s.inning = inning
	assert.Equal(t, "Tigers-4", inning.CurrentBowler)

	res = s.dots(1)
	assert.Equal(t, 2, res.Over.OverNumber)
}

func TestScoreBall_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.ScoreBall(context.Background(), primitive.NewObjectID(), BallInput{
		OverNumber: 1, BallNumber: 1, Batsman: "a", NonStriker: "b", Bowler: "c", DeliveryType: models.DeliveryNormal,
	})
	assert.True(t, IsNotFound(err))
}

func TestScoreBall_NotStarted(t *testing.T) {
	svc, _ := newTestService(t)
	match := newMatch(t, svc, MatchSetup{})
	inning, err := svc.InitializeInning(context.Background(), InningSetup{
		MatchID:      match.ID,
		InningNumber: 1,
		BattingTeam:  "Lions",
		BowlingTeam:  "Tigers",
		PlayingXI:    lineup("Lions", "Tigers"),
	})
	require.NoError(t, err)

	_, err = svc.ScoreBall(context.Background(), inning.ID, BallInput{
		OverNumber: 1, BallNumber: 1, Batsman: "Lions-1", NonStriker: "Lions-2", Bowler: "Tigers-3", DeliveryType: models.DeliveryNormal,
	})
	assert.True(t, IsState(err))
}

// racingClient commits a competing save of an inning between an operation and its commit.
type racingClient struct {
	*database.MemoryClient
	inningID primitive.ObjectID
	armed    bool
}

func (c *racingClient) RunInTransaction(ctx context.Context, fn database.TxFunc) error {
	return c.MemoryClient.RunInTransaction(ctx, func(ctx context.Context, tx database.Tx) error {
		if err := fn(ctx, tx); err != nil {
			return err
		}
		if !c.armed {
			return nil
		}
		c.armed = false
		return c.MemoryClient.RunInTransaction(ctx, func(ctx context.Context, other database.Tx) error {
			inning, err := other.GetInning(ctx, c.inningID)
			if err != nil {
				return err
			}
			return other.SaveInning(ctx, inning)
		})
	})
}

func TestScoreBall_VersionConflict(t *testing.T) {
	db := &racingClient{MemoryClient: database.NewMemoryClient()}
	clock := &stepClock{now: testStart}
	svc := NewService(db, WithClock(clock.Now))

	match := newMatch(t, svc, MatchSetup{})
	s := startInning(t, svc, match.ID, 1, "Lions", "Tigers")
	events := countEvents(t, db)

	db.inningID = s.inning.ID
	db.armed = true
	_, err := s.try(BallInput{Runs: 4})
	require.Error(t, err)
	assert.True(t, IsTransaction(err))
	assert.ErrorIs(t, err, database.ErrVersionConflict)
	assert.Equal(t, events, countEvents(t, db))

	state, err := svc.GetScoringState(context.Background(), match.ID)
	require.NoError(t, err)
	assert.Zero(t, state.Inning.Runs)
	assert.Nil(t, state.CurrentOver)

	res := s.runs(4)
	assert.Equal(t, 4, res.Inning.Runs)
}

type recordingObserver struct {
	runs []int
}

func (o *recordingObserver) Committed(_ context.Context, _ *models.Match, inning *models.Inning) {
	if inning != nil {
		o.runs = append(o.runs, inning.Runs)
	}
}

func TestScoreBall_ObserversAndEvents(t *testing.T) {
	observer := &recordingObserver{}
	svc, db := newTestService(t, WithObserver(observer))
	match := newMatch(t, svc, MatchSetup{})
	s := startInning(t, svc, match.ID, 1, "Lions", "Tigers")
	observer.runs = nil

	s.runs(2)
	_, err := s.try(BallInput{Runs: 9})
	require.Error(t, err)
	s.runs(1)
	assert.Equal(t, []int{2, 3}, observer.runs)

	events, err := db.ListEvents(context.Background(), models.EVENT_STATE_NEW, 0)
	require.NoError(t, err)
	var scored int
	for _, e := range events {
		if e.Type == models.EventBallScored {
			scored++
			assert.Equal(t, s.inning.ID, e.InningID)
			assert.NotEmpty(t, e.EventID)
		}
	}
	assert.Equal(t, 2, scored)
}

func TestScoreBall_MaidenOnLastWicket(t *testing.T) {
	svc, _ := newTestService(t)
	match := newMatch(t, svc, MatchSetup{})
	s := startInning(t, svc, match.ID, 1, "Lions", "Tigers")

	s.ball(wicket(models.DismissalBowled))
	s.ball(wicket(models.DismissalLBW))
	s.dots(3)
	res := s.ball(wicket(models.DismissalBowled))

	assert.Equal(t, models.ReasonAllOut, res.CompletionReason)
	assert.Equal(t, 6, res.Over.LegalBalls)
	assert.True(t, res.Over.IsMaiden)

	bowler := s.bowling("Tigers-3")
	assert.Equal(t, 1, bowler.Overs)
	assert.Equal(t, 1, bowler.Maidens)
	assert.Equal(t, 3, bowler.Wickets)
}

func TestScoreBall_MidOverBowlerChange(t *testing.T) {
	svc, _ := newTestService(t)
	match := newMatch(t, svc, MatchSetup{OversPerInning: 3})
	s := startInning(t, svc, match.ID, 1, "Lions", "Tigers")
	ctx := context.Background()

	s.dots(2)
	inning, err := svc.UpdateBowler(ctx, s.inning.ID, "Tigers-4")
	require.NoError(t, err)
	s.inning = inning

	_, err = s.try(BallInput{Bowler: "Tigers-3"})
	require.Error(t, err)
	assert.True(t, IsState(err), err.Error())

	var res *BallResult
	for i := 0; i < 4; i++ {
		res = s.ball(BallInput{Bowler: "Tigers-4"})
		assert.Equal(t, "Tigers-4", res.Inning.CurrentBowler)
		assert.Equal(t, "Tigers-3", res.Over.Bowler)
	}
	assert.Equal(t, models.OverCompleted, res.Over.Status)
	assert.False(t, res.Over.IsMaiden)

	opener := s.bowling("Tigers-3")
	assert.Equal(t, 2, opener.Balls)
	assert.Zero(t, opener.Maidens)
	replacement := s.bowling("Tigers-4")
	assert.Equal(t, 4, replacement.Balls)
	assert.Zero(t, replacement.Maidens)

	// both bowled part of over 1
	for _, bowler := range []string{"Tigers-3", "Tigers-4"} {
		_, err = s.try(BallInput{Bowler: bowler})
		assert.True(t, IsState(err), bowler)
		_, err = svc.UpdateBowler(ctx, s.inning.ID, bowler)
		assert.True(t, IsState(err), bowler)
	}
}

func TestScoreBall_ConcurrentCallsAreSerialized(t *testing.T) {
	svc, _ := newTestService(t)
	match := newMatch(t, svc, MatchSetup{})
	s := startInning(t, svc, match.ID, 1, "Lions", "Tigers")
	ctx := context.Background()
	in := s.input(BallInput{Runs: 2})

	const callers = 8
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ScoreBall(ctx, s.inning.ID, in)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var scored int
	for err := range errs {
		if err == nil {
			scored++
			continue
		}
		assert.True(t, IsState(err), err.Error())
	}
	assert.Equal(t, 1, scored)

	card := s.card()
	assert.Equal(t, 2, card.Inning.Runs)
	assert.Equal(t, 1, card.Inning.Balls)

	undos := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.UndoBall(ctx, s.inning.ID)
			undos <- err
		}()
	}
	wg.Wait()
	close(undos)

	var undone int
	for err := range undos {
		if err == nil {
			undone++
			continue
		}
		assert.True(t, IsValidation(err), err.Error())
	}
	assert.Equal(t, 1, undone)
	assert.Zero(t, s.card().Inning.Runs)
}
