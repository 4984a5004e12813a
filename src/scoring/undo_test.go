package scoring

import (
	"context"
	"testing"

	"github.com/GSH-LAN/Unwindia_cricket/src/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUndoBall_RestoresAggregates(t *testing.T) {
	deliveries := map[string]BallInput{
		"runs":    {Runs: 3},
		"four":    {Runs: 4},
		"wide":    {DeliveryType: models.DeliveryWide, Extras: &models.BallExtras{Wides: 2}},
		"no ball": {Runs: 1, DeliveryType: models.DeliveryNoBall},
		"byes":    {Runs: 1, DeliveryType: models.DeliveryBye},
		"penalty": {Extras: &models.BallExtras{Penalty: 5}},
	}

	for name, d := range deliveries {
		t.Run(name, func(t *testing.T) {
			svc, _ := newTestService(t)
			match := newMatch(t, svc, MatchSetup{})
			s := startInning(t, svc, match.ID, 1, "Lions", "Tigers")
			s.runs(1)
			s.ball(BallInput{DeliveryType: models.DeliveryLegBye, Runs: 2})
			before := *s.inning
			bowlerBefore := *s.bowling("Tigers-3")

			s.ball(d)
			res := s.undo()

			assert.Equal(t, 3, res.Ball.BallNumber)
			in := s.inning
			assert.Equal(t, before.Runs, in.Runs)
			assert.Equal(t, before.Balls, in.Balls)
			assert.Equal(t, before.Overs, in.Overs)
			assert.Equal(t, before.Extras, in.Extras)
			assert.Equal(t, before.Striker, in.Striker)
			assert.Equal(t, before.NonStriker, in.NonStriker)
			assert.Equal(t, before.Partnerships, in.Partnerships)

			bowler := s.bowling("Tigers-3")
			assert.Equal(t, bowlerBefore.Runs, bowler.Runs)
			assert.Equal(t, bowlerBefore.Balls, bowler.Balls)
			assert.Equal(t, bowlerBefore.Extras, bowler.Extras)
		})
	}
}

func TestUndoBall_Wicket(t *testing.T) {
	svc, db := newTestService(t)
	match := newMatch(t, svc, MatchSetup{})
	s := startInning(t, svc, match.ID, 1, "Lions", "Tigers")

	s.runs(2)
	s.ball(wicket(models.DismissalCaught))
	events := countEvents(t, db)
	res := s.undo()

	assert.True(t, res.Ball.IsWicket)
	in := s.inning
	assert.Zero(t, in.Wickets)
	assert.Empty(t, in.FallOfWickets)
	assert.Equal(t, "Lions-1", in.Striker)
	assert.Equal(t, "Lions-2", in.NonStriker)
	require.Len(t, in.Partnerships, 1)
	assert.True(t, in.Partnerships[0].Open())
	assert.Equal(t, 2, in.Partnerships[0].Runs)
	assert.Equal(t, 1, in.Partnerships[0].Balls)

	card := s.card()
	require.Len(t, card.Batting, 2)
	assert.False(t, card.Batting[0].IsOut)
	assert.Nil(t, card.Batting[0].Dismissal)
	assert.Equal(t, 2, card.Batting[0].Runs)

	bowler := s.bowling("Tigers-3")
	assert.Zero(t, bowler.Wickets)
	assert.Empty(t, bowler.Dismissals)
	assert.Equal(t, 1, bowler.Balls)

	assert.Equal(t, events+1, countEvents(t, db))

	// the same ball can be scored again
	res2 := s.ball(wicket(models.DismissalCaught))
	assert.Equal(t, 1, res2.Inning.Wickets)
	assert.Equal(t, "Lions-3", res2.Inning.Striker)
}

func TestUndoBall_AcrossOverEnd(t *testing.T) {
	svc, _ := newTestService(t)
	match := newMatch(t, svc, MatchSetup{OversPerInning: 3})
	s := startInning(t, svc, match.ID, 1, "Lions", "Tigers")
	ctx := context.Background()

	s.dots(6)
	s.undo()

	assert.Zero(t, s.inning.Overs)
	assert.Equal(t, 5, s.inning.Balls)
	assert.Equal(t, "Lions-1", s.inning.Striker)

	state, err := svc.GetScoringState(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OverInProgress, state.CurrentOver.Status)
	assert.False(t, state.CurrentOver.IsMaiden)
	assert.Nil(t, state.CurrentOver.EndTime)

	bowler := s.bowling("Tigers-3")
	assert.Zero(t, bowler.Maidens)
	assert.Zero(t, bowler.Overs)
	assert.Equal(t, 5, bowler.Balls)

	s.dots(2)
	s.undo()

	state, err = svc.GetScoringState(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentOver.OverNumber)
	assert.Equal(t, models.OverCompleted, state.CurrentOver.Status)
	assert.Equal(t, "Tigers-4", state.Inning.CurrentBowler)
	assert.Equal(t, 1, state.Inning.Overs)
	assert.Zero(t, state.Inning.Balls)

	res := s.dots(1)
	assert.Equal(t, 2, res.Over.OverNumber)
	assert.Len(t, res.Over.Balls, 1)
}

func TestUndoBall_EmptyHistory(t *testing.T) {
	svc, _ := newTestService(t)
	match := newMatch(t, svc, MatchSetup{})
	s := startInning(t, svc, match.ID, 1, "Lions", "Tigers")

	_, err := svc.UndoBall(context.Background(), s.inning.ID)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestUndoBall_ReopensInning(t *testing.T) {
	svc, _ := newTestService(t)
	match := newMatch(t, svc, MatchSetup{})
	s := startInning(t, svc, match.ID, 1, "Lions", "Tigers")

	s.ball(wicket(models.DismissalBowled))
	s.ball(wicket(models.DismissalBowled))
	s.ball(wicket(models.DismissalBowled))
	require.Equal(t, models.InningCompleted, s.inning.Status)
	require.Equal(t, models.MatchInning2, loadMatch(t, svc, match.ID).Status)

	s.undo()
	assert.Equal(t, models.InningInProgress, s.inning.Status)
	assert.Empty(t, s.inning.CompletionReason)
	assert.Nil(t, s.inning.EndTime)
	assert.Equal(t, 2, s.inning.Wickets)
	assert.Equal(t, "Lions-4", s.inning.Striker)
	assert.Equal(t, models.MatchInning1, loadMatch(t, svc, match.ID).Status)
	assert.False(t, s.batting("Lions-2").IsNotOut)

	s.ball(wicket(models.DismissalBowled))
	startInning(t, svc, match.ID, 2, "Tigers", "Lions")

	_, err := svc.UndoBall(context.Background(), s.inning.ID)
	assert.True(t, IsState(err))
}

func TestUndoBall_ReopensFinishedMatch(t *testing.T) {
	svc, _ := newTestService(t)
	match := newMatch(t, svc, MatchSetup{})
	first := startInning(t, svc, match.ID, 1, "Lions", "Tigers")
	first.runs(6)
	first.dots(11)

	second := startInning(t, svc, match.ID, 2, "Tigers", "Lions")
	second.runs(6)
	res := second.runs(1)
	require.Equal(t, models.ReasonTargetReached, res.CompletionReason)
	require.Equal(t, models.MatchCompleted, loadMatch(t, svc, match.ID).Status)

	second.undo()

	m := loadMatch(t, svc, match.ID)
	assert.Equal(t, models.MatchInning2, m.Status)
	assert.Equal(t, models.ResultNone, m.Result)
	assert.Empty(t, m.Winner)
	assert.Nil(t, m.EndTime)
	assert.Equal(t, 6, second.inning.Runs)
	assert.Equal(t, models.InningInProgress, second.inning.Status)
}

func TestUndoBall_ReplaysManualCorrections(t *testing.T) {
	svc, _ := newTestService(t)
	match := newMatch(t, svc, MatchSetup{})
	s := startInning(t, svc, match.ID, 1, "Lions", "Tigers")
	ctx := context.Background()

	s.runs(1)
	inning, err := svc.UpdateBatsmen(ctx, s.inning.ID, "Lions-4", "Lions-1")
	require.NoError(t, err)
	s.inning = inning
	require.Len(t, inning.Partnerships, 2)

	s.runs(2)
	s.runs(4)
	s.undo()

	assert.Equal(t, 3, s.inning.Runs)
	assert.Equal(t, "Lions-4", s.inning.Striker)
	assert.Equal(t, "Lions-1", s.inning.NonStriker)
	require.Len(t, s.inning.Partnerships, 2)
	assert.Equal(t, 2, s.inning.Partnerships[1].Runs)
	assert.Equal(t, 2, s.batting("Lions-4").Runs)
}
