package scoring

import (
	"context"
	"testing"

	"github.com/GSH-LAN/Unwindia_cricket/src/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterruption_StopsPlay(t *testing.T) {
	svc, db := newTestService(t)
	match := newMatch(t, svc, MatchSetup{})
	s := startInning(t, svc, match.ID, 1, "Lions", "Tigers")
	ctx := context.Background()

	s.runs(1)
	events := countEvents(t, db)

	stoppage, err := svc.AddInterruption(ctx, s.inning.ID, "rain")
	require.NoError(t, err)
	assert.Equal(t, "rain", stoppage.Reason)
	assert.Nil(t, stoppage.EndTime)
	assert.Equal(t, events+1, countEvents(t, db))

	_, err = s.try(BallInput{})
	assert.True(t, IsState(err), "no ball while play is interrupted")

	_, err = svc.AddInterruption(ctx, s.inning.ID, "bad light")
	assert.True(t, IsState(err))

	stoppage, err = svc.EndInterruption(ctx, s.inning.ID)
	require.NoError(t, err)
	require.NotNil(t, stoppage.EndTime)
	assert.True(t, stoppage.EndTime.After(stoppage.StartTime))

	res := s.runs(2)
	assert.Equal(t, 3, res.Inning.Runs)
	require.Len(t, res.Inning.Interruptions, 1)
	assert.Nil(t, res.Inning.ActiveInterruption())
}

func TestInterruption_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	match := newMatch(t, svc, MatchSetup{})
	s := startInning(t, svc, match.ID, 1, "Lions", "Tigers")
	ctx := context.Background()

	_, err := svc.AddInterruption(ctx, s.inning.ID, "")
	assert.True(t, IsValidation(err))

	_, err = svc.EndInterruption(ctx, s.inning.ID)
	assert.True(t, IsValidation(err))

	s.dots(12)
	require.Equal(t, models.InningCompleted, s.inning.Status)

	_, err = svc.AddInterruption(ctx, s.inning.ID, "rain")
	assert.True(t, IsState(err))
}

func TestInterruption_ShowsInSummary(t *testing.T) {
	svc, _ := newTestService(t)
	match := newMatch(t, svc, MatchSetup{})
	s := startInning(t, svc, match.ID, 1, "Lions", "Tigers")
	ctx := context.Background()

	_, err := svc.AddInterruption(ctx, s.inning.ID, "bad light")
	require.NoError(t, err)
	_, err = svc.EndInterruption(ctx, s.inning.ID)
	require.NoError(t, err)
	_, err = svc.AddInterruption(ctx, s.inning.ID, "rain")
	require.NoError(t, err)

	report, err := svc.GetInningSummary(ctx, s.inning.ID)
	require.NoError(t, err)
	require.Len(t, report.Interruptions, 2)
	assert.Equal(t, "bad light", report.Interruptions[0].Reason)
	assert.NotNil(t, report.Interruptions[0].EndTime)
	assert.Nil(t, report.Interruptions[1].EndTime)
}
