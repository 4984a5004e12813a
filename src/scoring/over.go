package scoring

import (
	"github.com/GSH-LAN/Unwindia_cricket/src/cricket"
	"github.com/GSH-LAN/Unwindia_cricket/src/models"
)

// overTally is the aggregate of a run of balls within one over.
type overTally struct {
	runs       int
	wickets    int
	legalBalls int
	bowlerRuns int
	extras     models.Extras
	// split is set when a replacement bowler finished the over
	split bool
}

func tally(balls []models.Ball) overTally {
	var t overTally
	for _, b := range balls {
		if b.Bowler != balls[0].Bowler {
			t.split = true
		}
		t.runs += cricket.CalculateBallRuns(b.Runs, b.Extras)
		if b.IsWicket {
			t.wickets++
		}
		if cricket.CountsTowardsOver(b.DeliveryType) {
			t.legalBalls++
		}
		t.bowlerRuns += cricket.BowlerAttributableRuns(b.Runs, b.DeliveryType)
		t.extras.Add(b.Extras.Ledger())
	}
	return t
}

func (t overTally) complete() bool {
	return t.legalBalls >= cricket.BallsPerOver
}

// maiden is never credited for an over shared between two bowlers.
func (t overTally) maiden() bool {
	return t.complete() && t.bowlerRuns == 0 && !t.split
}

// bowledIn reports whether player delivered any ball of o.
func bowledIn(o *models.Over, player string) bool {
	if o == nil {
		return false
	}
	if o.Bowler == player {
		return true
	}
	for _, b := range o.Balls {
		if b.Bowler == player {
			return true
		}
	}
	return false
}

// aggregateOver recomputes every aggregate of o from its balls. The over completes exactly when
// the sixth legal ball is in; removing a ball can take it back to in progress.
func aggregateOver(o *models.Over) {
	t := tally(o.Balls)
	o.Runs = t.runs
	o.Wickets = t.wickets
	o.Extras = t.extras
	o.LegalBalls = t.legalBalls
	o.IsMaiden = t.maiden()

	if !t.complete() {
		o.Status = models.OverInProgress
		o.EndTime = nil
		o.Duration = 0
		return
	}

	end := o.LastBall().Timestamp
	o.Status = models.OverCompleted
	o.EndTime = &end
	o.Duration = int(end.Sub(o.StartTime).Seconds())
}

// overProgress tells the inning what the ball just bowled did to its over.
type overProgress struct {
	completed bool
	maiden    bool
}

// progressAt reports the over state right after balls[i] was bowled.
func progressAt(balls []models.Ball, i int) overProgress {
	if !cricket.CountsTowardsOver(balls[i].DeliveryType) {
		return overProgress{}
	}
	t := tally(balls[:i+1])
	return overProgress{
		completed: t.legalBalls == cricket.BallsPerOver,
		maiden:    t.maiden(),
	}
}
