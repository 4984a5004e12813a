package scoring

import (
	"time"

	"github.com/GSH-LAN/Unwindia_cricket/src/cricket"
	"github.com/GSH-LAN/Unwindia_cricket/src/models"
)

// batter returns the batting record of player, creating it when the player first comes in.
func (b *scorebook) batter(player string, at time.Time) *models.BattingStat {
	b.dirtyBatting[player] = true
	if stat, ok := b.batting[player]; ok {
		return stat
	}

	in := b.inning
	stat := &models.BattingStat{
		StatKey:         models.StatKey{MatchID: in.MatchID, InningID: in.ID, Player: player, Team: in.BattingTeam},
		InningNumber:    in.InningNumber,
		BattingPosition: in.PlayingXI.BattingPosition(player),
		Milestones:      []string{},
		StartTime:       &at,
	}
	if previous, ok := b.previousBatting[player]; ok {
		stat.DefaultModel = previous.DefaultModel
		stat.StartTime = previous.StartTime
	}
	b.batting[player] = stat
	return stat
}

// bowler returns the bowling record of player, creating it when the player is first handed the ball.
func (b *scorebook) bowler(player string, at time.Time) *models.BowlingStat {
	b.dirtyBowling[player] = true
	if stat, ok := b.bowling[player]; ok {
		return stat
	}

	in := b.inning
	stat := &models.BowlingStat{
		StatKey:      models.StatKey{MatchID: in.MatchID, InningID: in.ID, Player: player, Team: in.BowlingTeam},
		InningNumber: in.InningNumber,
		Milestones:   []string{},
		Dismissals:   []models.BowlingDismissal{},
		StartTime:    &at,
	}
	if previous, ok := b.previousBowling[player]; ok {
		stat.DefaultModel = previous.DefaultModel
		stat.StartTime = previous.StartTime
	}
	b.bowling[player] = stat
	return stat
}

func (b *scorebook) addBatting(ball *models.Ball) {
	stat := b.batter(ball.Batsman, ball.Timestamp)
	runs := cricket.RunsToBatsman(ball.Runs, ball.DeliveryType)

	stat.Runs += runs
	if cricket.FacedByBatsman(ball.DeliveryType) {
		stat.BallsFaced++
		if runs == 0 {
			stat.DotBalls++
		}
	}
	if runs > 0 {
		stat.ScoringShots++
	}
	switch ball.BoundaryType {
	case "4":
		stat.Fours++
	case "6":
		stat.Sixes++
	}

	stat.StrikeRate = cricket.BattingStrikeRate(stat.Runs, stat.BallsFaced)
	stat.Milestones = cricket.BattingMilestones(stat.Runs)
}

func (b *scorebook) dismissBatter(player string, dismissal *models.Dismissal, at time.Time) {
	stat := b.batter(player, at)
	stat.IsOut = true
	stat.IsNotOut = false
	stat.Dismissal = dismissal
	stat.EndTime = &at
	stat.Duration = elapsed(stat.StartTime, at)
}

func (b *scorebook) addBowling(ball *models.Ball) {
	stat := b.bowler(ball.Bowler, ball.Timestamp)
	legal := cricket.CountsTowardsOver(ball.DeliveryType)
	conceded := cricket.RunsConceded(ball.Runs, ball.Extras)

	if legal {
		stat.Balls++
		if stat.Balls == cricket.BallsPerOver {
			stat.Overs++
			stat.Balls = 0
		}
		if conceded == 0 {
			stat.DotBalls++
		}
	}
	stat.Runs += conceded
	stat.Extras.Add(models.Extras{Wides: ball.Extras.Wides, NoBalls: ball.Extras.NoBalls})

	switch ball.BoundaryType {
	case "4":
		stat.BoundariesConceded++
	case "6":
		stat.SixesConceded++
	}

	if ball.IsWicket && ball.Dismissal != nil && cricket.IsBowlerCredited(ball.Dismissal.Type) {
		stat.Wickets++
		stat.Dismissals = append(stat.Dismissals, models.BowlingDismissal{
			Batsman:    ball.DismissedPlayer(),
			Type:       ball.Dismissal.Type,
			Fielder:    ball.Dismissal.Fielder,
			OverNumber: ball.OverNumber,
			BallNumber: ball.BallNumber,
		})
	}

	stat.Economy = cricket.EconomyRate(stat.Runs, stat.Overs, stat.Balls)
	stat.Average = cricket.BowlingAverage(stat.Runs, stat.Wickets)
	stat.StrikeRate = cricket.BowlingStrikeRate(stat.TotalBalls(), stat.Wickets)
	stat.Milestones = cricket.BowlingMilestones(stat.Wickets)
}
