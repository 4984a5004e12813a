package cricket

import "math"

// OversToDecimal converts completed overs plus balls into fractional overs (4 overs 3 balls = 4.5).
func OversToDecimal(overs, balls int) float64 {
	return float64(overs) + float64(balls)/BallsPerOver
}

// RunRate is runs per over.
func RunRate(runs, overs, balls int) float64 {
	legal := overs*BallsPerOver + balls
	if legal == 0 {
		return 0
	}
	return float64(runs) / float64(legal) * BallsPerOver
}

// RequiredRunRate is the rate needed to reach target from runs with the remaining balls.
// It is +Inf when runs are still needed but no balls remain.
func RequiredRunRate(target, runs, ballsRemaining int) float64 {
	needed := target - runs
	if needed <= 0 {
		return 0
	}
	if ballsRemaining <= 0 {
		return math.Inf(1)
	}
	return float64(needed) / float64(ballsRemaining) * BallsPerOver
}

// NetRunRate is the run rate scored minus the run rate conceded.
func NetRunRate(runsScored int, oversFaced float64, runsConceded int, oversBowled float64) float64 {
	var rateFor, rateAgainst float64
	if oversFaced > 0 {
		rateFor = float64(runsScored) / oversFaced
	}
	if oversBowled > 0 {
		rateAgainst = float64(runsConceded) / oversBowled
	}
	return rateFor - rateAgainst
}

// EconomyRate is runs conceded per over bowled.
func EconomyRate(runs, overs, balls int) float64 {
	o := OversToDecimal(overs, balls)
	if o == 0 {
		return 0
	}
	return float64(runs) / o
}

// BattingStrikeRate is runs per hundred balls faced.
func BattingStrikeRate(runs, balls int) float64 {
	if balls == 0 {
		return 0
	}
	return float64(runs) / float64(balls) * 100
}

// BattingAverage is runs per dismissal; with no dismissals the runs themselves are returned.
func BattingAverage(runs, innings, notOuts int) float64 {
	dismissals := innings - notOuts
	if dismissals <= 0 {
		return float64(runs)
	}
	return float64(runs) / float64(dismissals)
}

// BowlingAverage is runs conceded per wicket.
func BowlingAverage(runs, wickets int) float64 {
	if wickets == 0 {
		return 0
	}
	return float64(runs) / float64(wickets)
}

// BowlingStrikeRate is balls bowled per wicket.
func BowlingStrikeRate(balls, wickets int) float64 {
	if wickets == 0 {
		return 0
	}
	return float64(balls) / float64(wickets)
}

// PartnershipRunRate is partnership runs per hundred balls.
func PartnershipRunRate(runs, balls int) float64 {
	if balls == 0 {
		return 0
	}
	return float64(runs) / float64(balls) * 100
}

// DLSParScore is a linear resource-ratio approximation. It is a placeholder and does not
// implement the published Duckworth-Lewis-Stern tables.
func DLSParScore(resourcesUsed, target, resourcesRemaining float64) int {
	if resourcesUsed <= 0 {
		return 0
	}
	return int(math.Floor(target * (resourcesRemaining / resourcesUsed)))
}

// DLSRequiredRunRate derives a required rate from DLSParScore.
func DLSRequiredRunRate(target, resourcesUsed, resourcesRemaining float64, ballsRemaining int) float64 {
	par := DLSParScore(resourcesUsed, target, resourcesRemaining)
	if ballsRemaining <= 0 {
		return math.Inf(1)
	}
	return float64(par) / float64(ballsRemaining) * BallsPerOver
}
