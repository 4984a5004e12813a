// Package cricket holds the laws of the game as pure functions. Nothing in here keeps state;
// every rule takes its inputs as parameters.
package cricket

import "github.com/GSH-LAN/Unwindia_cricket/src/models"

const (
	BallsPerOver   = 6
	MaxRunsOffBall = 6
	DefaultWickets = 10
)

// dismissalDeliveries lists the deliveries a dismissal can happen on; nil for an unknown dismissal.
func dismissalDeliveries(dismissal models.DismissalType) []models.DeliveryType {
	switch dismissal {
	case models.DismissalBowled, models.DismissalLBW, models.DismissalHitWicket, models.DismissalHitTwice,
		models.DismissalTimedOut, models.DismissalHandledBall, models.DismissalAbsent:
		return []models.DeliveryType{models.DeliveryNormal}
	case models.DismissalCaught:
		return []models.DeliveryType{models.DeliveryNormal, models.DeliveryNoBall}
	case models.DismissalRunOut:
		return []models.DeliveryType{models.DeliveryNormal, models.DeliveryWide, models.DeliveryNoBall, models.DeliveryBye, models.DeliveryLegBye}
	case models.DismissalStumped:
		return []models.DeliveryType{models.DeliveryNormal, models.DeliveryWide}
	case models.DismissalObstructingField, models.DismissalRetired:
		return []models.DeliveryType{models.DeliveryNormal, models.DeliveryWide, models.DeliveryNoBall}
	}
	return nil
}

// IsValidRunsForDelivery accepts 0-6 runs for every delivery type except a dead ball, which only
// accepts 0.
func IsValidRunsForDelivery(runs int, delivery models.DeliveryType) bool {
	if runs < 0 || runs > MaxRunsOffBall {
		return false
	}
	switch delivery {
	case models.DeliveryDeadBall:
		return runs == 0
	case models.DeliveryNormal, models.DeliveryWide, models.DeliveryNoBall, models.DeliveryBye, models.DeliveryLegBye:
		return true
	}
	return false
}

// IsValidDismissal reports whether dismissal can legally happen on delivery.
func IsValidDismissal(dismissal models.DismissalType, delivery models.DeliveryType) bool {
	for _, d := range dismissalDeliveries(dismissal) {
		if d == delivery {
			return true
		}
	}
	return false
}

// IsKnownDismissal reports whether dismissal is a recognised mode of dismissal.
func IsKnownDismissal(dismissal models.DismissalType) bool {
	return dismissalDeliveries(dismissal) != nil
}

// CountsTowardsOver is false only for wides and no-balls.
func CountsTowardsOver(delivery models.DeliveryType) bool {
	return delivery != models.DeliveryWide && delivery != models.DeliveryNoBall
}

// CalculateBallRuns is the number of runs a delivery adds to the team total.
func CalculateBallRuns(runsOffBat int, extras models.BallExtras) int {
	return runsOffBat + extras.Wides + extras.NoBalls + extras.Byes + extras.LegByes + extras.Penalty
}

// IsValidBoundary is true for four or six runs off the bat on anything but a wide or no-ball.
func IsValidBoundary(runs int, delivery models.DeliveryType) bool {
	if delivery == models.DeliveryWide || delivery == models.DeliveryNoBall {
		return false
	}
	return runs == 4 || runs == 6
}

// BoundaryType returns "4" or "6" for a boundary and "" otherwise.
func BoundaryType(runs int, delivery models.DeliveryType) string {
	if !IsValidBoundary(runs, delivery) {
		return ""
	}
	if runs == 6 {
		return "6"
	}
	return "4"
}

// BowlerAttributableRuns are the runs that count against the bowler for maiden detection.
// Wide and no-ball deliveries are left out entirely.
func BowlerAttributableRuns(runs int, delivery models.DeliveryType) int {
	if delivery == models.DeliveryWide || delivery == models.DeliveryNoBall {
		return 0
	}
	return runs
}

// RunsConceded are the runs charged to the bowler's analysis: runs off the bat plus wides and
// no-balls. Byes, leg byes and penalty runs are not charged.
func RunsConceded(runs int, extras models.BallExtras) int {
	return runs + extras.Wides + extras.NoBalls
}

// RunsRun are the runs physically completed between the wickets, which decide strike rotation.
// The first wide run is a penalty and is not run.
func RunsRun(runs int, delivery models.DeliveryType, extras models.BallExtras) int {
	if IsValidBoundary(runs, delivery) {
		return 0
	}
	ran := runs + extras.Byes + extras.LegByes
	if delivery == models.DeliveryWide && extras.Wides > 1 {
		ran += extras.Wides - 1
	}
	return ran
}

// IsBowlerCredited reports whether the bowler gets the wicket for dismissal.
func IsBowlerCredited(dismissal models.DismissalType) bool {
	switch dismissal {
	case models.DismissalBowled, models.DismissalCaught, models.DismissalLBW,
		models.DismissalStumped, models.DismissalHitWicket:
		return true
	}
	return false
}

// IsFreeHit is true for the delivery following a no-ball.
func IsFreeHit(previous models.DeliveryType) bool {
	return previous == models.DeliveryNoBall
}

// IsFreeHitDismissal reports whether dismissal is still possible on a free hit.
func IsFreeHitDismissal(dismissal models.DismissalType) bool {
	switch dismissal {
	case models.DismissalRunOut, models.DismissalHitTwice, models.DismissalObstructingField,
		models.DismissalHandledBall, models.DismissalRetired:
		return true
	}
	return false
}

// FacedByBatsman is false for wides and dead balls, which do not count as balls faced.
func FacedByBatsman(delivery models.DeliveryType) bool {
	return delivery != models.DeliveryWide && delivery != models.DeliveryDeadBall
}

// RunsToBatsman are the runs credited to the striker. Wides, byes, leg byes and dead balls add
// nothing to the batsman's score.
func RunsToBatsman(runs int, delivery models.DeliveryType) int {
	switch delivery {
	case models.DeliveryWide, models.DeliveryBye, models.DeliveryLegBye, models.DeliveryDeadBall:
		return 0
	}
	return runs
}
