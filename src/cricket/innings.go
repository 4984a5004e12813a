package cricket

import "github.com/GSH-LAN/Unwindia_cricket/src/models"

// Completion is the outcome of an innings-completion check.
type Completion struct {
	Completed bool                    `json:"completed"`
	Reason    models.CompletionReason `json:"reason,omitempty"`
}

// IsInningsComplete checks the wicket limit first, then the over limit. maxOvers 0 means no limit.
func IsInningsComplete(wickets, overs, maxWickets, maxOvers int) Completion {
	if wickets >= maxWickets {
		return Completion{Completed: true, Reason: models.ReasonAllOut}
	}
	if maxOvers > 0 && overs >= maxOvers {
		return Completion{Completed: true, Reason: models.ReasonOversComplete}
	}
	return Completion{}
}

// IsTargetReached reports whether a chasing side has reached its target.
func IsTargetReached(runs, target int) bool {
	return target > 0 && runs >= target
}

// FollowOnCheck is the result of comparing the first two innings of a multi-innings match.
type FollowOnCheck struct {
	Lead       int  `json:"lead"`
	Threshold  int  `json:"threshold"`
	CanEnforce bool `json:"canEnforce"`
}

// FollowOn compares first-innings runs against second-innings runs. A threshold of 0 uses the
// default of 200.
func FollowOn(firstRuns, secondRuns, threshold int) FollowOnCheck {
	if threshold <= 0 {
		threshold = DefaultFollowOnThreshold
	}
	lead := firstRuns - secondRuns
	return FollowOnCheck{Lead: lead, Threshold: threshold, CanEnforce: lead >= threshold}
}

// CanDeclare reports whether format allows an inning to be declared.
func CanDeclare(format models.Format) bool {
	return IsMultiInnings(format)
}

// IsSuperOverRequired is true for a tied limited-overs match.
func IsSuperOverRequired(format models.Format, team1Runs, team2Runs int) bool {
	switch format {
	case models.FormatT20, models.FormatODI, models.FormatT10, models.FormatTheHundred, models.FormatCustom:
		return team1Runs == team2Runs
	}
	return false
}

// BattingMilestones lists every batting milestone reached with runs.
func BattingMilestones(runs int) []string {
	milestones := []string{}
	if runs >= 50 {
		milestones = append(milestones, "half_century")
	}
	if runs >= 100 {
		milestones = append(milestones, "century")
	}
	if runs >= 200 {
		milestones = append(milestones, "double_century")
	}
	if runs >= 300 {
		milestones = append(milestones, "triple_century")
	}
	return milestones
}

// BowlingMilestones lists every wicket-haul milestone reached with wickets.
func BowlingMilestones(wickets int) []string {
	milestones := []string{}
	if wickets >= 3 {
		milestones = append(milestones, "three_wickets")
	}
	if wickets >= 4 {
		milestones = append(milestones, "four_wickets")
	}
	if wickets >= 5 {
		milestones = append(milestones, "five_wickets")
	}
	return milestones
}
