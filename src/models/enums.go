package models

// Format is the match format a rule preset is derived from.
type Format string

const (
	FormatT20        Format = "t20"
	FormatODI        Format = "odi"
	FormatTest       Format = "test"
	FormatT10        Format = "t10"
	FormatTheHundred Format = "the_hundred"
	FormatCustom     Format = "custom"
)

func (f Format) Valid() bool {
	switch f {
	case FormatT20, FormatODI, FormatTest, FormatT10, FormatTheHundred, FormatCustom:
		return true
	}
	return false
}

// DeliveryType classifies a single delivery.
type DeliveryType string

const (
	DeliveryNormal   DeliveryType = "normal"
	DeliveryWide     DeliveryType = "wide"
	DeliveryNoBall   DeliveryType = "no_ball"
	DeliveryBye      DeliveryType = "bye"
	DeliveryLegBye   DeliveryType = "leg_bye"
	DeliveryDeadBall DeliveryType = "dead_ball"
)

func (d DeliveryType) Valid() bool {
	switch d {
	case DeliveryNormal, DeliveryWide, DeliveryNoBall, DeliveryBye, DeliveryLegBye, DeliveryDeadBall:
		return true
	}
	return false
}

// DismissalType is the mode of a batsman's dismissal.
type DismissalType string

const (
	DismissalBowled           DismissalType = "bowled"
	DismissalCaught           DismissalType = "caught"
	DismissalLBW              DismissalType = "lbw"
	DismissalRunOut           DismissalType = "run_out"
	DismissalStumped          DismissalType = "stumped"
	DismissalHitWicket        DismissalType = "hit_wicket"
	DismissalHitTwice         DismissalType = "hit_twice"
	DismissalObstructingField DismissalType = "obstructing_field"
	DismissalTimedOut         DismissalType = "timed_out"
	DismissalHandledBall      DismissalType = "handled_ball"
	DismissalRetired          DismissalType = "retired"
	DismissalAbsent           DismissalType = "absent"
)

// InningStatus is the lifecycle state of an inning.
type InningStatus string

const (
	InningNotStarted InningStatus = "not_started"
	InningInProgress InningStatus = "in_progress"
	InningCompleted  InningStatus = "completed"
	InningDeclared   InningStatus = "declared"
	InningForfeited  InningStatus = "forfeited"
	InningAbandoned  InningStatus = "abandoned"
)

// Terminal reports whether no further scoring may happen in the inning.
func (s InningStatus) Terminal() bool {
	switch s {
	case InningCompleted, InningDeclared, InningForfeited, InningAbandoned:
		return true
	}
	return false
}

// CompletionReason explains why an inning ended.
type CompletionReason string

const (
	ReasonNone          CompletionReason = ""
	ReasonAllOut        CompletionReason = "all_out"
	ReasonOversComplete CompletionReason = "overs_complete"
	ReasonTargetReached CompletionReason = "target_reached"
	ReasonDeclared      CompletionReason = "declared"
)

// MatchStatus is the match-level progression.
type MatchStatus string

const (
	MatchScheduled MatchStatus = "scheduled"
	MatchToss      MatchStatus = "toss"
	MatchInning1   MatchStatus = "inning_1"
	MatchInning2   MatchStatus = "inning_2"
	MatchInning3   MatchStatus = "inning_3"
	MatchInning4   MatchStatus = "inning_4"
	MatchCompleted MatchStatus = "completed"
	MatchAbandoned MatchStatus = "abandoned"
)

// InningMatchStatus returns the match status that belongs to the given inning number.
func InningMatchStatus(number int) MatchStatus {
	switch number {
	case 1:
		return MatchInning1
	case 2:
		return MatchInning2
	case 3:
		return MatchInning3
	case 4:
		return MatchInning4
	}
	return MatchCompleted
}

// MatchResult is the outcome of a completed match.
type MatchResult string

const (
	ResultNone     MatchResult = ""
	ResultTeam1Win MatchResult = "team1_win"
	ResultTeam2Win MatchResult = "team2_win"
	ResultTie      MatchResult = "tie"
	ResultDraw     MatchResult = "draw"
)

// OverStatus is the lifecycle state of an over.
type OverStatus string

const (
	OverInProgress OverStatus = "in_progress"
	OverCompleted  OverStatus = "completed"
)

// PowerplayType names a powerplay window.
type PowerplayType string

const (
	PowerplayMandatory PowerplayType = "mandatory"
	PowerplayBatting   PowerplayType = "batting"
	PowerplayBowling   PowerplayType = "bowling"
)

// TossDecision is what the toss winner elected to do.
type TossDecision string

const (
	TossBat   TossDecision = "bat"
	TossField TossDecision = "field"
)
