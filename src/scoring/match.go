package scoring

import (
	"context"
	"fmt"
	"sort"

	"github.com/GSH-LAN/Unwindia_cricket/src/cricket"
	"github.com/GSH-LAN/Unwindia_cricket/src/database"
	"github.com/GSH-LAN/Unwindia_cricket/src/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MatchSetup creates a match from a format preset. Zero values keep the preset.
type MatchSetup struct {
	Title             string                   `json:"title"`
	Team1             string                   `json:"team1"`
	Team2             string                   `json:"team2"`
	Format            models.Format            `json:"format"`
	OversPerInning    int                      `json:"oversPerInning,omitempty"`
	MaxOversPerBowler int                      `json:"maxOversPerBowler,omitempty"`
	WicketsPerInning  int                      `json:"wicketsPerInning,omitempty"`
	Powerplays        []models.PowerplayWindow `json:"powerplays,omitempty"`
	FollowOnThreshold int                      `json:"followOnThreshold,omitempty"`
}

// InningSetup registers the next inning of a match.
type InningSetup struct {
	MatchID      primitive.ObjectID `json:"matchId"`
	InningNumber int                `json:"inningNumber"`
	BattingTeam  string             `json:"battingTeam"`
	BowlingTeam  string             `json:"bowlingTeam"`
	PlayingXI    models.PlayingXI   `json:"playingXI"`
}

func (s *Service) SetupMatch(ctx context.Context, setup MatchSetup) (*models.Match, error) {
	var fields []string
	if setup.Team1 == "" {
		fields = append(fields, "team1: required")
	}
	if setup.Team2 == "" {
		fields = append(fields, "team2: required")
	}
	if setup.Team1 != "" && setup.Team1 == setup.Team2 {
		fields = append(fields, "team2: must differ from team1")
	}
	if !setup.Format.Valid() {
		fields = append(fields, fmt.Sprintf("format: unknown format %q", setup.Format))
	}
	if len(fields) > 0 {
		return nil, validationError("invalid match", fields...)
	}

	rules := cricket.DefaultRules(setup.Format, setup.OversPerInning)
	if setup.OversPerInning > 0 {
		rules.OversPerInning = setup.OversPerInning
	}
	if setup.MaxOversPerBowler > 0 {
		rules.MaxOversPerBowler = setup.MaxOversPerBowler
	}
	if setup.WicketsPerInning > 0 {
		rules.WicketsPerInning = setup.WicketsPerInning
	}
	if setup.Powerplays != nil {
		rules.Powerplays = setup.Powerplays
	}
	if cricket.IsMultiInnings(setup.Format) {
		rules.FollowOnThreshold = s.followOnThreshold
		if setup.FollowOnThreshold > 0 {
			rules.FollowOnThreshold = setup.FollowOnThreshold
		}
	}
	if errs := cricket.ValidateMatchConfig(setup.Format, rules); len(errs) > 0 {
		return nil, validationError("invalid match rules", errs...)
	}

	match := &models.Match{
		Title:   setup.Title,
		Team1:   setup.Team1,
		Team2:   setup.Team2,
		Format:  setup.Format,
		Rules:   rules,
		Status:  models.MatchScheduled,
		Innings: []primitive.ObjectID{},
	}

	err := s.db.RunInTransaction(ctx, func(ctx context.Context, tx database.Tx) error {
		if err := tx.CreateMatch(ctx, match); err != nil {
			return err
		}
		u := &unitOfWork{tx: tx, now: s.now(), match: match}
		if err := u.emit(models.EventMatchUpdated, nil); err != nil {
			return err
		}
		return u.flush(ctx)
	})
	if err != nil {
		return nil, classify(err)
	}
	return match, nil
}

func (s *Service) RecordToss(ctx context.Context, matchID primitive.ObjectID, wonBy string, electedTo models.TossDecision) (*models.Match, error) {
	var fields []string
	if wonBy == "" {
		fields = append(fields, "wonBy: required")
	}
	if electedTo != models.TossBat && electedTo != models.TossField {
		fields = append(fields, fmt.Sprintf("electedTo: must be %s or %s", models.TossBat, models.TossField))
	}
	if len(fields) > 0 {
		return nil, validationError("invalid toss", fields...)
	}

	var match *models.Match
	err := s.updateMatch(ctx, matchID, func(ctx context.Context, u *unitOfWork) error {
		match = u.match
		if match.Status != models.MatchScheduled && match.Status != models.MatchToss {
			return stateError("toss cannot be recorded for a match in status %s", match.Status)
		}
		if !match.HasTeam(wonBy) {
			return stateError("%s does not play in this match", wonBy)
		}

		at := u.now
		match.Toss = &models.Toss{WonBy: wonBy, ElectedTo: electedTo, At: &at}
		match.Status = models.MatchInning1
		if err := u.tx.UpdateMatch(ctx, match); err != nil {
			return err
		}
		return u.emit(models.EventMatchUpdated, nil)
	})
	if err != nil {
		return nil, err
	}
	return match, nil
}

func validatePlayingXI(xi models.PlayingXI) []string {
	var fields []string
	if len(xi.Batting) < 2 {
		fields = append(fields, "playingXI.batting: at least two batsmen required")
	}
	if len(xi.Bowling) == 0 {
		fields = append(fields, "playingXI.bowling: at least one bowler required")
	}

	players := make(map[string]bool)
	positions := make(map[int]bool)
	for _, slot := range xi.Batting {
		switch {
		case slot.Player == "":
			fields = append(fields, "playingXI.batting: player required")
		case players[slot.Player]:
			fields = append(fields, fmt.Sprintf("playingXI.batting: %s listed twice", slot.Player))
		}
		if slot.BattingPosition < 1 || positions[slot.BattingPosition] {
			fields = append(fields, fmt.Sprintf("playingXI.batting: invalid batting position %d", slot.BattingPosition))
		}
		players[slot.Player] = true
		positions[slot.BattingPosition] = true
	}
	for _, slot := range xi.Bowling {
		if slot.Player == "" {
			fields = append(fields, "playingXI.bowling: player required")
		}
	}
	return fields
}

// InitializeInning creates the next inning of a match in status not_started. Chasing innings get
// their target here.
func (s *Service) InitializeInning(ctx context.Context, setup InningSetup) (*models.Inning, error) {
	var fields []string
	if setup.BattingTeam == "" {
		fields = append(fields, "battingTeam: required")
	}
	if setup.BowlingTeam == "" {
		fields = append(fields, "bowlingTeam: required")
	}
	if setup.BattingTeam != "" && setup.BattingTeam == setup.BowlingTeam {
		fields = append(fields, "bowlingTeam: must differ from battingTeam")
	}
	if setup.InningNumber < 1 || setup.InningNumber > 4 {
		fields = append(fields, "inningNumber: must be between 1 and 4")
	}
	fields = append(fields, validatePlayingXI(setup.PlayingXI)...)
	if len(fields) > 0 {
		return nil, validationError("invalid inning", fields...)
	}

	var inning *models.Inning
	err := s.updateMatch(ctx, setup.MatchID, func(ctx context.Context, u *unitOfWork) error {
		match := u.match
		n := setup.InningNumber

		if n > cricket.MaxInnings(match.Format) {
			return stateError("a %s match has at most %d innings", match.Format, cricket.MaxInnings(match.Format))
		}
		if !match.HasTeam(setup.BattingTeam) || !match.HasTeam(setup.BowlingTeam) {
			return stateError("teams %s and %s do not play this match", setup.BattingTeam, setup.BowlingTeam)
		}
		if match.Status != models.InningMatchStatus(n) {
			return stateError("inning %d cannot be initialized while the match is %s", n, match.Status)
		}

		innings, err := u.tx.ListInnings(ctx, match.ID)
		if err != nil {
			return err
		}
		if len(innings)+1 != n {
			return stateError("inning %d is next, got inning %d", len(innings)+1, n)
		}
		if n > 1 && !innings[n-2].Status.Terminal() {
			return stateError("inning %d has not finished", n-1)
		}
		if expected := expectedBattingTeam(match, innings); expected != "" && expected != setup.BattingTeam {
			return stateError("%s bats in inning %d", expected, n)
		}

		inning = &models.Inning{
			MatchID:       match.ID,
			InningNumber:  n,
			BattingTeam:   setup.BattingTeam,
			BowlingTeam:   setup.BowlingTeam,
			PlayingXI:     setup.PlayingXI,
			Target:        targetFor(match, innings, n),
			OversLimit:    match.Rules.OversPerInning,
			WicketsLimit:  match.Rules.WicketsPerInning,
			Status:        models.InningNotStarted,
			FallOfWickets: []models.FallOfWicket{},
			Partnerships:  []models.Partnership{},
			Powerplays:    []models.Powerplay{},
		}
		if err := u.tx.CreateInning(ctx, inning); err != nil {
			return err
		}
		s.inningMatch.Store(inning.ID, match.ID)

		match.Innings = append(match.Innings, inning.ID)
		if err := u.tx.UpdateMatch(ctx, match); err != nil {
			return err
		}
		u.inning = inning
		return u.emit(models.EventMatchUpdated, nil)
	})
	if err != nil {
		return nil, err
	}
	return inning, nil
}

// expectedBattingTeam is the side due to bat next, or "" when any side may.
func expectedBattingTeam(match *models.Match, innings []*models.Inning) string {
	switch len(innings) {
	case 0:
		if match.Toss == nil {
			return ""
		}
		if match.Toss.ElectedTo == models.TossBat {
			return match.Toss.WonBy
		}
		return match.Opponent(match.Toss.WonBy)
	case 1:
		return innings[0].BowlingTeam
	case 2:
		return innings[0].BattingTeam
	case 3:
		return innings[2].BowlingTeam
	}
	return ""
}

// targetFor sets the target of the final inning of a format.
func targetFor(match *models.Match, innings []*models.Inning, number int) int {
	if number != cricket.MaxInnings(match.Format) {
		return 0
	}
	if !cricket.IsMultiInnings(match.Format) {
		return innings[0].Runs + 1
	}

	chasing := innings[2].BowlingTeam
	aggregates := teamAggregates(innings)
	return aggregates[match.Opponent(chasing)] - aggregates[chasing] + 1
}

func teamAggregates(innings []*models.Inning) map[string]int {
	aggregates := make(map[string]int)
	for _, in := range innings {
		aggregates[in.BattingTeam] += in.Runs
	}
	return aggregates
}

// inningFinished moves the match on after u.inning reached a terminal status.
func (s *Service) inningFinished(ctx context.Context, u *unitOfWork) error {
	if err := u.emit(models.EventInningCompleted, nil); err != nil {
		return err
	}

	match, inning := u.match, u.inning
	innings, err := u.tx.ListInnings(ctx, match.ID)
	if err != nil {
		return err
	}
	for i, in := range innings {
		if in.ID == inning.ID {
			innings[i] = inning
		}
	}
	sort.Slice(innings, func(i, j int) bool { return innings[i].InningNumber < innings[j].InningNumber })

	n := inning.InningNumber
	switch {
	case n >= cricket.MaxInnings(match.Format):
		s.finishMatch(match, finalResult(match, innings), u)
	case n == 3:
		if result, ok := inningsVictory(match, innings); ok {
			s.finishMatch(match, result, u)
		} else {
			match.Status = models.MatchInning4
		}
	default:
		match.Status = models.InningMatchStatus(n + 1)
	}

	if err := u.tx.UpdateMatch(ctx, match); err != nil {
		return err
	}
	return u.emit(models.EventMatchUpdated, nil)
}

// matchResult is the outcome of a finished match.
type matchResult struct {
	result      models.MatchResult
	winner      string
	description string
	superOver   bool
}

func (s *Service) finishMatch(match *models.Match, r matchResult, u *unitOfWork) {
	end := u.now
	match.Status = models.MatchCompleted
	match.Result = r.result
	match.Winner = r.winner
	match.ResultDescription = r.description
	match.SuperOverRequired = r.superOver
	match.EndTime = &end

	switch r.winner {
	case match.Team1:
		match.Result = models.ResultTeam1Win
	case match.Team2:
		match.Result = models.ResultTeam2Win
	}
}

// reopenMatch undoes finishMatch and any status advance beyond inning.
func reopenMatch(match *models.Match, inning *models.Inning) {
	match.Status = models.InningMatchStatus(inning.InningNumber)
	match.Result = models.ResultNone
	match.Winner = ""
	match.ResultDescription = ""
	match.SuperOverRequired = false
	match.EndTime = nil
}

func wonBy(winner string, margin int, unit string) matchResult {
	return matchResult{winner: winner, description: fmt.Sprintf("%s won by %s", winner, cricket.Plural(margin, unit))}
}

// finalResult decides the match after its last inning.
func finalResult(match *models.Match, innings []*models.Inning) matchResult {
	last := innings[len(innings)-1]
	chaser := last.BattingTeam
	defender := match.Opponent(chaser)

	aggregates := teamAggregates(innings)
	lead := aggregates[defender] - aggregates[chaser]
	multi := cricket.IsMultiInnings(match.Format)

	switch {
	case lead < 0:
		return wonBy(chaser, wicketsLimit(last)-last.Wickets, "wicket")
	case lead == 0 && (!multi || last.CompletionReason == models.ReasonAllOut):
		return matchResult{
			result:      models.ResultTie,
			description: "Match tied",
			superOver:   cricket.IsSuperOverRequired(match.Format, aggregates[defender], aggregates[chaser]),
		}
	case !multi || last.CompletionReason == models.ReasonAllOut:
		return wonBy(defender, lead, "run")
	}
	return matchResult{result: models.ResultDraw, description: "Match drawn"}
}

// inningsVictory checks whether the side batting twice is still behind after the third inning.
func inningsVictory(match *models.Match, innings []*models.Inning) (matchResult, bool) {
	twice := innings[2].BattingTeam
	once := match.Opponent(twice)
	aggregates := teamAggregates(innings)

	margin := aggregates[once] - aggregates[twice]
	if margin <= 0 {
		return matchResult{}, false
	}
	return matchResult{
		winner:      once,
		description: fmt.Sprintf("%s won by an innings and %s", once, cricket.Plural(margin, "run")),
	}, true
}

// EnforceFollowOn sends the side that batted second back in for the third inning.
func (s *Service) EnforceFollowOn(ctx context.Context, matchID primitive.ObjectID, enforcedBy string) (*models.Inning, error) {
	if enforcedBy == "" {
		return nil, validationError("invalid follow-on", "enforcedBy: required")
	}

	var inning *models.Inning
	err := s.updateMatch(ctx, matchID, func(ctx context.Context, u *unitOfWork) error {
		match := u.match
		if !cricket.IsMultiInnings(match.Format) {
			return stateError("follow-on is not possible in a %s match", match.Format)
		}

		innings, err := u.tx.ListInnings(ctx, match.ID)
		if err != nil {
			return err
		}
		if len(innings) < 2 {
			return stateError("follow-on needs two completed innings")
		}
		if len(innings) > 2 {
			return stateError("inning 3 has already been initialized")
		}
		first, second := innings[0], innings[1]
		if !second.Status.Terminal() {
			return stateError("inning 2 has not finished")
		}
		if match.Status != models.MatchInning3 {
			return stateError("follow-on cannot be enforced while the match is %s", match.Status)
		}

		check := cricket.FollowOn(first.Runs, second.Runs, match.Rules.FollowOnThreshold)
		if !check.CanEnforce {
			return stateError("lead of %d is below the follow-on threshold of %d", check.Lead, check.Threshold)
		}

		at := u.now
		followOn := &models.FollowOn{Enforced: true, EnforcedBy: enforcedBy, Lead: check.Lead, At: &at}

		second.FollowOn = followOn
		if err := u.tx.SaveInning(ctx, second); err != nil {
			return err
		}

		inning = &models.Inning{
			MatchID:       match.ID,
			InningNumber:  3,
			BattingTeam:   second.BattingTeam,
			BowlingTeam:   second.BowlingTeam,
			PlayingXI:     second.PlayingXI,
			Target:        first.Runs + 1,
			OversLimit:    match.Rules.OversPerInning,
			WicketsLimit:  match.Rules.WicketsPerInning,
			Status:        models.InningNotStarted,
			FollowOn:      followOn,
			FallOfWickets: []models.FallOfWicket{},
			Partnerships:  []models.Partnership{},
			Powerplays:    []models.Powerplay{},
		}
		if err := u.tx.CreateInning(ctx, inning); err != nil {
			return err
		}
		s.inningMatch.Store(inning.ID, match.ID)

		match.FollowOn = followOn
		match.Innings = append(match.Innings, inning.ID)
		if err := u.tx.UpdateMatch(ctx, match); err != nil {
			return err
		}
		u.inning = inning
		return u.emit(models.EventMatchUpdated, nil)
	})
	if err != nil {
		return nil, err
	}
	return inning, nil
}
