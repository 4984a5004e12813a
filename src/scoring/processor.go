package scoring

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/GSH-LAN/Unwindia_cricket/src/cricket"
	"github.com/GSH-LAN/Unwindia_cricket/src/database"
	"github.com/GSH-LAN/Unwindia_cricket/src/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BallInput is one delivery as reported by the scorer.
type BallInput struct {
	OverNumber   int                 `json:"overNumber"`
	BallNumber   int                 `json:"ballNumber"`
	Runs         int                 `json:"runs"`
	Batsman      string              `json:"batsman"`
	Bowler       string              `json:"bowler"`
	NonStriker   string              `json:"nonStriker"`
	Fielder      string              `json:"fielder,omitempty"`
	DeliveryType models.DeliveryType `json:"deliveryType"`
	Extras       *models.BallExtras  `json:"extras,omitempty"`
	IsWicket     bool                `json:"isWicket,omitempty"`
	Dismissal    *models.Dismissal   `json:"dismissal,omitempty"`
	Description  string              `json:"description,omitempty"`
}

type BallResult struct {
	Ball             models.Ball             `json:"ball"`
	Over             *models.Over            `json:"over"`
	Inning           *models.Inning          `json:"inning"`
	InningComplete   bool                    `json:"inningComplete"`
	CompletionReason models.CompletionReason `json:"completionReason,omitempty"`
}

// validateBall checks everything that can be checked without state and names every violation.
func validateBall(in BallInput) []string {
	var fields []string
	if in.Batsman == "" {
		fields = append(fields, "batsman: required")
	}
	if in.Bowler == "" {
		fields = append(fields, "bowler: required")
	}
	if in.NonStriker == "" {
		fields = append(fields, "nonStriker: required")
	}
	if in.Batsman != "" && in.Batsman == in.NonStriker {
		fields = append(fields, "nonStriker: must differ from batsman")
	}
	if in.OverNumber < 1 {
		fields = append(fields, "overNumber: must be at least 1")
	}
	if in.BallNumber < 1 || in.BallNumber > cricket.BallsPerOver {
		fields = append(fields, fmt.Sprintf("ballNumber: must be between 1 and %d", cricket.BallsPerOver))
	}

	switch {
	case in.DeliveryType == "":
		fields = append(fields, "deliveryType: required")
	case !in.DeliveryType.Valid():
		fields = append(fields, fmt.Sprintf("deliveryType: unknown delivery %q", in.DeliveryType))
	case !cricket.IsValidRunsForDelivery(in.Runs, in.DeliveryType):
		fields = append(fields, fmt.Sprintf("runs: %d not allowed on a %s delivery", in.Runs, in.DeliveryType))
	}
	if !in.DeliveryType.Valid() && (in.Runs < 0 || in.Runs > cricket.MaxRunsOffBall) {
		fields = append(fields, fmt.Sprintf("runs: must be between 0 and %d", cricket.MaxRunsOffBall))
	}

	if e := in.Extras; e != nil {
		for name, v := range map[string]int{"wides": e.Wides, "noBalls": e.NoBalls, "byes": e.Byes, "legByes": e.LegByes, "penalty": e.Penalty} {
			if v < 0 {
				fields = append(fields, fmt.Sprintf("extras.%s: must not be negative", name))
			}
		}
	}

	switch {
	case in.IsWicket && in.Dismissal == nil:
		fields = append(fields, "dismissal: required for a wicket")
	case !in.IsWicket && in.Dismissal != nil:
		fields = append(fields, "isWicket: must be set when a dismissal is given")
	case in.IsWicket && !cricket.IsKnownDismissal(in.Dismissal.Type):
		fields = append(fields, fmt.Sprintf("dismissal.type: unknown dismissal %q", in.Dismissal.Type))
	case in.IsWicket && in.DeliveryType.Valid() && !cricket.IsValidDismissal(in.Dismissal.Type, in.DeliveryType):
		fields = append(fields, fmt.Sprintf("dismissal.type: %s not possible on a %s delivery", in.Dismissal.Type, in.DeliveryType))
	}

	sort.Strings(fields)
	return fields
}

// normalizedExtras fills in the extras a delivery type implies. Runs reported on a bye or leg bye
// delivery without a matching extras value are moved into it.
func normalizedExtras(in BallInput) (int, models.BallExtras) {
	var extras models.BallExtras
	if in.Extras != nil {
		extras = *in.Extras
	}
	runs := in.Runs

	switch in.DeliveryType {
	case models.DeliveryWide:
		if extras.Wides == 0 {
			extras.Wides = 1
		}
	case models.DeliveryNoBall:
		if extras.NoBalls == 0 {
			extras.NoBalls = 1
		}
	case models.DeliveryBye:
		if extras.Byes == 0 {
			extras.Byes, runs = runs, 0
		}
	case models.DeliveryLegBye:
		if extras.LegByes == 0 {
			extras.LegByes, runs = runs, 0
		}
	}
	return runs, extras
}

// ScoreBall records one delivery and runs it through the whole pipeline: over aggregation, inning
// state, player statistics, innings completion and the match status.
func (s *Service) ScoreBall(ctx context.Context, inningID primitive.ObjectID, in BallInput) (*BallResult, error) {
	if fields := validateBall(in); len(fields) > 0 {
		return nil, validationError("invalid ball", fields...)
	}

	var result *BallResult
	err := s.updateInning(ctx, inningID, func(ctx context.Context, u *unitOfWork) error {
		inning := u.inning
		if inning.Status != models.InningInProgress {
			return stateError("inning %d is %s", inning.InningNumber, inning.Status)
		}
		if stoppage := inning.ActiveInterruption(); stoppage != nil {
			return stateError("play in inning %d is interrupted: %s", inning.InningNumber, stoppage.Reason)
		}
		if err := checkBallState(inning, in); err != nil {
			return err
		}

		book, err := loadScorebook(ctx, u.tx, u.match, inning, u.now)
		if err != nil {
			return err
		}

		over, previous, isNew, err := s.openOver(ctx, u.tx, book, in)
		if err != nil {
			return err
		}

		ball := newBall(in, previous, u.match.Format, u.now)
		if ball.IsWicket && ball.IsFreeHit && !cricket.IsFreeHitDismissal(ball.Dismissal.Type) {
			return stateError("%s is not possible on a free hit", ball.Dismissal.Type)
		}

		over.Balls = append(over.Balls, ball)
		aggregateOver(over)
		book.applyBall(over.LastBall(), progressAt(over.Balls, len(over.Balls)-1))

		if isNew {
			err = u.tx.CreateOver(ctx, over)
		} else {
			err = u.tx.UpdateOver(ctx, over)
		}
		if err != nil {
			return err
		}
		if err := book.save(ctx, u.tx); err != nil {
			return err
		}

		scored := *over.LastBall()
		if err := u.emit(models.EventBallScored, &scored); err != nil {
			return err
		}
		if inning.Status.Terminal() {
			if err := s.inningFinished(ctx, u); err != nil {
				return err
			}
		}

		result = &BallResult{
			Ball:             scored,
			Over:             over,
			Inning:           inning,
			InningComplete:   inning.Status.Terminal(),
			CompletionReason: inning.CompletionReason,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// checkBallState verifies the delivery against who is actually at the crease and bowling.
func checkBallState(inning *models.Inning, in BallInput) error {
	if in.Batsman != inning.Striker {
		return stateError("%s is not on strike, striker is %s", in.Batsman, inning.Striker)
	}
	if in.NonStriker != inning.NonStriker {
		return stateError("%s is not the non-striker, non-striker is %s", in.NonStriker, inning.NonStriker)
	}
	if inning.CurrentBowler == "" {
		return stateError("no bowler nominated for over %d", inning.Overs+1)
	}
	if !inning.PlayingXI.IsBowler(in.Bowler) {
		return stateError("%s is not in the bowling XI", in.Bowler)
	}
	if in.OverNumber != inning.Overs+1 {
		return stateError("over %d is being bowled, got over %d", inning.Overs+1, in.OverNumber)
	}
	// extras re-bowl the same ball number
	if next := min(inning.Balls+1, cricket.BallsPerOver); in.BallNumber != next {
		return stateError("ball %d of over %d is next, got ball %d", next, in.OverNumber, in.BallNumber)
	}
	if in.IsWicket && in.Dismissal.PlayerOut != "" && in.Dismissal.PlayerOut != in.Batsman && in.Dismissal.PlayerOut != in.NonStriker {
		return stateError("%s is not at the crease", in.Dismissal.PlayerOut)
	}
	return nil
}

// openOver locates the over the delivery belongs to, creating it on its first ball. The first ball of
// an over names its bowler; every later ball must come from the current bowler, who differs from
// the opener after a mid-over change. It also returns the previous delivery of the inning, if any.
func (s *Service) openOver(ctx context.Context, tx database.Tx, book *scorebook, in BallInput) (*models.Over, *models.Ball, bool, error) {
	inning := book.inning

	var previousOver *models.Over
	if in.OverNumber > 1 {
		o, err := tx.GetOver(ctx, inning.ID, in.OverNumber-1)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return nil, nil, false, err
		}
		previousOver = o
	}

	over, err := tx.GetOver(ctx, inning.ID, in.OverNumber)
	switch {
	case err == nil:
		if inning.CurrentBowler != in.Bowler {
			return nil, nil, false, stateError("%s is bowling over %d, got %s", inning.CurrentBowler, over.OverNumber, in.Bowler)
		}
		return over, over.LastBall(), false, nil
	case !errors.Is(err, database.ErrNotFound):
		return nil, nil, false, err
	}

	if bowledIn(previousOver, in.Bowler) {
		return nil, nil, false, stateError("%s bowled over %d and cannot bowl consecutive overs", in.Bowler, previousOver.OverNumber)
	}
	if quota := book.match.Rules.MaxOversPerBowler; quota > 0 {
		if stat, ok := book.bowling[in.Bowler]; ok && stat.Overs >= quota {
			return nil, nil, false, stateError("%s has bowled the maximum of %d overs", in.Bowler, quota)
		}
	}

	// the first ball of an over names its bowler
	inning.CurrentBowler = in.Bowler
	book.bowler(in.Bowler, book.now)

	over = &models.Over{
		InningID:   inning.ID,
		MatchID:    inning.MatchID,
		OverNumber: in.OverNumber,
		Bowler:     in.Bowler,
		Balls:      []models.Ball{},
		Status:     models.OverInProgress,
		StartTime:  book.now,
	}

	var previous *models.Ball
	if previousOver != nil {
		previous = previousOver.LastBall()
	}
	return over, previous, true, nil
}

func newBall(in BallInput, previous *models.Ball, format models.Format, now time.Time) models.Ball {
	runs, extras := normalizedExtras(in)
	ball := models.Ball{
		BallNumber:   in.BallNumber,
		OverNumber:   in.OverNumber,
		Runs:         runs,
		IsBoundary:   cricket.IsValidBoundary(runs, in.DeliveryType),
		BoundaryType: cricket.BoundaryType(runs, in.DeliveryType),
		DeliveryType: in.DeliveryType,
		IsWicket:     in.IsWicket,
		IsFreeHit:    freeHit(previous, format),
		Batsman:      in.Batsman,
		Bowler:       in.Bowler,
		NonStriker:   in.NonStriker,
		Fielder:      in.Fielder,
		Extras:       extras,
		Description:  in.Description,
		Timestamp:    now,
	}

	var dismissalType models.DismissalType
	if in.IsWicket {
		d := *in.Dismissal
		if d.PlayerOut == "" {
			d.PlayerOut = in.Batsman
		}
		if d.Bowler == "" && cricket.IsBowlerCredited(d.Type) {
			d.Bowler = in.Bowler
		}
		if d.Fielder == "" {
			d.Fielder = in.Fielder
		}
		if d.Description == "" {
			d.Description = cricket.DismissalDescription(d.Type)
		}
		ball.Dismissal = &d
		dismissalType = d.Type
	}

	if ball.Description == "" {
		ball.Description = cricket.BallDescription(ball.DeliveryType, runs, extras, ball.IsWicket, dismissalType)
	}
	return ball
}

// freeHit follows a no-ball in limited-overs cricket and carries over a wide bowled on a free hit.
func freeHit(previous *models.Ball, format models.Format) bool {
	if previous == nil || cricket.IsMultiInnings(format) {
		return false
	}
	if cricket.IsFreeHit(previous.DeliveryType) {
		return true
	}
	return previous.IsFreeHit && previous.DeliveryType == models.DeliveryWide
}
