package scoring

import (
	"context"
	"errors"

	"github.com/GSH-LAN/Unwindia_cricket/src/cricket"
	"github.com/GSH-LAN/Unwindia_cricket/src/database"
	"github.com/GSH-LAN/Unwindia_cricket/src/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StartInning puts the openers and the opening bowler in and moves the inning to in_progress.
func (s *Service) StartInning(ctx context.Context, inningID primitive.ObjectID, striker, nonStriker, bowler string) (*models.Inning, error) {
	fields := validatePlayers(striker, nonStriker)
	if bowler == "" {
		fields = append(fields, "bowler: required")
	}
	if len(fields) > 0 {
		return nil, validationError("invalid openers", fields...)
	}

	var inning *models.Inning
	err := s.updateInning(ctx, inningID, func(ctx context.Context, u *unitOfWork) error {
		inning = u.inning
		if inning.Status != models.InningNotStarted {
			return stateError("inning %d is already %s", inning.InningNumber, inning.Status)
		}
		if u.match.Status != models.InningMatchStatus(inning.InningNumber) {
			return stateError("inning %d cannot start while the match is %s", inning.InningNumber, u.match.Status)
		}
		for _, p := range []string{striker, nonStriker} {
			if !inning.PlayingXI.IsBatter(p) {
				return stateError("%s is not in the batting XI", p)
			}
		}
		if !inning.PlayingXI.IsBowler(bowler) {
			return stateError("%s is not in the bowling XI", bowler)
		}

		book := newScorebook(u.match, inning, u.now)
		book.start(striker, nonStriker, bowler)
		if err := book.save(ctx, u.tx); err != nil {
			return err
		}

		if u.match.StartTime == nil {
			at := u.now
			u.match.StartTime = &at
			if err := u.tx.UpdateMatch(ctx, u.match); err != nil {
				return err
			}
		}
		return u.emit(models.EventInningStarted, nil)
	})
	if err != nil {
		return nil, err
	}
	return inning, nil
}

func validatePlayers(striker, nonStriker string) []string {
	var fields []string
	if striker == "" {
		fields = append(fields, "striker: required")
	}
	if nonStriker == "" {
		fields = append(fields, "nonStriker: required")
	}
	if striker != "" && striker == nonStriker {
		fields = append(fields, "nonStriker: must differ from striker")
	}
	return fields
}

// UpdateBatsmen corrects who is at the crease. A different pair starts a new partnership.
func (s *Service) UpdateBatsmen(ctx context.Context, inningID primitive.ObjectID, striker, nonStriker string) (*models.Inning, error) {
	if fields := validatePlayers(striker, nonStriker); len(fields) > 0 {
		return nil, validationError("invalid batsmen", fields...)
	}

	var inning *models.Inning
	err := s.updateInning(ctx, inningID, func(ctx context.Context, u *unitOfWork) error {
		inning = u.inning
		if inning.Status != models.InningInProgress {
			return stateError("inning %d is %s", inning.InningNumber, inning.Status)
		}
		for _, p := range []string{striker, nonStriker} {
			if !inning.PlayingXI.IsBatter(p) {
				return stateError("%s is not in the batting XI", p)
			}
			if inning.IsDismissed(p) {
				return stateError("%s has already been dismissed", p)
			}
		}

		book, err := loadScorebook(ctx, u.tx, u.match, inning, u.now)
		if err != nil {
			return err
		}
		book.setBatsmen(striker, nonStriker, u.now)
		if err := book.save(ctx, u.tx); err != nil {
			return err
		}
		return u.emit(models.EventMatchUpdated, nil)
	})
	if err != nil {
		return nil, err
	}
	return inning, nil
}

// UpdateBowler nominates the bowler of the current or next over. Nominated mid-over, the new bowler
// finishes the over.
func (s *Service) UpdateBowler(ctx context.Context, inningID primitive.ObjectID, bowler string) (*models.Inning, error) {
	if bowler == "" {
		return nil, validationError("invalid bowler", "bowler: required")
	}

	var inning *models.Inning
	err := s.updateInning(ctx, inningID, func(ctx context.Context, u *unitOfWork) error {
		inning = u.inning
		if inning.Status != models.InningInProgress {
			return stateError("inning %d is %s", inning.InningNumber, inning.Status)
		}
		if !inning.PlayingXI.IsBowler(bowler) {
			return stateError("%s is not in the bowling XI", bowler)
		}

		book, err := loadScorebook(ctx, u.tx, u.match, inning, u.now)
		if err != nil {
			return err
		}
		if quota := u.match.Rules.MaxOversPerBowler; quota > 0 {
			if stat, ok := book.bowling[bowler]; ok && stat.Overs >= quota {
				return stateError("%s has bowled the maximum of %d overs", bowler, quota)
			}
		}

		if err := checkNotConsecutive(ctx, u.tx, inning, bowler); err != nil {
			return err
		}

		inning.CurrentBowler = bowler
		book.bowler(bowler, u.now)
		if err := book.save(ctx, u.tx); err != nil {
			return err
		}
		return u.emit(models.EventMatchUpdated, nil)
	})
	if err != nil {
		return nil, err
	}
	return inning, nil
}

// checkNotConsecutive rejects a bowler who bowled any part of the previous over. It applies to a
// new over as well as to a replacement finishing the current one.
func checkNotConsecutive(ctx context.Context, tx database.Tx, inning *models.Inning, bowler string) error {
	if inning.Overs == 0 {
		return nil
	}
	previous, err := tx.GetOver(ctx, inning.ID, inning.Overs)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil
		}
		return err
	}
	if bowledIn(previous, bowler) {
		return stateError("%s bowled over %d and cannot bowl consecutive overs", bowler, previous.OverNumber)
	}
	return nil
}

// DeclareInnings closes a multi-innings inning early.
func (s *Service) DeclareInnings(ctx context.Context, inningID primitive.ObjectID, declaredBy, reason string) (*models.Inning, error) {
	if declaredBy == "" {
		return nil, validationError("invalid declaration", "declaredBy: required")
	}

	var inning *models.Inning
	err := s.updateInning(ctx, inningID, func(ctx context.Context, u *unitOfWork) error {
		inning = u.inning
		if !cricket.CanDeclare(u.match.Format) {
			return stateError("innings cannot be declared in a %s match", u.match.Format)
		}
		if inning.Status != models.InningInProgress {
			return stateError("inning %d is %s", inning.InningNumber, inning.Status)
		}

		book, err := loadScorebook(ctx, u.tx, u.match, inning, u.now)
		if err != nil {
			return err
		}
		inning.Declaration = &models.Declaration{DeclaredBy: declaredBy, Reason: reason, DeclaredAt: u.now}
		book.finish(models.InningDeclared, models.ReasonDeclared)
		if err := book.save(ctx, u.tx); err != nil {
			return err
		}
		return s.inningFinished(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	return inning, nil
}
