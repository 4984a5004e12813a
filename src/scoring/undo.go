package scoring

import (
	"context"

	"github.com/GSH-LAN/Unwindia_cricket/src/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UndoResult struct {
	Ball   models.Ball    `json:"ball"`
	Inning *models.Inning `json:"inning"`
}

// UndoBall removes the most recent delivery of an inning. The inning and its statistics are rebuilt
// by replaying every remaining ball from the openers, which also reverses wickets exactly.
func (s *Service) UndoBall(ctx context.Context, inningID primitive.ObjectID) (*UndoResult, error) {
	var result *UndoResult
	err := s.updateInning(ctx, inningID, func(ctx context.Context, u *unitOfWork) error {
		inning, match := u.inning, u.match

		switch inning.Status {
		case models.InningInProgress:
		case models.InningCompleted:
			innings, err := u.tx.ListInnings(ctx, match.ID)
			if err != nil {
				return err
			}
			if len(innings) > inning.InningNumber {
				return stateError("inning %d has already been initialized", inning.InningNumber+1)
			}
		default:
			return stateError("inning %d is %s", inning.InningNumber, inning.Status)
		}

		overs, err := u.tx.ListOvers(ctx, inning.ID)
		if err != nil {
			return err
		}
		if len(overs) == 0 || len(overs[len(overs)-1].Balls) == 0 {
			return validationError("nothing to undo", "inning: no balls recorded")
		}
		if inning.Openers == nil || inning.StartTime == nil {
			return stateError("inning %d has no recorded openers", inning.InningNumber)
		}

		last := overs[len(overs)-1]
		removed := *last.LastBall()
		last.Balls = last.Balls[:len(last.Balls)-1]
		if len(last.Balls) == 0 {
			if err := u.tx.DeleteOver(ctx, last); err != nil {
				return err
			}
			overs = overs[:len(overs)-1]
		} else {
			aggregateOver(last)
			if err := u.tx.UpdateOver(ctx, last); err != nil {
				return err
			}
		}

		wasComplete := inning.Status.Terminal()
		book, err := loadScorebook(ctx, u.tx, match, inning, u.now)
		if err != nil {
			return err
		}
		book.replay(overs)
		book.setBatsmen(removed.Batsman, removed.NonStriker, removed.Timestamp)
		book.batter(removed.Batsman, removed.Timestamp)
		book.batter(removed.NonStriker, removed.Timestamp)
		inning.CurrentBowler = removed.Bowler
		book.bowler(removed.Bowler, removed.Timestamp)

		if err := book.save(ctx, u.tx); err != nil {
			return err
		}
		if err := u.emit(models.EventBallUndone, &removed); err != nil {
			return err
		}

		if wasComplete && !inning.Status.Terminal() {
			reopenMatch(match, inning)
			if err := u.tx.UpdateMatch(ctx, match); err != nil {
				return err
			}
			if err := u.emit(models.EventMatchUpdated, nil); err != nil {
				return err
			}
		}

		result = &UndoResult{Ball: removed, Inning: inning}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// replay rebuilds the inning from its openers by applying every ball of overs in order. Before
// each ball the players recorded on it are put in place, which carries manual corrections along.
func (b *scorebook) replay(overs []*models.Over) {
	b.rewind()
	in := b.inning

	for _, over := range overs {
		for i := range over.Balls {
			ball := &over.Balls[i]
			b.setBatsmen(ball.Batsman, ball.NonStriker, ball.Timestamp)
			in.CurrentBowler = ball.Bowler
			b.applyBall(ball, progressAt(over.Balls, i))
		}
	}
}
