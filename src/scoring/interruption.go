package scoring

import (
	"context"
	"math"

	"github.com/GSH-LAN/Unwindia_cricket/src/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AddInterruption stops play in a running inning. No ball can be scored until EndInterruption.
func (s *Service) AddInterruption(ctx context.Context, inningID primitive.ObjectID, reason string) (*models.Interruption, error) {
	if reason == "" {
		return nil, validationError("invalid interruption", "reason: required")
	}

	var stoppage models.Interruption
	err := s.updateInning(ctx, inningID, func(ctx context.Context, u *unitOfWork) error {
		inning := u.inning
		if inning.Status != models.InningInProgress {
			return stateError("inning %d is %s", inning.InningNumber, inning.Status)
		}
		if active := inning.ActiveInterruption(); active != nil {
			return stateError("play is already interrupted: %s", active.Reason)
		}

		stoppage = models.Interruption{Reason: reason, StartTime: u.now}
		inning.Interruptions = append(inning.Interruptions, stoppage)
		if err := u.tx.SaveInning(ctx, inning); err != nil {
			return err
		}
		return u.emit(models.EventMatchUpdated, nil)
	})
	if err != nil {
		return nil, err
	}
	return &stoppage, nil
}

// EndInterruption resumes play and records how many minutes were lost.
func (s *Service) EndInterruption(ctx context.Context, inningID primitive.ObjectID) (*models.Interruption, error) {
	var stoppage models.Interruption
	err := s.updateInning(ctx, inningID, func(ctx context.Context, u *unitOfWork) error {
		inning := u.inning
		active := inning.ActiveInterruption()
		if active == nil {
			return validationError("no active interruption", "inning: play is not interrupted")
		}

		end := u.now
		active.EndTime = &end
		active.Duration = int(math.Round(end.Sub(active.StartTime).Minutes()))
		stoppage = *active
		if err := u.tx.SaveInning(ctx, inning); err != nil {
			return err
		}
		return u.emit(models.EventMatchUpdated, nil)
	})
	if err != nil {
		return nil, err
	}
	return &stoppage, nil
}
