// Package scoring runs the ball-by-ball scoring pipeline. Every operation loads the aggregates it
// needs, mutates them in memory and writes them back in a single repository transaction while
// holding the lock of the match.
package scoring

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/GSH-LAN/Unwindia_cricket/src/cricket"
	"github.com/GSH-LAN/Unwindia_cricket/src/database"
	"github.com/GSH-LAN/Unwindia_cricket/src/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Observer is told about every committed change. It runs after the transaction; whatever it does
// cannot fail the operation. inning is nil for match-only changes.
type Observer interface {
	Committed(ctx context.Context, match *models.Match, inning *models.Inning)
}

type Option func(*Service)

// WithClock replaces time.Now as the source of timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.clock = now
	}
}

func WithObserver(o Observer) Option {
	return func(s *Service) {
		s.observers = append(s.observers, o)
	}
}

// WithFollowOnThreshold sets the follow-on lead used for new multi-innings matches.
func WithFollowOnThreshold(runs int) Option {
	return func(s *Service) {
		if runs > 0 {
			s.followOnThreshold = runs
		}
	}
}

type Service struct {
	db                database.DatabaseClient
	locks             *matchLocks
	clock             func() time.Time
	observers         []Observer
	followOnThreshold int

	// inningMatch caches the immutable inning -> match relation.
	inningMatch sync.Map
}

func NewService(db database.DatabaseClient, opts ...Option) *Service {
	s := &Service{
		db:                db,
		locks:             newMatchLocks(),
		clock:             time.Now,
		followOnThreshold: cricket.DefaultFollowOnThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// now is truncated to the precision the document store keeps.
func (s *Service) now() time.Time {
	return s.clock().UTC().Truncate(time.Millisecond)
}

// unitOfWork carries the state of one locked transaction.
type unitOfWork struct {
	tx     database.Tx
	now    time.Time
	match  *models.Match
	inning *models.Inning
	events []*models.Event
}

// updateMatch runs fn under the lock of matchID in one transaction. Events emitted by fn are
// written to the outbox in the same transaction.
func (s *Service) updateMatch(ctx context.Context, matchID primitive.ObjectID, fn func(ctx context.Context, u *unitOfWork) error) error {
	release, err := s.locks.acquire(ctx, matchID)
	if err != nil {
		return transactionError(err)
	}
	defer release()

	u := &unitOfWork{}
	err = s.db.RunInTransaction(ctx, func(ctx context.Context, tx database.Tx) error {
		*u = unitOfWork{tx: tx, now: s.now()}

		match, err := tx.GetMatch(ctx, matchID)
		if err != nil {
			return lookup(err, "match", matchID)
		}
		u.match = match

		if err := fn(ctx, u); err != nil {
			return err
		}
		return u.flush(ctx)
	})
	if err != nil {
		return classify(err)
	}

	s.notify(ctx, u)
	return nil
}

// updateInning is updateMatch for operations addressed by inning.
func (s *Service) updateInning(ctx context.Context, inningID primitive.ObjectID, fn func(ctx context.Context, u *unitOfWork) error) error {
	matchID, err := s.matchOf(ctx, inningID)
	if err != nil {
		return err
	}

	return s.updateMatch(ctx, matchID, func(ctx context.Context, u *unitOfWork) error {
		inning, err := u.tx.GetInning(ctx, inningID)
		if err != nil {
			return lookup(err, "inning", inningID)
		}
		u.inning = inning
		return fn(ctx, u)
	})
}

// view runs a read-only transaction.
func (s *Service) view(ctx context.Context, fn database.TxFunc) error {
	return classify(s.db.RunInTransaction(ctx, fn))
}

func (s *Service) matchOf(ctx context.Context, inningID primitive.ObjectID) (primitive.ObjectID, error) {
	if id, ok := s.inningMatch.Load(inningID); ok {
		return id.(primitive.ObjectID), nil
	}

	var matchID primitive.ObjectID
	err := s.view(ctx, func(ctx context.Context, tx database.Tx) error {
		inning, err := tx.GetInning(ctx, inningID)
		if err != nil {
			return lookup(err, "inning", inningID)
		}
		matchID = inning.MatchID
		return nil
	})
	if err != nil {
		return primitive.NilObjectID, err
	}

	s.inningMatch.Store(inningID, matchID)
	return matchID, nil
}

func (s *Service) notify(ctx context.Context, u *unitOfWork) {
	for _, o := range s.observers {
		o.Committed(ctx, u.match, u.inning)
	}
	slog.Debug("Committed scoring update", "match", u.match.ID.Hex(), "events", len(u.events))
}
