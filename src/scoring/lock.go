package scoring

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/semaphore"
)

// matchLocks serializes every write to a match and its innings. One ball may be in flight per
// match at a time.
type matchLocks struct {
	mu    sync.Mutex
	locks map[primitive.ObjectID]*semaphore.Weighted
}

func newMatchLocks() *matchLocks {
	return &matchLocks{locks: make(map[primitive.ObjectID]*semaphore.Weighted)}
}

// acquire blocks until the lock of id is held or ctx is done.
func (l *matchLocks) acquire(ctx context.Context, id primitive.ObjectID) (func(), error) {
	l.mu.Lock()
	sem, ok := l.locks[id]
	if !ok {
		sem = semaphore.NewWeighted(1)
		l.locks[id] = sem
	}
	l.mu.Unlock()

	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { sem.Release(1) }, nil
}
