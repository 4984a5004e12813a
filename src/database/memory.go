package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/GSH-LAN/Unwindia_cricket/src/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// the memory store keeps one table per mongo collection
var (
	matchCollection       = (&models.Match{}).CollectionName()
	inningCollection      = (&models.Inning{}).CollectionName()
	overCollection        = (&models.Over{}).CollectionName()
	battingStatCollection = (&models.BattingStat{}).CollectionName()
	bowlingStatCollection = (&models.BowlingStat{}).CollectionName()
	eventCollection       = (&models.Event{}).CollectionName()
)

type memoryTable map[primitive.ObjectID][]byte

// MemoryClient is a DatabaseClient keeping bson encoded documents in memory. Transactions stage
// their writes and apply them on commit, so a failed transaction leaves nothing behind.
type MemoryClient struct {
	mu     sync.RWMutex
	tables map[string]memoryTable
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{tables: make(map[string]memoryTable)}
}

func (m *MemoryClient) RunInTransaction(ctx context.Context, fn TxFunc) error {
	tx := &memoryTx{
		store:    m,
		staged:   make(map[string]memoryTable),
		versions: make(map[primitive.ObjectID]int64),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.commit(tx)
}

func (m *MemoryClient) Close(context.Context) error {
	return nil
}

func (m *MemoryClient) ListEvents(_ context.Context, state models.EventState, limit int64) ([]*models.Event, error) {
	tx := &memoryTx{store: m}
	events, err := scan(tx, eventCollection, func(e *models.Event) bool { return e.State == state })
	if err != nil {
		return nil, err
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].OccurredAt.Equal(events[j].OccurredAt) {
			return events[i].OccurredAt.Before(events[j].OccurredAt)
		}
		return events[i].ID.Hex() < events[j].ID.Hex()
	})
	if limit > 0 && int64(len(events)) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (m *MemoryClient) UpdateEvent(_ context.Context, event *models.Event) error {
	event.UpdatedAt = time.Now().UTC()
	b, err := bson.Marshal(event)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	table := m.tables[eventCollection]
	if _, ok := table[event.ID]; !ok {
		return ErrNotFound
	}
	table[event.ID] = b
	return nil
}

func (m *MemoryClient) commit(tx *memoryTx) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, seen := range tx.versions {
		if current := m.inningVersion(id); current != seen {
			return fmt.Errorf("inning %s: %w", id.Hex(), ErrVersionConflict)
		}
	}

	for coll, writes := range tx.staged {
		table, ok := m.tables[coll]
		if !ok {
			table = make(memoryTable)
			m.tables[coll] = table
		}
		for id, doc := range writes {
			if doc == nil {
				delete(table, id)
				continue
			}
			table[id] = doc
		}
	}
	return nil
}

// inningVersion must be called with m.mu held.
func (m *MemoryClient) inningVersion(id primitive.ObjectID) int64 {
	doc, ok := m.tables[inningCollection][id]
	if !ok {
		return 0
	}
	var inning models.Inning
	if err := bson.Unmarshal(doc, &inning); err != nil {
		return -1
	}
	return inning.Version
}

type memoryTx struct {
	store *MemoryClient
	// staged holds the writes of the transaction; a nil document marks a delete.
	staged map[string]memoryTable
	// versions records the stored version of every inning the transaction saved.
	versions map[primitive.ObjectID]int64
}

func (t *memoryTx) get(coll string, id primitive.ObjectID) ([]byte, bool) {
	if doc, ok := t.staged[coll][id]; ok {
		return doc, doc != nil
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	doc, ok := t.store.tables[coll][id]
	return doc, ok
}

func (t *memoryTx) all(coll string) [][]byte {
	t.store.mu.RLock()
	merged := make(map[primitive.ObjectID][]byte, len(t.store.tables[coll]))
	for id, doc := range t.store.tables[coll] {
		merged[id] = doc
	}
	t.store.mu.RUnlock()

	for id, doc := range t.staged[coll] {
		if doc == nil {
			delete(merged, id)
			continue
		}
		merged[id] = doc
	}

	docs := make([][]byte, 0, len(merged))
	for _, doc := range merged {
		docs = append(docs, doc)
	}
	return docs
}

func (t *memoryTx) put(coll string, id primitive.ObjectID, v any) error {
	doc, err := bson.Marshal(v)
	if err != nil {
		return err
	}
	t.stage(coll, id, doc)
	return nil
}

func (t *memoryTx) stage(coll string, id primitive.ObjectID, doc []byte) {
	table, ok := t.staged[coll]
	if !ok {
		table = make(memoryTable)
		t.staged[coll] = table
	}
	table[id] = doc
}

func (t *memoryTx) delete(coll string, id primitive.ObjectID) error {
	if _, ok := t.get(coll, id); !ok {
		return ErrNotFound
	}
	t.stage(coll, id, nil)
	return nil
}

func find[T any](t *memoryTx, coll string, id primitive.ObjectID) (*T, error) {
	doc, ok := t.get(coll, id)
	if !ok {
		return nil, ErrNotFound
	}
	var v T
	if err := bson.Unmarshal(doc, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func scan[T any](t *memoryTx, coll string, keep func(*T) bool) ([]*T, error) {
	var result []*T
	for _, doc := range t.all(coll) {
		var v T
		if err := bson.Unmarshal(doc, &v); err != nil {
			return nil, err
		}
		if keep(&v) {
			result = append(result, &v)
		}
	}
	return result, nil
}

func created(id *primitive.ObjectID, createdAt, updatedAt *time.Time) {
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	*createdAt = now
	*updatedAt = now
}

func (t *memoryTx) CreateMatch(_ context.Context, match *models.Match) error {
	created(&match.ID, &match.CreatedAt, &match.UpdatedAt)
	return t.put(matchCollection, match.ID, match)
}

func (t *memoryTx) UpdateMatch(_ context.Context, match *models.Match) error {
	if _, ok := t.get(matchCollection, match.ID); !ok {
		return ErrNotFound
	}
	match.UpdatedAt = time.Now().UTC()
	return t.put(matchCollection, match.ID, match)
}

func (t *memoryTx) GetMatch(_ context.Context, id primitive.ObjectID) (*models.Match, error) {
	return find[models.Match](t, matchCollection, id)
}

func (t *memoryTx) CreateInning(_ context.Context, inning *models.Inning) error {
	created(&inning.ID, &inning.CreatedAt, &inning.UpdatedAt)
	inning.Version = 1
	return t.put(inningCollection, inning.ID, inning)
}

func (t *memoryTx) SaveInning(_ context.Context, inning *models.Inning) error {
	current, err := find[models.Inning](t, inningCollection, inning.ID)
	if err != nil {
		return err
	}
	if current.Version != inning.Version {
		return fmt.Errorf("inning %s: %w", inning.ID.Hex(), ErrVersionConflict)
	}

	if _, ok := t.versions[inning.ID]; !ok {
		t.store.mu.RLock()
		t.versions[inning.ID] = t.store.inningVersion(inning.ID)
		t.store.mu.RUnlock()
	}

	inning.Version++
	inning.UpdatedAt = time.Now().UTC()
	return t.put(inningCollection, inning.ID, inning)
}

func (t *memoryTx) GetInning(_ context.Context, id primitive.ObjectID) (*models.Inning, error) {
	return find[models.Inning](t, inningCollection, id)
}

func (t *memoryTx) ListInnings(_ context.Context, matchID primitive.ObjectID) ([]*models.Inning, error) {
	innings, err := scan(t, inningCollection, func(i *models.Inning) bool { return i.MatchID == matchID })
	if err != nil {
		return nil, err
	}
	sort.Slice(innings, func(i, j int) bool { return innings[i].InningNumber < innings[j].InningNumber })
	return innings, nil
}

func (t *memoryTx) CreateOver(_ context.Context, over *models.Over) error {
	created(&over.ID, &over.CreatedAt, &over.UpdatedAt)
	return t.put(overCollection, over.ID, over)
}

func (t *memoryTx) UpdateOver(_ context.Context, over *models.Over) error {
	if _, ok := t.get(overCollection, over.ID); !ok {
		return ErrNotFound
	}
	over.UpdatedAt = time.Now().UTC()
	return t.put(overCollection, over.ID, over)
}

func (t *memoryTx) DeleteOver(_ context.Context, over *models.Over) error {
	return t.delete(overCollection, over.ID)
}

func (t *memoryTx) GetOver(_ context.Context, inningID primitive.ObjectID, overNumber int) (*models.Over, error) {
	overs, err := scan(t, overCollection, func(o *models.Over) bool {
		return o.InningID == inningID && o.OverNumber == overNumber
	})
	if err != nil {
		return nil, err
	}
	if len(overs) == 0 {
		return nil, ErrNotFound
	}
	return overs[0], nil
}

func (t *memoryTx) ListOvers(_ context.Context, inningID primitive.ObjectID) ([]*models.Over, error) {
	overs, err := scan(t, overCollection, func(o *models.Over) bool { return o.InningID == inningID })
	if err != nil {
		return nil, err
	}
	sort.Slice(overs, func(i, j int) bool { return overs[i].OverNumber < overs[j].OverNumber })
	return overs, nil
}

func (t *memoryTx) SaveBattingStat(_ context.Context, stat *models.BattingStat) error {
	if stat.ID.IsZero() {
		created(&stat.ID, &stat.CreatedAt, &stat.UpdatedAt)
	} else {
		stat.UpdatedAt = time.Now().UTC()
	}
	return t.put(battingStatCollection, stat.ID, stat)
}

func (t *memoryTx) DeleteBattingStat(_ context.Context, stat *models.BattingStat) error {
	return t.delete(battingStatCollection, stat.ID)
}

func (t *memoryTx) ListBattingStats(_ context.Context, inningID primitive.ObjectID) ([]*models.BattingStat, error) {
	stats, err := scan(t, battingStatCollection, func(s *models.BattingStat) bool { return s.InningID == inningID })
	if err != nil {
		return nil, err
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].BattingPosition < stats[j].BattingPosition })
	return stats, nil
}

func (t *memoryTx) SaveBowlingStat(_ context.Context, stat *models.BowlingStat) error {
	if stat.ID.IsZero() {
		created(&stat.ID, &stat.CreatedAt, &stat.UpdatedAt)
	} else {
		stat.UpdatedAt = time.Now().UTC()
	}
	return t.put(bowlingStatCollection, stat.ID, stat)
}

func (t *memoryTx) DeleteBowlingStat(_ context.Context, stat *models.BowlingStat) error {
	return t.delete(bowlingStatCollection, stat.ID)
}

func (t *memoryTx) ListBowlingStats(_ context.Context, inningID primitive.ObjectID) ([]*models.BowlingStat, error) {
	stats, err := scan(t, bowlingStatCollection, func(s *models.BowlingStat) bool { return s.InningID == inningID })
	if err != nil {
		return nil, err
	}
	sort.Slice(stats, func(i, j int) bool {
		a, b := stats[i].StartTime, stats[j].StartTime
		if a == nil || b == nil || a.Equal(*b) {
			return stats[i].Player < stats[j].Player
		}
		return a.Before(*b)
	})
	return stats, nil
}

func (t *memoryTx) CreateEvent(_ context.Context, event *models.Event) error {
	created(&event.ID, &event.CreatedAt, &event.UpdatedAt)
	return t.put(eventCollection, event.ID, event)
}
