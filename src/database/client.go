package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GSH-LAN/Unwindia_cricket/src/models"
	"github.com/kamva/mgm/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultDatabaseName = "unwindia"
	DefaultTimeout      = 10 * time.Second
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrVersionConflict = errors.New("version conflict")
)

// TxFunc runs inside a transaction. Every write made through tx is committed when it returns nil
// and discarded otherwise. ctx must be passed on to tx.
type TxFunc func(ctx context.Context, tx Tx) error

// Tx is the set of reads and writes available inside a transaction
type Tx interface {
	CreateMatch(ctx context.Context, match *models.Match) error
	UpdateMatch(ctx context.Context, match *models.Match) error
	GetMatch(ctx context.Context, id primitive.ObjectID) (*models.Match, error)

	CreateInning(ctx context.Context, inning *models.Inning) error
	// SaveInning replaces the stored inning if its version still matches and bumps the version.
	SaveInning(ctx context.Context, inning *models.Inning) error
	GetInning(ctx context.Context, id primitive.ObjectID) (*models.Inning, error)
	// ListInnings returns the innings of a match ordered by inning number.
	ListInnings(ctx context.Context, matchID primitive.ObjectID) ([]*models.Inning, error)

	CreateOver(ctx context.Context, over *models.Over) error
	UpdateOver(ctx context.Context, over *models.Over) error
	DeleteOver(ctx context.Context, over *models.Over) error
	GetOver(ctx context.Context, inningID primitive.ObjectID, overNumber int) (*models.Over, error)
	// ListOvers returns the overs of an inning ordered by over number.
	ListOvers(ctx context.Context, inningID primitive.ObjectID) ([]*models.Over, error)

	SaveBattingStat(ctx context.Context, stat *models.BattingStat) error
	DeleteBattingStat(ctx context.Context, stat *models.BattingStat) error
	ListBattingStats(ctx context.Context, inningID primitive.ObjectID) ([]*models.BattingStat, error)
	SaveBowlingStat(ctx context.Context, stat *models.BowlingStat) error
	DeleteBowlingStat(ctx context.Context, stat *models.BowlingStat) error
	ListBowlingStats(ctx context.Context, inningID primitive.ObjectID) ([]*models.BowlingStat, error)

	CreateEvent(ctx context.Context, event *models.Event) error
}

// DatabaseClient is the client-interface for the scoring database
type DatabaseClient interface {
	RunInTransaction(ctx context.Context, fn TxFunc) error
	// ListEvents returns up to limit outbox events in the given state, oldest first.
	ListEvents(ctx context.Context, state models.EventState, limit int64) ([]*models.Event, error)
	UpdateEvent(ctx context.Context, event *models.Event) error
	Close(ctx context.Context) error
}

// NewClient connects to mongodb and configures mgm to use the given database.
func NewClient(ctx context.Context, uri, databaseName string) (*DatabaseClientImpl, error) {
	if databaseName == "" {
		databaseName = DefaultDatabaseName
	}

	err := mgm.SetDefaultConfig(&mgm.Config{CtxTimeout: DefaultTimeout}, databaseName, options.Client().ApplyURI(uri))
	if err != nil {
		slog.Error("Error creating mgm connection", "Error", err)
		return nil, err
	}

	_, client, _, err := mgm.DefaultConfigs()
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()
	if err = client.Ping(pingCtx, nil); err != nil {
		slog.Error("Error connecting to Mongo", "Error", err)
		return nil, err
	}

	dbClient := DatabaseClientImpl{client: client}
	if err = dbClient.ensureIndexes(ctx); err != nil {
		slog.Error("Error creating indexes", "Error", err)
		return nil, err
	}

	return &dbClient, nil
}

type DatabaseClientImpl struct {
	client *mongo.Client
}

// RunInTransaction runs fn inside a multi-document transaction. The session context handed to fn
// binds every collection call made with it to the transaction.
func (d *DatabaseClientImpl) RunInTransaction(ctx context.Context, fn TxFunc) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	return mgm.TransactionWithCtx(ctx, func(session mongo.Session, sc mongo.SessionContext) error {
		if err := fn(sc, d); err != nil {
			return err
		}
		return session.CommitTransaction(sc)
	})
}

func (d *DatabaseClientImpl) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

func (d *DatabaseClientImpl) CreateMatch(ctx context.Context, match *models.Match) error {
	return mgm.Coll(match).CreateWithCtx(ctx, match)
}

func (d *DatabaseClientImpl) UpdateMatch(ctx context.Context, match *models.Match) error {
	return mgm.Coll(match).UpdateWithCtx(ctx, match)
}

func (d *DatabaseClientImpl) GetMatch(ctx context.Context, id primitive.ObjectID) (*models.Match, error) {
	var match models.Match
	if err := mgm.Coll(&match).FindByIDWithCtx(ctx, id, &match); err != nil {
		return nil, notFound(err)
	}
	return &match, nil
}

func (d *DatabaseClientImpl) CreateInning(ctx context.Context, inning *models.Inning) error {
	inning.Version = 1
	return mgm.Coll(inning).CreateWithCtx(ctx, inning)
}

func (d *DatabaseClientImpl) SaveInning(ctx context.Context, inning *models.Inning) error {
	previous := inning.Version
	inning.Version++
	inning.UpdatedAt = time.Now().UTC()

	res, err := mgm.Coll(inning).ReplaceOne(ctx, bson.M{"_id": inning.ID, "version": previous}, inning)
	if err != nil {
		inning.Version = previous
		return err
	}
	if res.MatchedCount == 0 {
		inning.Version = previous
		return fmt.Errorf("inning %s: %w", inning.ID.Hex(), ErrVersionConflict)
	}
	return nil
}

func (d *DatabaseClientImpl) GetInning(ctx context.Context, id primitive.ObjectID) (*models.Inning, error) {
	var inning models.Inning
	if err := mgm.Coll(&inning).FindByIDWithCtx(ctx, id, &inning); err != nil {
		return nil, notFound(err)
	}
	return &inning, nil
}

func (d *DatabaseClientImpl) ListInnings(ctx context.Context, matchID primitive.ObjectID) ([]*models.Inning, error) {
	var innings []*models.Inning
	err := mgm.Coll(&models.Inning{}).SimpleFindWithCtx(ctx, &innings,
		bson.M{"match_id": matchID},
		options.Find().SetSort(bson.D{{Key: "inning_number", Value: 1}}))
	return innings, err
}

func (d *DatabaseClientImpl) CreateOver(ctx context.Context, over *models.Over) error {
	return mgm.Coll(over).CreateWithCtx(ctx, over)
}

func (d *DatabaseClientImpl) UpdateOver(ctx context.Context, over *models.Over) error {
	return mgm.Coll(over).UpdateWithCtx(ctx, over)
}

func (d *DatabaseClientImpl) DeleteOver(ctx context.Context, over *models.Over) error {
	return mgm.Coll(over).DeleteWithCtx(ctx, over)
}

func (d *DatabaseClientImpl) GetOver(ctx context.Context, inningID primitive.ObjectID, overNumber int) (*models.Over, error) {
	var over models.Over
	err := mgm.Coll(&over).FirstWithCtx(ctx, bson.M{"inning_id": inningID, "over_number": overNumber}, &over)
	if err != nil {
		return nil, notFound(err)
	}
	return &over, nil
}

func (d *DatabaseClientImpl) ListOvers(ctx context.Context, inningID primitive.ObjectID) ([]*models.Over, error) {
	var overs []*models.Over
	err := mgm.Coll(&models.Over{}).SimpleFindWithCtx(ctx, &overs,
		bson.M{"inning_id": inningID},
		options.Find().SetSort(bson.D{{Key: "over_number", Value: 1}}))
	return overs, err
}

func (d *DatabaseClientImpl) SaveBattingStat(ctx context.Context, stat *models.BattingStat) error {
	if stat.ID.IsZero() {
		return mgm.Coll(stat).CreateWithCtx(ctx, stat)
	}
	return mgm.Coll(stat).UpdateWithCtx(ctx, stat)
}

func (d *DatabaseClientImpl) DeleteBattingStat(ctx context.Context, stat *models.BattingStat) error {
	return mgm.Coll(stat).DeleteWithCtx(ctx, stat)
}

func (d *DatabaseClientImpl) ListBattingStats(ctx context.Context, inningID primitive.ObjectID) ([]*models.BattingStat, error) {
	var stats []*models.BattingStat
	err := mgm.Coll(&models.BattingStat{}).SimpleFindWithCtx(ctx, &stats,
		bson.M{"inning_id": inningID},
		options.Find().SetSort(bson.D{{Key: "batting_position", Value: 1}}))
	return stats, err
}

func (d *DatabaseClientImpl) SaveBowlingStat(ctx context.Context, stat *models.BowlingStat) error {
	if stat.ID.IsZero() {
		return mgm.Coll(stat).CreateWithCtx(ctx, stat)
	}
	return mgm.Coll(stat).UpdateWithCtx(ctx, stat)
}

func (d *DatabaseClientImpl) DeleteBowlingStat(ctx context.Context, stat *models.BowlingStat) error {
	return mgm.Coll(stat).DeleteWithCtx(ctx, stat)
}

func (d *DatabaseClientImpl) ListBowlingStats(ctx context.Context, inningID primitive.ObjectID) ([]*models.BowlingStat, error) {
	var stats []*models.BowlingStat
	err := mgm.Coll(&models.BowlingStat{}).SimpleFindWithCtx(ctx, &stats,
		bson.M{"inning_id": inningID},
		options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}}))
	return stats, err
}

func (d *DatabaseClientImpl) CreateEvent(ctx context.Context, event *models.Event) error {
	return mgm.Coll(event).CreateWithCtx(ctx, event)
}

func (d *DatabaseClientImpl) ListEvents(ctx context.Context, state models.EventState, limit int64) ([]*models.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	var events []*models.Event
	err := mgm.Coll(&models.Event{}).SimpleFindWithCtx(ctx, &events,
		bson.M{"state": state},
		options.Find().SetSort(bson.D{{Key: "occurred_at", Value: 1}, {Key: "_id", Value: 1}}).SetLimit(limit))
	return events, err
}

func (d *DatabaseClientImpl) UpdateEvent(ctx context.Context, event *models.Event) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	return mgm.Coll(event).UpdateWithCtx(ctx, event)
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
