package database

import (
	"context"

	"github.com/GSH-LAN/Unwindia_cricket/src/models"
	"github.com/kamva/mgm/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// indexes lists the secondary indexes every collection needs. The unique ones back the lookups the
// scoring service does by natural key.
var indexes = map[mgm.Model][]mongo.IndexModel{
	&models.Inning{}: {
		{Keys: bson.D{{Key: "match_id", Value: 1}, {Key: "inning_number", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	&models.Over{}: {
		{Keys: bson.D{{Key: "inning_id", Value: 1}, {Key: "over_number", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	&models.BattingStat{}: {
		{Keys: bson.D{{Key: "inning_id", Value: 1}, {Key: "player", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	&models.BowlingStat{}: {
		{Keys: bson.D{{Key: "inning_id", Value: 1}, {Key: "player", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	&models.Event{}: {
		{Keys: bson.D{{Key: "state", Value: 1}, {Key: "occurred_at", Value: 1}}},
		{Keys: bson.D{{Key: "event_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
}

func (d *DatabaseClientImpl) ensureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	for model, idx := range indexes {
		if _, err := mgm.Coll(model).Indexes().CreateMany(ctx, idx); err != nil {
			return err
		}
	}
	return nil
}
