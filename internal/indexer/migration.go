package indexer

import (
	"context"
	"sort"
	"time"

	"gamemarket-api-io/api/internal/common"
	"gamemarket-api-io/api/pkg/models"
	"gamemarket-api-io/api/pkg/util"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const migrationCollection = "_migrations"

type Migration struct {
	Version     string
	Description string
	Up          func(ctx context.Context, db *mongo.Database) error
}

type MigrationStatus struct {
	Version   string    `bson:"version"`
	AppliedAt time.Time `bson:"applied_at"`
	Success   bool      `bson:"success"`
}

// Migrator applies data migrations once, in version order, recording each
// run in the _migrations collection.
type Migrator struct {
	db         *mongo.Database
	migrations []Migration
}

func NewMigrator(db *mongo.Database, migrations ...Migration) *Migrator {
	return &Migrator{db: db, migrations: migrations}
}

func (mm *Migrator) Run(ctx context.Context) error {
	sort.Slice(mm.migrations, func(i, j int) bool {
		return mm.migrations[i].Version < mm.migrations[j].Version
	})

	coll := mm.db.Collection(migrationCollection)
	for _, migration := range mm.migrations {
		applied, err := mm.applied(ctx, migration.Version)
		if err != nil {
			return errors.Wrapf(err, "check migration %s", migration.Version)
		}
		if applied {
			continue
		}

		util.LogInfo("running migration", "version", migration.Version, "description", migration.Description)
		err = migration.Up(ctx, mm.db)

		status := MigrationStatus{Version: migration.Version, AppliedAt: time.Now(), Success: err == nil}
		if _, saveErr := coll.InsertOne(ctx, status); saveErr != nil {
			util.LogError("save migration status", saveErr, "version", migration.Version)
		}
		if err != nil {
			return errors.Wrapf(err, "migration %s", migration.Version)
		}
	}
	return nil
}

// Status lists recorded runs ordered by version.
func (mm *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	cursor, err := mm.db.Collection(migrationCollection).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "version", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "query migration status")
	}
	defer cursor.Close(ctx)

	var statuses []MigrationStatus
	if err := cursor.All(ctx, &statuses); err != nil {
		return nil, errors.Wrap(err, "decode migration status")
	}
	return statuses, nil
}

func (mm *Migrator) applied(ctx context.Context, version string) (bool, error) {
	count, err := mm.db.Collection(migrationCollection).CountDocuments(ctx, bson.M{"version": version, "success": true})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Migrations returns the data migrations of the marketplace schema.
func Migrations() []Migration {
	return []Migration{
		{
			Version:     "0001",
			Description: "default offers limit for users without one",
			Up: func(ctx context.Context, db *mongo.Database) error {
				_, err := db.Collection(common.UserCollection).UpdateMany(ctx,
					bson.M{"listed_offers_limit": bson.M{"$exists": false}},
					bson.M{"$set": bson.M{"listed_offers_limit": models.PlanFree.OffersLimit()}},
				)
				return err
			},
		},
	}
}
