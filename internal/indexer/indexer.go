package indexer

import (
	"context"
	"time"

	"gamemarket-api-io/api/pkg/util"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Create builds every registered index. With ContinueOnError a failing
// index is recorded and the rest are still attempted.
func (m *Manager) Create(ctx context.Context) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, m.options.Timeout)
	defer cancel()

	start := time.Now()
	var result Result

	for _, def := range m.definitions {
		name := def.Name()
		if m.options.SkipIfExists && name != "" {
			exists, err := m.exists(ctx, def.Collection, name)
			if err == nil && exists {
				result.Skipped++
				continue
			}
		}

		created, err := m.db.Collection(def.Collection).Indexes().CreateOne(ctx, def.Index)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				util.LogWarning("duplicate data blocks unique index", "collection", def.Collection, "index", name)
			} else {
				util.LogError("create index failed", err, "collection", def.Collection, "index", name)
			}

			result.Failed++
			result.Failures = append(result.Failures, Failure{Collection: def.Collection, IndexName: name, Err: err})
			if !m.options.ContinueOnError {
				result.Duration = time.Since(start)
				return result, errors.Wrapf(err, "create index %s on %s", name, def.Collection)
			}
			continue
		}

		util.LogInfo("index created", "collection", def.Collection, "index", created)
		result.Created++
	}

	result.Duration = time.Since(start)
	if result.Failed > 0 {
		return result, errors.Errorf("%d indexes failed to create", result.Failed)
	}
	return result, nil
}

// Drop removes all indexes of the given collections, or of every collection
// with a registered definition when none are named.
func (m *Manager) Drop(ctx context.Context, collections ...string) error {
	ctx, cancel := context.WithTimeout(ctx, m.options.Timeout)
	defer cancel()

	if len(collections) == 0 {
		seen := map[string]bool{}
		for _, def := range m.definitions {
			if !seen[def.Collection] {
				seen[def.Collection] = true
				collections = append(collections, def.Collection)
			}
		}
	}

	for _, name := range collections {
		if _, err := m.db.Collection(name).Indexes().DropAll(ctx); err != nil {
			if !m.options.ContinueOnError {
				return errors.Wrapf(err, "drop indexes for %s", name)
			}
			util.LogError("drop indexes failed", err, "collection", name)
			continue
		}
		util.LogInfo("indexes dropped", "collection", name)
	}
	return nil
}

// List returns the raw index specifications of collection.
func (m *Manager) List(ctx context.Context, collection string) ([]bson.M, error) {
	cursor, err := m.db.Collection(collection).Indexes().List(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "list indexes for %s", collection)
	}
	defer cursor.Close(ctx)

	var indexes []bson.M
	if err := cursor.All(ctx, &indexes); err != nil {
		return nil, errors.Wrapf(err, "decode indexes for %s", collection)
	}
	return indexes, nil
}

func (m *Manager) exists(ctx context.Context, collection, name string) (bool, error) {
	indexes, err := m.List(ctx, collection)
	if err != nil {
		return false, err
	}
	for _, idx := range indexes {
		if idx["name"] == name {
			return true, nil
		}
	}
	return false, nil
}
