package indexer

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Definition struct {
	Collection string
	Index      mongo.IndexModel
}

// Name returns the explicit index name, or "" when mongo picks one.
func (d Definition) Name() string {
	if d.Index.Options == nil || d.Index.Options.Name == nil {
		return ""
	}
	return *d.Index.Options.Name
}

type Options struct {
	Timeout         time.Duration
	ContinueOnError bool
	SkipIfExists    bool
}

type Result struct {
	Created  int
	Skipped  int
	Failed   int
	Failures []Failure
	Duration time.Duration
}

type Failure struct {
	Collection string
	IndexName  string
	Err        error
}

func DefaultOptions() Options {
	return Options{
		Timeout:         60 * time.Second,
		ContinueOnError: true,
		SkipIfExists:    true,
	}
}

// Manager collects index definitions and applies them to a database.
type Manager struct {
	db          *mongo.Database
	definitions []Definition
	options     Options
}

func NewManager(db *mongo.Database, opts Options) *Manager {
	return &Manager{db: db, options: opts}
}

func (m *Manager) Definitions() []Definition {
	return m.definitions
}

// Index registers an ascending index over fields.
func (m *Manager) Index(collection, name string, fields ...string) *Manager {
	return m.add(collection, ascending(fields), options.Index().SetName(name))
}

// Unique registers a unique ascending index over fields.
func (m *Manager) Unique(collection, name string, fields ...string) *Manager {
	return m.add(collection, ascending(fields), options.Index().SetName(name).SetUnique(true))
}

func (m *Manager) add(collection string, keys bson.D, opts *options.IndexOptions) *Manager {
	m.definitions = append(m.definitions, Definition{
		Collection: collection,
		Index:      mongo.IndexModel{Keys: keys, Options: opts},
	})
	return m
}

func ascending(fields []string) bson.D {
	keys := bson.D{}
	for _, field := range fields {
		keys = append(keys, bson.E{Key: field, Value: 1})
	}
	return keys
}
