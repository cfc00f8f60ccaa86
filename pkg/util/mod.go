package util

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectDB opens a mongo client and pings the deployment.
func ConnectDB(ctx context.Context, cfg MongoConfig) (*mongo.Client, error) {
	LogInfo("starting MongoDB connection..")

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(err, "connect mongo")
	}

	// try to ping the database
	if err := client.Ping(ctx, nil); err != nil {
		return nil, errors.Wrap(err, "ping mongo")
	}

	LogInfo("MongoDB connection successful")
	return client, nil
}

// GetCollection Get collection from Db
func GetCollection(client *mongo.Client, database, name string) *mongo.Collection {
	return client.Database(database).Collection(name)
}

// ConnectRedis parses the redis url and returns a client. An empty url
// returns nil: redis backed features then fall back to in-memory stores.
func ConnectRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	if cfg.URL == "" {
		LogWarning("REDIS_URL not set, redis backed features are disabled")
		return nil, nil
	}

	LogInfo("starting redis connection..")
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "ping redis")
	}

	LogInfo("redis connection successful..")
	return client, nil
}
