package database

import (
	"context"
	"fmt"
	"time"

	"opsdesk/utils"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	MONGO_TIMEOUT           = 20 * time.Second
	COLLECTION_LEADS        = "leads"
	COLLECTION_STAGES       = "stages"
	COLLECTION_USERS        = "users"
	COLLECTION_TASKS        = "tasks"
	COLLECTION_TRANSACTIONS = "transactions"
	COLLECTION_MESSAGES     = "messages"
)

// Connect opens the shared client pool and checks the server is reachable.
func Connect(ctx context.Context, cfg *utils.Config) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("[MongoDB] connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, MONGO_TIMEOUT)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("[MongoDB] ping: %w", err)
	}

	return client, nil
}

// GetDB returns the application database selected by the configuration.
func GetDB(client *mongo.Client, cfg *utils.Config) *mongo.Database {
	return client.Database(cfg.MongoDatabase)
}

// EnsureIndexes creates the indexes the queries rely on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		COLLECTION_USERS: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		COLLECTION_STAGES: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "order", Value: 1}}},
		},
		COLLECTION_LEADS: {
			{Keys: bson.D{{Key: "assigned_to", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "stage_id", Value: 1}}},
		},
		COLLECTION_TASKS: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "assigned_to", Value: 1}}},
		},
		COLLECTION_TRANSACTIONS: {
			{Keys: bson.D{{Key: "date", Value: -1}}},
		},
		COLLECTION_MESSAGES: {
			{Keys: bson.D{{Key: "room", Value: 1}, {Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "sender", Value: 1}, {Key: "recipient", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
	}

	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("[MongoDB] indexes for %s: %w", collection, err)
		}
	}
	return nil
}
