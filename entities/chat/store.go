package chat

import (
	"context"
	"fmt"
	"slices"

	"opsdesk/database"
	"opsdesk/schemas"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MessageStore persists chat messages. Recent* return at most limit
// messages, oldest first.
type MessageStore interface {
	Insert(ctx context.Context, msg *schemas.Message) error
	RecentInRoom(ctx context.Context, room string, limit int64) ([]schemas.Message, error)
	RecentBetween(ctx context.Context, a, b bson.ObjectID, limit int64) ([]schemas.Message, error)
}

type UserLookup interface {
	FindByIDs(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]schemas.User, error)
}

// newestFirst breaks timestamp ties by _id, since timestamps only keep
// milliseconds.
var newestFirst = bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(database.COLLECTION_MESSAGES)}
}

func (s *MongoStore) Insert(ctx context.Context, msg *schemas.Message) error {
	res, err := s.coll.InsertOne(ctx, msg)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	msg.ID = res.InsertedID.(bson.ObjectID)
	return nil
}

func (s *MongoStore) RecentInRoom(ctx context.Context, room string, limit int64) ([]schemas.Message, error) {
	return s.recent(ctx, bson.D{
		{Key: "room", Value: room},
		{Key: "is_private", Value: false},
	}, limit)
}

func (s *MongoStore) RecentBetween(ctx context.Context, a, b bson.ObjectID, limit int64) ([]schemas.Message, error) {
	return s.recent(ctx, bson.D{
		{Key: "is_private", Value: true},
		{Key: "$or", Value: bson.A{
			bson.D{{Key: "sender", Value: a}, {Key: "recipient", Value: b}},
			bson.D{{Key: "sender", Value: b}, {Key: "recipient", Value: a}},
		}},
	}, limit)
}

func (s *MongoStore) recent(ctx context.Context, filter bson.D, limit int64) ([]schemas.Message, error) {
	opts := options.Find().SetSort(newestFirst).SetLimit(limit)
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}
	defer cursor.Close(ctx)

	list := []schemas.Message{}
	if err := cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	slices.Reverse(list)
	return list, nil
}
