package budgets

import (
	"context"
	"fmt"

	"opsdesk/database"
	"opsdesk/schemas"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(database.COLLECTION_TRANSACTIONS)}
}

func (s *MongoStore) Insert(ctx context.Context, tx *schemas.Transaction) error {
	res, err := s.coll.InsertOne(ctx, tx)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	tx.ID = res.InsertedID.(bson.ObjectID)
	return nil
}

func (s *MongoStore) List(ctx context.Context, filter Filter) ([]schemas.Transaction, error) {
	query := bson.D{}
	if filter.Start != nil || filter.End != nil {
		dateRange := bson.D{}
		if filter.Start != nil {
			dateRange = append(dateRange, bson.E{Key: "$gte", Value: *filter.Start})
		}
		if filter.End != nil {
			dateRange = append(dateRange, bson.E{Key: "$lt", Value: *filter.End})
		}
		query = append(query, bson.E{Key: "date", Value: dateRange})
	}
	if filter.Type != "" {
		query = append(query, bson.E{Key: "type", Value: filter.Type})
	}
	if filter.Category != "" {
		query = append(query, bson.E{Key: "category", Value: filter.Category})
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := s.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer cursor.Close(ctx)

	list := []schemas.Transaction{}
	if err := cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	return list, nil
}

func (s *MongoStore) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
