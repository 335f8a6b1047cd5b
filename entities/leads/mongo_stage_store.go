package leads

import (
	"context"
	"errors"
	"fmt"

	"opsdesk/database"
	"opsdesk/schemas"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type MongoStageStore struct {
	coll *mongo.Collection
}

func NewMongoStageStore(db *mongo.Database) *MongoStageStore {
	return &MongoStageStore{coll: db.Collection(database.COLLECTION_STAGES)}
}

func (s *MongoStageStore) List(ctx context.Context) ([]schemas.Stage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	cursor, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	defer cursor.Close(ctx)

	list := []schemas.Stage{}
	if err := cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("decode stages: %w", err)
	}
	return list, nil
}

func (s *MongoStageStore) SeedDefaults(ctx context.Context, stages []schemas.Stage) error {
	docs := make([]any, len(stages))
	for i := range stages {
		docs[i] = stages[i]
	}

	// Unordered so a concurrent seeder's duplicates do not stop the rest.
	_, err := s.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("seed stages: %w", err)
	}
	return nil
}

func (s *MongoStageStore) FindByID(ctx context.Context, id bson.ObjectID) (*schemas.Stage, error) {
	return s.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (s *MongoStageStore) FindByName(ctx context.Context, name string) (*schemas.Stage, error) {
	return s.findOne(ctx, bson.D{{Key: "name", Value: name}})
}

func (s *MongoStageStore) findOne(ctx context.Context, filter bson.D) (*schemas.Stage, error) {
	var stage schemas.Stage
	err := s.coll.FindOne(ctx, filter).Decode(&stage)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrStageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find stage: %w", err)
	}
	return &stage, nil
}

func (s *MongoStageStore) Append(ctx context.Context, name string) (*schemas.Stage, error) {
	order := 0
	var last schemas.Stage
	opts := options.FindOne().SetSort(bson.D{{Key: "order", Value: -1}})
	err := s.coll.FindOne(ctx, bson.D{}, opts).Decode(&last)
	switch {
	case err == nil:
		order = last.Order + 1
	case !errors.Is(err, mongo.ErrNoDocuments):
		return nil, fmt.Errorf("find last stage: %w", err)
	}

	stage := schemas.Stage{Name: name, Order: order}
	res, err := s.coll.InsertOne(ctx, stage)
	if mongo.IsDuplicateKeyError(err) {
		return nil, ErrStageExists
	}
	if err != nil {
		return nil, fmt.Errorf("insert stage: %w", err)
	}
	stage.ID = res.InsertedID.(bson.ObjectID)
	return &stage, nil
}

func (s *MongoStageStore) Rename(ctx context.Context, id bson.ObjectID, name string) (*schemas.Stage, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var stage schemas.Stage
	err := s.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "name", Value: name}}}},
		opts,
	).Decode(&stage)
	if mongo.IsDuplicateKeyError(err) {
		return nil, ErrStageExists
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrStageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("rename stage: %w", err)
	}
	return &stage, nil
}

func (s *MongoStageStore) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete stage: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrStageNotFound
	}
	return nil
}
