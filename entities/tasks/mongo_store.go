package tasks

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

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(database.COLLECTION_TASKS)}
}

func (s *MongoStore) Insert(ctx context.Context, task *schemas.Task) error {
	res, err := s.coll.InsertOne(ctx, task)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	task.ID = res.InsertedID.(bson.ObjectID)
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]schemas.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer cursor.Close(ctx)

	list := []schemas.Task{}
	if err := cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return list, nil
}

func (s *MongoStore) Update(ctx context.Context, id bson.ObjectID, update schemas.TaskUpdate) (*schemas.Task, error) {
	set := bson.D{}
	if update.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *update.Title})
	}
	if update.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *update.Description})
	}
	if update.AssignedTo != nil {
		set = append(set, bson.E{Key: "assigned_to", Value: *update.AssignedTo})
	}
	if update.Status != nil {
		set = append(set, bson.E{Key: "status", Value: *update.Status})
	}
	if update.TimeTaken != nil {
		set = append(set, bson.E{Key: "time_taken", Value: *update.TimeTaken})
	}
	if update.Deadline != nil {
		set = append(set, bson.E{Key: "deadline", Value: *update.Deadline})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var task schemas.Task
	err := s.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return &task, nil
}

func (s *MongoStore) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) CompletedByUser(ctx context.Context) ([]schemas.LeaderboardEntry, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "status", Value: schemas.TASK_STATUS_DONE},
			{Key: "assigned_to", Value: bson.D{{Key: "$ne", Value: nil}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$assigned_to"},
			{Key: "tasks_completed", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "total_time", Value: bson.D{{Key: "$sum", Value: "$time_taken"}}},
		}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate leaderboard: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []schemas.LeaderboardEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode leaderboard: %w", err)
	}
	return entries, nil
}
