package leads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"opsdesk/database"
	"opsdesk/schemas"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type MongoLeadStore struct {
	coll *mongo.Collection
}

func NewMongoLeadStore(db *mongo.Database) *MongoLeadStore {
	return &MongoLeadStore{coll: db.Collection(database.COLLECTION_LEADS)}
}

func (s *MongoLeadStore) Insert(ctx context.Context, lead *schemas.Lead) error {
	if lead.History == nil {
		lead.History = []schemas.LeadHistory{}
	}
	res, err := s.coll.InsertOne(ctx, lead)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	lead.ID = res.InsertedID.(bson.ObjectID)
	return nil
}

func (s *MongoLeadStore) FindByID(ctx context.Context, id bson.ObjectID) (*schemas.Lead, error) {
	var lead schemas.Lead
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&lead)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find lead: %w", err)
	}
	return &lead, nil
}

func (s *MongoLeadStore) List(ctx context.Context, visibleTo *bson.ObjectID) ([]schemas.Lead, error) {
	filter := bson.D{}
	if visibleTo != nil {
		filter = bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "assigned_to", Value: nil}},
			bson.D{{Key: "assigned_to", Value: *visibleTo}},
		}}}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer cursor.Close(ctx)

	list := []schemas.Lead{}
	if err := cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("decode leads: %w", err)
	}
	return list, nil
}

func (s *MongoLeadStore) Pick(ctx context.Context, id, userID bson.ObjectID, at time.Time) (*schemas.Lead, error) {
	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: "assigned_to", Value: nil},
	}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "assigned_to", Value: userID},
			{Key: "updated_at", Value: at},
		}},
		{Key: "$push", Value: bson.D{
			{Key: "history", Value: schemas.NewLeadHistory(schemas.LEAD_ACTION_PICKED, userID, at)},
		}},
	}

	lead, err := s.findOneAndUpdate(ctx, filter, update)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, s.missOrConflict(ctx, id, ErrLeadAlreadyAssigned)
	}
	return lead, err
}

func (s *MongoLeadStore) Assign(ctx context.Context, id bson.ObjectID, assignee *bson.ObjectID, entry schemas.LeadHistory) (*schemas.Lead, error) {
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "assigned_to", Value: assignee},
			{Key: "updated_at", Value: entry.Date},
		}},
		{Key: "$push", Value: bson.D{{Key: "history", Value: entry}}},
	}

	lead, err := s.findOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, update)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrLeadNotFound
	}
	return lead, err
}

func (s *MongoLeadStore) MoveStage(ctx context.Context, id bson.ObjectID, owner *bson.ObjectID, stage schemas.Stage, entry schemas.LeadHistory) (*schemas.Lead, error) {
	filter := bson.D{{Key: "_id", Value: id}}
	if owner != nil {
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "assigned_to", Value: nil}},
			bson.D{{Key: "assigned_to", Value: *owner}},
		}})
	}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "stage_id", Value: stage.ID},
			{Key: "stage", Value: stage.Name},
			{Key: "updated_at", Value: entry.Date},
		}},
		{Key: "$push", Value: bson.D{{Key: "history", Value: entry}}},
	}

	lead, err := s.findOneAndUpdate(ctx, filter, update)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, s.missOrConflict(ctx, id, ErrLeadNotOwned)
	}
	return lead, err
}

func (s *MongoLeadStore) findOneAndUpdate(ctx context.Context, filter, update bson.D) (*schemas.Lead, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var lead schemas.Lead
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&lead)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("update lead: %w", err)
	}
	return &lead, nil
}

// missOrConflict tells apart a conditional update that matched nothing
// because the lead is gone from one whose condition did not hold.
func (s *MongoLeadStore) missOrConflict(ctx context.Context, id bson.ObjectID, conflict error) error {
	n, err := s.coll.CountDocuments(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("count lead: %w", err)
	}
	if n == 0 {
		return ErrLeadNotFound
	}
	return conflict
}

func (s *MongoLeadStore) Count(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count leads: %w", err)
	}
	return n, nil
}

func (s *MongoLeadStore) CountByStage(ctx context.Context, stageID bson.ObjectID) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{{Key: "stage_id", Value: stageID}})
	if err != nil {
		return 0, fmt.Errorf("count leads by stage: %w", err)
	}
	return n, nil
}

func (s *MongoLeadStore) RenameStage(ctx context.Context, stageID bson.ObjectID, name string) error {
	_, err := s.coll.UpdateMany(ctx,
		bson.D{{Key: "stage_id", Value: stageID}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "stage", Value: name}}}},
	)
	if err != nil {
		return fmt.Errorf("rename lead stage: %w", err)
	}
	return nil
}
