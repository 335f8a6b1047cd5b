package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"opsdesk/database"
	"opsdesk/schemas"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type MongoStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(database.COLLECTION_USERS), now: time.Now}
}

func (s *MongoStore) Insert(ctx context.Context, user *schemas.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	now := s.now()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := s.coll.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	user.ID = res.InsertedID.(bson.ObjectID)
	return nil
}

func (s *MongoStore) FindByID(ctx context.Context, id bson.ObjectID) (*schemas.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoStore) FindByEmail(ctx context.Context, email string) (*schemas.User, error) {
	return s.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*schemas.User, error) {
	var user schemas.User
	err := s.coll.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func (s *MongoStore) FindByIDs(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]schemas.User, error) {
	found := make(map[bson.ObjectID]schemas.User, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cursor.Close(ctx)

	var list []schemas.User
	if err := cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	for _, u := range list {
		found[u.ID] = u
	}
	return found, nil
}

func (s *MongoStore) List(ctx context.Context) ([]schemas.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.M{"password": 0})

	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cursor.Close(ctx)

	list := []schemas.User{}
	if err := cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return list, nil
}

func (s *MongoStore) Update(ctx context.Context, id bson.ObjectID, update schemas.UserUpdate) (*schemas.User, error) {
	set := bson.M{"updated_at": s.now()}
	if update.Role != nil {
		set["role"] = *update.Role
	}
	if update.IsApproved != nil {
		set["is_approved"] = *update.IsApproved
	}
	if update.IsActive != nil {
		set["is_active"] = *update.IsActive
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"password": 0})

	var user schemas.User
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &user, nil
}
