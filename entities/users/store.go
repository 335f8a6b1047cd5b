package users

import (
	"context"
	"errors"

	"opsdesk/schemas"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// Store persists user accounts.
type Store interface {
	Insert(ctx context.Context, user *schemas.User) error
	FindByID(ctx context.Context, id bson.ObjectID) (*schemas.User, error)
	FindByEmail(ctx context.Context, email string) (*schemas.User, error)
	FindByIDs(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]schemas.User, error)
	List(ctx context.Context) ([]schemas.User, error)
	Update(ctx context.Context, id bson.ObjectID, update schemas.UserUpdate) (*schemas.User, error)
}
