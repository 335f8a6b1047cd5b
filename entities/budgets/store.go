package budgets

import (
	"context"
	"errors"
	"time"

	"opsdesk/schemas"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var ErrNotFound = errors.New("transaction not found")

// Filter narrows a transaction listing. Zero fields match everything; End
// is exclusive.
type Filter struct {
	Start    *time.Time
	End      *time.Time
	Type     string
	Category string
}

type Store interface {
	Insert(ctx context.Context, tx *schemas.Transaction) error
	// List returns matching transactions, most recent date first.
	List(ctx context.Context, filter Filter) ([]schemas.Transaction, error)
	Delete(ctx context.Context, id bson.ObjectID) error
}

// LegacyLedger reads transactions recorded before the migration to MongoDB.
type LegacyLedger interface {
	List(ctx context.Context, filter Filter) ([]schemas.TransactionOld, error)
}

type UserLookup interface {
	FindByID(ctx context.Context, id bson.ObjectID) (*schemas.User, error)
	FindByIDs(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]schemas.User, error)
}
