package tasks

import (
	"context"
	"errors"

	"opsdesk/schemas"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var ErrNotFound = errors.New("task not found")

type Store interface {
	Insert(ctx context.Context, task *schemas.Task) error
	List(ctx context.Context) ([]schemas.Task, error)
	Update(ctx context.Context, id bson.ObjectID, update schemas.TaskUpdate) (*schemas.Task, error)
	Delete(ctx context.Context, id bson.ObjectID) error
	// CompletedByUser groups done tasks by assignee. Only UserID,
	// TasksCompleted and TotalTime are filled.
	CompletedByUser(ctx context.Context) ([]schemas.LeaderboardEntry, error)
}

// UserLookup resolves user ids for display.
type UserLookup interface {
	FindByIDs(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]schemas.User, error)
}
