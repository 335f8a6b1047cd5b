package leads

import (
	"context"
	"errors"
	"time"

	"opsdesk/schemas"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	ErrLeadNotFound        = errors.New("lead not found")
	ErrLeadAlreadyAssigned = errors.New("lead already assigned")
	ErrLeadNotOwned        = errors.New("lead assigned to someone else")
	ErrStageNotFound       = errors.New("stage not found")
	ErrStageExists         = errors.New("stage already exists")
)

// LeadStore persists leads. Pick, Assign and MoveStage are single
// conditional updates so concurrent callers cannot interleave.
type LeadStore interface {
	Insert(ctx context.Context, lead *schemas.Lead) error
	FindByID(ctx context.Context, id bson.ObjectID) (*schemas.Lead, error)
	// List returns leads newest first. A non-nil visibleTo restricts the
	// result to unassigned leads and leads assigned to that user.
	List(ctx context.Context, visibleTo *bson.ObjectID) ([]schemas.Lead, error)
	// Pick assigns an unassigned lead to userID.
	Pick(ctx context.Context, id, userID bson.ObjectID, at time.Time) (*schemas.Lead, error)
	// Assign sets or clears the assignee regardless of the current one.
	Assign(ctx context.Context, id bson.ObjectID, assignee *bson.ObjectID, entry schemas.LeadHistory) (*schemas.Lead, error)
	// MoveStage changes the lead's stage. A non-nil owner makes the update
	// conditional on the lead being unassigned or assigned to owner.
	MoveStage(ctx context.Context, id bson.ObjectID, owner *bson.ObjectID, stage schemas.Stage, entry schemas.LeadHistory) (*schemas.Lead, error)
	Count(ctx context.Context) (int64, error)
	CountByStage(ctx context.Context, stageID bson.ObjectID) (int64, error)
	// RenameStage refreshes the denormalised stage name on every lead.
	RenameStage(ctx context.Context, stageID bson.ObjectID, name string) error
}

// StageStore persists the stage catalog.
type StageStore interface {
	// List returns stages ordered by Order.
	List(ctx context.Context) ([]schemas.Stage, error)
	// SeedDefaults inserts stages, ignoring the ones that already exist.
	SeedDefaults(ctx context.Context, stages []schemas.Stage) error
	FindByID(ctx context.Context, id bson.ObjectID) (*schemas.Stage, error)
	FindByName(ctx context.Context, name string) (*schemas.Stage, error)
	// Append inserts a stage after the current last one.
	Append(ctx context.Context, name string) (*schemas.Stage, error)
	Rename(ctx context.Context, id bson.ObjectID, name string) (*schemas.Stage, error)
	Delete(ctx context.Context, id bson.ObjectID) error
}

// UserLookup resolves user ids for display.
type UserLookup interface {
	FindByID(ctx context.Context, id bson.ObjectID) (*schemas.User, error)
	FindByIDs(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]schemas.User, error)
}
