package tasks

import (
	"context"
	"log/slog"
	"time"

	"opsdesk/schemas"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Handler struct {
	store  Store
	users  UserLookup
	logger *slog.Logger
	now    func() time.Time
}

func NewHandler(store Store, users UserLookup, logger *slog.Logger) *Handler {
	return &Handler{store: store, users: users, logger: logger.With("component", "tasks"), now: time.Now}
}

func (h *Handler) views(ctx context.Context, list []schemas.Task) ([]schemas.TaskView, error) {
	ids := make([]bson.ObjectID, 0, len(list))
	for _, t := range list {
		if t.AssignedTo != nil {
			ids = append(ids, *t.AssignedTo)
		}
	}

	found, err := h.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]schemas.TaskView, len(list))
	for i, t := range list {
		views[i] = schemas.TaskView{Task: t}
		if t.AssignedTo != nil {
			if u, ok := found[*t.AssignedTo]; ok {
				views[i].Assignee = u.Ref()
			}
		}
	}
	return views, nil
}
