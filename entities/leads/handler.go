package leads

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"opsdesk/notifications"
	"opsdesk/schemas"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Notifier receives lead events after they are stored.
type Notifier interface {
	NotifyLeadCreated(ctx context.Context, job notifications.LeadCreated)
}

type Handler struct {
	leads    LeadStore
	stages   StageStore
	users    UserLookup
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewHandler(leads LeadStore, stages StageStore, users UserLookup, notifier Notifier, logger *slog.Logger) *Handler {
	return &Handler{
		leads:    leads,
		stages:   stages,
		users:    users,
		notifier: notifier,
		logger:   logger.With("component", "leads"),
		now:      time.Now,
	}
}

// catalog returns the stage catalog, seeding the defaults the first time it
// is found empty.
func (h *Handler) catalog(ctx context.Context) ([]schemas.Stage, error) {
	stages, err := h.stages.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(stages) > 0 {
		return stages, nil
	}

	if err := h.stages.SeedDefaults(ctx, schemas.DefaultStages()); err != nil {
		return nil, err
	}
	h.logger.Info("seeded default stages")
	return h.stages.List(ctx)
}

func (h *Handler) stageByKey(ctx context.Context, key string) (*schemas.Stage, error) {
	stages, err := h.catalog(ctx)
	if err != nil {
		return nil, err
	}
	for i := range stages {
		if stages[i].Key == key {
			return &stages[i], nil
		}
	}
	return nil, fmt.Errorf("stage %q: %w", key, ErrStageNotFound)
}

// views resolves the assignee of every lead in one lookup.
func (h *Handler) views(ctx context.Context, list []schemas.Lead) ([]schemas.LeadView, error) {
	ids := make([]bson.ObjectID, 0, len(list))
	for _, l := range list {
		if l.AssignedTo != nil {
			ids = append(ids, *l.AssignedTo)
		}
	}

	found, err := h.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]schemas.LeadView, len(list))
	for i, l := range list {
		views[i] = schemas.LeadView{Lead: l}
		if l.AssignedTo != nil {
			if u, ok := found[*l.AssignedTo]; ok {
				views[i].Assignee = u.Ref()
			}
		}
	}
	return views, nil
}

func (h *Handler) view(ctx context.Context, lead *schemas.Lead) (schemas.LeadView, error) {
	views, err := h.views(ctx, []schemas.Lead{*lead})
	if err != nil {
		return schemas.LeadView{}, err
	}
	return views[0], nil
}
