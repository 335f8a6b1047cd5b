package tasks

import (
	"context"
	"net/http"
	"strings"
	"time"

	"opsdesk/database"
	"opsdesk/middlewares"
	"opsdesk/schemas"
	"opsdesk/utils"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type CreateTaskRequest struct {
	Title       string         `json:"title" validate:"required,max=200"`
	Description string         `json:"description" validate:"max=5000"`
	AssignedTo  *bson.ObjectID `json:"assignedTo"`
	Status      string         `json:"status" validate:"omitempty,oneof='To Do' 'In Progress' Done Backlog"`
	TimeTaken   float64        `json:"timeTaken" validate:"gte=0"`
	Deadline    *time.Time     `json:"deadline"`
}

// CreateOne adds a task. Without an explicit assignee the task goes to the
// caller.
func (h *Handler) CreateOne(w http.ResponseWriter, r *http.Request) {
	caller, ok := middlewares.RequireCaller(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.SendError(w, h.logger, err)
		return
	}

	task := schemas.Task{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		CreatedBy:   caller.ID,
		Status:      req.Status,
		TimeTaken:   req.TimeTaken,
		Deadline:    req.Deadline,
		CreatedAt:   h.now(),
	}
	if task.AssignedTo == nil {
		id := caller.ID
		task.AssignedTo = &id
	}
	if task.Status == "" {
		task.Status = schemas.TASK_STATUS_TODO
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	if err := h.store.Insert(ctx, &task); err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_INSERT_TASK_TO_MONGODB, err))
		return
	}

	views, err := h.views(ctx, []schemas.Task{task})
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_FIND_USERS_IN_MONGODB, err))
		return
	}
	utils.SendResponse(w, http.StatusCreated, "", views[0], 0)
}
