package leads

import (
	"context"
	"errors"
	"net/http"

	"opsdesk/database"
	"opsdesk/entities/users"
	"opsdesk/middlewares"
	"opsdesk/schemas"
	"opsdesk/utils"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type AssignLeadRequest struct {
	// UserID is the new assignee; null releases the lead to the pool.
	UserID *string `json:"userId"`
}

// AssignOne lets an admin hand a lead to any user or release it.
func (h *Handler) AssignOne(w http.ResponseWriter, r *http.Request) {
	caller, ok := middlewares.RequireCaller(w, r)
	if !ok {
		return
	}

	id, err := utils.ParseObjectID(r.PathValue("id"))
	if err != nil {
		utils.SendError(w, h.logger, err)
		return
	}

	var req AssignLeadRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.SendError(w, h.logger, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	var assignee *bson.ObjectID
	action := schemas.LEAD_ACTION_UNASSIGNED
	if req.UserID != nil {
		userID, err := utils.ParseObjectID(*req.UserID)
		if err != nil {
			utils.SendError(w, h.logger, err)
			return
		}
		user, err := h.users.FindByID(ctx, userID)
		if errors.Is(err, users.ErrNotFound) {
			utils.SendError(w, h.logger, utils.NewValidationError("Usuário não encontrado"))
			return
		}
		if err != nil {
			utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_FIND_USERS_IN_MONGODB, err))
			return
		}
		assignee = &user.ID
		action = schemas.LeadActionAssignedTo(user.Username)
	}

	entry := schemas.NewLeadHistory(action, caller.ID, h.now())
	lead, err := h.leads.Assign(ctx, id, assignee, entry)
	if errors.Is(err, ErrLeadNotFound) {
		utils.SendError(w, h.logger, utils.NewNotFoundError("Lead não encontrado"))
		return
	}
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_UPDATE_LEAD_IN_MONGODB, err))
		return
	}

	view, err := h.view(ctx, lead)
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_FIND_USERS_IN_MONGODB, err))
		return
	}
	utils.SendResponse(w, http.StatusOK, "", view, 0)
}
