package leads

import (
	"context"
	"net/http"

	"opsdesk/database"
	"opsdesk/middlewares"
	"opsdesk/schemas"
	"opsdesk/utils"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// GetAll lists leads newest first. Sales users only see the unassigned pool
// and their own leads.
func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	caller, ok := middlewares.RequireCaller(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	list, err := h.leads.List(ctx, visibilityFor(caller))
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_FIND_LEADS_IN_MONGODB, err))
		return
	}

	views, err := h.views(ctx, list)
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_FIND_USERS_IN_MONGODB, err))
		return
	}

	utils.SendResponse(w, http.StatusOK, "", views, 0)
}

func visibilityFor(caller middlewares.Caller) *bson.ObjectID {
	if caller.Role == schemas.USERS_ROLE_SALES {
		id := caller.ID
		return &id
	}
	return nil
}
