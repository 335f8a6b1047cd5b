package leads

import (
	"context"
	"errors"
	"net/http"

	"opsdesk/database"
	"opsdesk/middlewares"
	"opsdesk/utils"
)

// PickOne claims an unassigned lead for the calling sales user. When two
// users race for the same lead exactly one of them gets it.
func (h *Handler) PickOne(w http.ResponseWriter, r *http.Request) {
	caller, ok := middlewares.RequireCaller(w, r)
	if !ok {
		return
	}

	id, err := utils.ParseObjectID(r.PathValue("id"))
	if err != nil {
		utils.SendError(w, h.logger, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	lead, err := h.leads.Pick(ctx, id, caller.ID, h.now())
	switch {
	case errors.Is(err, ErrLeadNotFound):
		utils.SendError(w, h.logger, utils.NewNotFoundError("Lead não encontrado"))
		return
	case errors.Is(err, ErrLeadAlreadyAssigned):
		utils.SendError(w, h.logger, utils.NewConflictError("Lead já atribuído a outro usuário"))
		return
	case err != nil:
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_UPDATE_LEAD_IN_MONGODB, err))
		return
	}

	h.logger.Info("lead picked", "lead_id", lead.ID.Hex(), "user_id", caller.ID.Hex())

	view, err := h.view(ctx, lead)
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_FIND_USERS_IN_MONGODB, err))
		return
	}
	utils.SendResponse(w, http.StatusOK, "", view, 0)
}
