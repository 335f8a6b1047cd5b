package users

import (
	"context"
	"net/http"

	"opsdesk/database"
	"opsdesk/utils"
)

func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	list, err := h.store.List(ctx)
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_FIND_USERS_IN_MONGODB, err))
		return
	}

	utils.SendResponse(w, http.StatusOK, "", list, 0)
}
