package budgets

import (
	"context"
	"net/http"

	"opsdesk/database"
	"opsdesk/utils"
)

func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		utils.SendError(w, h.logger, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	list, err := h.store.List(ctx, filter)
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_FIND_TRANSACTIONS_IN_MONGODB, err))
		return
	}

	views, err := h.views(ctx, list)
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_FIND_USERS_IN_MONGODB, err))
		return
	}
	utils.SendResponse(w, http.StatusOK, "", views, 0)
}
