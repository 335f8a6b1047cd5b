package leads

import (
	"context"
	"net/http"

	"opsdesk/database"
	"opsdesk/utils"
)

func (h *Handler) GetAllStages(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	stages, err := h.catalog(ctx)
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_FIND_STAGES_IN_MONGODB, err))
		return
	}

	utils.SendResponse(w, http.StatusOK, "", stages, 0)
}
