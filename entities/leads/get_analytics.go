package leads

import (
	"context"
	"net/http"

	"opsdesk/database"
	"opsdesk/schemas"
	"opsdesk/utils"
)

func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	completedStage, err := h.stageByKey(ctx, schemas.STAGE_KEY_COMPLETED)
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_FIND_STAGES_IN_MONGODB, err))
		return
	}

	total, err := h.leads.Count(ctx)
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_FIND_LEADS_IN_MONGODB, err))
		return
	}

	completed, err := h.leads.CountByStage(ctx, completedStage.ID)
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_FIND_LEADS_IN_MONGODB, err))
		return
	}

	utils.SendResponse(w, http.StatusOK, "", schemas.NewLeadAnalytics(total, completed), 0)
}
