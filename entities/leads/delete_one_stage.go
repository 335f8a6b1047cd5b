package leads

import (
	"context"
	"errors"
	"net/http"

	"opsdesk/database"
	"opsdesk/utils"
)

// DeleteOneStage removes a stage that is neither a pipeline boundary nor
// holding any lead.
func (h *Handler) DeleteOneStage(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseObjectID(r.PathValue("id"))
	if err != nil {
		utils.SendError(w, h.logger, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	stage, err := h.stages.FindByID(ctx, id)
	if errors.Is(err, ErrStageNotFound) {
		utils.SendError(w, h.logger, utils.NewNotFoundError("Estágio não encontrado"))
		return
	}
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_FIND_STAGES_IN_MONGODB, err))
		return
	}

	if stage.IsProtected() {
		utils.SendError(w, h.logger, utils.NewConflictError("Este estágio não pode ser removido"))
		return
	}

	inUse, err := h.leads.CountByStage(ctx, stage.ID)
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_FIND_LEADS_IN_MONGODB, err))
		return
	}
	if inUse > 0 {
		utils.SendError(w, h.logger, utils.NewConflictError("Existem leads neste estágio. Mova-os antes de remover"))
		return
	}

	err = h.stages.Delete(ctx, stage.ID)
	if errors.Is(err, ErrStageNotFound) {
		utils.SendError(w, h.logger, utils.NewNotFoundError("Estágio não encontrado"))
		return
	}
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_DELETE_STAGE_FROM_MONGODB, err))
		return
	}

	utils.SendResponse(w, http.StatusOK, "Estágio removido", nil, 0)
}
