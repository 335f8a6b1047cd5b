package leads

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"opsdesk/database"
	"opsdesk/schemas"
	"opsdesk/utils"
)

// UpdateOneStageName renames a stage. Leads keep their stage reference and
// pick up the new display name. Protected stages keep their names.
func (h *Handler) UpdateOneStageName(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseObjectID(r.PathValue("id"))
	if err != nil {
		utils.SendError(w, h.logger, err)
		return
	}

	var req StageRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.SendError(w, h.logger, err)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		utils.SendError(w, h.logger, utils.NewValidationError("Nome do estágio é obrigatório"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	if _, err := h.catalog(ctx); err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_FIND_STAGES_IN_MONGODB, err))
		return
	}

	current, err := h.stages.FindByID(ctx, id)
	if errors.Is(err, ErrStageNotFound) {
		utils.SendError(w, h.logger, utils.NewNotFoundError("Estágio não encontrado"))
		return
	}
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_FIND_STAGES_IN_MONGODB, err))
		return
	}
	if current.IsProtected() {
		utils.SendError(w, h.logger, utils.NewConflictError("Estágio protegido não pode ser renomeado"))
		return
	}
	if schemas.IsReservedStageName(name) {
		utils.SendError(w, h.logger, utils.NewConflictError("Estágio já existe"))
		return
	}

	stage, err := h.stages.Rename(ctx, id, name)
	switch {
	case errors.Is(err, ErrStageNotFound):
		utils.SendError(w, h.logger, utils.NewNotFoundError("Estágio não encontrado"))
		return
	case errors.Is(err, ErrStageExists):
		utils.SendError(w, h.logger, utils.NewConflictError("Estágio já existe"))
		return
	case err != nil:
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_UPDATE_STAGE_IN_MONGODB, err))
		return
	}

	if err := h.leads.RenameStage(ctx, stage.ID, stage.Name); err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_UPDATE_LEAD_IN_MONGODB, err))
		return
	}

	utils.SendResponse(w, http.StatusOK, "", stage, 0)
}
