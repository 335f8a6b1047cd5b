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

type StageRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (h *Handler) CreateOneStage(w http.ResponseWriter, r *http.Request) {
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

	if schemas.IsReservedStageName(name) {
		utils.SendError(w, h.logger, utils.NewConflictError("Estágio já existe"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	// New stages go after the defaults, so those must exist first.
	if _, err := h.catalog(ctx); err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_FIND_STAGES_IN_MONGODB, err))
		return
	}

	stage, err := h.stages.Append(ctx, name)
	if errors.Is(err, ErrStageExists) {
		utils.SendError(w, h.logger, utils.NewConflictError("Estágio já existe"))
		return
	}
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_INSERT_STAGE_TO_MONGODB, err))
		return
	}

	utils.SendResponse(w, http.StatusCreated, "", stage, 0)
}
