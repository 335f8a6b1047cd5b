package leads

import (
	"context"
	"errors"
	"net/http"

	"opsdesk/database"
	"opsdesk/middlewares"
	"opsdesk/schemas"
	"opsdesk/utils"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type UpdateStageRequest struct {
	Stage   string `json:"stage" validate:"required_without=StageID"`
	StageID string `json:"stageId" validate:"omitempty,mongodb"`
}

// UpdateOneStage moves a lead to another stage. Sales users may move
// unassigned leads and their own, never a colleague's.
func (h *Handler) UpdateOneStage(w http.ResponseWriter, r *http.Request) {
	caller, ok := middlewares.RequireCaller(w, r)
	if !ok {
		return
	}

	id, err := utils.ParseObjectID(r.PathValue("id"))
	if err != nil {
		utils.SendError(w, h.logger, err)
		return
	}

	var req UpdateStageRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.SendError(w, h.logger, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	stage, err := h.resolveStage(ctx, req)
	if errors.Is(err, ErrStageNotFound) {
		utils.SendError(w, h.logger, utils.NewValidationError("Estágio desconhecido"))
		return
	}
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_FIND_STAGES_IN_MONGODB, err))
		return
	}

	var owner *bson.ObjectID
	if caller.Role == schemas.USERS_ROLE_SALES {
		owner = &caller.ID
	}

	entry := schemas.NewLeadHistory(schemas.LeadActionMovedTo(stage.Name), caller.ID, h.now())
	lead, err := h.leads.MoveStage(ctx, id, owner, *stage, entry)
	switch {
	case errors.Is(err, ErrLeadNotFound):
		utils.SendError(w, h.logger, utils.NewNotFoundError("Lead não encontrado"))
		return
	case errors.Is(err, ErrLeadNotOwned):
		utils.SendError(w, h.logger, utils.NewAuthorizationError("Lead está atribuído a outro vendedor"))
		return
	case err != nil:
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

func (h *Handler) resolveStage(ctx context.Context, req UpdateStageRequest) (*schemas.Stage, error) {
	if _, err := h.catalog(ctx); err != nil {
		return nil, err
	}
	if req.StageID != "" {
		id, err := bson.ObjectIDFromHex(req.StageID)
		if err != nil {
			return nil, ErrStageNotFound
		}
		return h.stages.FindByID(ctx, id)
	}
	return h.stages.FindByName(ctx, req.Stage)
}
