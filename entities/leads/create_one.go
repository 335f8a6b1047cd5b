package leads

import (
	"context"
	"net/http"
	"strings"

	"opsdesk/database"
	"opsdesk/notifications"
	"opsdesk/schemas"
	"opsdesk/utils"
)

type CreateLeadRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"max=50"`
	Message string `json:"message" validate:"max=5000"`
	Source  string `json:"source" validate:"max=100"`
}

// CreateOne captures a lead from the public site. It lands unassigned on
// the "new" stage.
func (h *Handler) CreateOne(w http.ResponseWriter, r *http.Request) {
	var req CreateLeadRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.SendError(w, h.logger, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	stage, err := h.stageByKey(ctx, schemas.STAGE_KEY_NEW)
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_FIND_STAGES_IN_MONGODB, err))
		return
	}

	now := h.now()
	lead := schemas.Lead{
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Phone:     req.Phone,
		Message:   req.Message,
		StageID:   stage.ID,
		Stage:     stage.Name,
		History:   []schemas.LeadHistory{},
		Source:    req.Source,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if lead.Source == "" {
		lead.Source = schemas.LEAD_DEFAULT_SOURCE
	}

	if err := h.leads.Insert(ctx, &lead); err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_INSERT_LEAD_TO_MONGODB, err))
		return
	}

	h.notifier.NotifyLeadCreated(ctx, notifications.LeadCreated{
		LeadID:    lead.ID.Hex(),
		Name:      lead.Name,
		Email:     lead.Email,
		Phone:     lead.Phone,
		Message:   lead.Message,
		Source:    lead.Source,
		CreatedAt: lead.CreatedAt,
	})

	utils.SendResponse(w, http.StatusCreated, "", lead, 0)
}
