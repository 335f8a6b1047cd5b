package budgets

import (
	"context"
	"net/http"
	"strings"
	"time"

	"opsdesk/database"
	"opsdesk/middlewares"
	"opsdesk/schemas"
	"opsdesk/utils"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type CreateTransactionRequest struct {
	Type        string         `json:"type" validate:"required,oneof=income expense"`
	Category    string         `json:"category" validate:"required,max=100"`
	Amount      float64        `json:"amount" validate:"required,gt=0"`
	Description string         `json:"description" validate:"max=1000"`
	Date        *time.Time     `json:"date"`
	PaidTo      *bson.ObjectID `json:"paidTo"`
}

func (h *Handler) CreateOne(w http.ResponseWriter, r *http.Request) {
	caller, ok := middlewares.RequireCaller(w, r)
	if !ok {
		return
	}

	var req CreateTransactionRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.SendError(w, h.logger, err)
		return
	}

	now := h.now()
	tx := schemas.Transaction{
		Type:        req.Type,
		Category:    strings.TrimSpace(req.Category),
		Amount:      req.Amount,
		Description: req.Description,
		Date:        now,
		PaidTo:      req.PaidTo,
		CreatedBy:   caller.ID,
		CreatedAt:   now,
	}
	if req.Date != nil {
		tx.Date = *req.Date
	}

	h.insert(w, r, &tx)
}

// insert stores tx and responds 201 with its resolved view.
func (h *Handler) insert(w http.ResponseWriter, r *http.Request, tx *schemas.Transaction) {
	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	if err := h.store.Insert(ctx, tx); err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_INSERT_TRANSACTION_TO_MONGODB, err))
		return
	}

	views, err := h.views(ctx, []schemas.Transaction{*tx})
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_FIND_USERS_IN_MONGODB, err))
		return
	}
	utils.SendResponse(w, http.StatusCreated, "", views[0], 0)
}
