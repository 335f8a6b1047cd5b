package budgets

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"opsdesk/database"
	"opsdesk/entities/users"
	"opsdesk/middlewares"
	"opsdesk/schemas"
	"opsdesk/utils"
)

type PaySalaryRequest struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Description string  `json:"description" validate:"max=1000"`
}

// PaySalary records a salary expense paid to the user in the path.
func (h *Handler) PaySalary(w http.ResponseWriter, r *http.Request) {
	caller, ok := middlewares.RequireCaller(w, r)
	if !ok {
		return
	}

	userID, err := utils.ParseObjectID(r.PathValue("userId"))
	if err != nil {
		utils.SendError(w, h.logger, err)
		return
	}

	var req PaySalaryRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.SendError(w, h.logger, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	payee, err := h.users.FindByID(ctx, userID)
	if errors.Is(err, users.ErrNotFound) {
		utils.SendError(w, h.logger, utils.NewNotFoundError("Usuário não encontrado"))
		return
	}
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_FIND_USERS_IN_MONGODB, err))
		return
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Salary payment to %s", payee.Username)
	}

	now := h.now()
	tx := schemas.Transaction{
		Type:        schemas.TRANSACTION_TYPE_EXPENSE,
		Category:    schemas.TRANSACTION_CATEGORY_SALARY,
		Amount:      req.Amount,
		Description: description,
		Date:        now,
		PaidTo:      &payee.ID,
		CreatedBy:   caller.ID,
		CreatedAt:   now,
	}

	h.insert(w, r, &tx)
}
