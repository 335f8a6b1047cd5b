package auth

import (
	"context"
	"errors"
	"net/http"

	"opsdesk/database"
	"opsdesk/entities/users"
	"opsdesk/identity"
	"opsdesk/schemas"
	"opsdesk/utils"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginUser struct {
	*schemas.UserRef
	Role string `json:"role"`
}

type LoginResponse struct {
	Token string    `json:"token"`
	User  LoginUser `json:"user"`
}

const invalidCredentials = "Credenciais inválidas"

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.SendError(w, h.logger, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	user, err := h.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, users.ErrNotFound) {
		utils.SendError(w, h.logger, utils.NewValidationError(invalidCredentials))
		return
	}
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_FIND_USERS_IN_MONGODB, err))
		return
	}

	ok, err := identity.ComparePassword(user.Password, req.Password)
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_HASH_PASSWORD, err))
		return
	}
	if !ok {
		utils.SendError(w, h.logger, utils.NewValidationError(invalidCredentials))
		return
	}

	if !user.IsApproved {
		utils.SendError(w, h.logger, utils.NewAuthorizationError("Conta ainda não aprovada pelo administrador"))
		return
	}
	if !user.IsActive {
		utils.SendError(w, h.logger, utils.NewAuthorizationError("Conta desativada"))
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Role)
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_ISSUE_TOKEN, err))
		return
	}

	utils.SendResponse(w, http.StatusOK, "", LoginResponse{
		Token: token,
		User:  LoginUser{UserRef: user.Ref(), Role: user.Role},
	}, 0)
}
