package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"opsdesk/database"
	"opsdesk/entities/users"
	"opsdesk/identity"
	"opsdesk/schemas"
	"opsdesk/utils"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// Register creates an unapproved staff account. An admin must approve it
// before it can log in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.SendError(w, h.logger, err)
		return
	}

	hash, err := identity.HashPassword(req.Password)
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_HASH_PASSWORD, err))
		return
	}

	user := schemas.User{
		Username:   strings.TrimSpace(req.Username),
		Email:      req.Email,
		Password:   hash,
		Role:       schemas.USERS_ROLE_STAFF,
		IsApproved: false,
		IsActive:   true,
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	err = h.users.Insert(ctx, &user)
	if errors.Is(err, users.ErrDuplicateEmail) {
		utils.SendError(w, h.logger, utils.NewConflictError("Usuário já cadastrado"))
		return
	}
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_INSERT_USER_TO_MONGODB, err))
		return
	}

	h.logger.Info("user registered", "user_id", user.ID.Hex())
	utils.SendResponse(w, http.StatusCreated, "Usuário cadastrado. Aguarde a aprovação do administrador.", nil, 0)
}
