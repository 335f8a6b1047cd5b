package users

import (
	"context"
	"errors"
	"net/http"

	"opsdesk/database"
	"opsdesk/schemas"
	"opsdesk/utils"
)

// UpdateOne lets an admin change a user's role and approval/activity flags.
// Other fields in the body are ignored.
func (h *Handler) UpdateOne(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseObjectID(r.PathValue("id"))
	if err != nil {
		utils.SendError(w, h.logger, err)
		return
	}

	var update schemas.UserUpdate
	if err := utils.DecodeJSON(r, &update); err != nil {
		utils.SendError(w, h.logger, err)
		return
	}
	if update.IsEmpty() {
		utils.SendError(w, h.logger, utils.NewValidationError("Nenhum campo para atualizar"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	user, err := h.store.Update(ctx, id, update)
	if errors.Is(err, ErrNotFound) {
		utils.SendError(w, h.logger, utils.NewNotFoundError("Usuário não encontrado"))
		return
	}
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_UPDATE_USER_IN_MONGODB, err))
		return
	}

	utils.SendResponse(w, http.StatusOK, "Usuário atualizado", user, 0)
}
