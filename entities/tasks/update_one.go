package tasks

import (
	"context"
	"errors"
	"net/http"

	"opsdesk/database"
	"opsdesk/schemas"
	"opsdesk/utils"
)

func (h *Handler) UpdateOne(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseObjectID(r.PathValue("id"))
	if err != nil {
		utils.SendError(w, h.logger, err)
		return
	}

	var update schemas.TaskUpdate
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

	task, err := h.store.Update(ctx, id, update)
	if errors.Is(err, ErrNotFound) {
		utils.SendError(w, h.logger, utils.NewNotFoundError("Tarefa não encontrada"))
		return
	}
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_UPDATE_TASK_IN_MONGODB, err))
		return
	}

	views, err := h.views(ctx, []schemas.Task{*task})
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_FIND_USERS_IN_MONGODB, err))
		return
	}
	utils.SendResponse(w, http.StatusOK, "", views[0], 0)
}
