package tasks

import (
	"context"
	"errors"
	"net/http"

	"opsdesk/database"
	"opsdesk/utils"
)

func (h *Handler) DeleteOne(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseObjectID(r.PathValue("id"))
	if err != nil {
		utils.SendError(w, h.logger, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	err = h.store.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		utils.SendError(w, h.logger, utils.NewNotFoundError("Tarefa não encontrada"))
		return
	}
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_DELETE_TASK_FROM_MONGODB, err))
		return
	}

	utils.SendResponse(w, http.StatusOK, "Tarefa removida", nil, 0)
}
