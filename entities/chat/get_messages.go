package chat

import (
	"context"
	"net/http"

	"opsdesk/database"
	"opsdesk/utils"
)

// GetMessages returns the latest page of a room over HTTP.
func (r *Relay) GetMessages(w http.ResponseWriter, req *http.Request) {
	room, err := resolveRoom(req.URL.Query().Get("room"))
	if err != nil {
		utils.SendError(w, r.logger, utils.NewValidationError("Sala inválida"))
		return
	}

	ctx, cancel := context.WithTimeout(req.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	views, err := r.RecentRoomMessages(ctx, room)
	if err != nil {
		utils.SendError(w, r.logger, utils.NewInternalError(utils.CANNOT_FIND_MESSAGES_IN_MONGODB, err))
		return
	}
	utils.SendResponse(w, http.StatusOK, "", views, 0)
}
