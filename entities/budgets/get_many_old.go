package budgets

import (
	"context"
	"net/http"

	"opsdesk/database"
	"opsdesk/utils"
)

// GetManyOld lists transactions from the legacy MySQL ledger.
func (h *Handler) GetManyOld(w http.ResponseWriter, r *http.Request) {
	if h.legacy == nil {
		utils.SendError(w, h.logger, utils.NewUnavailableError("Base legada não configurada"))
		return
	}

	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		utils.SendError(w, h.logger, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MYSQL_TIMEOUT)
	defer cancel()

	list, err := h.legacy.List(ctx, filter)
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_QUERY_MYSQL, err))
		return
	}
	utils.SendResponse(w, http.StatusOK, "", list, 0)
}
