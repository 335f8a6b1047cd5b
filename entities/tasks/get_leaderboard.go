package tasks

import (
	"cmp"
	"context"
	"math"
	"net/http"
	"slices"

	"opsdesk/database"
	"opsdesk/schemas"
	"opsdesk/utils"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	entries, err := h.store.CompletedByUser(ctx)
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_FIND_TASKS_IN_MONGODB, err))
		return
	}

	ids := make([]bson.ObjectID, len(entries))
	for i, e := range entries {
		ids[i] = e.UserID
	}
	found, err := h.users.FindByIDs(ctx, ids)
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_FIND_USERS_IN_MONGODB, err))
		return
	}

	utils.SendResponse(w, http.StatusOK, "", rank(entries, found), 0)
}

// rank scores each entry as tasks*10 - avgTime*0.5, floored at 0, and sorts
// by score descending.
func rank(entries []schemas.LeaderboardEntry, users map[bson.ObjectID]schemas.User) []schemas.LeaderboardEntry {
	ranked := make([]schemas.LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		if e.TasksCompleted == 0 {
			continue
		}
		avg := e.TotalTime / float64(e.TasksCompleted)
		e.AvgTime = math.Round(avg*10) / 10
		e.Score = max(int(math.Round(float64(e.TasksCompleted)*10-avg*0.5)), 0)
		if u, ok := users[e.UserID]; ok {
			e.User = u.Ref()
		}
		ranked = append(ranked, e)
	}

	slices.SortStableFunc(ranked, func(a, b schemas.LeaderboardEntry) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return ranked
}
