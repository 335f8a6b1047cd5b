package budgets

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"slices"
	"time"

	"opsdesk/schemas"
	"opsdesk/utils"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Handler struct {
	store  Store
	legacy LegacyLedger
	users  UserLookup
	logger *slog.Logger
	now    func() time.Time
}

// NewHandler builds the budget handler. legacy may be nil when no MySQL
// ledger is configured.
func NewHandler(store Store, legacy LegacyLedger, users UserLookup, logger *slog.Logger) *Handler {
	return &Handler{store: store, legacy: legacy, users: users, logger: logger.With("component", "budgets"), now: time.Now}
}

// parseFilter reads startDate, endDate, type and category. A date-only
// endDate covers that whole day.
func parseFilter(q url.Values) (Filter, error) {
	var f Filter
	if s := q.Get("startDate"); s != "" {
		t, err := utils.ParseDate(s)
		if err != nil {
			return f, utils.NewValidationError("Parâmetro startDate inválido")
		}
		f.Start = &t
	}
	if s := q.Get("endDate"); s != "" {
		t, err := utils.ParseDate(s)
		if err != nil {
			return f, utils.NewValidationError("Parâmetro endDate inválido")
		}
		if len(s) == len(time.DateOnly) {
			t = t.AddDate(0, 0, 1)
		} else {
			t = t.Add(time.Nanosecond)
		}
		f.End = &t
	}
	if f.Start != nil && f.End != nil && !f.Start.Before(*f.End) {
		return f, utils.NewValidationError("Intervalo de datas inválido")
	}

	f.Type = q.Get("type")
	if f.Type != "" && f.Type != schemas.TRANSACTION_TYPE_INCOME && f.Type != schemas.TRANSACTION_TYPE_EXPENSE {
		return f, utils.NewValidationError("Parâmetro type inválido")
	}
	f.Category = q.Get("category")
	return f, nil
}

func (h *Handler) views(ctx context.Context, list []schemas.Transaction) ([]schemas.TransactionView, error) {
	ids := make([]bson.ObjectID, 0, len(list)*2)
	for _, tx := range list {
		ids = append(ids, tx.CreatedBy)
		if tx.PaidTo != nil {
			ids = append(ids, *tx.PaidTo)
		}
	}
	slices.SortFunc(ids, func(a, b bson.ObjectID) int { return bytes.Compare(a[:], b[:]) })
	ids = slices.Compact(ids)

	found, err := h.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]schemas.TransactionView, len(list))
	for i, tx := range list {
		views[i] = schemas.TransactionView{Transaction: tx}
		if u, ok := found[tx.CreatedBy]; ok {
			views[i].CreatedByRef = u.Ref()
		}
		if tx.PaidTo != nil {
			if u, ok := found[*tx.PaidTo]; ok {
				views[i].PaidToRef = u.Ref()
			}
		}
	}
	return views, nil
}
