package budgets

import (
	"context"
	"net/http"
	"time"

	"opsdesk/database"
	"opsdesk/schemas"
	"opsdesk/utils"
)

const ANALYTICS_TREND_MONTHS = 6

func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		utils.SendError(w, h.logger, err)
		return
	}
	// Analytics cover every type and category within the date range.
	filter.Type, filter.Category = "", ""

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	list, err := h.store.List(ctx, filter)
	if err != nil {
		utils.SendError(w, h.logger, utils.NewInternalError(utils.CANNOT_FIND_TRANSACTIONS_IN_MONGODB, err))
		return
	}

	utils.SendResponse(w, http.StatusOK, "", summarize(list, h.now()), 0)
}

// summarize totals list and builds the trend of the last six calendar months
// ending with now's month.
func summarize(list []schemas.Transaction, now time.Time) schemas.BudgetAnalytics {
	a := schemas.BudgetAnalytics{
		CategoryBreakdown: map[string]schemas.CategoryTotals{},
		MonthlyData:       make([]schemas.MonthlyTotals, ANALYTICS_TREND_MONTHS),
	}

	current, _ := utils.MonthBounds(now)
	first := current.AddDate(0, -(ANALYTICS_TREND_MONTHS - 1), 0)
	for i := range a.MonthlyData {
		a.MonthlyData[i].Month = first.AddDate(0, i, 0).Format("Jan 2006")
	}

	for _, tx := range list {
		totals := a.CategoryBreakdown[tx.Category]
		income := tx.Type == schemas.TRANSACTION_TYPE_INCOME
		if income {
			a.TotalIncome += tx.Amount
			totals.Income += tx.Amount
		} else {
			a.TotalExpenses += tx.Amount
			totals.Expense += tx.Amount
		}
		a.CategoryBreakdown[tx.Category] = totals

		date := tx.Date.In(now.Location())
		i := (date.Year()-first.Year())*12 + int(date.Month()) - int(first.Month())
		if i < 0 || i >= ANALYTICS_TREND_MONTHS {
			continue
		}
		if income {
			a.MonthlyData[i].Income += tx.Amount
		} else {
			a.MonthlyData[i].Expenses += tx.Amount
		}
	}

	for i := range a.MonthlyData {
		a.MonthlyData[i].Profit = a.MonthlyData[i].Income - a.MonthlyData[i].Expenses
	}
	a.Balance = a.TotalIncome - a.TotalExpenses
	a.Profit = a.Balance
	return a
}
