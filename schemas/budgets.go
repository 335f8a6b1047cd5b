package schemas

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	TRANSACTION_TYPE_INCOME  = "income"
	TRANSACTION_TYPE_EXPENSE = "expense"

	TRANSACTION_CATEGORY_SALARY = "salary"
)

type Transaction struct {
	ID          bson.ObjectID  `json:"id" bson:"_id,omitempty"`
	Type        string         `json:"type" bson:"type"`
	Category    string         `json:"category" bson:"category"`
	Amount      float64        `json:"amount" bson:"amount"`
	Description string         `json:"description,omitempty" bson:"description,omitempty"`
	Date        time.Time      `json:"date" bson:"date"`
	PaidTo      *bson.ObjectID `json:"paidTo,omitempty" bson:"paid_to,omitempty"`
	CreatedBy   bson.ObjectID  `json:"createdBy" bson:"created_by"`
	CreatedAt   time.Time      `json:"createdAt" bson:"created_at"`
}

type TransactionView struct {
	Transaction
	PaidToRef    *UserRef `json:"paidToUser,omitempty"`
	CreatedByRef *UserRef `json:"createdByUser,omitempty"`
}

type CategoryTotals struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

type MonthlyTotals struct {
	Month    string  `json:"month"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Profit   float64 `json:"profit"`
}

type BudgetAnalytics struct {
	TotalIncome       float64                   `json:"totalIncome"`
	TotalExpenses     float64                   `json:"totalExpenses"`
	Balance           float64                   `json:"balance"`
	Profit            float64                   `json:"profit"`
	CategoryBreakdown map[string]CategoryTotals `json:"categoryBreakdown"`
	MonthlyData       []MonthlyTotals           `json:"monthlyData"`
}

// TransactionOld is a row of the legacy MySQL ledger.
type TransactionOld struct {
	ID          int64      `json:"id"`
	Type        string     `json:"type"`
	Category    string     `json:"category"`
	Amount      float64    `json:"amount"`
	Description string     `json:"description,omitempty"`
	PaidTo      string     `json:"paidTo,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
}
