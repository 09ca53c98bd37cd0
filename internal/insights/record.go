// Package insights turns a user's expense records into summaries, trends,
// anomaly flags and AI-assisted answers. Aggregations are pure; only the
// Orchestrator talks to a provider, and every provider path has a fallback.
package insights

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"spendlens/internal/models"
)

// Record is the slice of an expense the insight layer works with.
type Record struct {
	ID          string          `json:"id,omitempty"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    models.Category `json:"category"`
	Date        time.Time       `json:"date"`
	Merchant    string          `json:"merchant,omitempty"`
}

// FromExpense projects a stored expense into a Record.
func FromExpense(e models.Expense) Record {
	r := Record{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount,
		Category:    e.Category,
		Date:        e.Date,
	}
	if e.Merchant != nil {
		r.Merchant = *e.Merchant
	}
	return r
}

// FromExpenses projects a list of expenses, preserving order.
func FromExpenses(expenses []models.Expense) []Record {
	out := make([]Record, len(expenses))
	for i := range expenses {
		out[i] = FromExpense(expenses[i])
	}
	return out
}

// ParseAmount coerces s to a decimal. Anything unparseable is zero.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// MonthKey buckets t by UTC calendar month, e.g. "2024-03".
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

func dayKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
