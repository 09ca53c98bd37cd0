package insights

import (
	"sort"

	"github.com/shopspring/decimal"

	"spendlens/internal/models"
)

// Totals is the grand total and mean amount of a record list.
type Totals struct {
	Count   int             `json:"total_expenses"`
	Total   decimal.Decimal `json:"total_amount"`
	Average decimal.Decimal `json:"average_expense"`
}

// TotalAndAverage sums the amounts. An empty list yields zeros.
func TotalAndAverage(records []Record) Totals {
	t := Totals{Count: len(records), Total: decimal.Zero, Average: decimal.Zero}
	for _, r := range records {
		t.Total = t.Total.Add(r.Amount)
	}
	if t.Count > 0 {
		t.Average = t.Total.Div(decimal.NewFromInt(int64(t.Count))).Round(2)
	}
	return t
}

// SummaryByCategory maps each category present to its total.
func SummaryByCategory(records []Record) map[models.Category]decimal.Decimal {
	out := make(map[models.Category]decimal.Decimal)
	for _, r := range records {
		out[r.Category] = out[r.Category].Add(r.Amount)
	}
	return out
}

// CategorySummary is the per-category rollup.
type CategorySummary struct {
	Category models.Category `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
	Average  decimal.Decimal `json:"average"`
}

// CategorySummaries rolls records up by category, in first-seen order.
func CategorySummaries(records []Record) []CategorySummary {
	index := make(map[models.Category]int)
	var out []CategorySummary
	for _, r := range records {
		i, ok := index[r.Category]
		if !ok {
			i = len(out)
			index[r.Category] = i
			out = append(out, CategorySummary{Category: r.Category, Total: decimal.Zero})
		}
		out[i].Total = out[i].Total.Add(r.Amount)
		out[i].Count++
	}
	for i := range out {
		out[i].Average = out[i].Total.Div(decimal.NewFromInt(int64(out[i].Count))).Round(2)
	}
	return out
}

// TopCategories returns at most n categories, largest total first. Ties
// keep first-seen order.
func TopCategories(records []Record, n int) []CategorySummary {
	if n <= 0 {
		return []CategorySummary{}
	}
	sums := CategorySummaries(records)
	sort.SliceStable(sums, func(i, j int) bool {
		return sums[i].Total.GreaterThan(sums[j].Total)
	})
	if len(sums) > n {
		sums = sums[:n]
	}
	if sums == nil {
		sums = []CategorySummary{}
	}
	return sums
}

// MonthTotal is the spend for one calendar month.
type MonthTotal struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// MonthlyTotals buckets records by UTC calendar month, oldest month first.
func MonthlyTotals(records []Record) []MonthTotal {
	byMonth := make(map[string]*MonthTotal)
	for _, r := range records {
		key := MonthKey(r.Date)
		m, ok := byMonth[key]
		if !ok {
			m = &MonthTotal{Month: key, Total: decimal.Zero}
			byMonth[key] = m
		}
		m.Total = m.Total.Add(r.Amount)
		m.Count++
	}

	out := make([]MonthTotal, 0, len(byMonth))
	for _, m := range byMonth {
		out = append(out, *m)
	}
	// "YYYY-MM" sorts chronologically as a string.
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

func monthlyMap(records []Record) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, m := range MonthlyTotals(records) {
		out[m.Month] = m.Total
	}
	return out
}

// AverageMonthly is the total spend divided by the number of months present.
func AverageMonthly(records []Record) decimal.Decimal {
	months := MonthlyTotals(records)
	if len(months) == 0 {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, m := range months {
		total = total.Add(m.Total)
	}
	return total.Div(decimal.NewFromInt(int64(len(months)))).Round(2)
}

// RecentRecords returns up to n records, newest first. The input is not
// modified.
func RecentRecords(records []Record, n int) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Trend directions.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// TrendResult compares the two most recent months that have spending.
type TrendResult struct {
	Trend   string          `json:"trend"`
	Amount  decimal.Decimal `json:"amount"`
	Message string          `json:"message"`
}

// MonthlyTrend returns nil for fewer than two records or two distinct months.
func MonthlyTrend(records []Record) *TrendResult {
	if len(records) < 2 {
		return nil
	}
	months := MonthlyTotals(records)
	if len(months) < 2 {
		return nil
	}

	latest := months[len(months)-1].Total
	previous := months[len(months)-2].Total
	diff := latest.Sub(previous)

	switch diff.Sign() {
	case 1:
		return &TrendResult{
			Trend:   TrendIncreasing,
			Amount:  diff,
			Message: "Spending increased by " + money(diff) + " this month",
		}
	case -1:
		return &TrendResult{
			Trend:   TrendDecreasing,
			Amount:  diff.Abs(),
			Message: "Spending decreased by " + money(diff.Abs()) + " this month",
		}
	default:
		return &TrendResult{
			Trend:   TrendStable,
			Amount:  decimal.Zero,
			Message: "Spending remained stable this month",
		}
	}
}
