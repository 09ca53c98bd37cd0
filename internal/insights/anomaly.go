package insights

import (
	"fmt"

	"github.com/shopspring/decimal"

	"spendlens/internal/models"
)

// Anomaly kinds.
const (
	AnomalyHighAmount    = "unusually_high_amount"
	AnomalyDuplicate     = "duplicate_transaction"
	AnomalyCategorySpike = "category_spike"
)

// Severities.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
)

// Default anomaly multipliers.
const (
	DefaultHighAmountMultiplier    = 3.0
	DefaultCategorySpikeMultiplier = 2.0
)

// AnomalyThresholds are the multipliers applied to the relevant mean.
type AnomalyThresholds struct {
	HighAmount    float64 // times the mean of all amounts
	CategorySpike float64 // times the mean of the record's category
}

// DefaultThresholds returns the stock multipliers.
func DefaultThresholds() AnomalyThresholds {
	return AnomalyThresholds{
		HighAmount:    DefaultHighAmountMultiplier,
		CategorySpike: DefaultCategorySpikeMultiplier,
	}
}

func (t AnomalyThresholds) withDefaults() AnomalyThresholds {
	if t.HighAmount <= 0 {
		t.HighAmount = DefaultHighAmountMultiplier
	}
	if t.CategorySpike <= 0 {
		t.CategorySpike = DefaultCategorySpikeMultiplier
	}
	return t
}

// Anomaly is one flagged record or category.
type Anomaly struct {
	Type     string           `json:"type"`
	Expense  *Record          `json:"expense,omitempty"`
	Category models.Category  `json:"category,omitempty"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Reason   string           `json:"reason"`
	Severity string           `json:"severity"`
}

// DetectAnomalies runs the high-amount, duplicate and category-spike checks.
// The checks are independent, so one record can be flagged more than once.
func DetectAnomalies(records []Record, th AnomalyThresholds) []Anomaly {
	out := []Anomaly{}
	if len(records) == 0 {
		return out
	}
	th = th.withDefaults()

	out = append(out, highAmounts(records, th.HighAmount)...)
	out = append(out, duplicates(records)...)
	out = append(out, categorySpikes(records, th.CategorySpike)...)
	return out
}

func highAmounts(records []Record, multiplier float64) []Anomaly {
	mean := TotalAndAverage(records).Total.Div(decimal.NewFromInt(int64(len(records))))
	if !mean.IsPositive() {
		return nil
	}
	threshold := mean.Mul(decimal.NewFromFloat(multiplier))

	var out []Anomaly
	for i := range records {
		r := records[i]
		if !r.Amount.GreaterThan(threshold) {
			continue
		}
		out = append(out, Anomaly{
			Type:    AnomalyHighAmount,
			Expense: &r,
			Reason: fmt.Sprintf("Amount %s is %sx higher than average",
				money(r.Amount), r.Amount.Div(mean).StringFixed(1)),
			Severity: SeverityHigh,
		})
	}
	return out
}

func duplicates(records []Record) []Anomaly {
	seen := make(map[string]struct{}, len(records))
	var out []Anomaly
	for i := range records {
		r := records[i]
		key := r.Description + "\x00" + r.Amount.String() + "\x00" + dayKey(r.Date)
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			continue
		}
		out = append(out, Anomaly{
			Type:     AnomalyDuplicate,
			Expense:  &r,
			Reason:   "Possible duplicate transaction detected",
			Severity: SeverityMedium,
		})
	}
	return out
}

func categorySpikes(records []Record, multiplier float64) []Anomaly {
	byCategory := make(map[models.Category][]int)
	var order []models.Category
	for i, r := range records {
		if _, ok := byCategory[r.Category]; !ok {
			order = append(order, r.Category)
		}
		byCategory[r.Category] = append(byCategory[r.Category], i)
	}

	factor := decimal.NewFromFloat(multiplier)
	var out []Anomaly
	for _, cat := range order {
		idx := byCategory[cat]
		if len(idx) < 2 {
			continue
		}
		sum := decimal.Zero
		for _, i := range idx {
			sum = sum.Add(records[i].Amount)
		}
		threshold := sum.Div(decimal.NewFromInt(int64(len(idx)))).Mul(factor)

		for _, i := range idx {
			r := records[i]
			if !r.Amount.GreaterThan(threshold) {
				continue
			}
			amount := r.Amount
			out = append(out, Anomaly{
				Type:     AnomalyCategorySpike,
				Expense:  &r,
				Category: cat,
				Amount:   &amount,
				Reason:   fmt.Sprintf("Unusual spike in %s spending", cat),
				Severity: SeverityMedium,
			})
		}
	}
	return out
}
