package insights

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Suggestion types.
const (
	SuggestionBudget   = "budget"
	SuggestionCategory = "category"
	SuggestionMerchant = "merchant"
)

// Suggestion is a rule-based spending tip.
type Suggestion struct {
	Type           string `json:"type"`
	Message        string `json:"message"`
	Recommendation string `json:"recommendation"`
}

var (
	topCategoryShare    = decimal.NewFromFloat(0.3)
	frequentMerchantMin = 3
)

// SmartSuggestions derives budget, category and merchant tips without any
// provider.
func SmartSuggestions(records []Record) []Suggestion {
	out := []Suggestion{}
	avgMonthly := AverageMonthly(records)

	if avgMonthly.IsPositive() {
		out = append(out, Suggestion{
			Type:           SuggestionBudget,
			Message:        "Your average monthly spending is " + money(avgMonthly),
			Recommendation: "Consider setting a monthly budget to track your expenses better",
		})
	}

	if top := TopCategories(records, 1); len(top) == 1 && top[0].Total.GreaterThan(avgMonthly.Mul(topCategoryShare)) {
		out = append(out, Suggestion{
			Type:           SuggestionCategory,
			Message:        fmt.Sprintf("%s is your highest spending category (%s)", top[0].Category, money(top[0].Total)),
			Recommendation: "Consider reviewing expenses in this category for potential savings",
		})
	}

	if name, count := topMerchant(records); count > frequentMerchantMin {
		out = append(out, Suggestion{
			Type:           SuggestionMerchant,
			Message:        fmt.Sprintf("You frequently shop at %s (%d times)", name, count),
			Recommendation: "Look for loyalty programs or bulk discounts",
		})
	}
	return out
}

// topMerchant returns the most frequent merchant; ties go to the first seen.
func topMerchant(records []Record) (string, int) {
	counts := make(map[string]int)
	var order []string
	for _, r := range records {
		if r.Merchant == "" {
			continue
		}
		if _, ok := counts[r.Merchant]; !ok {
			order = append(order, r.Merchant)
		}
		counts[r.Merchant]++
	}

	best, bestCount := "", 0
	for _, m := range order {
		if counts[m] > bestCount {
			best, bestCount = m, counts[m]
		}
	}
	return best, bestCount
}
