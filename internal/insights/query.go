package insights

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"spendlens/internal/ai"
	apperrors "spendlens/internal/errors"
)

// QueryAnswer is the reply to a natural-language question.
type QueryAnswer struct {
	Source          string   `json:"source"`
	Answer          string   `json:"answer"`
	Insights        []string `json:"insights"`
	Recommendations []string `json:"recommendations"`
	Data            any      `json:"data"`
}

// CategoryDigest is a category's total and record count.
type CategoryDigest struct {
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// Digest is the statistical context handed to the provider with a question.
type Digest struct {
	TotalExpenses  int                        `json:"total_expenses"`
	TotalAmount    decimal.Decimal            `json:"total_amount"`
	Categories     map[string]CategoryDigest  `json:"categories"`
	MonthlyData    map[string]decimal.Decimal `json:"monthly_data"`
	RecentExpenses []Record                   `json:"recent_expenses"`
}

// BuildDigest summarises records for a query prompt. Records are expected
// newest first, as storage returns them.
func BuildDigest(records []Record) Digest {
	d := Digest{
		TotalExpenses:  len(records),
		TotalAmount:    TotalAndAverage(records).Total,
		Categories:     make(map[string]CategoryDigest),
		MonthlyData:    monthlyMap(records),
		RecentExpenses: records[:min(10, len(records))],
	}
	for _, s := range CategorySummaries(records) {
		d.Categories[string(s.Category)] = CategoryDigest{Total: s.Total, Count: s.Count}
	}
	return d
}

// NaturalLanguageQuery answers a question about the records. A blank query
// is an input error; anything else always gets an answer.
func (o *Orchestrator) NaturalLanguageQuery(ctx context.Context, query string, records []Record) (*QueryAnswer, error) {
	const step = "query"
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.ErrQueryRequired
	}

	raw, err := o.generate(ctx, step, queryPrompt(query, BuildDigest(records)))
	if err != nil {
		return AnswerWithRules(query, records), nil
	}

	var out QueryAnswer
	if err := ai.DecodeJSON(raw, &out); err != nil {
		o.parseFailed(step, err)
		out = QueryAnswer{Answer: strings.TrimSpace(raw)}
	}
	out.Source = SourceAI
	out.Insights = nonNil(out.Insights)
	out.Recommendations = nonNil(out.Recommendations)
	return &out, nil
}

// QueryRule is one offline answer. Rules are tried in order.
type QueryRule struct {
	Name    string
	Matches func(q string) bool
	Answer  func(records []Record) QueryAnswer
}

func containsAll(words ...string) func(string) bool {
	return func(q string) bool {
		for _, w := range words {
			if !strings.Contains(q, w) {
				return false
			}
		}
		return true
	}
}

func containsAny(words ...string) func(string) bool {
	return func(q string) bool {
		for _, w := range words {
			if strings.Contains(q, w) {
				return true
			}
		}
		return false
	}
}

// DefaultQueryRules is the offline rule order: total spend, top category,
// average, recent.
var DefaultQueryRules = []QueryRule{
	{Name: "total", Matches: containsAll("total", "spend"), Answer: totalAnswer},
	{Name: "category", Matches: containsAny("category", "most"), Answer: categoryAnswer},
	{Name: "average", Matches: containsAny("average", "avg"), Answer: averageAnswer},
	{Name: "recent", Matches: containsAny("recent"), Answer: recentAnswer},
}

// AnswerWithRules answers from DefaultQueryRules, or with a help message.
func AnswerWithRules(query string, records []Record) *QueryAnswer {
	q := strings.ToLower(query)
	for _, r := range DefaultQueryRules {
		if r.Matches(q) {
			ans := r.Answer(records)
			ans.Source = SourceFallback
			ans.Insights = nonNil(ans.Insights)
			ans.Recommendations = nonNil(ans.Recommendations)
			return &ans
		}
	}
	return &QueryAnswer{
		Source:          SourceFallback,
		Answer:          "I can help you analyze your spending patterns. Try asking about your total spending, top categories, or recent expenses.",
		Insights:        []string{"Add more specific questions to get detailed insights about your spending patterns"},
		Recommendations: []string{},
	}
}

func totalAnswer(records []Record) QueryAnswer {
	total := TotalAndAverage(records).Total
	return QueryAnswer{
		Answer:   "Your total spending is " + money(total),
		Data:     map[string]any{"total": total},
		Insights: []string{fmt.Sprintf("You've made %d transactions", len(records))},
	}
}

func categoryAnswer(records []Record) QueryAnswer {
	top := TopCategories(records, 1)
	if len(top) == 0 {
		return QueryAnswer{Answer: "You don't have any expenses yet, so there is no top category."}
	}
	c := top[0]
	return QueryAnswer{
		Answer: fmt.Sprintf("Your highest spending category is %s with %s", c.Category, money(c.Total)),
		Data: map[string]any{"top_category": map[string]any{
			"category": c.Category,
			"amount":   c.Total,
		}},
		Recommendations: []string{fmt.Sprintf("Consider reviewing expenses in %s for potential savings", c.Category)},
	}
}

func averageAnswer(records []Record) QueryAnswer {
	avg := TotalAndAverage(records).Average
	return QueryAnswer{
		Answer: "Your average expense is " + money(avg),
		Data:   map[string]any{"average": avg},
	}
}

func recentAnswer(records []Record) QueryAnswer {
	return QueryAnswer{
		Answer: "Here are your 5 most recent expenses:",
		Data:   map[string]any{"recent": RecentRecords(records, 5)},
	}
}
