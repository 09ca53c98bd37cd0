package insights

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"spendlens/internal/ai"
	apperrors "spendlens/internal/errors"
)

// Result sources.
const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
)

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 10 * time.Second

// DefaultBenchmark is used when no benchmark is requested.
const DefaultBenchmark = "national_average"

// Config wires the orchestrator. A nil Generator means no provider is
// configured; every operation then answers from its fallback.
type Config struct {
	Generator  ai.TextGenerator
	Timeout    time.Duration
	Thresholds AnomalyThresholds
}

// Orchestrator combines aggregations with optional provider calls.
type Orchestrator struct {
	gen        ai.TextGenerator
	timeout    time.Duration
	thresholds AnomalyThresholds
	log        *zap.SugaredLogger
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(cfg Config, log *zap.SugaredLogger) *Orchestrator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Orchestrator{
		gen:        cfg.Generator,
		timeout:    cfg.Timeout,
		thresholds: cfg.Thresholds.withDefaults(),
		log:        log,
	}
}

// Available reports whether a provider is configured.
func (o *Orchestrator) Available() bool { return o.gen != nil }

// Anomalies runs DetectAnomalies with the configured thresholds.
func (o *Orchestrator) Anomalies(records []Record) []Anomaly {
	return DetectAnomalies(records, o.thresholds)
}

// generate makes one bounded provider call. It never calls an absent
// provider and logs failures at warn.
func (o *Orchestrator) generate(ctx context.Context, step, prompt string) (string, error) {
	if o.gen == nil {
		return "", ai.ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	out, err := o.gen.Generate(ctx, prompt)
	if err != nil {
		o.log.Warnw("provider call failed", "provider", o.gen.Name(), "step", step, "error", err)
		return "", err
	}
	return out, nil
}

func (o *Orchestrator) parseFailed(step string, err error) {
	o.log.Warnw("unparseable provider response", "provider", o.gen.Name(), "step", step, "error", err)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// AdvancedInsights is the free-form analysis, or rule-based suggestions when
// no provider answered.
type AdvancedInsights struct {
	Source               string       `json:"source"`
	Analysis             string       `json:"analysis,omitempty"`
	Insights             []string     `json:"insights"`
	Recommendations      []string     `json:"recommendations"`
	BudgetSuggestions    []string     `json:"budget_suggestions"`
	SavingsOpportunities []string     `json:"savings_opportunities"`
	Suggestions          []Suggestion `json:"suggestions,omitempty"`
}

func (a *AdvancedInsights) normalize() {
	a.Insights = nonNil(a.Insights)
	a.Recommendations = nonNil(a.Recommendations)
	a.BudgetSuggestions = nonNil(a.BudgetSuggestions)
	a.SavingsOpportunities = nonNil(a.SavingsOpportunities)
}

// AdvancedInsights asks the provider for a structured analysis.
func (o *Orchestrator) AdvancedInsights(ctx context.Context, records []Record) AdvancedInsights {
	const step = "advanced_insights"

	raw, err := o.generate(ctx, step, advancedInsightsPrompt(records))
	if err != nil {
		out := AdvancedInsights{Source: SourceFallback, Suggestions: SmartSuggestions(records)}
		out.normalize()
		return out
	}

	var out AdvancedInsights
	if err := ai.DecodeJSON(raw, &out); err != nil {
		o.parseFailed(step, err)
		out = AdvancedInsights{Source: SourceFallback, Analysis: raw}
		out.normalize()
		return out
	}
	out.Source = SourceAI
	out.Suggestions = nil
	out.normalize()
	return out
}

// Predictions is the provider's forecast.
type Predictions struct {
	Source                   string          `json:"source"`
	PredictedMonthlySpending decimal.Decimal `json:"predictedMonthlySpending"`
	LikelyCategories         []string        `json:"likelyCategories"`
	RecurringExpenses        []string        `json:"recurringExpenses"`
	SeasonalPatterns         string          `json:"seasonalPatterns"`
	BudgetRecommendations    []string        `json:"budgetRecommendations"`
	Confidence               string          `json:"confidence"`
}

// Predictions returns nil when no provider answered.
func (o *Orchestrator) Predictions(ctx context.Context, records []Record) *Predictions {
	const step = "predictions"

	raw, err := o.generate(ctx, step, predictionsPrompt(records))
	if err != nil {
		return nil
	}

	var out Predictions
	if err := ai.DecodeJSON(raw, &out); err != nil {
		o.parseFailed(step, err)
		out = Predictions{
			Source:                   SourceFallback,
			PredictedMonthlySpending: decimal.Zero,
			SeasonalPatterns:         raw,
			Confidence:               "low",
		}
	} else {
		out.Source = SourceAI
	}
	out.LikelyCategories = nonNil(out.LikelyCategories)
	out.RecurringExpenses = nonNil(out.RecurringExpenses)
	out.BudgetRecommendations = nonNil(out.BudgetRecommendations)
	return &out
}

// OptimizationSuggestion is one money-saving idea.
type OptimizationSuggestion struct {
	Type             string     `json:"type"`
	Description      string     `json:"description"`
	PotentialSavings FlexString `json:"potential_savings"`
	Difficulty       string     `json:"difficulty"`
	Category         string     `json:"category"`
}

// Optimization holds the provider's savings suggestions.
type Optimization struct {
	Source                string                   `json:"source"`
	Suggestions           []OptimizationSuggestion `json:"suggestions"`
	TotalPotentialSavings decimal.Decimal          `json:"total_potential_savings"`
}

// OptimizationSuggestions never returns nil; without a usable answer the
// suggestion list is empty.
func (o *Orchestrator) OptimizationSuggestions(ctx context.Context, records []Record) *Optimization {
	const step = "optimization"
	empty := &Optimization{Source: SourceFallback, Suggestions: []OptimizationSuggestion{}, TotalPotentialSavings: decimal.Zero}

	raw, err := o.generate(ctx, step, optimizationPrompt(records))
	if err != nil {
		return empty
	}

	var out Optimization
	if err := ai.DecodeJSON(raw, &out); err != nil {
		o.parseFailed(step, err)
		return empty
	}
	out.Source = SourceAI
	out.Suggestions = nonNil(out.Suggestions)
	return &out
}

// CategoryGoal is a per-category target.
type CategoryGoal struct {
	Category         string          `json:"category"`
	Current          decimal.Decimal `json:"current"`
	Target           decimal.Decimal `json:"target"`
	ReductionPercent decimal.Decimal `json:"reduction_percent"`
}

// Goals are suggested budget targets.
type Goals struct {
	Source            string          `json:"source"`
	MonthlyBudgetGoal decimal.Decimal `json:"monthly_budget_goal"`
	CategoryGoals     []CategoryGoal  `json:"category_goals"`
	SavingsTarget     decimal.Decimal `json:"savings_target"`
	Timeline          string          `json:"timeline"`
	ActionableSteps   []string        `json:"actionable_steps"`
}

var goalReduction = decimal.NewFromFloat(0.9)

// Goals returns nil when no provider answered. An unparseable answer yields
// a 10% reduction on the average month over three months.
func (o *Orchestrator) Goals(ctx context.Context, records []Record) *Goals {
	const step = "goals"

	raw, err := o.generate(ctx, step, goalsPrompt(records))
	if err != nil {
		return nil
	}

	var out Goals
	if err := ai.DecodeJSON(raw, &out); err != nil {
		o.parseFailed(step, err)
		out = Goals{
			Source:            SourceFallback,
			MonthlyBudgetGoal: AverageMonthly(records).Mul(goalReduction).Round(2),
			SavingsTarget:     decimal.Zero,
			Timeline:          "3 months",
		}
	} else {
		out.Source = SourceAI
	}
	out.CategoryGoals = nonNil(out.CategoryGoals)
	out.ActionableSteps = nonNil(out.ActionableSteps)
	return &out
}

// ReceiptAnalysis is what the provider read off a receipt.
type ReceiptAnalysis struct {
	Amount     FlexString `json:"amount"`
	Merchant   string     `json:"merchant"`
	Items      []string   `json:"items"`
	Category   string     `json:"category"`
	Date       string     `json:"date"`
	Confidence string     `json:"confidence"`
}

// AmountValue parses Amount, coercing junk to zero.
func (r *ReceiptAnalysis) AmountValue() decimal.Decimal {
	return ParseAmount(string(r.Amount))
}

// Description joins the purchased items, or a generic label when none were read.
func (r *ReceiptAnalysis) Description() string {
	if len(r.Items) == 0 {
		return "Receipt purchase"
	}
	return strings.Join(r.Items, ", ")
}

// ReceiptAnalysis rejects blank text. A nil analysis with a nil error means
// the receipt could not be read.
func (o *Orchestrator) ReceiptAnalysis(ctx context.Context, text string) (*ReceiptAnalysis, error) {
	const step = "receipt"
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.ErrReceiptTextRequired
	}

	raw, err := o.generate(ctx, step, receiptPrompt(text))
	if err != nil {
		return nil, nil
	}

	var out ReceiptAnalysis
	if err := ai.DecodeJSON(raw, &out); err != nil {
		o.parseFailed(step, err)
		return nil, nil
	}
	return &out, nil
}

// Benchmark compares spending with a reference population.
type Benchmark struct {
	Source                 string   `json:"source"`
	Benchmark              string   `json:"benchmark"`
	ComparisonSummary      string   `json:"comparison_summary"`
	AboveAverageCategories []string `json:"above_average_categories"`
	BelowAverageCategories []string `json:"below_average_categories"`
	BenchmarkInsights      []string `json:"benchmark_insights"`
	Recommendations        []string `json:"recommendations"`
}

// BenchmarkComparison returns nil when no provider answered.
func (o *Orchestrator) BenchmarkComparison(ctx context.Context, records []Record, benchmark string) *Benchmark {
	const step = "benchmark"
	benchmark = strings.TrimSpace(benchmark)
	if benchmark == "" {
		benchmark = DefaultBenchmark
	}

	raw, err := o.generate(ctx, step, benchmarkPrompt(records, benchmark))
	if err != nil {
		return nil
	}

	var out Benchmark
	if err := ai.DecodeJSON(raw, &out); err != nil {
		o.parseFailed(step, err)
		out = Benchmark{Source: SourceFallback, ComparisonSummary: "Comparison analysis completed"}
	} else {
		out.Source = SourceAI
	}
	out.Benchmark = benchmark
	out.AboveAverageCategories = nonNil(out.AboveAverageCategories)
	out.BelowAverageCategories = nonNil(out.BelowAverageCategories)
	out.BenchmarkInsights = nonNil(out.BenchmarkInsights)
	out.Recommendations = nonNil(out.Recommendations)
	return &out
}

// Report is the combined insights payload.
type Report struct {
	Overview         Totals            `json:"overview"`
	Suggestions      []Suggestion      `json:"suggestions"`
	Trends           *TrendResult      `json:"trends"`
	TopCategories    []CategorySummary `json:"top_categories"`
	RecentExpenses   []Record          `json:"recent_expenses"`
	AdvancedInsights AdvancedInsights  `json:"advanced_insights"`
}

// Report builds the overview, top five categories and ten most recent
// records alongside the advanced insights.
func (o *Orchestrator) Report(ctx context.Context, records []Record) Report {
	return Report{
		Overview:         TotalAndAverage(records),
		Suggestions:      SmartSuggestions(records),
		Trends:           MonthlyTrend(records),
		TopCategories:    TopCategories(records, 5),
		RecentExpenses:   RecentRecords(records, 10),
		AdvancedInsights: o.AdvancedInsights(ctx, records),
	}
}
