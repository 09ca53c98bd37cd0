package insights

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DateRange spans the oldest and newest record.
type DateRange struct {
	First *time.Time `json:"first"`
	Last  *time.Time `json:"last"`
}

// DashboardSummary is the headline numbers.
type DashboardSummary struct {
	Totals
	DateRange DateRange `json:"date_range"`
}

// DashboardInsights holds each section of the dashboard. Sections whose
// provider did not answer are nil or carry a fallback source.
type DashboardInsights struct {
	Suggestions      []Suggestion     `json:"suggestions"`
	Trends           *TrendResult     `json:"trends"`
	Predictions      *Predictions     `json:"predictions"`
	Anomalies        []Anomaly        `json:"anomalies"`
	Optimization     *Optimization    `json:"optimization"`
	Goals            *Goals           `json:"goals"`
	AdvancedInsights AdvancedInsights `json:"advanced_insights"`
}

// Dashboard is the combined payload.
type Dashboard struct {
	Summary  DashboardSummary  `json:"summary"`
	Insights DashboardInsights `json:"insights"`
}

// Dashboard computes the summary and every insight section. Provider-backed
// sections run concurrently and are joined before returning; a section that
// fails or panics keeps its neutral value.
func (o *Orchestrator) Dashboard(ctx context.Context, records []Record) Dashboard {
	d := Dashboard{
		Summary: DashboardSummary{Totals: TotalAndAverage(records)},
		Insights: DashboardInsights{
			Suggestions: []Suggestion{},
			Anomalies:   []Anomaly{},
			Optimization: &Optimization{
				Source:      SourceFallback,
				Suggestions: []OptimizationSuggestion{},
			},
			AdvancedInsights: AdvancedInsights{
				Source:               SourceFallback,
				Insights:             []string{},
				Recommendations:      []string{},
				BudgetSuggestions:    []string{},
				SavingsOpportunities: []string{},
			},
		},
	}

	// Records arrive newest first.
	if n := len(records); n > 0 {
		first, last := records[n-1].Date, records[0].Date
		d.Summary.DateRange = DateRange{First: &first, Last: &last}
	}

	in := &d.Insights
	var mu sync.Mutex

	o.gather(ctx, map[string]func(context.Context){
		"suggestions": func(context.Context) {
			s := SmartSuggestions(records)
			mu.Lock()
			in.Suggestions = s
			mu.Unlock()
		},
		"trends": func(context.Context) {
			t := MonthlyTrend(records)
			mu.Lock()
			in.Trends = t
			mu.Unlock()
		},
		"anomalies": func(context.Context) {
			a := o.Anomalies(records)
			mu.Lock()
			in.Anomalies = a
			mu.Unlock()
		},
		"predictions": func(ctx context.Context) {
			p := o.Predictions(ctx, records)
			mu.Lock()
			in.Predictions = p
			mu.Unlock()
		},
		"optimization": func(ctx context.Context) {
			opt := o.OptimizationSuggestions(ctx, records)
			mu.Lock()
			in.Optimization = opt
			mu.Unlock()
		},
		"goals": func(ctx context.Context) {
			g := o.Goals(ctx, records)
			mu.Lock()
			in.Goals = g
			mu.Unlock()
		},
		"advanced_insights": func(ctx context.Context) {
			a := o.AdvancedInsights(ctx, records)
			mu.Lock()
			in.AdvancedInsights = a
			mu.Unlock()
		},
	})

	return d
}

// gather runs every task in its own goroutine and waits for all of them.
// A panicking task is logged and otherwise ignored.
func (o *Orchestrator) gather(ctx context.Context, tasks map[string]func(context.Context)) {
	var wg sync.WaitGroup
	for name, task := range tasks {
		wg.Add(1)
		go func(name string, task func(context.Context)) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					o.log.Errorw("insight task panicked", "task", name, "panic", fmt.Sprint(r))
				}
			}()
			task(ctx)
		}(name, task)
	}
	wg.Wait()
}
