package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"spendlens/internal/ai"
	"spendlens/internal/insights"
	"spendlens/internal/models"
	"spendlens/internal/services"
)

func setupInsightRouter(handler *InsightHandler) *gin.Engine {
	r := gin.New()
	grp := r.Group("/expenses/ai", injectUserID(testUserID))
	grp.GET("/suggestions", handler.Suggestions)
	grp.GET("/trends", handler.Trends)
	grp.GET("/insights", handler.Insights)
	grp.POST("/query", handler.Query)
	grp.GET("/predictions", handler.Predictions)
	grp.GET("/anomalies", handler.Anomalies)
	grp.GET("/optimization", handler.Optimization)
	grp.GET("/goals", handler.Goals)
	grp.GET("/benchmark", handler.Benchmark)
	grp.POST("/receipt", handler.Receipt)
	grp.GET("/dashboard", handler.Dashboard)
	return r
}

func newOrchestrator(gen ai.TextGenerator) *insights.Orchestrator {
	return insights.NewOrchestrator(insights.Config{Generator: gen, Timeout: time.Second}, nil)
}

// twoMonths returns storage-ordered (newest first) expenses across Feb and Jan.
func twoMonths() []models.Expense {
	mk := func(id, amount string, cat models.Category, d time.Time) models.Expense {
		return models.Expense{
			Base:        models.Base{ID: id},
			UserID:      testUserID,
			Amount:      decimal.RequireFromString(amount),
			Description: "expense " + id,
			Category:    cat,
			Date:        d,
		}
	}
	return []models.Expense{
		mk("e4", "150", models.CategoryFoodDining, time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)),
		mk("e3", "50", models.CategoryTransport, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)),
		mk("e2", "60", models.CategoryFoodDining, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)),
		mk("e1", "40", models.CategoryBills, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)),
	}
}

func listing(expenses []models.Expense) *mockExpenseService {
	return &mockExpenseService{
		listAllFn: func(userID string) ([]models.Expense, error) {
			if userID != testUserID {
				return nil, errors.New("wrong user")
			}
			return expenses, nil
		},
	}
}

func TestInsightHandler_WithoutProvider(t *testing.T) {
	r := setupInsightRouter(NewInsightHandler(listing(twoMonths()), &mockAuditService{}, newOrchestrator(nil)))

	t.Run("trends", func(t *testing.T) {
		rec := doRequest(r, "GET", "/expenses/ai/trends", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		trends := parseJSON(t, rec)["trends"].(map[string]interface{})
		if trends["trend"] != "increasing" {
			t.Errorf("expected increasing trend, got %v", trends["trend"])
		}
	})

	t.Run("provider-only sections are null", func(t *testing.T) {
		for path, key := range map[string]string{
			"/expenses/ai/predictions": "predictions",
			"/expenses/ai/goals":       "goals",
			"/expenses/ai/benchmark":   "comparison",
		} {
			rec := doRequest(r, "GET", path, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("%s: expected 200, got %d", path, rec.Code)
			}
			body := parseJSON(t, rec)
			if v, ok := body[key]; !ok || v != nil {
				t.Errorf("%s: expected %s null, got %v", path, key, v)
			}
		}
	})

	t.Run("optimization default", func(t *testing.T) {
		rec := doRequest(r, "GET", "/expenses/ai/optimization", "")
		body := parseJSON(t, rec)
		if body["source"] != insights.SourceFallback {
			t.Errorf("expected fallback source, got %v", body["source"])
		}
	})

	t.Run("query answered by rules", func(t *testing.T) {
		rec := doRequest(r, "POST", "/expenses/ai/query", `{"query":"What is my total spend?"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := parseJSON(t, rec)
		if body["source"] != insights.SourceFallback {
			t.Errorf("expected fallback source, got %v", body["source"])
		}
		if !strings.Contains(body["answer"].(string), "300.00") {
			t.Errorf("expected total in answer, got %v", body["answer"])
		}
	})

	t.Run("blank query is rejected", func(t *testing.T) {
		rec := doRequest(r, "POST", "/expenses/ai/query", `{"query":"   "}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "QUERY_REQUIRED")
	})

	t.Run("invalid benchmark is rejected", func(t *testing.T) {
		rec := doRequest(r, "GET", "/expenses/ai/benchmark?benchmark=Not%20Valid", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("dashboard", func(t *testing.T) {
		rec := doRequest(r, "GET", "/expenses/ai/dashboard", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		summary := parseJSON(t, rec)["summary"].(map[string]interface{})
		if summary["total_expenses"].(float64) != 4 {
			t.Errorf("expected 4 expenses, got %v", summary["total_expenses"])
		}
		dr := summary["date_range"].(map[string]interface{})
		if !strings.HasPrefix(dr["first"].(string), "2024-01-05") || !strings.HasPrefix(dr["last"].(string), "2024-02-20") {
			t.Errorf("unexpected date range %v", dr)
		}
	})

	t.Run("insights report", func(t *testing.T) {
		rec := doRequest(r, "GET", "/expenses/ai/insights", "")
		body := parseJSON(t, rec)
		if len(body["top_categories"].([]interface{})) != 3 {
			t.Errorf("expected 3 categories, got %v", body["top_categories"])
		}
		if len(body["recent_expenses"].([]interface{})) != 4 {
			t.Errorf("expected 4 recent expenses, got %v", body["recent_expenses"])
		}
	})

	t.Run("anomalies and suggestions are lists", func(t *testing.T) {
		for path, key := range map[string]string{
			"/expenses/ai/anomalies":   "anomalies",
			"/expenses/ai/suggestions": "suggestions",
		} {
			rec := doRequest(r, "GET", path, "")
			if _, ok := parseJSON(t, rec)[key].([]interface{}); !ok {
				t.Errorf("%s: expected %s array, got %s", path, key, rec.Body.String())
			}
		}
	})
}

func TestInsightHandler_Receipt(t *testing.T) {
	t.Run("creates an expense from the analysis", func(t *testing.T) {
		gen := ai.TextGeneratorFunc(func(context.Context, string) (string, error) {
			return "```json\n" + `{"amount":"23.40","merchant":"Trader Joe's","items":["bread","milk"],"category":"Food & Dining","date":"2024-04-02","confidence":"high"}` + "\n```", nil
		})
		var got []services.ExpenseInput
		expSvc := &mockExpenseService{
			importExpensesFn: func(_ string, rows []services.ExpenseInput) ([]models.Expense, error) {
				got = rows
				return []models.Expense{{Base: models.Base{ID: "r1"}, Amount: *rows[0].Amount}}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupInsightRouter(NewInsightHandler(expSvc, audit, newOrchestrator(gen)))

		rec := doRequest(r, "POST", "/expenses/ai/receipt", `{"receipt_text":"TRADER JOES\nBREAD 3.40\nMILK 20.00\nTOTAL 23.40"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if len(got) != 1 {
			t.Fatalf("expected one expense created, got %d", len(got))
		}
		in := got[0]
		if in.Amount.StringFixed(2) != "23.40" || in.Description != "bread, milk" || in.Category != "Food & Dining" {
			t.Errorf("unexpected expense input %+v", in)
		}
		if in.Merchant == nil || *in.Merchant != "Trader Joe's" {
			t.Errorf("expected merchant, got %v", in.Merchant)
		}
		if in.Date == nil || in.Date.Month() != time.April {
			t.Errorf("expected April date, got %v", in.Date)
		}
		body := parseJSON(t, rec)
		if body["created_expense"] == nil {
			t.Error("expected created_expense in response")
		}
		if a := audit.actions(); len(a) != 1 || a[0] != services.AuditActionCreate {
			t.Errorf("expected CREATE audit, got %v", a)
		}
	})

	t.Run("unreadable receipt creates nothing", func(t *testing.T) {
		gen := ai.TextGeneratorFunc(func(context.Context, string) (string, error) {
			return "sorry, I cannot read that", nil
		})
		expSvc := &mockExpenseService{
			importExpensesFn: func(string, []services.ExpenseInput) ([]models.Expense, error) {
				t.Fatal("no expense should be created")
				return nil, nil
			},
		}
		r := setupInsightRouter(NewInsightHandler(expSvc, &mockAuditService{}, newOrchestrator(gen)))

		rec := doRequest(r, "POST", "/expenses/ai/receipt", `{"receipt_text":"smudged"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := parseJSON(t, rec)
		if body["analysis"] != nil {
			t.Errorf("expected null analysis, got %v", body["analysis"])
		}
		if !strings.Contains(body["message"].(string), "Could not analyze receipt") {
			t.Errorf("unexpected message %v", body["message"])
		}
	})

	t.Run("blank text is rejected", func(t *testing.T) {
		r := setupInsightRouter(NewInsightHandler(&mockExpenseService{}, &mockAuditService{}, newOrchestrator(nil)))

		rec := doRequest(r, "POST", "/expenses/ai/receipt", `{"receipt_text":""}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "RECEIPT_TEXT_REQUIRED")
	})
}

func TestInsightHandler_StorageError(t *testing.T) {
	expSvc := &mockExpenseService{
		listAllFn: func(string) ([]models.Expense, error) { return nil, errors.New("db down") },
	}
	r := setupInsightRouter(NewInsightHandler(expSvc, &mockAuditService{}, newOrchestrator(nil)))

	rec := doRequest(r, "GET", "/expenses/ai/dashboard", "")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	assertErrorCode(t, parseJSON(t, rec), "INTERNAL_ERROR")
}
