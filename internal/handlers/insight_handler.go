package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "spendlens/internal/errors"
	"spendlens/internal/insights"
	"spendlens/internal/models"
	"spendlens/internal/services"
)

// InsightHandler serves the analytics and AI-assisted endpoints. Every
// endpoint answers even when no AI provider is configured.
type InsightHandler struct {
	expenseService services.ExpenseServicer
	auditService   services.AuditServicer
	orchestrator   *insights.Orchestrator
}

// NewInsightHandler creates a new InsightHandler.
func NewInsightHandler(expenseService services.ExpenseServicer, auditService services.AuditServicer, orchestrator *insights.Orchestrator) *InsightHandler {
	return &InsightHandler{expenseService: expenseService, auditService: auditService, orchestrator: orchestrator}
}

// QueryRequest is a natural-language question about the user's spending.
type QueryRequest struct {
	Query string `json:"query" binding:"max=1000"`
}

// ReceiptRequest carries OCR or pasted receipt text.
type ReceiptRequest struct {
	ReceiptText string `json:"receipt_text" binding:"max=10000"`
}

// BenchmarkQuery selects the reference population.
type BenchmarkQuery struct {
	Benchmark string `form:"benchmark" binding:"omitempty,benchmark"`
}

// ReceiptResponse is the analysis and, when it succeeded, the saved expense.
type ReceiptResponse struct {
	Analysis       *insights.ReceiptAnalysis `json:"analysis"`
	CreatedExpense *models.Expense           `json:"created_expense,omitempty"`
	Message        string                    `json:"message"`
}

// records loads the user's expenses as aggregation records, newest first.
func (h *InsightHandler) records(c *gin.Context) ([]insights.Record, bool) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return nil, false
	}
	expenses, err := h.expenseService.ListAll(userID)
	if err != nil {
		respondWithError(c, err)
		return nil, false
	}
	return insights.FromExpenses(expenses), true
}

// Suggestions returns rule-based spending suggestions
// @Summary     Smart suggestions
// @Tags        insights
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]insights.Suggestion
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /expenses/ai/suggestions [get]
func (h *InsightHandler) Suggestions(c *gin.Context) {
	records, ok := h.records(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": insights.SmartSuggestions(records)})
}

// Trends compares the two most recent months
// @Summary     Monthly trend
// @Description Null when there is less than two months of data
// @Tags        insights
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]insights.TrendResult
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /expenses/ai/trends [get]
func (h *InsightHandler) Trends(c *gin.Context) {
	records, ok := h.records(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"trends": insights.MonthlyTrend(records)})
}

// Insights returns the combined overview report
// @Summary     Insights report
// @Tags        insights
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} insights.Report
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /expenses/ai/insights [get]
func (h *InsightHandler) Insights(c *gin.Context) {
	records, ok := h.records(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.orchestrator.Report(c.Request.Context(), records))
}

// Query answers a natural-language question
// @Summary     Ask about your spending
// @Tags        insights
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body QueryRequest true "Question"
// @Success     200 {object} insights.QueryAnswer
// @Failure     400 {object} ErrorResponse "Query is required"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /expenses/ai/query [post]
func (h *InsightHandler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		respondWithError(c, apperrors.ErrQueryRequired)
		return
	}

	records, ok := h.records(c)
	if !ok {
		return
	}

	answer, err := h.orchestrator.NaturalLanguageQuery(c.Request.Context(), req.Query, records)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

// Predictions forecasts next month's spending
// @Summary     Spending predictions
// @Description Null when no AI provider answered
// @Tags        insights
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]insights.Predictions
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /expenses/ai/predictions [get]
func (h *InsightHandler) Predictions(c *gin.Context) {
	records, ok := h.records(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"predictions": h.orchestrator.Predictions(c.Request.Context(), records)})
}

// Anomalies flags unusual expenses
// @Summary     Anomaly detection
// @Tags        insights
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]insights.Anomaly
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /expenses/ai/anomalies [get]
func (h *InsightHandler) Anomalies(c *gin.Context) {
	records, ok := h.records(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"anomalies": h.orchestrator.Anomalies(records)})
}

// Optimization suggests where to save
// @Summary     Optimization suggestions
// @Tags        insights
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} insights.Optimization
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /expenses/ai/optimization [get]
func (h *InsightHandler) Optimization(c *gin.Context) {
	records, ok := h.records(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.orchestrator.OptimizationSuggestions(c.Request.Context(), records))
}

// Goals proposes budget goals
// @Summary     Budget goals
// @Description Null when no AI provider answered
// @Tags        insights
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]insights.Goals
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /expenses/ai/goals [get]
func (h *InsightHandler) Goals(c *gin.Context) {
	records, ok := h.records(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"goals": h.orchestrator.Goals(c.Request.Context(), records)})
}

// Benchmark compares spending with a reference population
// @Summary     Benchmark comparison
// @Description Null when no AI provider answered
// @Tags        insights
// @Produce     json
// @Security    BearerAuth
// @Param       benchmark query string false "Benchmark identifier (default national_average)"
// @Success     200 {object} map[string]insights.Benchmark
// @Failure     400 {object} ErrorResponse "Invalid benchmark"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /expenses/ai/benchmark [get]
func (h *InsightHandler) Benchmark(c *gin.Context) {
	var q BenchmarkQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	records, ok := h.records(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"comparison": h.orchestrator.BenchmarkComparison(c.Request.Context(), records, q.Benchmark)})
}

// Receipt reads a receipt and saves it as an expense
// @Summary     Analyze receipt
// @Description Extracts amount, merchant, items and category; on success an expense is created
// @Tags        insights
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ReceiptRequest true "Receipt text"
// @Success     200 {object} ReceiptResponse
// @Failure     400 {object} ErrorResponse "Receipt text is required"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/ai/receipt [post]
func (h *InsightHandler) Receipt(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	analysis, err := h.orchestrator.ReceiptAnalysis(c.Request.Context(), req.ReceiptText)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if analysis == nil {
		c.JSON(http.StatusOK, ReceiptResponse{
			Message: "Could not analyze receipt. Please try again or add expense manually.",
		})
		return
	}

	amount := analysis.AmountValue()
	in := services.ExpenseInput{
		Amount:      &amount,
		Description: analysis.Description(),
		Category:    analysis.Category,
	}
	if t, err := parseFlexibleTime(strings.TrimSpace(analysis.Date)); err == nil {
		in.Date = &t
	}
	if m := strings.TrimSpace(analysis.Merchant); m != "" {
		in.Merchant = &m
	}

	created, err := h.expenseService.ImportExpenses(userID, []services.ExpenseInput{in})
	if err != nil {
		respondWithError(c, err)
		return
	}
	expense := created[0]

	h.auditService.Log(userID, services.AuditActionCreate, services.AuditResourceExpense, expense.ID, c.ClientIP(),
		map[string]interface{}{"source": "receipt", "amount": expense.Amount.String()})

	c.JSON(http.StatusOK, ReceiptResponse{
		Analysis:       analysis,
		CreatedExpense: &expense,
		Message:        "Receipt analyzed and expense created successfully",
	})
}

// Dashboard returns the summary and every insight section in one payload
// @Summary     Insights dashboard
// @Tags        insights
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} insights.Dashboard
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /expenses/ai/dashboard [get]
func (h *InsightHandler) Dashboard(c *gin.Context) {
	records, ok := h.records(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.orchestrator.Dashboard(c.Request.Context(), records))
}
