// Package server assembles the HTTP router from services and handlers.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"spendlens/internal/categorize"
	_ "spendlens/internal/docs" // swagger spec
	"spendlens/internal/handlers"
	"spendlens/internal/insights"
	"spendlens/internal/middleware"
	"spendlens/internal/services"
)

// Options carries the dependencies the router wires into handlers.
type Options struct {
	DB            *gorm.DB
	Categorizer   services.ExpenseCategorizer
	Extractor     *categorize.Extractor
	Orchestrator  *insights.Orchestrator
	AllowedOrigin string
	// RequestLogging adds the per-request log line; tests usually leave it off.
	RequestLogging bool
}

// NewRouter builds the gin engine with every route mounted under /api/v1.
func NewRouter(opts Options) *gin.Engine {
	orchestrator := opts.Orchestrator
	if orchestrator == nil {
		orchestrator = insights.NewOrchestrator(insights.Config{}, nil)
	}

	// Services
	userService := services.NewUserService(opts.DB)
	expenseService := services.NewExpenseService(opts.DB, opts.Categorizer, opts.Extractor)
	auditService := services.NewAuditService(opts.DB)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	expenseHandler := handlers.NewExpenseHandler(expenseService, auditService)
	insightHandler := handlers.NewInsightHandler(expenseService, auditService, orchestrator)

	router := gin.New()
	router.Use(gin.Recovery())
	if opts.RequestLogging {
		router.Use(middleware.RequestLogging())
	}
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(opts.AllowedOrigin))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "ai_available": orchestrator.Available()})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	expenses := protected.Group("/expenses")
	expenses.GET("", expenseHandler.ListExpenses)
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("/summary", expenseHandler.GetSummary)
	expenses.GET("/export/csv", expenseHandler.ExportCSV)
	expenses.GET("/export/json", expenseHandler.ExportJSON)
	expenses.POST("/import/csv", expenseHandler.ImportCSV)
	expenses.GET("/:id", expenseHandler.GetExpense)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	aiRoutes := expenses.Group("/ai")
	aiRoutes.GET("/suggestions", insightHandler.Suggestions)
	aiRoutes.GET("/trends", insightHandler.Trends)
	aiRoutes.GET("/insights", insightHandler.Insights)
	aiRoutes.POST("/query", insightHandler.Query)
	aiRoutes.GET("/predictions", insightHandler.Predictions)
	aiRoutes.GET("/anomalies", insightHandler.Anomalies)
	aiRoutes.GET("/optimization", insightHandler.Optimization)
	aiRoutes.GET("/goals", insightHandler.Goals)
	aiRoutes.GET("/benchmark", insightHandler.Benchmark)
	aiRoutes.POST("/receipt", insightHandler.Receipt)
	aiRoutes.GET("/dashboard", insightHandler.Dashboard)

	return router
}
