package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"divvy/internal/config"
	"divvy/internal/database"
	"divvy/internal/handlers"
	"divvy/internal/logger"
	"divvy/internal/middleware"
	"divvy/internal/services"
	"divvy/internal/validator"
)

// @title           Divvy API
// @version         1.0
// @description     Divvy is a zero-based budgeting application that splits every paycheck across prioritized budget items and tracks spending per pay period.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Register custom binding validators (cadence, calc_type, item_category)
	validator.Register()

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	incomeSourceService := services.NewIncomeSourceService(db)
	budgetItemService := services.NewBudgetItemService(db)
	payPeriodService := services.NewPayPeriodService(db)
	expenseService := services.NewExpenseService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	incomeSourceHandler := handlers.NewIncomeSourceHandler(incomeSourceService, auditService)
	budgetItemHandler := handlers.NewBudgetItemHandler(budgetItemService, auditService)
	payPeriodHandler := handlers.NewPayPeriodHandler(payPeriodService, auditService)
	expenseHandler := handlers.NewExpenseHandler(expenseService, auditService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Income source routes
	incomeSources := protected.Group("/income-sources")
	incomeSources.POST("", incomeSourceHandler.CreateIncomeSource)
	incomeSources.GET("", incomeSourceHandler.GetIncomeSources)
	incomeSources.GET("/:id", incomeSourceHandler.GetIncomeSource)
	incomeSources.PUT("/:id", incomeSourceHandler.UpdateIncomeSource)
	incomeSources.DELETE("/:id", incomeSourceHandler.DeactivateIncomeSource)

	// Budget item routes
	budgetItems := protected.Group("/budget-items")
	budgetItems.POST("", budgetItemHandler.CreateBudgetItem)
	budgetItems.GET("", budgetItemHandler.GetBudgetItems)
	budgetItems.GET("/:id", budgetItemHandler.GetBudgetItem)
	budgetItems.PUT("/:id", budgetItemHandler.UpdateBudgetItem)
	budgetItems.DELETE("/:id", budgetItemHandler.DeleteBudgetItem)

	// Pay period routes
	payPeriods := protected.Group("/pay-periods")
	payPeriods.POST("/generate", payPeriodHandler.GeneratePayPeriods)
	payPeriods.GET("", payPeriodHandler.GetPayPeriods)
	payPeriods.GET("/:id", payPeriodHandler.GetPayPeriod)

	// Expense routes
	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("", expenseHandler.GetExpenses)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	// Allocation routes
	allocations := protected.Group("/allocations")
	allocations.PATCH("/:id/actual", expenseHandler.UpdateAllocationActual)

	log.Infof("Starting Divvy backend server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
