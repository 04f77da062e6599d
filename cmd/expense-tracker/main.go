package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"expense-tracker/internal/api"
	"expense-tracker/internal/api/handlers"
	"expense-tracker/internal/repository"
	"expense-tracker/internal/service"
	"expense-tracker/pkg/auth"
	"expense-tracker/pkg/config"
	"expense-tracker/pkg/logger"
	"expense-tracker/pkg/metrics"
	"expense-tracker/pkg/postgres"
	"expense-tracker/pkg/tesseract"

	"go.uber.org/zap"
)

// @title Expense Tracker API
// @version 1.0
// @description Personal expense tracking with receipt extraction
// @BasePath /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting expense tracker service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewDB(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db, appLogger); err != nil {
		appLogger.Fatal("Failed to apply migrations", zap.Error(err))
	}

	// Initialize repositories
	expenseRepo := repository.NewExpenseRepository(db, logger.Named("repository"))

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration)
	ocrMetrics := metrics.NewOCRMetrics()

	// Initialize services
	ocrLogger := logger.Named("ocr")
	ocrService := service.NewOCRService(
		tesseract.NewRecognizer(cfg.OCR.Language, ocrLogger),
		service.NewImagePreprocessor(cfg.OCR.MinWidth, ocrLogger),
		service.OCRServiceConfig{
			AttemptTimeout: cfg.OCR.AttemptTimeout,
			TempDir:        cfg.OCR.TempDir,
		},
		ocrMetrics,
		ocrLogger,
	)
	receiptService := service.NewReceiptService(ocrService, expenseRepo, service.ReceiptServiceConfig{
		MaxUploadBytes: cfg.Upload.MaxBytes,
		MinTextLength:  cfg.OCR.MinTextLength,
	}, ocrMetrics, logger.Named("receipt"))
	expenseService := service.NewExpenseService(expenseRepo, logger.Named("expense"))

	// Initialize handlers
	receiptHandler := handlers.NewReceiptHandler(receiptService, cfg.Upload.Dir, appLogger)
	expenseHandler := handlers.NewExpenseHandler(expenseService, appLogger)

	// Setup router
	app := api.SetupRouter(api.RouterDeps{
		ReceiptHandler: receiptHandler,
		ExpenseHandler: expenseHandler,
		JWTManager:     jwtManager,
		DB:             db,
		Metrics:        ocrMetrics,
		Server:         cfg.Server,
		MaxUploadBytes: cfg.Upload.MaxBytes,
	}, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
