package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"receipt-vault/internal/api"
	"receipt-vault/internal/api/handlers"
	"receipt-vault/internal/repository"
	"receipt-vault/internal/service"
	"receipt-vault/internal/storage"
	"receipt-vault/pkg/auth"
	"receipt-vault/pkg/config"
	"receipt-vault/pkg/logger"
	"receipt-vault/pkg/postgres"

	"go.uber.org/zap"
)

// @title Receipt Vault API
// @version 1.0
// @description Receipt ingestion, deduplication and spending summaries
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@receipt-vault.local

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
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
	appLogger.Info("Starting Receipt Vault service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories and schema
	receiptRepo := repository.NewReceiptRepository(db, appLogger)
	if err := receiptRepo.Init(ctx); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	// Initialize image store
	store, err := storage.NewLocalStorage(cfg.Storage.Root)
	if err != nil {
		appLogger.Fatal("Failed to initialize image storage", zap.Error(err))
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.Auth.SecretKey, cfg.Auth.APIKey, cfg.Auth.Expiration)

	// Initialize services
	var extractor service.TextExtractor
	if cfg.OCR.Provider == "gigachat" {
		llmService, err := service.NewLLMService(&cfg.GigaChat, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize LLM service", zap.Error(err))
		}
		defer llmService.Close()
		extractor = llmService
	}

	ocrService := service.NewOCRService(&cfg.OCR, extractor, appLogger)
	extractService := service.NewExtractService(appLogger)
	receiptService := service.NewReceiptService(receiptRepo, store, extractService, ocrService, &cfg.Storage, appLogger)
	queryService := service.NewQueryService(receiptService, appLogger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(jwtManager, appLogger)
	receiptHandler := handlers.NewReceiptHandler(receiptService, queryService, appLogger)

	// Setup router
	app := api.SetupRouter(authHandler, receiptHandler, jwtManager, appLogger)

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
