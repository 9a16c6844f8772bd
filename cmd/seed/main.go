package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"receipt-vault/internal/repository"
	"receipt-vault/internal/service"
	"receipt-vault/internal/storage"
	"receipt-vault/pkg/config"
	"receipt-vault/pkg/logger"
	"receipt-vault/pkg/postgres"

	"go.uber.org/zap"
)

// fixture is one sample receipt: a fake image file plus its text, so
// ingestion runs the extraction pipeline without OCR.
type fixture struct {
	fileName string
	text     string
}

var fixtures = []fixture{
	{
		fileName: "whole-foods.jpg",
		text:     "Whole Foods Market\n2026-01-14\nBananas 1.99\nOat Milk 4.49\nTotal: $6.48\nThank you for shopping",
	},
	{
		fileName: "golden-wok.jpg",
		text:     "Golden Wok Restaurant\n01/22/2026\nFried Rice $12.50\nDumplings $8.00\nTotal: $20.50",
	},
	{
		fileName: "metro-transit.jpg",
		text:     "Metro Transit\n2026-02-03\nMonthly bus pass\nTotal: $98.00",
	},
	{
		fileName: "city-pharmacy.jpg",
		text:     "City Pharmacy\n2026-02-11\nVitamin D 14.99\nTotal: $14.99",
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	repo := repository.NewReceiptRepository(db, appLogger)
	if err := repo.Init(ctx); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	store, err := storage.NewLocalStorage(cfg.Storage.Root)
	if err != nil {
		appLogger.Fatal("Failed to initialize image storage", zap.Error(err))
	}

	ocrService := service.NewOCRService(&cfg.OCR, nil, appLogger)
	extractService := service.NewExtractService(appLogger)
	receiptService := service.NewReceiptService(repo, store, extractService, ocrService, &cfg.Storage, appLogger)

	appLogger.Info("Starting database seeding...")

	seedDir := filepath.Join(cfg.Storage.Root, "seed")
	if err := os.MkdirAll(seedDir, 0o755); err != nil {
		appLogger.Fatal("Failed to create seed directory", zap.Error(err))
	}

	for _, f := range fixtures {
		imagePath := filepath.Join(seedDir, f.fileName)
		if err := os.WriteFile(imagePath, []byte(f.text), 0o644); err != nil {
			appLogger.Fatal("Failed to write seed image", zap.String("file", f.fileName), zap.Error(err))
		}

		text := f.text
		res, err := receiptService.Ingest(ctx, service.IngestInput{
			ImagePath: imagePath,
			Text:      &text,
		})
		if err != nil {
			appLogger.Fatal("Failed to ingest seed receipt", zap.String("file", f.fileName), zap.Error(err))
		}
		if res.Duplicate {
			appLogger.Info("Seed receipt already present", zap.Int64("id", res.ReceiptID))
			continue
		}
		vendor, total := "", 0.0
		if res.Vendor != nil {
			vendor = *res.Vendor
		}
		if res.Total != nil {
			total = *res.Total
		}
		appLogger.Info("Seeded receipt",
			zap.Int64("id", res.ReceiptID),
			zap.String("vendor", vendor),
			zap.Float64("total", total))
	}

	appLogger.Info("Database seeding completed successfully!")
}
