package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"receipt-vault/internal/models"
	"receipt-vault/internal/repository"
	"receipt-vault/internal/storage"
	"receipt-vault/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var monthRe = regexp.MustCompile(`^20\d{2}-\d{2}$`)
var bareMonthRe = regexp.MustCompile(`^\d{1,2}$`)

// IngestInput carries one ingestion request. Explicit fields always win
// over extracted ones.
type IngestInput struct {
	ImagePath string
	Text      *string
	Vendor    *string
	Date      *string
	Total     *float64
	Currency  *string
	Category  *string
	ItemsJSON *string
}

// IngestResult reports the outcome of one ingestion attempt. Duplicate
// means the content hash was already stored; ReceiptID then refers to the
// existing record.
type IngestResult struct {
	Duplicate bool              `json:"duplicate"`
	ReceiptID int64             `json:"receipt_id"`
	Vendor    *string           `json:"vendor"`
	Date      *string           `json:"date"`
	Total     *float64          `json:"total"`
	Currency  *string           `json:"currency"`
	Category  string            `json:"category"`
	ImagePath string            `json:"image"`
	OCR       string            `json:"ocr"`
	Items     []models.LineItem `json:"items"`
}

// UpdateInput is a partial field set for a receipt update; nil fields are
// left untouched. Each field is validated independently.
type UpdateInput struct {
	Vendor    *string
	Date      *string
	Total     *float64
	Currency  *string
	Category  *string
	Text      *string
	ItemsJSON *string
}

// SummaryResult is the monthly aggregation over stored receipts.
type SummaryResult struct {
	Month      string               `json:"month"`
	ByCategory []models.CategorySum `json:"by_category"`
	ByVendor   []models.VendorSum   `json:"by_vendor"`
}

// ReceiptService orchestrates ingestion and fronts the record store.
type ReceiptService struct {
	repo    *repository.ReceiptRepository
	store   storage.Storage
	extract *ExtractService
	ocr     *OCRService
	cfg     *config.StorageConfig
	logger  *zap.Logger
}

func NewReceiptService(
	repo *repository.ReceiptRepository,
	store storage.Storage,
	extract *ExtractService,
	ocr *OCRService,
	cfg *config.StorageConfig,
	logger *zap.Logger,
) *ReceiptService {
	return &ReceiptService{
		repo:    repo,
		store:   store,
		extract: extract,
		ocr:     ocr,
		cfg:     cfg,
		logger:  logger,
	}
}

// Ingest runs the full pipeline for one image: path safety, dedup copy,
// best-effort OCR, extraction of fields the caller did not supply,
// validation, and an idempotent insert.
func (s *ReceiptService) Ingest(ctx context.Context, in IngestInput) (*IngestResult, error) {
	imagePath, err := s.validateImagePath(in.ImagePath)
	if err != nil {
		return nil, err
	}

	relImage, digest, err := s.store.SaveDedup(imagePath)
	if err != nil {
		return nil, fmt.Errorf("storing image: %w", err)
	}

	var ocrText *string
	ocrEngine := ""
	ocrSource := "none"
	if in.Text != nil && strings.TrimSpace(*in.Text) != "" {
		t := sanitizeUTF8(strings.TrimSpace(*in.Text))
		ocrText = &t
		ocrSource = "provided"
	} else {
		if text, engine := s.ocr.ExtractText(ctx, imagePath); text != "" {
			t := sanitizeUTF8(text)
			ocrText = &t
			ocrEngine = engine
			ocrSource = engine
		}
	}

	textForParse := ""
	if ocrText != nil {
		textForParse = *ocrText
	}

	vendor := in.Vendor
	if vendor == nil {
		vendor = s.extract.Vendor(textForParse)
	}

	receiptDate := in.Date
	if receiptDate == nil {
		receiptDate = s.extract.Date(textForParse)
	} else if _, err := time.Parse("2006-01-02", *receiptDate); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalid)
	}

	total := in.Total
	var currency *string
	if total == nil {
		total, currency = s.extract.TotalAndCurrency(textForParse)
	}
	if total != nil && (*total < 0 || *total > models.MaxTotal) {
		return nil, fmt.Errorf("%w: total out of range [0, %d]", ErrInvalid, models.MaxTotal)
	}
	if in.Currency != nil {
		up := strings.ToUpper(*in.Currency)
		currency = &up
	}

	category := string(s.extract.Category(vendor, textForParse))
	if in.Category != nil && *in.Category != "" {
		category = *in.Category
	}

	var items []models.LineItem
	if in.ItemsJSON != nil {
		// Explicit items override; invalid JSON degrades to no items.
		if err := json.Unmarshal([]byte(*in.ItemsJSON), &items); err != nil {
			items = nil
		}
	} else if textForParse != "" {
		items = s.extract.Items(textForParse)
	}
	if items == nil {
		items = []models.LineItem{}
	}

	var enginePtr *string
	if ocrEngine != "" {
		enginePtr = &ocrEngine
	}

	rec := &models.Receipt{
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
		Vendor:      vendor,
		ReceiptDate: receiptDate,
		Currency:    currency,
		Total:       total,
		Category:    category,
		ImagePath:   relImage,
		ImageSHA256: digest,
		OCRText:     ocrText,
		Items:       items,
		Meta: models.Meta{
			OCREngine:    enginePtr,
			OCRAvailable: ocrText != nil,
			SourceImage:  imagePath,
		},
	}

	id, duplicate, err := s.repo.InsertIfNew(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("inserting receipt: %w", err)
	}

	if duplicate {
		s.logger.Info("Duplicate receipt content", zap.Int64("receipt_id", id), zap.String("sha256", digest))
	} else {
		s.logger.Info("Receipt ingested",
			zap.Int64("receipt_id", id),
			zap.String("category", category),
			zap.String("ocr", ocrSource),
		)
	}

	return &IngestResult{
		Duplicate: duplicate,
		ReceiptID: id,
		Vendor:    vendor,
		Date:      receiptDate,
		Total:     total,
		Currency:  currency,
		Category:  category,
		ImagePath: relImage,
		OCR:       ocrSource,
		Items:     items,
	}, nil
}

// IngestUpload spools an uploaded file next to the store and runs Ingest
// on it. Used by the HTTP adapter.
func (s *ReceiptService) IngestUpload(ctx context.Context, file io.Reader, fileName string, in IngestInput) (*IngestResult, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	tmpDir := filepath.Join(s.cfg.Root, "incoming")
	if err := os.MkdirAll(tmpDir, 0755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	tmpPath := filepath.Join(tmpDir, uuid.NewString()+ext)
	dst, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("creating upload file: %w", err)
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("saving upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		return nil, fmt.Errorf("saving upload: %w", err)
	}
	defer os.Remove(tmpPath)

	in.ImagePath = tmpPath
	return s.Ingest(ctx, in)
}

// validateImagePath enforces the path-safety invariants before any
// filesystem read: no traversal and no escapes outside the permitted roots.
func (s *ReceiptService) validateImagePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: image path required", ErrInvalid)
	}
	if strings.Contains(path, "..") {
		return "", fmt.Errorf("%w: invalid image path (path traversal)", ErrInvalid)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: invalid image path", ErrInvalid)
	}

	if !s.underAllowedRoot(abs) {
		return "", fmt.Errorf("%w: image must be under %s", ErrInvalid, s.cfg.AllowedRoot)
	}

	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("%w: image not found: %s", ErrInvalid, abs)
	}
	return abs, nil
}

func (s *ReceiptService) underAllowedRoot(abs string) bool {
	roots := []string{s.cfg.AllowedRoot}
	if storageAbs, err := filepath.Abs(s.cfg.Root); err == nil {
		// Uploads are spooled inside the storage root.
		roots = append(roots, storageAbs)
	}
	for _, root := range roots {
		if root == "" {
			continue
		}
		if rel, err := filepath.Rel(root, abs); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Get returns the receipt or ErrNotFound.
func (s *ReceiptService) Get(ctx context.Context, id int64) (*models.Receipt, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting receipt: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return rec, nil
}

// Search runs a substring search across vendor, category, OCR text and
// serialized items.
func (s *ReceiptService) Search(ctx context.Context, q, item string, limit int) ([]*models.Receipt, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.Search(ctx, strings.TrimSpace(q), strings.TrimSpace(item), limit)
}

// List returns receipts filtered by month and/or category. A bare month
// number is interpreted within the current year.
func (s *ReceiptService) List(ctx context.Context, month, category string, limit int) ([]*models.Receipt, error) {
	if limit <= 0 {
		limit = 20
	}
	if month != "" {
		normalized, err := normalizeMonth(month)
		if err != nil {
			return nil, err
		}
		month = normalized
	}
	return s.repo.List(ctx, month, category, limit)
}

// Summary aggregates one month by category and by vendor. An empty month
// defaults to the current one.
func (s *ReceiptService) Summary(ctx context.Context, month string, vendorLimit int) (*SummaryResult, error) {
	if month == "" {
		month = time.Now().Format("2006-01")
	}
	if !monthRe.MatchString(month) {
		return nil, fmt.Errorf("%w: month must be YYYY-MM", ErrInvalid)
	}
	if vendorLimit <= 0 {
		vendorLimit = 10
	}

	byCategory, err := s.repo.SummaryByCategory(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("summarizing by category: %w", err)
	}
	byVendor, err := s.repo.SummaryByVendor(ctx, month, vendorLimit)
	if err != nil {
		return nil, fmt.Errorf("summarizing by vendor: %w", err)
	}

	return &SummaryResult{
		Month:      month,
		ByCategory: byCategory,
		ByVendor:   byVendor,
	}, nil
}

// Update applies a partial update; every supplied field is validated on
// its own, never against the others.
func (s *ReceiptService) Update(ctx context.Context, id int64, in UpdateInput) ([]string, error) {
	var upd models.ReceiptUpdate
	var fields []string

	if in.Vendor != nil {
		upd.Vendor = in.Vendor
		fields = append(fields, "vendor")
	}
	if in.Date != nil {
		if _, err := time.Parse("2006-01-02", *in.Date); err != nil {
			return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalid)
		}
		upd.ReceiptDate = in.Date
		fields = append(fields, "receipt_date")
	}
	if in.Total != nil {
		if *in.Total < 0 || *in.Total > models.MaxTotal {
			return nil, fmt.Errorf("%w: total out of range [0, %d]", ErrInvalid, models.MaxTotal)
		}
		upd.Total = in.Total
		fields = append(fields, "total")
	}
	if in.Currency != nil {
		up := strings.ToUpper(*in.Currency)
		upd.Currency = &up
		fields = append(fields, "currency")
	}
	if in.Category != nil {
		upd.Category = in.Category
		fields = append(fields, "category")
	}
	if in.Text != nil {
		t := sanitizeUTF8(*in.Text)
		upd.OCRText = &t
		fields = append(fields, "ocr_text")
	}
	if in.ItemsJSON != nil {
		var items []models.LineItem
		if err := json.Unmarshal([]byte(*in.ItemsJSON), &items); err != nil {
			return nil, fmt.Errorf("%w: items must be a valid JSON array", ErrInvalid)
		}
		upd.ItemsJSON = in.ItemsJSON
		fields = append(fields, "items_json")
	}

	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalid)
	}

	found, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, fmt.Errorf("updating receipt: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return fields, nil
}

// Delete removes a receipt. Without confirm it performs no mutation and
// reports ErrConfirmRequired; deleteImage additionally removes the stored
// image file, best-effort.
func (s *ReceiptService) Delete(ctx context.Context, id int64, confirm, deleteImage bool) error {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("getting receipt for deletion: %w", err)
	}
	if rec == nil {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if !confirm {
		return ErrConfirmRequired
	}

	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting receipt: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	if deleteImage && rec.ImagePath != "" {
		if err := s.store.Delete(rec.ImagePath); err != nil {
			s.logger.Warn("Failed to delete stored image", zap.String("path", rec.ImagePath), zap.Error(err))
		}
	}
	return nil
}

func normalizeMonth(month string) (string, error) {
	if bareMonthRe.MatchString(month) {
		m := month
		if len(m) == 1 {
			m = "0" + m
		}
		return fmt.Sprintf("%d-%s", time.Now().Year(), m), nil
	}
	if !monthRe.MatchString(month) {
		return "", fmt.Errorf("%w: month must be YYYY-MM or a bare month number", ErrInvalid)
	}
	return month, nil
}
