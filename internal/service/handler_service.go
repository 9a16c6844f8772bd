package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"

	"receipt-vault/internal/dto"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// imagePathAllowRe is the character allow-list for caller-supplied image
// paths; anything outside it is rejected before the path reaches the
// filesystem.
var imagePathAllowRe = regexp.MustCompile(`^[A-Za-z0-9._/~ -]+$`)

// Defaults applied when the stdin payload omits optional fields, matching
// the handler contract rather than the extraction heuristics.
const (
	handleDefaultDate     = "2026-01-01"
	handleDefaultCurrency = "CAD"
	handleDefaultCategory = "other"
	handleDefaultImage    = "placeholder.jpg"
)

// HandlerService is the JSON-over-stdin adapter: it reads one payload,
// sanitizes it, runs the ingestion operation and writes one result object.
// It never reports failure through its own error return; every outcome is
// encoded in the written result.
type HandlerService struct {
	receipts *ReceiptService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewHandlerService(receipts *ReceiptService, logger *zap.Logger) *HandlerService {
	return &HandlerService{
		receipts: receipts,
		validate: validator.New(),
		logger:   logger,
	}
}

// Handle processes one request from r and writes the result to w.
func (s *HandlerService) Handle(ctx context.Context, r io.Reader, w io.Writer) error {
	result := s.run(ctx, r)
	return json.NewEncoder(w).Encode(result)
}

func (s *HandlerService) run(ctx context.Context, r io.Reader) dto.HandleResult {
	var payload dto.HandlePayload
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return dto.HandleResult{OK: false, Error: fmt.Sprintf("invalid payload: %v", err)}
	}

	if err := s.validate.Struct(payload); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			return dto.HandleResult{OK: false, Error: fmt.Sprintf("missing %s", fieldErr.Field())}
		}
		return dto.HandleResult{OK: false, Error: err.Error()}
	}

	total, err := payload.Total.Float64()
	if err != nil {
		return dto.HandleResult{OK: false, Error: "total must be a number"}
	}

	vendor := SanitizeField(payload.Vendor)
	if vendor == "" {
		return dto.HandleResult{OK: false, Error: "missing vendor"}
	}

	image := payload.Image
	if image == "" {
		image = handleDefaultImage
	}
	if !imagePathAllowRe.MatchString(image) {
		return dto.HandleResult{OK: false, Error: "invalid image path"}
	}

	date := SanitizeField(payload.Date)
	if date == "" {
		date = handleDefaultDate
	}
	currency := SanitizeField(payload.Currency)
	if currency == "" {
		currency = handleDefaultCurrency
	}
	category := SanitizeField(payload.Category)
	if category == "" {
		category = handleDefaultCategory
	}

	in := IngestInput{
		ImagePath: image,
		Vendor:    &vendor,
		Date:      &date,
		Total:     &total,
		Currency:  &currency,
		Category:  &category,
	}
	if text := SanitizeField(payload.Text); text != "" {
		in.Text = &text
	}

	if _, err := s.receipts.Ingest(ctx, in); err != nil {
		s.logger.Warn("Handle ingestion failed", zap.Error(err))
		return dto.HandleResult{OK: false, Error: err.Error()}
	}

	return dto.HandleResult{
		OK:      true,
		Message: fmt.Sprintf("✅ 已保存收据: %s $%v %s", vendor, payload.Total, currency),
	}
}
