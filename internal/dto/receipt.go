package dto

import (
	"encoding/json"

	"receipt-vault/internal/models"
)

// HandlePayload is the single JSON object read from standard input by the
// handle adapter. Total tolerates both numeric and string encodings.
type HandlePayload struct {
	Vendor   string      `json:"vendor" validate:"required"`
	Total    json.Number `json:"total" validate:"required"`
	Date     string      `json:"date"`
	Currency string      `json:"currency"`
	Category string      `json:"category"`
	Text     string      `json:"text"`
	Image    string      `json:"image"`
}

// HandleResult is the single JSON object written to standard output.
type HandleResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// TokenRequest exchanges the configured API key for an access token.
type TokenRequest struct {
	APIKey string `json:"api_key" validate:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// AddReceiptRequest carries the optional explicit fields accompanying a
// multipart image upload.
type AddReceiptRequest struct {
	Vendor   string `form:"vendor"`
	Date     string `form:"date" validate:"omitempty,datetime=2006-01-02"`
	Total    string `form:"total" validate:"omitempty,numeric"`
	Currency string `form:"currency" validate:"omitempty,len=3"`
	Category string `form:"category"`
	Text     string `form:"text"`
}

type UpdateReceiptRequest struct {
	Vendor    *string  `json:"vendor"`
	Date      *string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Total     *float64 `json:"total" validate:"omitempty,gte=0,lte=1000000"`
	Currency  *string  `json:"currency" validate:"omitempty,len=3"`
	Category  *string  `json:"category"`
	Text      *string  `json:"text"`
	ItemsJSON *string  `json:"items_json"`
}

type QueryRequest struct {
	Text  string `json:"text" validate:"required"`
	Limit int    `json:"limit"`
}

// ReceiptResponse is the wire shape of one stored receipt.
type ReceiptResponse struct {
	ID          int64             `json:"id"`
	CreatedAt   string            `json:"created_at"`
	Vendor      *string           `json:"vendor"`
	ReceiptDate *string           `json:"receipt_date"`
	Currency    *string           `json:"currency"`
	Total       *float64          `json:"total"`
	Category    string            `json:"category"`
	ImagePath   string            `json:"image_path"`
	ImageSHA256 string            `json:"image_sha256"`
	OCRText     *string           `json:"ocr_text,omitempty"`
	Items       []models.LineItem `json:"items"`
	Meta        models.Meta       `json:"meta"`
}

func NewReceiptResponse(rec *models.Receipt) ReceiptResponse {
	items := rec.Items
	if items == nil {
		items = []models.LineItem{}
	}
	return ReceiptResponse{
		ID:          rec.ID,
		CreatedAt:   rec.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Vendor:      rec.Vendor,
		ReceiptDate: rec.ReceiptDate,
		Currency:    rec.Currency,
		Total:       rec.Total,
		Category:    rec.Category,
		ImagePath:   rec.ImagePath,
		ImageSHA256: rec.ImageSHA256,
		OCRText:     rec.OCRText,
		Items:       items,
		Meta:        rec.Meta,
	}
}

func NewReceiptResponses(recs []*models.Receipt) []ReceiptResponse {
	out := make([]ReceiptResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, NewReceiptResponse(rec))
	}
	return out
}
