package models

import "time"

type Category string

const (
	CategoryGrocery   Category = "grocery"
	CategoryDining    Category = "dining"
	CategoryTransport Category = "transport"
	CategoryHealth    Category = "health"
	CategoryShopping  Category = "shopping"
	CategoryTravel    Category = "travel"
	CategoryUtilities Category = "utilities"
	CategoryOther     Category = "other"
)

// MaxTotal is the upper bound accepted for a receipt total.
const MaxTotal = 1_000_000

// LineItem is a single purchased item parsed out of the receipt text.
type LineItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Currency *string `json:"currency"`
}

// Meta carries provenance information about how a receipt was ingested.
type Meta struct {
	OCREngine    *string `json:"ocr_engine"`
	OCRAvailable bool    `json:"ocr_available"`
	SourceImage  string  `json:"source_image"`
}

// Receipt is the sole persisted entity. Optional fields are pointers so a
// missing value round-trips as SQL NULL rather than a zero.
type Receipt struct {
	ID          int64      `db:"id"`
	CreatedAt   time.Time  `db:"created_at"`
	Vendor      *string    `db:"vendor"`
	ReceiptDate *string    `db:"receipt_date"`
	Currency    *string    `db:"currency"`
	Total       *float64   `db:"total"`
	Category    string     `db:"category"`
	ImagePath   string     `db:"image_path"`
	ImageSHA256 string     `db:"image_sha256"`
	OCRText     *string    `db:"ocr_text"`
	Items       []LineItem `db:"-"`
	Meta        Meta       `db:"-"`
}

// ReceiptUpdate describes a partial update; nil fields are left untouched.
type ReceiptUpdate struct {
	Vendor      *string
	ReceiptDate *string
	Currency    *string
	Total       *float64
	Category    *string
	OCRText     *string
	ItemsJSON   *string
}

// CategorySum is one aggregation row of a monthly summary.
type CategorySum struct {
	Category string  `json:"category"`
	Count    int64   `json:"count"`
	Total    float64 `json:"total"`
}

// VendorSum is one by-vendor aggregation row of a monthly summary.
type VendorSum struct {
	Vendor string  `json:"vendor"`
	Count  int64   `json:"count"`
	Total  float64 `json:"total"`
}
