package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"receipt-vault/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// pgUniqueViolation is the SQLSTATE raised when the image_sha256 unique
// constraint catches a concurrent insert of the same content.
const pgUniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS receipts (
  id BIGSERIAL PRIMARY KEY,
  created_at TIMESTAMPTZ NOT NULL,
  vendor TEXT,
  receipt_date TEXT,
  currency TEXT,
  total DOUBLE PRECISION,
  category TEXT,
  image_path TEXT NOT NULL,
  image_sha256 TEXT NOT NULL UNIQUE,
  ocr_text TEXT,
  items_json TEXT,
  meta_json TEXT
);
CREATE INDEX IF NOT EXISTS idx_receipts_date ON receipts(receipt_date);
CREATE INDEX IF NOT EXISTS idx_receipts_vendor ON receipts(vendor);
CREATE INDEX IF NOT EXISTS idx_receipts_category ON receipts(category);
`

var receiptColumns = []string{
	"id", "created_at", "vendor", "receipt_date", "currency", "total",
	"category", "image_path", "image_sha256", "ocr_text", "items_json", "meta_json",
}

type ReceiptRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewReceiptRepository(db *pgxpool.Pool, logger *zap.Logger) *ReceiptRepository {
	return &ReceiptRepository{
		db:     db,
		logger: logger,
	}
}

// Init applies the receipts schema. Safe to call repeatedly.
func (r *ReceiptRepository) Init(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

// InsertIfNew inserts the receipt unless a record with the same content hash
// already exists. Returns the record id and whether it was a duplicate.
// Concurrent inserts racing past the pre-check are resolved by the unique
// constraint: the loser re-reads the winner's row.
func (r *ReceiptRepository) InsertIfNew(ctx context.Context, rec *models.Receipt) (int64, bool, error) {
	if id, err := r.idByHash(ctx, rec.ImageSHA256); err != nil {
		return 0, false, err
	} else if id != 0 {
		return id, true, nil
	}

	itemsJSON, err := json.Marshal(rec.Items)
	if err != nil {
		return 0, false, fmt.Errorf("marshaling items: %w", err)
	}
	metaJSON, err := json.Marshal(rec.Meta)
	if err != nil {
		return 0, false, fmt.Errorf("marshaling meta: %w", err)
	}

	query := squirrel.Insert("receipts").
		Columns("created_at", "vendor", "receipt_date", "currency", "total", "category",
			"image_path", "image_sha256", "ocr_text", "items_json", "meta_json").
		Values(rec.CreatedAt, rec.Vendor, rec.ReceiptDate, rec.Currency, rec.Total, rec.Category,
			rec.ImagePath, rec.ImageSHA256, rec.OCRText, string(itemsJSON), string(metaJSON)).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, false, err
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			existing, selErr := r.idByHash(ctx, rec.ImageSHA256)
			if selErr != nil {
				return 0, false, selErr
			}
			return existing, true, nil
		}
		return 0, false, err
	}

	rec.ID = id
	return id, false, nil
}

func (r *ReceiptRepository) idByHash(ctx context.Context, digest string) (int64, error) {
	query := squirrel.Select("id").
		From("receipts").
		Where(squirrel.Eq{"image_sha256": digest}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var id int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetByID returns the receipt or nil when the id does not exist.
func (r *ReceiptRepository) GetByID(ctx context.Context, id int64) (*models.Receipt, error) {
	query := squirrel.Select(receiptColumns...).
		From("receipts").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rec, err := scanReceipt(r.db.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Search returns receipts matching the text query and/or item keyword,
// most recent first. The text query is an OR across vendor, category, OCR
// text and the serialized items blob; the item keyword additionally
// requires an items match.
func (r *ReceiptRepository) Search(ctx context.Context, q, item string, limit int) ([]*models.Receipt, error) {
	sql, args, err := buildSearchQuery(q, item, limit)
	if err != nil {
		return nil, err
	}
	return r.queryReceipts(ctx, sql, args)
}

func buildSearchQuery(q, item string, limit int) (string, []interface{}, error) {
	query := squirrel.Select(receiptColumns...).
		From("receipts").
		OrderBy("id DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	if q != "" {
		like := "%" + q + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"vendor": like},
			squirrel.ILike{"category": like},
			squirrel.ILike{"ocr_text": like},
			squirrel.ILike{"items_json": like},
		})
	}
	if item != "" {
		query = query.Where(squirrel.ILike{"items_json": "%" + item + "%"})
	}

	return query.ToSql()
}

// List returns receipts filtered by month (receipt_date prefix) and/or
// category, ordered by date then id, both descending.
func (r *ReceiptRepository) List(ctx context.Context, month, category string, limit int) ([]*models.Receipt, error) {
	sql, args, err := buildListQuery(month, category, limit)
	if err != nil {
		return nil, err
	}
	return r.queryReceipts(ctx, sql, args)
}

func buildListQuery(month, category string, limit int) (string, []interface{}, error) {
	query := squirrel.Select(receiptColumns...).
		From("receipts").
		OrderBy("receipt_date DESC", "id DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	if month != "" {
		query = query.Where(squirrel.Like{"receipt_date": month + "-%"})
	}
	if category != "" {
		query = query.Where(squirrel.Expr("LOWER(category) = LOWER(?)", category))
	}

	return query.ToSql()
}

// Update applies a partial field set to the receipt. Nil fields are left
// untouched. Returns false when the id does not exist.
func (r *ReceiptRepository) Update(ctx context.Context, id int64, upd models.ReceiptUpdate) (bool, error) {
	query := squirrel.Update("receipts").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	changed := false
	if upd.Vendor != nil {
		query = query.Set("vendor", *upd.Vendor)
		changed = true
	}
	if upd.ReceiptDate != nil {
		query = query.Set("receipt_date", *upd.ReceiptDate)
		changed = true
	}
	if upd.Total != nil {
		query = query.Set("total", *upd.Total)
		changed = true
	}
	if upd.Currency != nil {
		query = query.Set("currency", *upd.Currency)
		changed = true
	}
	if upd.Category != nil {
		query = query.Set("category", *upd.Category)
		changed = true
	}
	if upd.OCRText != nil {
		query = query.Set("ocr_text", *upd.OCRText)
		changed = true
	}
	if upd.ItemsJSON != nil {
		query = query.Set("items_json", *upd.ItemsJSON)
		changed = true
	}
	if !changed {
		return false, fmt.Errorf("no fields to update")
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return false, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes the receipt row. Returns false when the id does not exist.
func (r *ReceiptRepository) Delete(ctx context.Context, id int64) (bool, error) {
	query := squirrel.Delete("receipts").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return false, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ReceiptRepository) queryReceipts(ctx context.Context, sql string, args []interface{}) ([]*models.Receipt, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	receipts := make([]*models.Receipt, 0)
	for rows.Next() {
		rec, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, rec)
	}
	return receipts, rows.Err()
}

func scanReceipt(row pgx.Row) (*models.Receipt, error) {
	var rec models.Receipt
	var itemsJSON, metaJSON *string
	if err := row.Scan(
		&rec.ID, &rec.CreatedAt, &rec.Vendor, &rec.ReceiptDate, &rec.Currency, &rec.Total,
		&rec.Category, &rec.ImagePath, &rec.ImageSHA256, &rec.OCRText, &itemsJSON, &metaJSON,
	); err != nil {
		return nil, err
	}

	if itemsJSON != nil && *itemsJSON != "" {
		if err := json.Unmarshal([]byte(*itemsJSON), &rec.Items); err != nil {
			rec.Items = nil
		}
	}
	if metaJSON != nil && *metaJSON != "" {
		if err := json.Unmarshal([]byte(*metaJSON), &rec.Meta); err != nil {
			rec.Meta = models.Meta{}
		}
	}
	return &rec, nil
}
