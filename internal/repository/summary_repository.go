package repository

import (
	"context"

	"receipt-vault/internal/models"

	"github.com/Masterminds/squirrel"
)

// SummaryByCategory groups receipts of the given month (YYYY-MM) by
// category, summing totals and counting rows, largest sum first.
func (r *ReceiptRepository) SummaryByCategory(ctx context.Context, month string) ([]models.CategorySum, error) {
	query := squirrel.Select(
		"category",
		"COUNT(*) AS count",
		"ROUND(COALESCE(SUM(total),0)::numeric, 2) AS total",
	).
		From("receipts").
		Where(squirrel.Like{"receipt_date": month + "-%"}).
		GroupBy("category").
		OrderBy("total DESC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sums := make([]models.CategorySum, 0)
	for rows.Next() {
		var s models.CategorySum
		if err := rows.Scan(&s.Category, &s.Count, &s.Total); err != nil {
			return nil, err
		}
		sums = append(sums, s)
	}
	return sums, rows.Err()
}

// SummaryByVendor groups receipts of the given month by vendor, with a
// "Unknown" bucket for records without one, limited to the top spenders.
func (r *ReceiptRepository) SummaryByVendor(ctx context.Context, month string, limit int) ([]models.VendorSum, error) {
	query := squirrel.Select(
		"COALESCE(vendor, 'Unknown') AS vendor",
		"COUNT(*) AS count",
		"ROUND(COALESCE(SUM(total),0)::numeric, 2) AS total",
	).
		From("receipts").
		Where(squirrel.Like{"receipt_date": month + "-%"}).
		GroupBy("COALESCE(vendor, 'Unknown')").
		OrderBy("total DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sums := make([]models.VendorSum, 0)
	for rows.Next() {
		var s models.VendorSum
		if err := rows.Scan(&s.Vendor, &s.Count, &s.Total); err != nil {
			return nil, err
		}
		sums = append(sums, s)
	}
	return sums, rows.Err()
}
