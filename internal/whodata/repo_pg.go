package whodata

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PGRepo is a Postgres-backed Repo over the who_indicators table.
type PGRepo struct {
	DB *sql.DB
}

// SaveAll upserts a batch of indicator records in one transaction.
func (r *PGRepo) SaveAll(ctx context.Context, recs []WHORecord) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range recs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO who_indicators (id, country, year, indicator, value, uploaded_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id)
			DO UPDATE SET value = EXCLUDED.value, uploaded_at = EXCLUDED.uploaded_at
		`, rec.ID, rec.Country, rec.Year, rec.Indicator, rec.Value, rec.UploadedAt)
		if err != nil {
			return fmt.Errorf("save indicator %s: %w", rec.ID, err)
		}
	}
	return tx.Commit()
}

// List returns records matching the filter, ordered by country then year.
func (r *PGRepo) List(ctx context.Context, f Filter) ([]WHORecord, error) {
	query := `SELECT id, country, year, indicator, value, uploaded_at FROM who_indicators`
	var conds []string
	var args []any
	if f.Country != "" {
		args = append(args, f.Country)
		conds = append(conds, fmt.Sprintf("LOWER(country) = LOWER($%d)", len(args)))
	}
	if f.Indicator != "" {
		args = append(args, f.Indicator)
		conds = append(conds, fmt.Sprintf("LOWER(indicator) = LOWER($%d)", len(args)))
	}
	if f.Year != 0 {
		args = append(args, f.Year)
		conds = append(conds, fmt.Sprintf("year = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY country, year"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list indicators: %w", err)
	}
	defer rows.Close()

	var out []WHORecord
	for rows.Next() {
		var rec WHORecord
		if err := rows.Scan(&rec.ID, &rec.Country, &rec.Year, &rec.Indicator, &rec.Value, &rec.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan indicator: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
