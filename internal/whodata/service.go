package whodata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	"medrecord-backend/internal/records"
	"medrecord-backend/internal/shared/telemetry"
)

// ErrNoRows is returned when an uploaded CSV contains no usable rows.
var ErrNoRows = errors.New("no valid indicator rows in upload")

// UploadResult summarizes one indicator CSV ingestion.
type UploadResult struct {
	RecordsStored int      `json:"records_stored"`
	RowErrors     []string `json:"row_errors"`
}

// Service ingests and serves WHO indicator data.
type Service struct {
	Repo Repo
}

// NewService constructs a WHO data service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Upload parses a Country,Year,Indicator,Value CSV and stores the valid
// rows. Invalid rows are reported but do not fail the upload unless no
// row survives.
func (s *Service) Upload(ctx context.Context, r io.Reader) (UploadResult, error) {
	headers, rows, err := records.ParseCSV(r)
	if err != nil {
		if errors.Is(err, records.ErrEmptyCSV) {
			return UploadResult{}, ErrNoRows
		}
		return UploadResult{}, fmt.Errorf("parse indicator CSV: %w", err)
	}
	if !hasHeaders(headers, "country", "year", "indicator", "value") {
		return UploadResult{}, fmt.Errorf("%w: expected columns country, year, indicator, value", ErrNoRows)
	}

	now := time.Now().UTC()
	recs := make([]WHORecord, 0, len(rows))
	var rowErrs []string
	for i, row := range rows {
		rec, err := parseRow(row, now)
		if err != nil {
			rowErrs = append(rowErrs, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		recs = append(recs, rec)
	}
	if len(recs) == 0 {
		return UploadResult{RowErrors: rowErrs}, ErrNoRows
	}

	if err := s.Repo.SaveAll(ctx, recs); err != nil {
		return UploadResult{}, err
	}
	telemetry.Info("whodata.uploaded", map[string]any{
		"stored":  len(recs),
		"skipped": len(rowErrs),
	})
	return UploadResult{RecordsStored: len(recs), RowErrors: rowErrs}, nil
}

// List returns stored indicator data matching the filter.
func (s *Service) List(ctx context.Context, f Filter) ([]WHORecord, error) {
	return s.Repo.List(ctx, f)
}

func parseRow(row map[string]string, now time.Time) (WHORecord, error) {
	country := row["country"]
	if country == "" {
		return WHORecord{}, errors.New("missing country")
	}
	indicator := row["indicator"]
	if indicator == "" {
		return WHORecord{}, errors.New("missing indicator")
	}
	year, err := strconv.Atoi(row["year"])
	if err != nil {
		return WHORecord{}, fmt.Errorf("invalid year %q", row["year"])
	}
	value, err := strconv.ParseFloat(row["value"], 64)
	if err != nil {
		return WHORecord{}, fmt.Errorf("invalid value %q", row["value"])
	}
	return WHORecord{
		ID:         uuid.NewString(),
		Country:    country,
		Year:       year,
		Indicator:  indicator,
		Value:      value,
		UploadedAt: now,
	}, nil
}

func hasHeaders(headers []string, want ...string) bool {
	present := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		present[h] = struct{}{}
	}
	for _, w := range want {
		if _, ok := present[w]; !ok {
			return false
		}
	}
	return true
}
