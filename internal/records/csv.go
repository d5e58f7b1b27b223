package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrEmptyCSV is returned when the uploaded file has no data rows.
var ErrEmptyCSV = errors.New("csv file is empty")

// ParseCSV reads a CSV stream into header-keyed rows. Headers are trimmed
// and lowercased; extra cells beyond the header row are ignored.
func ParseCSV(r io.Reader) ([]string, []map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rawHeader, err := reader.Read()
	if err == io.EOF {
		return nil, nil, ErrEmptyCSV
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}

	headers := make([]string, 0, len(rawHeader))
	for i, h := range rawHeader {
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		headers = append(headers, strings.ToLower(strings.TrimSpace(h)))
	}

	var rows []map[string]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv row: %w", err)
		}
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(rec) {
				row[h] = strings.TrimSpace(rec[i])
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, nil, ErrEmptyCSV
	}
	return headers, rows, nil
}
