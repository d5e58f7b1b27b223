package batches

import (
	"encoding/csv"
	"io"
	"strings"
)

var resultsCSVHeader = []string{"record_id", "status", "conditions", "medications", "confidence", "error"}

// WriteResultsCSV writes the per-record outcomes of a finished batch as
// CSV, one row per record. List columns are joined with "; ".
func WriteResultsCSV(w io.Writer, rs ResultSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(resultsCSVHeader); err != nil {
		return err
	}
	for _, outcome := range rs.Results {
		row := []string{
			outcome.RecordID,
			outcome.Status,
			strings.Join(outcome.Conditions, "; "),
			strings.Join(outcome.Medications, "; "),
			outcome.Confidence,
			outcome.Error,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
