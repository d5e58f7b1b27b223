package analyses

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when no analysis exists for a patient.
var ErrNotFound = errors.New("analysis not found")

// AnalysisFailure wraps an analysis error with the originating record ID so
// batch error lists can always name the record that failed.
type AnalysisFailure struct {
	RecordID string
	Err      error
}

func (f *AnalysisFailure) Error() string {
	return fmt.Sprintf("record %s: %v", f.RecordID, f.Err)
}

func (f *AnalysisFailure) Unwrap() error { return f.Err }

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.TrimSpace(msg)
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
