package analyses

import "context"

// Repo stores analysis results keyed by patient ID.
type Repo interface {
	Save(ctx context.Context, result AnalysisResult) error
	GetByPatient(ctx context.Context, patientID string) (AnalysisResult, error)
}
