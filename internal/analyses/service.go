package analyses

import (
	"context"
	"errors"
	"fmt"

	"medrecord-backend/internal/records"
)

// ErrInvalidRecord marks a submitted record that failed validation.
var ErrInvalidRecord = errors.New("invalid medical record")

// Service coordinates record storage, analysis, and result storage.
type Service struct {
	Records  records.Repo
	Repo     Repo
	Analyzer *Analyzer
}

// AnalyzeRecord validates, stores, and analyzes one submitted record
// synchronously, persisting the result on success.
func (s *Service) AnalyzeRecord(ctx context.Context, record records.MedicalRecord) (AnalysisResult, error) {
	if err := validateRecord(record); err != nil {
		return AnalysisResult{}, err
	}

	if err := s.Records.Save(ctx, record); err != nil {
		return AnalysisResult{}, fmt.Errorf("save record: %w", err)
	}

	result, err := s.Analyzer.Analyze(ctx, record)
	if err != nil {
		return AnalysisResult{}, err
	}

	if err := s.Repo.Save(ctx, result); err != nil {
		return AnalysisResult{}, fmt.Errorf("save analysis: %w", err)
	}
	return result, nil
}

// Result fetches the stored analysis for a patient.
func (s *Service) Result(ctx context.Context, patientID string) (AnalysisResult, error) {
	return s.Repo.GetByPatient(ctx, patientID)
}

func validateRecord(record records.MedicalRecord) error {
	if record.PatientInfo.PatientID == "" {
		return fmt.Errorf("%w: patient_id is required", ErrInvalidRecord)
	}
	if record.PatientInfo.Age <= 0 || record.PatientInfo.Age > 150 {
		return fmt.Errorf("%w: age must be between 1 and 150", ErrInvalidRecord)
	}
	if record.PatientInfo.Gender == "" {
		return fmt.Errorf("%w: gender is required", ErrInvalidRecord)
	}
	if len(record.Symptoms.Primary) == 0 {
		return fmt.Errorf("%w: at least one primary symptom is required", ErrInvalidRecord)
	}
	return nil
}
