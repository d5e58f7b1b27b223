package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"medrecord-backend/internal/analyses"
	"medrecord-backend/internal/llm"
	"medrecord-backend/internal/shared/telemetry"
)

// ErrNoAnalysis is returned when a report is requested for a patient
// without a stored analysis.
var ErrNoAnalysis = errors.New("no analysis available for patient")

// ErrInvalidRequest covers malformed report requests.
var ErrInvalidRequest = errors.New("invalid report request")

const reportMaxTokens = 800

const reportSystemPrompt = `You are a clinical scribe. Summarize the AI analysis of a patient ` +
	`for the attending physician in 3-5 sentences of plain prose. Mention the leading ` +
	`suspected conditions and overall confidence. Do not add new diagnoses or medications.`

// Service generates and serves doctor reports from stored analyses.
type Service struct {
	Analyses analyses.Repo
	Repo     Repo
	LLM      llm.Client
}

// NewService constructs a report service.
func NewService(analysesRepo analyses.Repo, repo Repo, client llm.Client) *Service {
	return &Service{Analyses: analysesRepo, Repo: repo, LLM: client}
}

// Generate builds a doctor report for the patient's latest analysis and
// stores it. The narrative summary comes from the LLM when available and
// falls back to a deterministic summary otherwise.
func (s *Service) Generate(ctx context.Context, patientID, doctorID string) (DoctorReport, error) {
	if patientID == "" {
		return DoctorReport{}, fmt.Errorf("%w: patient_id is required", ErrInvalidRequest)
	}
	if doctorID == "" {
		return DoctorReport{}, fmt.Errorf("%w: doctor_id is required", ErrInvalidRequest)
	}

	analysis, err := s.Analyses.GetByPatient(ctx, patientID)
	if err != nil {
		if errors.Is(err, analyses.ErrNotFound) {
			return DoctorReport{}, ErrNoAnalysis
		}
		return DoctorReport{}, err
	}

	now := time.Now().UTC()
	report := DoctorReport{
		ReportID:                newReportID(patientID, now),
		PatientID:               patientID,
		DoctorID:                doctorID,
		AnalysisSummary:         s.summarize(ctx, analysis),
		MedicationsPrescribed:   medicationNames(analysis),
		FollowUpRecommendations: followUps(analysis),
		GeneratedDate:           now,
	}

	if err := s.Repo.Save(ctx, report); err != nil {
		return DoctorReport{}, err
	}
	telemetry.Info("report.generated", map[string]any{
		"report_id":  report.ReportID,
		"patient_id": patientID,
	})
	return report, nil
}

// Get fetches a previously generated report.
func (s *Service) Get(ctx context.Context, reportID string) (DoctorReport, error) {
	return s.Repo.Get(ctx, reportID)
}

func (s *Service) summarize(ctx context.Context, analysis analyses.AnalysisResult) string {
	if s.LLM != nil {
		raw, err := s.LLM.Complete(ctx, llm.Prompt{
			System:    reportSystemPrompt,
			User:      summaryPrompt(analysis),
			MaxTokens: reportMaxTokens,
		})
		if err == nil && strings.TrimSpace(raw) != "" {
			return strings.TrimSpace(raw)
		}
		if err != nil {
			telemetry.Error("report.summary_fallback", map[string]any{
				"patient_id": analysis.PatientID,
				"error":      err.Error(),
			})
		}
	}
	return fallbackSummary(analysis)
}

func summaryPrompt(analysis analyses.AnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Patient: %s\n", analysis.PatientID)
	fmt.Fprintf(&b, "Suspected conditions: %s\n", joinOr(analysis.SuspectedConditions, "none identified"))
	fmt.Fprintf(&b, "Recommended medications: %s\n", joinOr(medicationNames(analysis), "none"))
	fmt.Fprintf(&b, "Additional tests: %s\n", joinOr(analysis.AdditionalTests, "none"))
	fmt.Fprintf(&b, "Risk factors: %s\n", joinOr(analysis.RiskFactors, "none"))
	fmt.Fprintf(&b, "Confidence: %s\n", analysis.ConfidenceLevel)
	if analysis.TreatmentNotes != "" {
		fmt.Fprintf(&b, "Treatment notes: %s\n", analysis.TreatmentNotes)
	}
	return b.String()
}

func fallbackSummary(analysis analyses.AnalysisResult) string {
	return fmt.Sprintf(
		"AI analysis of patient %s suggests: %s (confidence: %s). Recommended medications: %s. Additional tests: %s.",
		analysis.PatientID,
		joinOr(analysis.SuspectedConditions, "no specific conditions"),
		analysis.ConfidenceLevel,
		joinOr(medicationNames(analysis), "none"),
		joinOr(analysis.AdditionalTests, "none"),
	)
}

func medicationNames(analysis analyses.AnalysisResult) []string {
	names := make([]string, 0, len(analysis.RecommendedMedications))
	for _, med := range analysis.RecommendedMedications {
		names = append(names, med.MedicationName)
	}
	return names
}

func followUps(analysis analyses.AnalysisResult) []string {
	recs := []string{"Verify the AI-generated findings against the patient's clinical presentation."}
	if len(analysis.AdditionalTests) > 0 {
		recs = append(recs, "Order pending tests: "+strings.Join(analysis.AdditionalTests, ", ")+".")
	}
	if analysis.ConfidenceLevel == analyses.ConfidenceLow || analysis.Degraded {
		recs = append(recs, "Analysis confidence is limited; schedule an in-person evaluation.")
	}
	if len(analysis.RiskFactors) > 0 {
		recs = append(recs, "Discuss identified risk factors with the patient: "+strings.Join(analysis.RiskFactors, ", ")+".")
	}
	return recs
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}
