package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"medrecord-backend/internal/analyses"
	"medrecord-backend/internal/llm"
)

type stubLLM struct {
	response string
	err      error
	calls    int
}

func (s *stubLLM) Complete(_ context.Context, _ llm.Prompt) (string, error) {
	s.calls++
	return s.response, s.err
}

func seedAnalysis(t *testing.T, repo analyses.Repo) analyses.AnalysisResult {
	t.Helper()
	result := analyses.AnalysisResult{
		PatientID:           "P001",
		SuspectedConditions: []string{"Hypertension"},
		RecommendedMedications: []analyses.MedicationRecommendation{
			{MedicationName: "Lisinopril", Dosage: "10mg"},
		},
		AdditionalTests: []string{"Echocardiogram"},
		RiskFactors:     []string{"Smoking"},
		ConfidenceLevel: analyses.ConfidenceHigh,
	}
	if err := repo.Save(context.Background(), result); err != nil {
		t.Fatalf("seed analysis: %v", err)
	}
	return result
}

func TestGenerateUsesLLMSummary(t *testing.T) {
	analysesRepo := analyses.NewMemoryRepo()
	seedAnalysis(t, analysesRepo)
	client := &stubLLM{response: "Patient P001 likely has hypertension; confidence is high."}
	svc := NewService(analysesRepo, NewMemoryRepo(), client)

	report, err := svc.Generate(context.Background(), "P001", "D042")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if client.calls != 1 {
		t.Fatalf("llm calls = %d, want 1", client.calls)
	}
	if report.AnalysisSummary != client.response {
		t.Fatalf("summary = %q", report.AnalysisSummary)
	}
	if !strings.HasPrefix(report.ReportID, "RPT_P001_") {
		t.Fatalf("report id = %q", report.ReportID)
	}
	if len(report.MedicationsPrescribed) != 1 || report.MedicationsPrescribed[0] != "Lisinopril" {
		t.Fatalf("medications = %v", report.MedicationsPrescribed)
	}
	if len(report.FollowUpRecommendations) == 0 {
		t.Fatal("expected follow-up recommendations")
	}

	got, err := svc.Get(context.Background(), report.ReportID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.DoctorID != "D042" {
		t.Fatalf("doctor id = %q", got.DoctorID)
	}
}

func TestGenerateFallsBackWhenLLMFails(t *testing.T) {
	analysesRepo := analyses.NewMemoryRepo()
	seedAnalysis(t, analysesRepo)
	client := &stubLLM{err: fmt.Errorf("model unavailable")}
	svc := NewService(analysesRepo, NewMemoryRepo(), client)

	report, err := svc.Generate(context.Background(), "P001", "D042")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(report.AnalysisSummary, "Hypertension") {
		t.Fatalf("fallback summary = %q", report.AnalysisSummary)
	}
	if !strings.Contains(report.AnalysisSummary, "Lisinopril") {
		t.Fatalf("fallback summary = %q", report.AnalysisSummary)
	}
}

func TestGenerateWithoutAnalysis(t *testing.T) {
	svc := NewService(analyses.NewMemoryRepo(), NewMemoryRepo(), &stubLLM{})

	if _, err := svc.Generate(context.Background(), "P404", "D042"); !errors.Is(err, ErrNoAnalysis) {
		t.Fatalf("err = %v, want ErrNoAnalysis", err)
	}
}

func TestGenerateValidatesInput(t *testing.T) {
	svc := NewService(analyses.NewMemoryRepo(), NewMemoryRepo(), &stubLLM{})

	if _, err := svc.Generate(context.Background(), "", "D042"); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest", err)
	}
	if _, err := svc.Generate(context.Background(), "P001", ""); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest", err)
	}
}
