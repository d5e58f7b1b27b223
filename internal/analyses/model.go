package analyses

import "time"

// Confidence levels attached to analysis output.
const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

// MedicationRecommendation is one suggested medication with prescribing detail.
type MedicationRecommendation struct {
	MedicationName    string   `json:"medication_name"`
	Dosage            string   `json:"dosage"`
	Frequency         string   `json:"frequency"`
	Duration          string   `json:"duration,omitempty"`
	Instructions      string   `json:"instructions,omitempty"`
	Contraindications []string `json:"contraindications,omitempty"`
	SideEffects       []string `json:"side_effects,omitempty"`
	ConfidenceScore   float64  `json:"confidence_score,omitempty"`
}

// AnalysisResult is the structured outcome of analyzing one medical record.
type AnalysisResult struct {
	PatientID              string                     `json:"patient_id"`
	AnalysisDate           time.Time                  `json:"analysis_date"`
	SuspectedConditions    []string                   `json:"suspected_conditions"`
	RecommendedMedications []MedicationRecommendation `json:"recommended_medications"`
	AdditionalTests        []string                   `json:"additional_tests"`
	RiskFactors            []string                   `json:"risk_factors,omitempty"`
	TreatmentNotes         string                     `json:"treatment_notes"`
	ConfidenceLevel        string                     `json:"confidence_level"`
	Degraded               bool                       `json:"degraded,omitempty"`
}
