package reports

import (
	"fmt"
	"time"
)

// DoctorReport is a physician-facing digest of a patient's latest analysis.
type DoctorReport struct {
	ReportID                string    `json:"report_id"`
	PatientID               string    `json:"patient_id"`
	DoctorID                string    `json:"doctor_id"`
	AnalysisSummary         string    `json:"analysis_summary"`
	MedicationsPrescribed   []string  `json:"medications_prescribed"`
	FollowUpRecommendations []string  `json:"follow_up_recommendations"`
	GeneratedDate           time.Time `json:"generated_date"`
}

func newReportID(patientID string, now time.Time) string {
	return fmt.Sprintf("RPT_%s_%d", patientID, now.Unix())
}
