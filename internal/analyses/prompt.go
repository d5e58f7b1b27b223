package analyses

import (
	"fmt"
	"strings"

	"medrecord-backend/internal/records"
)

const analysisMaxTokens = 3000

const analysisSystemPrompt = `You are an experienced medical AI assistant helping healthcare professionals triage patient records.
Analyze the patient data and respond ONLY with a valid JSON object, no markdown fences and no commentary, using exactly this structure:
{
  "suspected_conditions": ["condition 1", "condition 2"],
  "recommended_medications": [
    {
      "medication_name": "name",
      "dosage": "e.g. 500mg",
      "frequency": "e.g. twice daily",
      "duration": "e.g. 7 days",
      "instructions": "administration notes",
      "contraindications": ["..."],
      "side_effects": ["..."],
      "confidence_score": 0.0
    }
  ],
  "additional_tests": ["test 1"],
  "risk_factors": ["factor 1"],
  "treatment_notes": "free-text guidance",
  "confidence_level": "low|medium|high"
}
This is decision support, not a diagnosis. Always recommend professional evaluation for severe presentations.`

// recordPrompt renders a medical record as the user message for analysis.
func recordPrompt(record records.MedicalRecord) string {
	var b strings.Builder
	p := record.PatientInfo

	fmt.Fprintf(&b, "Patient: %s (ID %s)\n", p.Name, p.PatientID)
	fmt.Fprintf(&b, "Age: %d, Gender: %s\n", p.Age, p.Gender)
	if p.Weight != nil {
		fmt.Fprintf(&b, "Weight: %.1f kg\n", *p.Weight)
	}
	if p.Height != nil {
		fmt.Fprintf(&b, "Height: %.1f cm\n", *p.Height)
	}
	writeListLine(&b, "Medical history", p.MedicalHistory)
	writeListLine(&b, "Allergies", p.Allergies)
	writeListLine(&b, "Current medications", p.CurrentMedications)

	writeListLine(&b, "Primary symptoms", record.Symptoms.Primary)
	writeListLine(&b, "Secondary symptoms", record.Symptoms.Secondary)
	if record.Symptoms.Duration != "" {
		fmt.Fprintf(&b, "Symptom duration: %s\n", record.Symptoms.Duration)
	}
	if record.Symptoms.Severity != "" {
		fmt.Fprintf(&b, "Severity: %s\n", record.Symptoms.Severity)
	}

	if v := record.VitalSigns; v != nil {
		b.WriteString("Vital signs:\n")
		if v.Temperature != nil {
			fmt.Fprintf(&b, "  Temperature: %.1f C\n", *v.Temperature)
		}
		if v.BloodPressure != "" {
			fmt.Fprintf(&b, "  Blood pressure: %s mmHg\n", v.BloodPressure)
		}
		if v.HeartRate != nil {
			fmt.Fprintf(&b, "  Heart rate: %d bpm\n", *v.HeartRate)
		}
		if v.RespiratoryRate != nil {
			fmt.Fprintf(&b, "  Respiratory rate: %d/min\n", *v.RespiratoryRate)
		}
		if v.OxygenSaturation != nil {
			fmt.Fprintf(&b, "  Oxygen saturation: %.1f%%\n", *v.OxygenSaturation)
		}
	}

	if len(record.LabResults) > 0 {
		b.WriteString("Lab results:\n")
		for name, value := range record.LabResults {
			fmt.Fprintf(&b, "  %s: %v\n", name, value)
		}
	}
	if record.AdditionalNotes != "" {
		fmt.Fprintf(&b, "Additional notes: %s\n", record.AdditionalNotes)
	}

	b.WriteString("\nProvide the analysis JSON now.")
	return b.String()
}

func writeListLine(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", label, strings.Join(items, ", "))
}
