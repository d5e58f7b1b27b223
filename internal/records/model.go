package records

// PatientInfo holds patient demographics and clinical background.
type PatientInfo struct {
	PatientID          string   `json:"patient_id"`
	Name               string   `json:"name"`
	Age                int      `json:"age"`
	Gender             string   `json:"gender"`
	Weight             *float64 `json:"weight,omitempty"`
	Height             *float64 `json:"height,omitempty"`
	MedicalHistory     []string `json:"medical_history"`
	Allergies          []string `json:"allergies"`
	CurrentMedications []string `json:"current_medications"`
}

// Symptoms describes the presenting complaint.
type Symptoms struct {
	Primary   []string `json:"primary_symptoms"`
	Secondary []string `json:"secondary_symptoms"`
	Duration  string   `json:"symptom_duration,omitempty"`
	Severity  string   `json:"severity,omitempty"`
}

// VitalSigns carries the measured vitals present on a record.
type VitalSigns struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	BloodPressure    string   `json:"blood_pressure,omitempty"`
	HeartRate        *int     `json:"heart_rate,omitempty"`
	RespiratoryRate  *int     `json:"respiratory_rate,omitempty"`
	OxygenSaturation *float64 `json:"oxygen_saturation,omitempty"`
}

// MedicalRecord is the normalized unit of analysis.
type MedicalRecord struct {
	PatientInfo     PatientInfo    `json:"patient_info"`
	Symptoms        Symptoms       `json:"symptoms"`
	VitalSigns      *VitalSigns    `json:"vital_signs,omitempty"`
	LabResults      map[string]any `json:"lab_results,omitempty"`
	AdditionalNotes string         `json:"additional_notes,omitempty"`
}
