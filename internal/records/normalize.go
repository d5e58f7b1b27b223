package records

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	defaultDeviceAge    = 45
	defaultDeviceGender = "Unknown"
	defaultSeverity     = "moderate"
	defaultPrimary      = "General consultation"
)

// RowError reports a row that could not be converted to a MedicalRecord.
// Row is the 1-based data row number.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("Row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

func rowErr(index int, err error) *RowError {
	return &RowError{Row: index + 1, Err: err}
}

// Normalize converts one header-keyed CSV row into a MedicalRecord using
// the given schema. index is the 0-based position of the row in the file.
func Normalize(row map[string]string, index int, schema Schema) (MedicalRecord, error) {
	if schema == SchemaDevice {
		return normalizeDevice(row, index)
	}
	return normalizeCanonical(row, index)
}

func normalizeCanonical(row map[string]string, index int) (MedicalRecord, error) {
	patientID := row["patient_id"]
	if patientID == "" {
		patientID = fmt.Sprintf("patient_%d", index)
	}
	name := row["name"]
	if name == "" {
		name = "Patient_" + patientID
	}

	ageRaw := row["age"]
	if ageRaw == "" {
		return MedicalRecord{}, rowErr(index, errors.New("missing required field: age"))
	}
	age, err := strconv.Atoi(ageRaw)
	if err != nil {
		return MedicalRecord{}, rowErr(index, fmt.Errorf("invalid age %q", ageRaw))
	}

	gender := row["gender"]
	if gender == "" {
		return MedicalRecord{}, rowErr(index, errors.New("missing required field: gender"))
	}

	primary := splitList(row["symptoms"])
	if len(primary) == 0 {
		return MedicalRecord{}, rowErr(index, errors.New("missing primary symptoms"))
	}

	weight, err := optionalFloat(row["weight"])
	if err != nil {
		return MedicalRecord{}, rowErr(index, fmt.Errorf("invalid weight %q", row["weight"]))
	}
	height, err := optionalFloat(row["height"])
	if err != nil {
		return MedicalRecord{}, rowErr(index, fmt.Errorf("invalid height %q", row["height"]))
	}

	severity := row["severity"]
	if severity == "" {
		severity = defaultSeverity
	}

	vitals, err := canonicalVitals(row, index)
	if err != nil {
		return MedicalRecord{}, err
	}

	return MedicalRecord{
		PatientInfo: PatientInfo{
			PatientID:          patientID,
			Name:               name,
			Age:                age,
			Gender:             gender,
			Weight:             weight,
			Height:             height,
			MedicalHistory:     splitList(row["medical_history"]),
			Allergies:          splitList(row["allergies"]),
			CurrentMedications: splitList(row["current_medications"]),
		},
		Symptoms: Symptoms{
			Primary:  primary,
			Duration: row["symptom_duration"],
			Severity: severity,
		},
		VitalSigns:      vitals,
		AdditionalNotes: row["additional_notes"],
	}, nil
}

func canonicalVitals(row map[string]string, index int) (*VitalSigns, error) {
	temp, err := optionalFloat(row["temperature"])
	if err != nil {
		return nil, rowErr(index, fmt.Errorf("invalid temperature %q", row["temperature"]))
	}
	hr, err := optionalInt(row["heart_rate"])
	if err != nil {
		return nil, rowErr(index, fmt.Errorf("invalid heart_rate %q", row["heart_rate"]))
	}
	rr, err := optionalInt(row["respiratory_rate"])
	if err != nil {
		return nil, rowErr(index, fmt.Errorf("invalid respiratory_rate %q", row["respiratory_rate"]))
	}
	spo2, err := optionalFloat(row["oxygen_saturation"])
	if err != nil {
		return nil, rowErr(index, fmt.Errorf("invalid oxygen_saturation %q", row["oxygen_saturation"]))
	}
	bp := row["blood_pressure"]

	if temp == nil && hr == nil && rr == nil && spo2 == nil && bp == "" {
		return nil, nil
	}
	return &VitalSigns{
		Temperature:      temp,
		BloodPressure:    bp,
		HeartRate:        hr,
		RespiratoryRate:  rr,
		OxygenSaturation: spo2,
	}, nil
}

func normalizeDevice(row map[string]string, index int) (MedicalRecord, error) {
	patientID := deviceValue(row, "id")
	if patientID == "" {
		patientID = fmt.Sprintf("patient_%d", index)
	}

	hr, err := optionalInt(deviceValue(row, "heart_rate"))
	if err != nil {
		return MedicalRecord{}, rowErr(index, fmt.Errorf("invalid heart rate %q", deviceValue(row, "heart_rate")))
	}
	spo2, err := optionalFloat(deviceValue(row, "spo2"))
	if err != nil {
		return MedicalRecord{}, rowErr(index, fmt.Errorf("invalid oxygen saturation %q", deviceValue(row, "spo2")))
	}
	temp, err := optionalFloat(deviceValue(row, "temperature"))
	if err != nil {
		return MedicalRecord{}, rowErr(index, fmt.Errorf("invalid body temperature %q", deviceValue(row, "temperature")))
	}

	systolic := deviceValue(row, "systolic")
	diastolic := deviceValue(row, "diastolic")
	bp := ""
	if systolic != "" && diastolic != "" {
		bp = systolic + "/" + diastolic
	}

	// Alert order is fixed: heart rate, SpO2, blood pressure, temperature.
	var secondary []string
	abnormal := false
	alerts := []struct {
		field string
		label string
	}{
		{"hr_alert", "Abnormal heart rate"},
		{"spo2_alert", "Abnormal SpO2"},
		{"bp_alert", "Abnormal blood pressure"},
		{"temp_alert", "Abnormal temperature"},
	}
	for _, a := range alerts {
		if isAbnormal(deviceValue(row, a.field)) {
			secondary = append(secondary, a.label)
			abnormal = true
		}
	}

	severity := defaultSeverity
	if abnormal {
		severity = "severe"
	}

	primary := defaultPrimary
	if condition := deviceValue(row, "condition"); condition != "" {
		primary = condition
	}

	var noteParts []string
	if fall := deviceValue(row, "fall"); fall != "" {
		noteParts = append(noteParts, "Fall detection: "+fall)
	}
	if acc := deviceValue(row, "accuracy"); acc != "" {
		noteParts = append(noteParts, "Data accuracy: "+acc)
	}

	var vitals *VitalSigns
	if hr != nil || spo2 != nil || temp != nil || bp != "" {
		vitals = &VitalSigns{
			Temperature:      temp,
			BloodPressure:    bp,
			HeartRate:        hr,
			OxygenSaturation: spo2,
		}
	}

	return MedicalRecord{
		PatientInfo: PatientInfo{
			PatientID: patientID,
			Name:      "Patient_" + patientID,
			Age:       defaultDeviceAge,
			Gender:    defaultDeviceGender,
		},
		Symptoms: Symptoms{
			Primary:   []string{primary},
			Secondary: secondary,
			Severity:  severity,
		},
		VitalSigns:      vitals,
		AdditionalNotes: strings.Join(noteParts, "; "),
	}, nil
}

func isAbnormal(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "y", "true", "1", "abnormal", "high", "low", "critical":
		return true
	default:
		return false
	}
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func optionalFloat(raw string) (*float64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	val, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, err
	}
	return &val, nil
}

func optionalInt(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if val, err := strconv.Atoi(raw); err == nil {
		return &val, nil
	}
	// Telemetry exports sometimes write integral values as floats.
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	val := int(f)
	return &val, nil
}
