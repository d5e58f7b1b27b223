package records

import "testing"

func TestDetectSchemaDevice(t *testing.T) {
	headers := []string{
		"patient number",
		"heart rate (bpm)",
		"oxygen saturation (spo2%)",
		"systolic blood pressure (mmhg)",
		"diastolic blood pressure (mmhg)",
		"body temperature (celsius)",
		"heart rate alert",
	}
	if got := DetectSchema(headers); got != SchemaDevice {
		t.Fatalf("DetectSchema = %q, want %q", got, SchemaDevice)
	}
}

func TestDetectSchemaCanonical(t *testing.T) {
	headers := []string{"patient_id", "name", "age", "gender", "symptoms", "blood_pressure", "heart_rate"}
	if got := DetectSchema(headers); got != SchemaCanonical {
		t.Fatalf("DetectSchema = %q, want %q", got, SchemaCanonical)
	}
}

func TestDetectSchemaDefaultsToCanonical(t *testing.T) {
	// Unknown vocabularies classify as canonical; detection is total.
	cases := [][]string{
		{},
		{"foo", "bar"},
		{"systolic blood pressure (mmhg)"}, // missing diastolic pair
	}
	for _, headers := range cases {
		if got := DetectSchema(headers); got != SchemaCanonical {
			t.Fatalf("DetectSchema(%v) = %q, want %q", headers, got, SchemaCanonical)
		}
	}
}
