package records

// Schema identifies which column vocabulary a CSV uses.
type Schema string

const (
	// SchemaCanonical is the standard medical-record column set.
	SchemaCanonical Schema = "canonical"
	// SchemaDevice is the wearable-device telemetry column set.
	SchemaDevice Schema = "device"
)

// Device column vocabulary. Resolution is by exact match on cleaned
// headers, so canonical underscore names never collide with these.
var deviceColumns = map[string][]string{
	"id":          {"patient number", "patient no", "patient id"},
	"heart_rate":  {"heart rate (bpm)", "heart rate"},
	"spo2":        {"oxygen saturation (spo2%)", "oxygen saturation (%)", "oxygen saturation", "spo2 (%)", "spo2"},
	"systolic":    {"systolic blood pressure (mmhg)", "systolic blood pressure", "systolic"},
	"diastolic":   {"diastolic blood pressure (mmhg)", "diastolic blood pressure", "diastolic"},
	"temperature": {"body temperature (celsius)", "body temperature (c)", "body temperature"},
	"hr_alert":    {"heart rate alert"},
	"spo2_alert":  {"spo2 alert", "oxygen saturation alert"},
	"bp_alert":    {"blood pressure alert"},
	"temp_alert":  {"temperature alert", "body temperature alert"},
	"condition":   {"predicted condition", "predicted disease"},
	"fall":        {"fall detection", "fall detected"},
	"accuracy":    {"data accuracy (%)", "data accuracy"},
}

// DetectSchema classifies a cleaned header set. It is total: any header
// set that does not carry the device blood-pressure pair is canonical.
func DetectSchema(headers []string) Schema {
	present := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		present[h] = struct{}{}
	}
	if hasDeviceColumn(present, "systolic") && hasDeviceColumn(present, "diastolic") {
		return SchemaDevice
	}
	return SchemaCanonical
}

func hasDeviceColumn(present map[string]struct{}, field string) bool {
	for _, name := range deviceColumns[field] {
		if _, ok := present[name]; ok {
			return true
		}
	}
	return false
}

// deviceValue returns the first non-empty cell matching a device field.
func deviceValue(row map[string]string, field string) string {
	for _, name := range deviceColumns[field] {
		if v, ok := row[name]; ok && v != "" {
			return v
		}
	}
	return ""
}
