package analyses

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Reasoning models often wrap their JSON in prose, markdown fences, or
// abandon JSON entirely when the completion is truncated. DecodeResponse
// works through progressively weaker extraction tiers and never fails:
// the last tier is a degraded result that flags the record for manual
// review. The returned bool reports whether that fallback was used.
func DecodeResponse(raw string) (AnalysisResult, bool) {
	raw = strings.TrimSpace(raw)

	if result, ok := decodeJSONPayload(raw); ok {
		return result, false
	}
	if block := extractFencedJSON(raw); block != "" {
		if result, ok := decodeJSONPayload(block); ok {
			return result, false
		}
	}
	if block := extractEmbeddedJSON(raw); block != "" {
		if result, ok := decodeJSONPayload(block); ok {
			return result, false
		}
	}
	if result, ok := salvageStructuredText(raw); ok {
		return result, false
	}
	return degradedResult(), true
}

func degradedResult() AnalysisResult {
	return AnalysisResult{
		SuspectedConditions:    []string{"Medical evaluation required"},
		RecommendedMedications: []MedicationRecommendation{},
		AdditionalTests:        []string{"Complete medical examination"},
		TreatmentNotes:         "AI response could not be parsed. Please consult a healthcare provider for evaluation.",
		ConfidenceLevel:        ConfidenceLow,
	}
}

func decodeJSONPayload(raw string) (AnalysisResult, bool) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return AnalysisResult{}, false
	}
	return payloadToResult(payload)
}

func payloadToResult(payload map[string]any) (AnalysisResult, bool) {
	conditions := stringList(payload["suspected_conditions"])
	medications := medicationList(payload["recommended_medications"])
	if len(conditions) == 0 && len(medications) == 0 {
		return AnalysisResult{}, false
	}
	if len(conditions) == 0 {
		conditions = []string{"Medical evaluation required"}
	}

	result := AnalysisResult{
		SuspectedConditions:    conditions,
		RecommendedMedications: medications,
		AdditionalTests:        stringList(payload["additional_tests"]),
		RiskFactors:            stringList(payload["risk_factors"]),
		TreatmentNotes:         stringValue(payload["treatment_notes"]),
		ConfidenceLevel:        normalizeConfidence(stringValue(payload["confidence_level"])),
	}
	if result.RecommendedMedications == nil {
		result.RecommendedMedications = []MedicationRecommendation{}
	}
	if result.AdditionalTests == nil {
		result.AdditionalTests = []string{}
	}
	return result, true
}

var (
	fencedJSONRe   = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	conditionsRe   = regexp.MustCompile(`(?i)suspected\s+conditions?\s*:?\s*`)
	listItemRe     = regexp.MustCompile(`^\s*(?:[-*\x{2022}]|\d+[.)])\s*(.+)$`)
	medNameFieldRe = regexp.MustCompile(`(?i)"?medication_name"?\s*[:=]\s*"([^"]+)"`)
)

func extractFencedJSON(raw string) string {
	if m := fencedJSONRe.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return ""
}

// extractEmbeddedJSON returns the widest brace-delimited substring. A
// truncated object fails to unmarshal and falls through to salvage.
func extractEmbeddedJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}

var commonMedications = []string{
	"paracetamol", "acetaminophen", "ibuprofen", "aspirin", "amoxicillin",
	"azithromycin", "metformin", "omeprazole", "lisinopril", "amlodipine",
	"atorvastatin", "salbutamol", "albuterol", "prednisone", "cetirizine",
}

var commonTests = []string{
	"ecg", "ekg", "troponin", "chest x-ray", "x-ray", "blood test",
	"complete blood count", "cbc", "mri", "ct scan", "ultrasound",
	"urinalysis", "blood glucose", "lipid panel",
}

var commonRiskFactors = []string{
	"smoking", "obesity", "hypertension", "diabetes", "sedentary",
	"alcohol", "family history", "advanced age",
}

// salvageStructuredText pulls findings out of non-JSON prose. It succeeds
// only when at least one suspected condition can be identified.
func salvageStructuredText(raw string) (AnalysisResult, bool) {
	conditions := salvageConditions(raw)
	if len(conditions) == 0 {
		return AnalysisResult{}, false
	}

	result := AnalysisResult{
		SuspectedConditions:    conditions,
		RecommendedMedications: salvageMedications(raw),
		AdditionalTests:        salvageKeywords(raw, commonTests),
		RiskFactors:            salvageKeywords(raw, commonRiskFactors),
		TreatmentNotes:         "Extracted from unstructured AI response; verify with a healthcare provider.",
		ConfidenceLevel:        salvageConfidence(raw),
	}
	if result.RecommendedMedications == nil {
		result.RecommendedMedications = []MedicationRecommendation{}
	}
	if result.AdditionalTests == nil {
		result.AdditionalTests = []string{}
	}
	return result, true
}

func salvageConditions(raw string) []string {
	loc := conditionsRe.FindStringIndex(raw)
	if loc == nil {
		return nil
	}
	lines := strings.Split(raw[loc[1]:], "\n")

	var conditions []string
	for _, line := range lines {
		if m := listItemRe.FindStringSubmatch(line); m != nil {
			// List form: bullet or numbered items under the heading.
			if c := cleanSalvagedItem(m[1]); c != "" {
				conditions = append(conditions, c)
			}
			continue
		}
		if len(conditions) > 0 {
			break
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		// Inline form: "Suspected Conditions: A, B. ..."
		sentence := strings.SplitN(trimmed, ".", 2)[0]
		for _, part := range strings.Split(sentence, ",") {
			if c := cleanSalvagedItem(part); c != "" {
				conditions = append(conditions, c)
			}
		}
		break
	}
	return conditions
}

func cleanSalvagedItem(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`+"`")
	s = strings.TrimRight(s, ".;:")
	if len(s) > 100 {
		s = s[:100]
	}
	return strings.TrimSpace(s)
}

func salvageMedications(raw string) []MedicationRecommendation {
	var meds []MedicationRecommendation
	seen := make(map[string]struct{})

	for _, m := range medNameFieldRe.FindAllStringSubmatch(raw, -1) {
		name := cleanSalvagedItem(m[1])
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		meds = append(meds, MedicationRecommendation{
			MedicationName: name,
			Dosage:         "As directed",
			Frequency:      "As needed",
			Instructions:   "Consult healthcare provider for proper dosing",
		})
	}

	lower := strings.ToLower(raw)
	for _, name := range commonMedications {
		if !strings.Contains(lower, name) {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		meds = append(meds, MedicationRecommendation{
			MedicationName: strings.ToUpper(name[:1]) + name[1:],
			Dosage:         "As directed",
			Frequency:      "As needed",
			Instructions:   "Consult healthcare provider for proper dosing",
		})
	}
	return meds
}

func salvageKeywords(raw string, vocab []string) []string {
	lower := strings.ToLower(raw)
	var out []string
	seen := make(map[string]struct{})
	for _, kw := range vocab {
		if !strings.Contains(lower, kw) {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

func salvageConfidence(raw string) string {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "high confidence"):
		return ConfidenceHigh
	case strings.Contains(lower, "low confidence"):
		return ConfidenceLow
	default:
		return ConfidenceMedium
	}
}

func normalizeConfidence(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ConfidenceHigh:
		return ConfidenceHigh
	case ConfidenceLow:
		return ConfidenceLow
	default:
		return ConfidenceMedium
	}
}

func stringValue(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func stringList(v any) []string {
	switch val := v.(type) {
	case []any:
		var out []string
		for _, item := range val {
			if s := stringValue(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if s := strings.TrimSpace(val); s != "" {
			return []string{s}
		}
	}
	return nil
}

func medicationList(v any) []MedicationRecommendation {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var meds []MedicationRecommendation
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			if name := stringValue(item); name != "" {
				meds = append(meds, MedicationRecommendation{
					MedicationName: name,
					Dosage:         "As directed",
					Frequency:      "As needed",
				})
			}
			continue
		}
		name := stringValue(obj["medication_name"])
		if name == "" {
			name = stringValue(obj["name"])
		}
		if name == "" {
			continue
		}
		med := MedicationRecommendation{
			MedicationName:    name,
			Dosage:            stringValue(obj["dosage"]),
			Frequency:         stringValue(obj["frequency"]),
			Duration:          stringValue(obj["duration"]),
			Instructions:      stringValue(obj["instructions"]),
			Contraindications: stringList(obj["contraindications"]),
			SideEffects:       stringList(obj["side_effects"]),
		}
		if med.Dosage == "" {
			med.Dosage = "As directed"
		}
		if med.Frequency == "" {
			med.Frequency = "As needed"
		}
		if score, ok := obj["confidence_score"].(float64); ok {
			med.ConfidenceScore = score
		}
		meds = append(meds, med)
	}
	return meds
}
