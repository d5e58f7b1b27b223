package batches

import "sort"

// CountItem is one name/frequency pair in the batch summary.
type CountItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Summary aggregates findings across the successful records of a batch.
type Summary struct {
	TotalConditionsFound       int         `json:"total_conditions_found"`
	MostCommonConditions       []CountItem `json:"most_common_conditions"`
	MostRecommendedMedications []CountItem `json:"most_recommended_medications"`
	AverageConfidence          float64     `json:"average_confidence_score"`
}

const summaryTopN = 10

var confidenceScores = map[string]float64{
	"low":    0.3,
	"medium": 0.6,
	"high":   0.9,
}

// BuildSummary computes frequency statistics over per-record outcomes.
func BuildSummary(outcomes []RecordOutcome) Summary {
	conditionCounts := make(map[string]int)
	medicationCounts := make(map[string]int)
	totalConditions := 0
	confidenceSum := 0.0
	confidenceN := 0

	for _, outcome := range outcomes {
		if outcome.Status != outcomeSuccess {
			continue
		}
		for _, c := range outcome.Conditions {
			conditionCounts[c]++
			totalConditions++
		}
		for _, m := range outcome.Medications {
			medicationCounts[m]++
		}
		if score, ok := confidenceScores[outcome.Confidence]; ok {
			confidenceSum += score
			confidenceN++
		}
	}

	avg := 0.0
	if confidenceN > 0 {
		avg = confidenceSum / float64(confidenceN)
	}

	return Summary{
		TotalConditionsFound:       totalConditions,
		MostCommonConditions:       topCounts(conditionCounts, summaryTopN),
		MostRecommendedMedications: topCounts(medicationCounts, summaryTopN),
		AverageConfidence:          avg,
	}
}

// topCounts returns the n highest counts, ties broken by name for
// deterministic output.
func topCounts(counts map[string]int, n int) []CountItem {
	items := make([]CountItem, 0, len(counts))
	for name, count := range counts {
		items = append(items, CountItem{Name: name, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Name < items[j].Name
	})
	if len(items) > n {
		items = items[:n]
	}
	return items
}

// batchRecommendations mirrors the guidance attached to every finished batch.
func batchRecommendations(rs ResultSet) []string {
	recs := []string{
		"Review AI-generated analyses with a qualified healthcare provider before acting on them.",
	}
	if rs.FailedAnalyses > 0 {
		recs = append(recs, "Re-submit failed records after correcting the reported row errors.")
	}
	if rs.Summary.AverageConfidence > 0 && rs.Summary.AverageConfidence < 0.5 {
		recs = append(recs, "Overall confidence is low; collect additional clinical detail and re-run the analysis.")
	}
	return recs
}
