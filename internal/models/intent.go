package models

// UnknownIntent is the sentinel tag returned when no label clears the confidence threshold.
const UnknownIntent = "unknown"

// Intent is one catalog record.
type Intent struct {
	Tag       string   `json:"tag"`
	Patterns  []string `json:"patterns,omitempty"`
	Responses []string `json:"responses"`
}

// ClassificationResult pairs an intent tag with its score.
type ClassificationResult struct {
	Intent      string  `json:"intent"`
	Probability float64 `json:"probability"`
}

// TopIntent returns the first tag of a ranked result list, or UnknownIntent.
func TopIntent(results []ClassificationResult) string {
	if len(results) == 0 {
		return UnknownIntent
	}
	return results[0].Intent
}
