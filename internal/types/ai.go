package types

import (
	"encoding/json"
	"fmt"
)

// ErrorKey marks a failed AI pipeline result.
const ErrorKey = "error"

// AIResult is the decoded JSON object produced by the menu extractor or the
// dish classifier. Failures are reported in-band as {"error": "..."}.
type AIResult map[string]interface{}

func ErrorResult(message string) AIResult {
	return AIResult{ErrorKey: message}
}

// ErrorMessage reports whether the result is a failure and, if so, its message.
func (r AIResult) ErrorMessage() (string, bool) {
	v, ok := r[ErrorKey]
	if !ok {
		return "", false
	}
	switch msg := v.(type) {
	case string:
		return msg, true
	case nil:
		return "", true
	default:
		if b, err := json.Marshal(msg); err == nil {
			return string(b), true
		}
		return fmt.Sprint(msg), true
	}
}

// RecommendationResult is what the orchestrator hands back to API clients.
type RecommendationResult struct {
	Menu            AIResult                  `json:"menu,omitempty"`
	Recommendations AIResult                  `json:"recommendations,omitempty"`
	Preferences     ClassificationPreferences `json:"preferences"`
	Guest           bool                      `json:"guest"`
	ArchivedImage   string                    `json:"archivedImage,omitempty"`
}
