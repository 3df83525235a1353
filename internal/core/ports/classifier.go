package ports

import "context"

// Analysis is the classifier's verdict on a complaint text.
type Analysis struct {
	Category string `json:"category"`
	Priority string `json:"priority"`
	Summary  string `json:"summary"`
	IsHazard bool   `json:"isHazard"`
}

// Classifier maps free-form complaint text to a category and priority.
// It is an opaque external collaborator; failures must degrade to
// FallbackAnalysis and never block ticket creation.
type Classifier interface {
	Classify(ctx context.Context, text string) (Analysis, error)
}

// FallbackAnalysis is the safe default applied when the classifier is
// unavailable or returns garbage.
func FallbackAnalysis() Analysis {
	return Analysis{
		Category: "Other",
		Priority: "MEDIUM",
		Summary:  "Issue requires manual review",
		IsHazard: false,
	}
}
