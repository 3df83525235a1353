package domain

import (
	"errors"
	"math"
	"time"
)

var ErrAssetNotFound = errors.New("asset not found")
var ErrInvalidRisk = errors.New("failure risk must be between 0 and 1")

// Asset is a piece of campus infrastructure tracked for failure risk.
type Asset struct {
	ID              string    `json:"id"`
	CampusID        string    `json:"campusId"`
	Name            string    `json:"name"`
	Type            string    `json:"type"`
	Location        string    `json:"location"`
	FailureRisk     float64   `json:"failureRisk"`
	LastMaintenance time.Time `json:"lastMaintenance"`
}

// HealthStatus classifies a campus health score.
type HealthStatus string

const (
	HealthOptimal  HealthStatus = "OPTIMAL"
	HealthWarning  HealthStatus = "WARNING"
	HealthCritical HealthStatus = "CRITICAL"
)

// CampusHealth is the derived, never-stored health summary of a campus.
type CampusHealth struct {
	Score      int          `json:"score"`
	Status     HealthStatus `json:"status"`
	AssetCount int          `json:"assetCount"`
}

// ComputeHealth derives the campus health score from its assets:
// 100 × (1 − mean failure risk), clamped to [0,100] and rounded.
// A campus with no assets scores 100/OPTIMAL by definition.
// Boundaries are inclusive downward: 80 is OPTIMAL, 50 is WARNING.
func ComputeHealth(assets []*Asset) CampusHealth {
	if len(assets) == 0 {
		return CampusHealth{Score: 100, Status: HealthOptimal}
	}

	var total float64
	for _, a := range assets {
		total += a.FailureRisk
	}
	mean := total / float64(len(assets))

	score := 100 - mean*100
	score = math.Max(0, math.Min(100, score))
	rounded := int(math.Round(score))

	status := HealthOptimal
	if rounded < 80 {
		status = HealthWarning
	}
	if rounded < 50 {
		status = HealthCritical
	}

	return CampusHealth{Score: rounded, Status: status, AssetCount: len(assets)}
}
