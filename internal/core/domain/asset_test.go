package domain

import "testing"

func assetsWithRisks(risks ...float64) []*Asset {
	out := make([]*Asset, 0, len(risks))
	for _, r := range risks {
		out = append(out, &Asset{FailureRisk: r})
	}
	return out
}

func TestComputeHealth_EmptyCampus(t *testing.T) {
	h := ComputeHealth(nil)
	if h.Score != 100 {
		t.Errorf("expected score 100, got %d", h.Score)
	}
	if h.Status != HealthOptimal {
		t.Errorf("expected OPTIMAL, got %s", h.Status)
	}
	if h.AssetCount != 0 {
		t.Errorf("expected 0 assets, got %d", h.AssetCount)
	}
}

func TestComputeHealth_MeanRisk(t *testing.T) {
	// mean risk 0.25 -> score 75
	h := ComputeHealth(assetsWithRisks(0.1, 0.4))
	if h.Score != 75 {
		t.Errorf("expected score 75, got %d", h.Score)
	}
	if h.AssetCount != 2 {
		t.Errorf("expected 2 assets, got %d", h.AssetCount)
	}
}

func TestComputeHealth_StatusBoundaries(t *testing.T) {
	cases := []struct {
		risk   float64
		score  int
		status HealthStatus
	}{
		{0.0, 100, HealthOptimal},
		{0.2, 80, HealthOptimal},  // 80 is inclusive OPTIMAL
		{0.21, 79, HealthWarning}, // just below the boundary
		{0.5, 50, HealthWarning},  // 50 is inclusive WARNING
		{0.51, 49, HealthCritical},
		{1.0, 0, HealthCritical},
	}

	for _, c := range cases {
		h := ComputeHealth(assetsWithRisks(c.risk))
		if h.Score != c.score {
			t.Errorf("risk %v: expected score %d, got %d", c.risk, c.score, h.Score)
		}
		if h.Status != c.status {
			t.Errorf("risk %v: expected status %s, got %s", c.risk, c.status, h.Status)
		}
	}
}

func TestComputeHealth_ScoreRounds(t *testing.T) {
	// mean risk 1/3 -> 66.66… -> 67
	h := ComputeHealth(assetsWithRisks(0, 0.5, 0.5))
	if h.Score != 67 {
		t.Errorf("expected score 67, got %d", h.Score)
	}
}
