package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"AllocAdvisor/internal/model"
)

func TestAssessMatrixLookup(t *testing.T) {
	cases := []struct {
		stage model.CareerStage
		level model.RiskLevel
		want  float64
	}{
		{model.CareerEarly, model.RiskVeryConservative, 0.15},
		{model.CareerEarly, model.RiskModerate, 0.35},
		{model.CareerEarly, model.RiskVeryAggressive, 0.65},
		{model.CareerMid, model.RiskConservative, 0.25},
		{model.CareerMid, model.RiskModerate, 0.50},
		{model.CareerMid, model.RiskAggressive, 0.80},
		{model.CareerLate, model.RiskVeryConservative, 0.10},
		{model.CareerLate, model.RiskModerate, 0.25},
		{model.CareerLate, model.RiskVeryAggressive, 0.60},
	}
	for _, tc := range cases {
		s := Assess(model.UserProfile{
			Age:          40,
			CareerStage:  tc.stage,
			RiskLevel:    tc.level,
			TotalCapital: 100000,
		}, nil)
		assert.InDelta(t, tc.want, s.AggressiveRatio, 1e-9, "%s/%d", tc.stage, tc.level)
		assert.InDelta(t, tc.want*100000, s.AggressiveCapital, 1e-6)
	}
}

func TestAssessDefaultsWhenEmpty(t *testing.T) {
	s := Assess(model.UserProfile{TotalCapital: 50000}, nil)
	assert.Equal(t, model.CareerMid, s.CareerStage)
	assert.Equal(t, model.RiskModerate, s.RiskLevel)
	assert.InDelta(t, 0.50, s.AggressiveRatio, 1e-9)
	assert.InDelta(t, 25000, s.AggressiveCapital, 1e-6)
}

func TestAssessCustomMatrixFallsBack(t *testing.T) {
	custom := AggressiveMatrix{
		model.CareerEarly: {model.RiskModerate: 0.42},
	}

	overridden := Assess(model.UserProfile{
		Age: 30, RiskLevel: model.RiskModerate, TotalCapital: 1000,
	}, custom)
	assert.InDelta(t, 0.42, overridden.AggressiveRatio, 1e-9)

	// Pair missing from the custom matrix uses the built-in table.
	fallback := Assess(model.UserProfile{
		Age: 55, RiskLevel: model.RiskAggressive, TotalCapital: 1000,
	}, custom)
	assert.InDelta(t, 0.60, fallback.AggressiveRatio, 1e-9)
}
