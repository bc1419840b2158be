package profile

import (
	"AllocAdvisor/internal/model"
)

// AggressiveMatrix maps career stage and risk level to the fraction of
// capital eligible for risk assets. Keys absent from a custom matrix fall
// back to the built-in defaults.
type AggressiveMatrix map[model.CareerStage]map[model.RiskLevel]float64

// DefaultMatrix returns the built-in appropriateness table. Early-career
// investors get the most headroom, late-career the least, and within a
// stage the ratio rises with stated risk tolerance.
func DefaultMatrix() AggressiveMatrix {
	return AggressiveMatrix{
		model.CareerEarly: {
			model.RiskVeryConservative: 0.15,
			model.RiskConservative:     0.15,
			model.RiskModerate:         0.35,
			model.RiskAggressive:       0.65,
			model.RiskVeryAggressive:   0.65,
		},
		model.CareerMid: {
			model.RiskVeryConservative: 0.25,
			model.RiskConservative:     0.25,
			model.RiskModerate:         0.50,
			model.RiskAggressive:       0.80,
			model.RiskVeryAggressive:   0.80,
		},
		model.CareerLate: {
			model.RiskVeryConservative: 0.10,
			model.RiskConservative:     0.10,
			model.RiskModerate:         0.25,
			model.RiskAggressive:       0.60,
			model.RiskVeryAggressive:   0.60,
		},
	}
}

// Assess derives the capital split for a (defaulted) profile. A nil matrix
// uses the built-in table; so does any stage/level pair the given matrix
// does not cover.
func Assess(p model.UserProfile, matrix AggressiveMatrix) model.Suitability {
	p = ApplyDefaults(p)

	ratio, ok := lookup(matrix, p.CareerStage, p.RiskLevel)
	if !ok {
		ratio, _ = lookup(DefaultMatrix(), p.CareerStage, p.RiskLevel)
	}

	return model.Suitability{
		CareerStage:       p.CareerStage,
		RiskLevel:         p.RiskLevel,
		AggressiveRatio:   ratio,
		AggressiveCapital: p.TotalCapital * ratio,
	}
}

func lookup(m AggressiveMatrix, stage model.CareerStage, level model.RiskLevel) (float64, bool) {
	if m == nil {
		return 0, false
	}
	levels, ok := m[stage]
	if !ok {
		return 0, false
	}
	ratio, ok := levels[level]
	return ratio, ok
}
