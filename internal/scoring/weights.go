package scoring

import (
	"fmt"
	"math"
	"strings"
)

// RiskTolerance is how much travel risk the user accepts.
type RiskTolerance string

const (
	RiskLow      RiskTolerance = "low"
	RiskModerate RiskTolerance = "moderate"
	RiskHigh     RiskTolerance = "high"
)

// Duration is the planned length of stay.
type Duration string

const (
	DurationShortTerm Duration = "short-term"
	DurationLongTerm  Duration = "long-term"
)

func (r RiskTolerance) Valid() bool {
	switch r {
	case RiskLow, RiskModerate, RiskHigh:
		return true
	}
	return false
}

func (d Duration) Valid() bool {
	return d == DurationShortTerm || d == DurationLongTerm
}

// ParseRiskTolerance is case-insensitive and falls back to moderate.
func ParseRiskTolerance(s string) RiskTolerance {
	r := RiskTolerance(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return RiskModerate
	}
	return r
}

// ParseDuration is case-insensitive and falls back to short-term.
func ParseDuration(s string) Duration {
	d := Duration(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return DurationShortTerm
	}
	return d
}

// Weights is the relative importance of the three categories.
// All weights must sum to 1.0 (±0.01 after rounding).
type Weights struct {
	TravelRisk   float64 `json:"travel_risk"`
	HealthInfra  float64 `json:"health_infra"`
	EnvStability float64 `json:"env_stability"`
}

const minCategoryWeight = 0.05

func (w Weights) Sum() float64 {
	return w.TravelRisk + w.HealthInfra + w.EnvStability
}

// Validate checks that weights sum to 1.0 and none are negative.
func (w Weights) Validate() error {
	if math.Abs(w.Sum()-1.0) > 0.01 {
		return fmt.Errorf("weights sum to %.4f, must sum to 1.0", w.Sum())
	}
	for _, v := range []float64{w.TravelRisk, w.HealthInfra, w.EnvStability} {
		if v < 0 {
			return fmt.Errorf("negative weight: %f", v)
		}
	}
	return nil
}

func baseWeights(r RiskTolerance) Weights {
	switch r {
	case RiskLow:
		return Weights{TravelRisk: 0.40, HealthInfra: 0.25, EnvStability: 0.35}
	case RiskHigh:
		return Weights{TravelRisk: 0.18, HealthInfra: 0.35, EnvStability: 0.47}
	default:
		return Weights{TravelRisk: 0.30, HealthInfra: 0.30, EnvStability: 0.40}
	}
}

func durationShift(d Duration) Weights {
	if d == DurationLongTerm {
		return Weights{TravelRisk: -0.10, HealthInfra: 0.15, EnvStability: -0.05}
	}
	return Weights{TravelRisk: 0.05, HealthInfra: -0.10, EnvStability: 0.05}
}

// WeightsFor derives the category weights for a risk tolerance and duration.
// Long stays shift weight toward healthcare, short trips toward travel risk.
func WeightsFor(r RiskTolerance, d Duration) Weights {
	base := baseWeights(r)
	shift := durationShift(d)

	w := Weights{
		TravelRisk:   math.Max(minCategoryWeight, base.TravelRisk+shift.TravelRisk),
		HealthInfra:  math.Max(minCategoryWeight, base.HealthInfra+shift.HealthInfra),
		EnvStability: math.Max(minCategoryWeight, base.EnvStability+shift.EnvStability),
	}
	total := w.Sum()
	return Weights{
		TravelRisk:   round3(w.TravelRisk / total),
		HealthInfra:  round3(w.HealthInfra / total),
		EnvStability: round3(w.EnvStability / total),
	}
}

// GetWeights accepts free-form strings; unrecognised values fall back to
// moderate and short-term.
func GetWeights(riskTolerance, duration string) Weights {
	return WeightsFor(ParseRiskTolerance(riskTolerance), ParseDuration(duration))
}
