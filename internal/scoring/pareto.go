package scoring

import "math"

// tradeoff is a country's position across the three categories, oriented so
// higher is better on every axis. Missing scores count as the worst possible.
type tradeoff [3]float64

func tradeoffOf(s CategoryScores) tradeoff {
	t := tradeoff{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	if v := s.TravelRisk.Score; v != nil {
		t[0] = 100 - *v
	}
	if v := s.HealthInfra.Score; v != nil {
		t[1] = *v
	}
	if v := s.EnvStability.Score; v != nil {
		t[2] = *v
	}
	return t
}

// ParetoFrontier reports, for each entry, whether no other entry is at least
// as good in every category and strictly better in one. Unlike the composite
// score it does not depend on the weights.
func ParetoFrontier(scores []CategoryScores) []bool {
	points := make([]tradeoff, len(scores))
	for i, s := range scores {
		points[i] = tradeoffOf(s)
	}

	frontier := make([]bool, len(points))
	for i := range points {
		dominated := false
		for j := range points {
			if i != j && dominates(points[j], points[i]) {
				dominated = true
				break
			}
		}
		frontier[i] = !dominated
	}
	return frontier
}

func dominates(a, b tradeoff) bool {
	strictly := false
	for k := range a {
		if a[k] < b[k] {
			return false
		}
		if a[k] > b[k] {
			strictly = true
		}
	}
	return strictly
}
