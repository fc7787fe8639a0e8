package scoring

import (
	"fmt"
	"strings"
)

type FactorType string

const (
	FactorPositive FactorType = "positive"
	FactorNegative FactorType = "negative"
	FactorNeutral  FactorType = "neutral"
)

type Impact string

const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
)

// Factor is one human-readable observation behind a ranking.
type Factor struct {
	Type   FactorType `json:"type"`
	Text   string     `json:"text"`
	Impact Impact     `json:"impact"`
	Score  *float64   `json:"score,omitempty"`
}

type Reasoning struct {
	Summary       string   `json:"summary"`
	Factors       []Factor `json:"factors"`
	WeightProfile Weights  `json:"weight_profile"`
}

// Sub-factor penalties above this many points get their own call-out.
const calloutThreshold = 10

// classify buckets a category score. lowIsGood flips the comparison for
// penalty-style scores such as travel risk.
func classify(score *float64, good, bad float64, lowIsGood bool, texts [3]string) (Factor, bool) {
	if score == nil {
		return Factor{}, false
	}
	s := *score
	isGood, isBad := s >= good, s <= bad
	if lowIsGood {
		isGood, isBad = s <= good, s >= bad
	}
	switch {
	case isGood:
		return Factor{Type: FactorPositive, Text: texts[0], Impact: ImpactHigh, Score: ptr(s)}, true
	case isBad:
		return Factor{Type: FactorNegative, Text: texts[1], Impact: ImpactHigh, Score: ptr(s)}, true
	default:
		return Factor{Type: FactorNeutral, Text: texts[2], Impact: ImpactMedium, Score: ptr(s)}, true
	}
}

func reasoningFactors(scores CategoryScores) []Factor {
	factors := make([]Factor, 0, 5)
	if f, ok := classify(scores.TravelRisk.Score, 25, 50, true,
		[3]string{"low travel risk", "elevated travel risk", "moderate travel risk"}); ok {
		factors = append(factors, f)
	}
	if f, ok := classify(scores.HealthInfra.Score, 75, 45, false,
		[3]string{"strong healthcare infrastructure", "limited healthcare infrastructure", "adequate healthcare infrastructure"}); ok {
		factors = append(factors, f)
	}
	if f, ok := classify(scores.EnvStability.Score, 75, 40, false,
		[3]string{"excellent environmental stability", "poor environmental conditions", "moderate environmental conditions"}); ok {
		factors = append(factors, f)
	}

	b := scores.TravelRisk.Breakdown
	if b.AQIRisk != nil && *b.AQIRisk > calloutThreshold {
		factors = append(factors, Factor{Type: FactorNegative, Text: "high AQI contributing to travel risk", Impact: ImpactMedium})
	}
	if b.TemperatureRisk != nil && *b.TemperatureRisk > calloutThreshold {
		factors = append(factors, Factor{Type: FactorNegative, Text: "temperature extremes detected", Impact: ImpactMedium})
	}
	return factors
}

// buildReasoning explains a ranking position. The summary leads with
// strengths for the winner, weaknesses for the last place and a short
// mixed list for everything in between.
func buildReasoning(name string, rank, total int, scores CategoryScores, weights Weights) Reasoning {
	factors := reasoningFactors(scores)
	positives := textsOf(factors, FactorPositive)
	negatives := textsOf(factors, FactorNegative)

	var sb strings.Builder
	switch {
	case rank == 1:
		fmt.Fprintf(&sb, "%s ranks #1 out of %d destinations. ", name, total)
		if len(positives) > 0 {
			fmt.Fprintf(&sb, "Boosted by %s. ", strings.Join(positives, " and "))
		}
		if len(negatives) > 0 {
			fmt.Fprintf(&sb, "Minor concerns: %s.", strings.Join(negatives, ", "))
		}
	case rank == total:
		fmt.Fprintf(&sb, "%s ranks last (#%d of %d). ", name, rank, total)
		if len(negatives) > 0 {
			fmt.Fprintf(&sb, "Ranked lower due to %s. ", strings.Join(negatives, " and "))
		}
		if len(positives) > 0 {
			fmt.Fprintf(&sb, "Positives include %s.", strings.Join(positives, " and "))
		}
	default:
		fmt.Fprintf(&sb, "%s ranks #%d of %d. ", name, rank, total)
		var parts []string
		for i, f := range factors {
			if i == 3 {
				break
			}
			switch f.Type {
			case FactorPositive:
				parts = append(parts, "benefits from "+f.Text)
			case FactorNegative:
				parts = append(parts, "held back by "+f.Text)
			default:
				parts = append(parts, "shows "+f.Text)
			}
		}
		if len(parts) > 0 {
			sb.WriteString(strings.Join(parts, "; ") + ".")
		}
	}

	return Reasoning{
		Summary:       strings.TrimSpace(sb.String()),
		Factors:       factors,
		WeightProfile: weights,
	}
}

func textsOf(factors []Factor, t FactorType) []string {
	var out []string
	for _, f := range factors {
		if f.Type == t {
			out = append(out, f.Text)
		}
	}
	return out
}
