package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mixedScores() CategoryScores {
	return CategoryScores{
		TravelRisk: TravelRiskResult{
			Score:     float64Ptr(10),
			Breakdown: TravelRiskBreakdown{AQIRisk: float64Ptr(12), TemperatureRisk: float64Ptr(4)},
		},
		HealthInfra:  HealthInfraResult{Score: float64Ptr(80)},
		EnvStability: EnvStabilityResult{Score: float64Ptr(30)},
	}
}

func TestReasoningFactors(t *testing.T) {
	factors := reasoningFactors(mixedScores())
	require.Len(t, factors, 4)

	assert.Equal(t, Factor{Type: FactorPositive, Text: "low travel risk", Impact: ImpactHigh, Score: float64Ptr(10)}, factors[0])
	assert.Equal(t, FactorPositive, factors[1].Type)
	assert.Equal(t, "strong healthcare infrastructure", factors[1].Text)
	assert.Equal(t, FactorNegative, factors[2].Type)
	assert.Equal(t, "poor environmental conditions", factors[2].Text)
	assert.Equal(t, Factor{Type: FactorNegative, Text: "high AQI contributing to travel risk", Impact: ImpactMedium}, factors[3])
}

func TestReasoningThresholds(t *testing.T) {
	tests := []struct {
		name   string
		scores CategoryScores
		text   string
		typ    FactorType
	}{
		{"travel 25 positive", CategoryScores{TravelRisk: TravelRiskResult{Score: float64Ptr(25)}}, "low travel risk", FactorPositive},
		{"travel 50 negative", CategoryScores{TravelRisk: TravelRiskResult{Score: float64Ptr(50)}}, "elevated travel risk", FactorNegative},
		{"travel 30 neutral", CategoryScores{TravelRisk: TravelRiskResult{Score: float64Ptr(30)}}, "moderate travel risk", FactorNeutral},
		{"health 75 positive", CategoryScores{HealthInfra: HealthInfraResult{Score: float64Ptr(75)}}, "strong healthcare infrastructure", FactorPositive},
		{"health 45 negative", CategoryScores{HealthInfra: HealthInfraResult{Score: float64Ptr(45)}}, "limited healthcare infrastructure", FactorNegative},
		{"health 60 neutral", CategoryScores{HealthInfra: HealthInfraResult{Score: float64Ptr(60)}}, "adequate healthcare infrastructure", FactorNeutral},
		{"env 75 positive", CategoryScores{EnvStability: EnvStabilityResult{Score: float64Ptr(75)}}, "excellent environmental stability", FactorPositive},
		{"env 40 negative", CategoryScores{EnvStability: EnvStabilityResult{Score: float64Ptr(40)}}, "poor environmental conditions", FactorNegative},
		{"env 41 neutral", CategoryScores{EnvStability: EnvStabilityResult{Score: float64Ptr(41)}}, "moderate environmental conditions", FactorNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factors := reasoningFactors(tt.scores)
			require.Len(t, factors, 1)
			assert.Equal(t, tt.text, factors[0].Text)
			assert.Equal(t, tt.typ, factors[0].Type)
			if tt.typ == FactorNeutral {
				assert.Equal(t, ImpactMedium, factors[0].Impact)
			} else {
				assert.Equal(t, ImpactHigh, factors[0].Impact)
			}
		})
	}
}

func TestTemperatureCallout(t *testing.T) {
	scores := CategoryScores{TravelRisk: TravelRiskResult{
		Score:     float64Ptr(40),
		Breakdown: TravelRiskBreakdown{TemperatureRisk: float64Ptr(10.5)},
	}}
	factors := reasoningFactors(scores)
	require.Len(t, factors, 2)
	assert.Equal(t, "temperature extremes detected", factors[1].Text)
}

func TestBuildReasoningSummaries(t *testing.T) {
	w := GetWeights("moderate", "short-term")

	t.Run("first", func(t *testing.T) {
		r := buildReasoning("Xland", 1, 3, mixedScores(), w)
		assert.Equal(t, "Xland ranks #1 out of 3 destinations. Boosted by low travel risk and strong healthcare infrastructure. Minor concerns: poor environmental conditions, high AQI contributing to travel risk.", r.Summary)
		assert.Equal(t, w, r.WeightProfile)
	})

	t.Run("last", func(t *testing.T) {
		r := buildReasoning("Xland", 3, 3, mixedScores(), w)
		assert.Equal(t, "Xland ranks last (#3 of 3). Ranked lower due to poor environmental conditions and high AQI contributing to travel risk. Positives include low travel risk and strong healthcare infrastructure.", r.Summary)
	})

	t.Run("middle", func(t *testing.T) {
		r := buildReasoning("Xland", 2, 3, mixedScores(), w)
		assert.Equal(t, "Xland ranks #2 of 3. benefits from low travel risk; benefits from strong healthcare infrastructure; held back by poor environmental conditions.", r.Summary)
	})

	t.Run("middle neutral", func(t *testing.T) {
		scores := CategoryScores{TravelRisk: TravelRiskResult{Score: float64Ptr(30)}}
		r := buildReasoning("Yland", 2, 4, scores, w)
		assert.Equal(t, "Yland ranks #2 of 4. shows moderate travel risk.", r.Summary)
	})

	t.Run("first without concerns is trimmed", func(t *testing.T) {
		scores := CategoryScores{HealthInfra: HealthInfraResult{Score: float64Ptr(90)}}
		r := buildReasoning("Zland", 1, 1, scores, w)
		assert.Equal(t, "Zland ranks #1 out of 1 destinations. Boosted by strong healthcare infrastructure.", r.Summary)
	})

	t.Run("middle without factors", func(t *testing.T) {
		r := buildReasoning("Empty", 2, 3, CategoryScores{}, w)
		assert.Equal(t, "Empty ranks #2 of 3.", r.Summary)
		assert.NotNil(t, r.Factors)
		assert.Empty(t, r.Factors)
	})
}
