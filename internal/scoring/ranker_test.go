package scoring

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Compass/internal/restcountries"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRanker() *Ranker {
	r := NewRanker(discardLogger())
	r.now = func() time.Time { return time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC) }
	return r
}

func france() CountryData {
	return CountryData{
		Profile:     &restcountries.Profile{Name: "France", Capital: "Paris", Region: "Europe", Subregion: "Western Europe", Population: 67_000_000, FlagEmoji: "🇫🇷"},
		Weather:     mildWeather(),
		AirQuality:  moderateAir(),
		CacheStatus: map[string]string{"country": "miss", "weather": "hit", "aqi": "miss"},
	}
}

func chadProfileOnly() CountryData {
	return CountryData{
		Profile: &restcountries.Profile{Name: "Chad", Capital: "N'Djamena", Region: "Africa", Subregion: "Middle Africa"},
		Errors:  []string{"Open-Meteo Weather: timeout", "Open-Meteo AQI: timeout"},
	}
}

func TestCompositeInvertsTravelRisk(t *testing.T) {
	scores := CategoryScores{
		TravelRisk:   TravelRiskResult{Score: float64Ptr(17.5)},
		HealthInfra:  HealthInfraResult{Score: float64Ptr(74.11)},
		EnvStability: EnvStabilityResult{Score: float64Ptr(83.25)},
	}
	w := GetWeights("moderate", "short-term")
	assertScore(t, "composite", Composite(scores, w), 81.16)

	onlyRisk := CategoryScores{TravelRisk: TravelRiskResult{Score: float64Ptr(30)}}
	assertScore(t, "risk only", Composite(onlyRisk, w), 70)

	assert.Nil(t, Composite(CategoryScores{}, w))
}

func TestRankCountriesEndToEnd(t *testing.T) {
	// The third requested country failed lookup and never reaches the ranker.
	entries := []CountryData{chadProfileOnly(), france()}

	res := testRanker().Rank(context.Background(), entries, "moderate", "short-term")
	require.Len(t, res.Rankings, 2)

	first, second := res.Rankings[0], res.Rankings[1]
	assert.Equal(t, "France", first.CountryName)
	assert.Equal(t, 1, first.Rank)
	assert.Equal(t, "Chad", second.CountryName)
	assert.Equal(t, 2, second.Rank)

	require.NotNil(t, first.Scores.TravelRisk.Score)
	require.NotNil(t, first.Scores.HealthInfra.Score)
	require.NotNil(t, first.Scores.EnvStability.Score)
	assertScore(t, "france composite", first.CompositeScore, 81.16)
	assert.False(t, first.HasPartialData)
	assert.Equal(t, "hit", first.CacheStatus["weather"])
	assert.Equal(t, "Slight rain", first.CurrentConditions.WeatherDescription)
	assert.Equal(t, "Moderate", first.CurrentConditions.AQICategory)

	assert.Nil(t, second.Scores.TravelRisk.Score)
	assert.Nil(t, second.Scores.EnvStability.Score)
	require.NotNil(t, second.Scores.HealthInfra.Score)
	assertScore(t, "chad composite", second.CompositeScore, 29.29)
	assert.True(t, second.HasPartialData)
	assert.Equal(t, "N/A", second.CurrentConditions.WeatherDescription)
	assert.Equal(t, "#888", second.CurrentConditions.AQIColor)

	assert.True(t, first.ParetoOptimal)
	assert.False(t, second.ParetoOptimal)

	assert.Equal(t, 2, res.Metadata.TotalCountries)
	assert.Equal(t, RiskModerate, res.Metadata.RiskTolerance)
	assert.Equal(t, DurationShortTerm, res.Metadata.Duration)
	assert.Equal(t, time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC), res.Metadata.AnalyzedAt)
	assert.Equal(t, GetWeights("moderate", "short-term"), res.Weights)
}

func TestRankCountriesCompleteDataInRange(t *testing.T) {
	for _, r := range []string{"low", "moderate", "high"} {
		for _, d := range []string{"short-term", "long-term"} {
			res := testRanker().Rank(context.Background(), []CountryData{france()}, r, d)
			c := res.Rankings[0].CompositeScore
			require.NotNil(t, c)
			assert.GreaterOrEqual(t, *c, 0.0)
			assert.LessOrEqual(t, *c, 100.0)
		}
	}
}

func TestRankCountriesNullCompositeLast(t *testing.T) {
	entries := []CountryData{
		{Profile: nil},
		chadProfileOnly(),
		france(),
	}
	res := testRanker().Rank(context.Background(), entries, "low", "long-term")
	require.Len(t, res.Rankings, 3)

	last := res.Rankings[2]
	assert.Equal(t, "Unknown", last.CountryName)
	assert.Nil(t, last.CompositeScore)
	assert.Equal(t, 3, last.Rank)
	assert.Contains(t, last.Reasoning.Summary, "ranks last (#3 of 3)")
}

func TestRankCountriesDenseRanks(t *testing.T) {
	entries := []CountryData{france(), chadProfileOnly(), {}, france(), chadProfileOnly()}
	res := testRanker().Rank(context.Background(), entries, "high", "short-term")

	seen := map[int]bool{}
	for i, rc := range res.Rankings {
		assert.Equal(t, i+1, rc.Rank)
		assert.False(t, seen[rc.Rank], "duplicate rank %d", rc.Rank)
		seen[rc.Rank] = true
	}
	assert.Len(t, seen, len(entries))
}

func TestRankCountriesTieBreaksByName(t *testing.T) {
	sameHealth := func(name string) CountryData {
		return CountryData{Profile: &restcountries.Profile{Name: name, Region: "Europe", Subregion: "Northern Europe"}}
	}

	t.Run("equal scores", func(t *testing.T) {
		res := testRanker().Rank(context.Background(), []CountryData{sameHealth("Sweden"), sameHealth("Norway"), sameHealth("Denmark")}, "moderate", "long-term")
		require.Len(t, res.Rankings, 3)
		require.Equal(t, *res.Rankings[0].CompositeScore, *res.Rankings[2].CompositeScore)
		assert.Equal(t, "Denmark", res.Rankings[0].CountryName)
		assert.Equal(t, "Norway", res.Rankings[1].CountryName)
		assert.Equal(t, "Sweden", res.Rankings[2].CountryName)
	})

	t.Run("both null", func(t *testing.T) {
		entries := []CountryData{
			{Profile: nil, Errors: []string{"boom"}},
			france(),
			{Profile: nil},
		}
		res := testRanker().Rank(context.Background(), entries, "moderate", "short-term")
		assert.Equal(t, "France", res.Rankings[0].CountryName)
		assert.Nil(t, res.Rankings[1].CompositeScore)
		assert.Nil(t, res.Rankings[2].CompositeScore)
		// stable ordering keeps the input order for identical names
		assert.True(t, res.Rankings[1].HasPartialData)
	})
}

func TestRankCountriesEmpty(t *testing.T) {
	res := testRanker().Rank(context.Background(), nil, "", "")
	assert.Empty(t, res.Rankings)
	assert.Equal(t, 0, res.Metadata.TotalCountries)
	assert.Equal(t, RiskModerate, res.Metadata.RiskTolerance)
}

func TestRankCountriesDoesNotAliasInput(t *testing.T) {
	entries := []CountryData{chadProfileOnly()}
	res := testRanker().Rank(context.Background(), entries, "low", "short-term")
	res.Rankings[0].Errors[0] = "changed"
	assert.Equal(t, "Open-Meteo Weather: timeout", entries[0].Errors[0])
}

func TestRankCountriesPackageHelper(t *testing.T) {
	res := RankCountries([]CountryData{france()}, "LOW", "Long-Term")
	require.Len(t, res.Rankings, 1)
	assert.Equal(t, RiskLow, res.Metadata.RiskTolerance)
	assert.Equal(t, DurationLongTerm, res.Metadata.Duration)
	assert.Contains(t, res.Rankings[0].Reasoning.Summary, "France ranks #1 out of 1 destinations.")
}

func TestRankLogsScoringPerCountry(t *testing.T) {
	var buf bytes.Buffer
	r := NewRanker(slog.New(slog.NewTextHandler(&buf, nil)))

	entries := []CountryData{france(), {Profile: &restcountries.Profile{Name: "Chad", Region: "Africa"}}}
	r.Rank(context.Background(), entries, "moderate", "short-term")

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "category=SCORING"))
	assert.Contains(t, out, `msg="Computed scores for France"`)
	assert.Contains(t, out, `msg="Computed scores for Chad"`)
	assert.Contains(t, out, "level=INFO")
}
