package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/MikeSquared-Agency/Compass/internal/news"
	"github.com/MikeSquared-Agency/Compass/internal/restcountries"
	"github.com/MikeSquared-Agency/Compass/internal/wikipedia"
)

// Conditions is the display snapshot of current weather and air quality.
type Conditions struct {
	Temperature        *float64 `json:"temperature"`
	WeatherDescription string   `json:"weather_description"`
	Humidity           *float64 `json:"humidity"`
	WindSpeed          *float64 `json:"wind_speed"`
	AQI                *float64 `json:"aqi"`
	AQICategory        string   `json:"aqi_category"`
	AQIColor           string   `json:"aqi_color"`
}

// CountryContext is non-scoring background shown alongside a ranking.
type CountryContext struct {
	Summary   *wikipedia.Summary `json:"summary,omitempty"`
	Headlines []news.Headline    `json:"headlines,omitempty"`
}

type RankedCountry struct {
	Rank              int                      `json:"rank"`
	CountryName       string                   `json:"country_name"`
	FlagEmoji         string                   `json:"flag_emoji"`
	Flag              string                   `json:"flag"`
	Capital           string                   `json:"capital"`
	Region            string                   `json:"region"`
	Population        int64                    `json:"population"`
	Currencies        []restcountries.Currency `json:"currencies"`
	CompositeScore    *float64                 `json:"composite_score"`
	Scores            CategoryScores           `json:"scores"`
	CurrentConditions Conditions               `json:"current_conditions"`
	Context           CountryContext           `json:"context"`
	Reasoning         Reasoning                `json:"reasoning"`
	CacheStatus       map[string]string        `json:"cache_status"`
	HasPartialData    bool                     `json:"has_partial_data"`
	ParetoOptimal     bool                     `json:"pareto_optimal"`
	Errors            []string                 `json:"errors"`
}

type Metadata struct {
	TotalCountries int           `json:"total_countries"`
	RiskTolerance  RiskTolerance `json:"risk_tolerance"`
	Duration       Duration      `json:"duration"`
	AnalyzedAt     time.Time     `json:"analyzed_at"`
}

type RankingResult struct {
	Rankings []RankedCountry `json:"rankings"`
	Weights  Weights         `json:"weights"`
	Metadata Metadata        `json:"metadata"`
}

// Ranker turns per-country data into an ordered, explained ranking.
// It holds no mutable state and is safe for concurrent use.
type Ranker struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewRanker(logger *slog.Logger) *Ranker {
	return &Ranker{logger: logger, now: time.Now}
}

// RankCountries ranks with the default logger.
func RankCountries(entries []CountryData, riskTolerance, duration string) RankingResult {
	return NewRanker(slog.Default()).Rank(context.Background(), entries, riskTolerance, duration)
}

type scoredCountry struct {
	data      *CountryData
	name      string
	scores    CategoryScores
	composite *float64
}

// Composite combines the category scores into a single suitability score.
// Travel risk is inverted so every term reads higher-is-better; categories
// without a score are left out and the rest renormalised.
func Composite(scores CategoryScores, w Weights) *float64 {
	var avg weightedAverage
	if s := scores.TravelRisk.Score; s != nil {
		avg.add(ptr(100-*s), w.TravelRisk)
	}
	avg.add(scores.HealthInfra.Score, w.HealthInfra)
	avg.add(scores.EnvStability.Score, w.EnvStability)
	return avg.result()
}

// Rank scores and orders entries. One SCORING record per country is logged
// against ctx.
func (r *Ranker) Rank(ctx context.Context, entries []CountryData, riskTolerance, duration string) RankingResult {
	rt := ParseRiskTolerance(riskTolerance)
	dur := ParseDuration(duration)
	weights := WeightsFor(rt, dur)

	scored := make([]scoredCountry, len(entries))
	for i := range entries {
		e := &entries[i]
		sc := CategoryScores{
			TravelRisk:   TravelRisk(e.Weather, e.AirQuality),
			HealthInfra:  HealthInfra(e.Profile, e.Health),
			EnvStability: EnvStability(e.Weather, e.AirQuality),
		}
		scored[i] = scoredCountry{data: e, name: e.name(), scores: sc, composite: Composite(sc, weights)}

		r.logger.InfoContext(ctx, fmt.Sprintf("Computed scores for %s", scored[i].name),
			"category", "SCORING",
			"country", scored[i].name,
			"travel_risk", sc.TravelRisk.Score,
			"health_infra", sc.HealthInfra.Score,
			"env_stability", sc.EnvStability.Score,
			"composite", scored[i].composite,
		)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i].composite, scored[j].composite
		switch {
		case a != nil && b != nil && *a != *b:
			return *a > *b
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return scored[i].name < scored[j].name
	})

	total := len(scored)
	rankings := make([]RankedCountry, total)
	for i, s := range scored {
		rank := i + 1
		rankings[i] = r.rankedCountry(s, rank, total, weights)
	}

	all := make([]CategoryScores, total)
	for i, s := range scored {
		all[i] = s.scores
	}
	for i, optimal := range ParetoFrontier(all) {
		rankings[i].ParetoOptimal = optimal
	}

	return RankingResult{
		Rankings: rankings,
		Weights:  weights,
		Metadata: Metadata{
			TotalCountries: total,
			RiskTolerance:  rt,
			Duration:       dur,
			AnalyzedAt:     r.now().UTC(),
		},
	}
}

func (r *Ranker) rankedCountry(s scoredCountry, rank, total int, weights Weights) RankedCountry {
	e := s.data
	rc := RankedCountry{
		Rank:           rank,
		CountryName:    s.name,
		Capital:        "Unknown",
		Region:         "Unknown",
		CompositeScore: s.composite,
		Scores:         s.scores,
		Reasoning:      buildReasoning(s.name, rank, total, s.scores, weights),
		CacheStatus:    copyStatus(e.CacheStatus),
		HasPartialData: len(e.Errors) > 0,
		Errors:         append([]string{}, e.Errors...),
		CurrentConditions: Conditions{
			WeatherDescription: "N/A",
			AQICategory:        "Unknown",
			AQIColor:           "#888",
		},
		Context: CountryContext{Summary: e.Summary, Headlines: e.Headlines},
	}
	if p := e.Profile; p != nil {
		rc.FlagEmoji = p.FlagEmoji
		rc.Flag = p.Flag
		rc.Capital = p.Capital
		rc.Region = p.Region
		rc.Population = p.Population
		rc.Currencies = p.Currencies
	}
	if wx := e.Weather; wx != nil {
		rc.CurrentConditions.Temperature = wx.Temperature
		rc.CurrentConditions.WeatherDescription = wx.Description
		rc.CurrentConditions.Humidity = wx.Humidity
		rc.CurrentConditions.WindSpeed = wx.WindSpeed
	}
	if aq := e.AirQuality; aq != nil {
		rc.CurrentConditions.AQI = aq.USAQI
		rc.CurrentConditions.AQICategory = aq.Category
		rc.CurrentConditions.AQIColor = aq.Color
	}
	return rc
}

func copyStatus(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
