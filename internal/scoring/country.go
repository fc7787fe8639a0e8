package scoring

import (
	"github.com/MikeSquared-Agency/Compass/internal/news"
	"github.com/MikeSquared-Agency/Compass/internal/openmeteo"
	"github.com/MikeSquared-Agency/Compass/internal/restcountries"
	"github.com/MikeSquared-Agency/Compass/internal/wikipedia"
	"github.com/MikeSquared-Agency/Compass/internal/worldbank"
)

// CountryData bundles the settled upstream records for one country.
// Any of the pointers may be nil; Profile must be set for a useful ranking.
type CountryData struct {
	Profile    *restcountries.Profile
	Weather    *openmeteo.Weather
	AirQuality *openmeteo.AirQuality
	Health     *worldbank.Health
	Summary    *wikipedia.Summary
	Headlines  []news.Headline

	// CacheStatus maps a source name to "hit" or "miss".
	CacheStatus map[string]string
	Errors      []string
}

func (c *CountryData) name() string {
	if c.Profile == nil || c.Profile.Name == "" {
		return "Unknown"
	}
	return c.Profile.Name
}

// TravelRiskBreakdown holds penalty points; higher is riskier.
type TravelRiskBreakdown struct {
	TemperatureRisk *float64 `json:"temperature_risk"`
	AQIRisk         *float64 `json:"aqi_risk"`
	WindRisk        *float64 `json:"wind_risk"`
	WeatherSeverity *float64 `json:"weather_severity"`
}

type TravelRiskResult struct {
	Score       *float64            `json:"score"`
	Breakdown   TravelRiskBreakdown `json:"breakdown"`
	FactorsUsed int                 `json:"factors_used"`
}

type HealthInfraBreakdown struct {
	LifeExpectancyScore     *float64 `json:"life_expectancy_score"`
	PopulationPressure      *float64 `json:"population_pressure"`
	HealthcareProxy         *float64 `json:"healthcare_proxy"`
	EstimatedLifeExpectancy *float64 `json:"estimated_life_expectancy"`
	// Source is "world_bank" when any measured indicator was used, otherwise "regional_estimate".
	Source string `json:"source"`
}

type HealthInfraResult struct {
	Score       *float64             `json:"score"`
	Breakdown   HealthInfraBreakdown `json:"breakdown"`
	FactorsUsed int                  `json:"factors_used"`
}

type EnvStabilityBreakdown struct {
	WeatherVolatility *float64 `json:"weather_volatility"`
	AirQualityScore   *float64 `json:"air_quality_score"`
	PM25Score         *float64 `json:"pm25_score"`
	HumidityComfort   *float64 `json:"humidity_comfort"`
	WindStability     *float64 `json:"wind_stability"`
}

type EnvStabilityResult struct {
	Score       *float64              `json:"score"`
	Breakdown   EnvStabilityBreakdown `json:"breakdown"`
	FactorsUsed int                   `json:"factors_used"`
}

type CategoryScores struct {
	TravelRisk   TravelRiskResult   `json:"travel_risk"`
	HealthInfra  HealthInfraResult  `json:"health_infra"`
	EnvStability EnvStabilityResult `json:"env_stability"`
}
