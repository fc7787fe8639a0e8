package scoring

import (
	"github.com/MikeSquared-Agency/Compass/internal/openmeteo"
)

const (
	volatilityWeight    = 0.25
	airQualityWeight    = 0.30
	pm25Weight          = 0.15
	humidityWeight      = 0.15
	windStabilityWeight = 0.15
)

// EnvStability is a comfort score: higher means calmer weather and cleaner air.
func EnvStability(wx *openmeteo.Weather, aq *openmeteo.AirQuality) EnvStabilityResult {
	var (
		res EnvStabilityResult
		avg weightedAverage
	)
	if wx != nil {
		res.Breakdown.WeatherVolatility = NormalizeTemperatureRange(wx.TemperatureRange)
		res.Breakdown.HumidityComfort = NormalizeHumidity(wx.Humidity)
		res.Breakdown.WindStability = NormalizeWindSpeed(wx.WindSpeed)
	}
	if aq != nil {
		res.Breakdown.AirQualityScore = NormalizeAQI(aq.USAQI)
		res.Breakdown.PM25Score = NormalizePM25(aq.PM25)
	}

	avg.add(res.Breakdown.WeatherVolatility, volatilityWeight)
	avg.add(res.Breakdown.AirQualityScore, airQualityWeight)
	avg.add(res.Breakdown.PM25Score, pm25Weight)
	avg.add(res.Breakdown.HumidityComfort, humidityWeight)
	avg.add(res.Breakdown.WindStability, windStabilityWeight)

	res.Score = avg.result()
	res.FactorsUsed = avg.used
	return res
}
