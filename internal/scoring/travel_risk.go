package scoring

import (
	"github.com/MikeSquared-Agency/Compass/internal/openmeteo"
)

const (
	temperatureRiskWeight = 0.35
	aqiRiskWeight         = 0.35
	windRiskWeight        = 0.15
	weatherSeverityScale  = 0.5
)

// WeatherCodePenalty grades a WMO weather code from 0 (clear) to 30 (thunderstorm).
func WeatherCodePenalty(code int) float64 {
	switch {
	case code == 0:
		return 0
	case code <= 3: // cloudy
		return 2
	case code <= 48: // fog
		return 8
	case code <= 57: // drizzle
		return 12
	case code <= 65: // rain
		return 15
	case code <= 67: // freezing rain
		return 20
	case code <= 77: // snow
		return 22
	case code <= 82: // rain showers
		return 18
	case code <= 86: // snow showers
		return 22
	case code >= 95: // thunderstorm
		return 30
	default:
		return 5
	}
}

// TravelRisk sums weather and air quality penalties. Higher is riskier.
// Unlike the other categories it is not renormalised: missing factors simply
// contribute no penalty.
func TravelRisk(wx *openmeteo.Weather, aq *openmeteo.AirQuality) TravelRiskResult {
	var (
		res   TravelRiskResult
		total float64
	)
	penalty := func(comfort *float64, weight float64) *float64 {
		if comfort == nil {
			return nil
		}
		p := round2((100 - *comfort) * weight)
		total += p
		res.FactorsUsed++
		return &p
	}

	if wx != nil {
		res.Breakdown.TemperatureRisk = penalty(NormalizeTemperature(wx.Temperature), temperatureRiskWeight)
	}
	if aq != nil {
		res.Breakdown.AQIRisk = penalty(NormalizeAQI(aq.USAQI), aqiRiskWeight)
	}
	if wx != nil {
		res.Breakdown.WindRisk = penalty(NormalizeWindSpeed(wx.WindSpeed), windRiskWeight)
		if wx.WeatherCode != nil {
			sev := WeatherCodePenalty(*wx.WeatherCode) * weatherSeverityScale
			res.Breakdown.WeatherSeverity = &sev
			total += sev
			res.FactorsUsed++
		}
	}

	if res.FactorsUsed > 0 {
		res.Score = ptr(clamp(round2(total), 0, 100))
	}
	return res
}
