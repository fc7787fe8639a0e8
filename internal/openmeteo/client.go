package openmeteo

import (
	"context"
	"net/url"
	"strconv"

	"github.com/MikeSquared-Agency/Compass/internal/upstream"
)

const (
	DefaultForecastURL   = "https://api.open-meteo.com/v1"
	DefaultAirQualityURL = "https://air-quality-api.open-meteo.com/v1"
)

// Weather is the current conditions plus a short daily outlook at one location.
// Every measurement is nil when the upstream omitted it.
type Weather struct {
	Temperature         *float64  `json:"temperature"`
	ApparentTemperature *float64  `json:"apparent_temperature"`
	Humidity            *float64  `json:"humidity"`
	WeatherCode         *int      `json:"weather_code"`
	WindSpeed           *float64  `json:"wind_speed"`
	WindGusts           *float64  `json:"wind_gusts"`
	Pressure            *float64  `json:"pressure"`
	TemperatureRange    *float64  `json:"temperature_range"`
	DailyMaxTemps       []float64 `json:"daily_max_temps"`
	DailyMinTemps       []float64 `json:"daily_min_temps"`
	DailyWeatherCodes   []int     `json:"daily_weather_codes"`
	Description         string    `json:"weather_description"`
}

type AirQuality struct {
	USAQI           *float64 `json:"us_aqi"`
	PM25            *float64 `json:"pm2_5"`
	PM10            *float64 `json:"pm10"`
	CarbonMonoxide  *float64 `json:"carbon_monoxide"`
	NitrogenDioxide *float64 `json:"nitrogen_dioxide"`
	SulphurDioxide  *float64 `json:"sulphur_dioxide"`
	Ozone           *float64 `json:"ozone"`
	Category        string   `json:"aqi_category"`
	Color           string   `json:"aqi_color"`
}

type Client interface {
	Weather(ctx context.Context, lat, lng float64) (*Weather, error)
	AirQuality(ctx context.Context, lat, lng float64) (*AirQuality, error)
}

type HTTPClient struct {
	forecast   *upstream.Client
	airQuality *upstream.Client
}

func NewHTTPClient(forecast, airQuality *upstream.Client) *HTTPClient {
	return &HTTPClient{forecast: forecast, airQuality: airQuality}
}

type forecastResponse struct {
	Current struct {
		Temperature         *float64 `json:"temperature_2m"`
		Humidity            *float64 `json:"relative_humidity_2m"`
		ApparentTemperature *float64 `json:"apparent_temperature"`
		WeatherCode         *int     `json:"weather_code"`
		WindSpeed           *float64 `json:"wind_speed_10m"`
		WindGusts           *float64 `json:"wind_gusts_10m"`
		Pressure            *float64 `json:"pressure_msl"`
	} `json:"current"`
	Daily struct {
		MaxTemps     []float64 `json:"temperature_2m_max"`
		MinTemps     []float64 `json:"temperature_2m_min"`
		WeatherCodes []int     `json:"weather_code"`
	} `json:"daily"`
}

func (c *HTTPClient) Weather(ctx context.Context, lat, lng float64) (*Weather, error) {
	q := coords(lat, lng)
	q.Set("current", "temperature_2m,relative_humidity_2m,apparent_temperature,weather_code,wind_speed_10m,wind_gusts_10m,pressure_msl")
	q.Set("daily", "temperature_2m_max,temperature_2m_min,weather_code")
	q.Set("forecast_days", "3")

	var resp forecastResponse
	if err := c.forecast.GetJSON(ctx, "/forecast", q, &resp); err != nil {
		return nil, err
	}

	cur := resp.Current
	return &Weather{
		Temperature:         cur.Temperature,
		ApparentTemperature: cur.ApparentTemperature,
		Humidity:            cur.Humidity,
		WeatherCode:         cur.WeatherCode,
		WindSpeed:           cur.WindSpeed,
		WindGusts:           cur.WindGusts,
		Pressure:            cur.Pressure,
		TemperatureRange:    TemperatureRange(resp.Daily.MaxTemps, resp.Daily.MinTemps),
		DailyMaxTemps:       resp.Daily.MaxTemps,
		DailyMinTemps:       resp.Daily.MinTemps,
		DailyWeatherCodes:   resp.Daily.WeatherCodes,
		Description:         DescribeWeatherCode(cur.WeatherCode),
	}, nil
}

func (c *HTTPClient) AirQuality(ctx context.Context, lat, lng float64) (*AirQuality, error) {
	q := coords(lat, lng)
	q.Set("current", "us_aqi,pm10,pm2_5,carbon_monoxide,nitrogen_dioxide,sulphur_dioxide,ozone")

	var resp struct {
		Current struct {
			USAQI           *float64 `json:"us_aqi"`
			PM10            *float64 `json:"pm10"`
			PM25            *float64 `json:"pm2_5"`
			CarbonMonoxide  *float64 `json:"carbon_monoxide"`
			NitrogenDioxide *float64 `json:"nitrogen_dioxide"`
			SulphurDioxide  *float64 `json:"sulphur_dioxide"`
			Ozone           *float64 `json:"ozone"`
		} `json:"current"`
	}
	if err := c.airQuality.GetJSON(ctx, "/air-quality", q, &resp); err != nil {
		return nil, err
	}

	cur := resp.Current
	return &AirQuality{
		USAQI:           cur.USAQI,
		PM25:            cur.PM25,
		PM10:            cur.PM10,
		CarbonMonoxide:  cur.CarbonMonoxide,
		NitrogenDioxide: cur.NitrogenDioxide,
		SulphurDioxide:  cur.SulphurDioxide,
		Ozone:           cur.Ozone,
		Category:        AQICategory(cur.USAQI),
		Color:           AQIColor(cur.USAQI),
	}, nil
}

// TemperatureRange is the spread between the warmest daily high and the coldest
// daily low, or nil when either series is empty.
func TemperatureRange(maxTemps, minTemps []float64) *float64 {
	if len(maxTemps) == 0 || len(minTemps) == 0 {
		return nil
	}
	hi := maxTemps[0]
	for _, v := range maxTemps[1:] {
		if v > hi {
			hi = v
		}
	}
	lo := minTemps[0]
	for _, v := range minTemps[1:] {
		if v < lo {
			lo = v
		}
	}
	r := hi - lo
	return &r
}

func coords(lat, lng float64) url.Values {
	return url.Values{
		"latitude":  {strconv.FormatFloat(lat, 'f', -1, 64)},
		"longitude": {strconv.FormatFloat(lng, 'f', -1, 64)},
		"timezone":  {"auto"},
	}
}
