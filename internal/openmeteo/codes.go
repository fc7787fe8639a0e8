package openmeteo

var wmoDescriptions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	56: "Freezing light drizzle",
	57: "Freezing dense drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	66: "Freezing light rain",
	67: "Freezing heavy rain",
	71: "Slight snow",
	73: "Moderate snow",
	75: "Heavy snow",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// DescribeWeatherCode maps a WMO weather interpretation code to text.
func DescribeWeatherCode(code *int) string {
	if code == nil {
		return "Unknown"
	}
	if d, ok := wmoDescriptions[*code]; ok {
		return d
	}
	return "Unknown"
}

// AQICategory buckets a US AQI reading on the EPA scale.
func AQICategory(aqi *float64) string {
	if aqi == nil {
		return "Unknown"
	}
	switch v := *aqi; {
	case v <= 50:
		return "Good"
	case v <= 100:
		return "Moderate"
	case v <= 150:
		return "Unhealthy for Sensitive Groups"
	case v <= 200:
		return "Unhealthy"
	case v <= 300:
		return "Very Unhealthy"
	default:
		return "Hazardous"
	}
}

func AQIColor(aqi *float64) string {
	if aqi == nil {
		return "#888"
	}
	switch v := *aqi; {
	case v <= 50:
		return "#00e400"
	case v <= 100:
		return "#ffff00"
	case v <= 150:
		return "#ff7e00"
	case v <= 200:
		return "#ff0000"
	case v <= 300:
		return "#8f3f97"
	default:
		return "#7e0023"
	}
}
