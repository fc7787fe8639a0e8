package scoring

import "math"

// Normalization bounds. Each pair maps a raw measurement onto 0–100.
const (
	comfortTemperature   = 22.5
	maxTemperatureDelta  = 40.0
	comfortHumidityLow   = 40.0
	comfortHumidityHigh  = 60.0
	maxHumidityDeviation = 60.0

	minAQI       = 0.0
	maxAQI       = 500.0
	minPM25      = 0.0
	maxPM25      = 250.0
	minLifeExp   = 50.0
	maxLifeExp   = 85.0
	minHealthExp = 0.0
	maxHealthExp = 20.0
	minLogPop    = 4.0
	maxLogPop    = 9.15
	minWind      = 0.0
	maxWind      = 100.0
	minTempRange = 0.0
	maxTempRange = 40.0
)

// MinMaxNormalize maps value from [min, max] onto [0, 100], optionally
// inverted, clamped and rounded to two decimals. A nil or NaN value stays nil.
// An empty range is a step: values at or above min score 100, below it 0.
func MinMaxNormalize(value *float64, min, max float64, invert bool) *float64 {
	if value == nil || math.IsNaN(*value) {
		return nil
	}
	var n float64
	if max == min {
		if *value >= min {
			n = 100
		}
	} else {
		n = (*value - min) / (max - min) * 100
	}
	if invert {
		n = 100 - n
	}
	return ptr(round2(clamp(n, 0, 100)))
}

// NormalizeTemperature scores distance from 22.5°C, reaching zero at ±40°C.
func NormalizeTemperature(celsius *float64) *float64 {
	if celsius == nil || math.IsNaN(*celsius) {
		return nil
	}
	dev := math.Abs(*celsius - comfortTemperature)
	return ptr(round2(math.Max(0, 100-dev/maxTemperatureDelta*100)))
}

func NormalizeAQI(aqi *float64) *float64 {
	return MinMaxNormalize(aqi, minAQI, maxAQI, true)
}

func NormalizePM25(pm25 *float64) *float64 {
	return MinMaxNormalize(pm25, minPM25, maxPM25, true)
}

func NormalizeLifeExpectancy(years *float64) *float64 {
	return MinMaxNormalize(years, minLifeExp, maxLifeExp, false)
}

// NormalizeHealthcareExpenditure takes spending as a percentage of GDP.
func NormalizeHealthcareExpenditure(pctGDP *float64) *float64 {
	return MinMaxNormalize(pctGDP, minHealthExp, maxHealthExp, false)
}

// NormalizePopulation scores population on a log10 scale between roughly
// ten thousand and 1.4 billion. Non-positive populations are unknown.
func NormalizePopulation(population *float64) *float64 {
	if population == nil || math.IsNaN(*population) || *population <= 0 {
		return nil
	}
	return MinMaxNormalize(ptr(math.Log10(*population)), minLogPop, maxLogPop, false)
}

func NormalizeWindSpeed(kmh *float64) *float64 {
	return MinMaxNormalize(kmh, minWind, maxWind, true)
}

// NormalizeHumidity gives 100 inside the 40–60% band and falls linearly to
// zero 60 points outside it.
func NormalizeHumidity(pct *float64) *float64 {
	if pct == nil || math.IsNaN(*pct) {
		return nil
	}
	var dev float64
	switch h := *pct; {
	case h < comfortHumidityLow:
		dev = comfortHumidityLow - h
	case h > comfortHumidityHigh:
		dev = h - comfortHumidityHigh
	}
	return ptr(round2(math.Max(0, 100-dev/maxHumidityDeviation*100)))
}

// NormalizeTemperatureRange scores daily temperature spread; wider is worse.
func NormalizeTemperatureRange(celsius *float64) *float64 {
	return MinMaxNormalize(celsius, minTempRange, maxTempRange, true)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func ptr(v float64) *float64 { return &v }
