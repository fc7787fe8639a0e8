package scoring

import (
	"github.com/MikeSquared-Agency/Compass/internal/restcountries"
	"github.com/MikeSquared-Agency/Compass/internal/worldbank"
)

const (
	lifeExpectancyWeight     = 0.40
	populationPressureWeight = 0.15
	healthcareProxyWeight    = 0.45

	sourceWorldBank = "world_bank"
	sourceRegional  = "regional_estimate"
)

// HealthInfra scores healthcare infrastructure from the country profile,
// preferring measured World Bank indicators over regional estimates.
// Life expectancy and the healthcare proxy always resolve, so only the
// profile being nil yields a nil score.
func HealthInfra(profile *restcountries.Profile, measured *worldbank.Health) HealthInfraResult {
	var res HealthInfraResult
	if profile == nil {
		return res
	}
	res.Breakdown.Source = sourceRegional

	lifeExp := regionLifeExpectancy.lookup(profile.Subregion, profile.Region)
	if measured != nil && measured.LifeExpectancy != nil {
		lifeExp = *measured.LifeExpectancy
		res.Breakdown.Source = sourceWorldBank
	}
	res.Breakdown.EstimatedLifeExpectancy = ptr(lifeExp)
	res.Breakdown.LifeExpectancyScore = NormalizeLifeExpectancy(&lifeExp)

	if profile.Population > 0 {
		if popNorm := NormalizePopulation(ptr(float64(profile.Population))); popNorm != nil {
			res.Breakdown.PopulationPressure = ptr(round2(100 - *popNorm))
		}
	}

	proxy := ptr(regionHealthcareProxy.lookup(profile.Subregion, profile.Region))
	if measured != nil && measured.HealthcareExpenditure != nil {
		proxy = NormalizeHealthcareExpenditure(measured.HealthcareExpenditure)
		res.Breakdown.Source = sourceWorldBank
	}
	res.Breakdown.HealthcareProxy = proxy

	var avg weightedAverage
	avg.add(res.Breakdown.LifeExpectancyScore, lifeExpectancyWeight)
	avg.add(res.Breakdown.PopulationPressure, populationPressureWeight)
	avg.add(res.Breakdown.HealthcareProxy, healthcareProxyWeight)

	res.Score = avg.result()
	res.FactorsUsed = avg.used
	return res
}
