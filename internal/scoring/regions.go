package scoring

import "fmt"

const defaultRegion = "default"

// regionTable maps a region or subregion name to a value. Every table carries
// a "default" entry so lookups always resolve.
type regionTable map[string]float64

// lookup prefers subregion, then region, then the default entry.
func (t regionTable) lookup(subregion, region string) float64 {
	if v, ok := t[subregion]; ok && subregion != "" {
		return v
	}
	if v, ok := t[region]; ok && region != "" {
		return v
	}
	return t[defaultRegion]
}

var regionLifeExpectancy = regionTable{
	"Europe":             78,
	"Northern America":   78,
	"Oceania":            75,
	"South America":      74,
	"Central America":    73,
	"Caribbean":          72,
	"Eastern Asia":       76,
	"South-Eastern Asia": 72,
	"Western Asia":       74,
	"Southern Asia":      69,
	"Central Asia":       71,
	"Northern Africa":    72,
	"Western Africa":     58,
	"Eastern Africa":     62,
	"Southern Africa":    64,
	"Middle Africa":      58,
	"Antarctica":         75,
	defaultRegion:        70,
}

// regionHealthcareProxy is a 0–100 healthcare quality estimate per region.
var regionHealthcareProxy = regionTable{
	"Europe":             85,
	"Northern America":   80,
	"Oceania":            78,
	"Eastern Asia":       77,
	"South America":      65,
	"South-Eastern Asia": 60,
	"Western Asia":       68,
	"Southern Asia":      50,
	"Central Asia":       55,
	"Northern Africa":    58,
	"Western Africa":     38,
	"Eastern Africa":     40,
	"Southern Africa":    55,
	"Middle Africa":      35,
	"Caribbean":          62,
	"Central America":    60,
	defaultRegion:        55,
}

func init() {
	for name, t := range map[string]regionTable{
		"life expectancy":  regionLifeExpectancy,
		"healthcare proxy": regionHealthcareProxy,
	} {
		if _, ok := t[defaultRegion]; !ok {
			panic(fmt.Sprintf("scoring: %s table has no %q entry", name, defaultRegion))
		}
	}
}
