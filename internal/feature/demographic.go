package feature

import "github.com/sells-group/siteiq/internal/geospatial"

// DemographicEstimator supplies the demographic feature block. The interface
// exists so the stub can be swapped for a census-backed implementation
// without touching the extractor.
type DemographicEstimator interface {
	Estimate(center geospatial.Point, radiusM float64) map[string]float64
}

// StubDemographics returns constant estimates. It is a documented placeholder:
// real values require external census or demographic data that the system
// does not yet integrate.
type StubDemographics struct{}

// Estimate implements DemographicEstimator.
func (StubDemographics) Estimate(_ geospatial.Point, _ float64) map[string]float64 {
	return map[string]float64{
		KeyPopulationDensity:                 1000,  // people per km2
		KeyAvgIncome:                         50000, // annual income estimate
		"age_group_young_adult_ratio":        0.3,   // 18-35
		"age_group_middle_age_ratio":         0.4,   // 35-55
		"age_group_senior_ratio":             0.3,   // 55+
		"education_level_university_ratio":   0.4,
		KeyTourismFactor:                     0.3,
	}
}
