package scoring

import (
	"fmt"

	"github.com/sells-group/siteiq/internal/feature"
	"github.com/sells-group/siteiq/internal/model"
)

// generateInsights turns a score and its feature vector into human-readable
// findings. The rules are deterministic: the same vector and score always
// produce the same four lists, in the same order. Lists are non-nil even
// when empty so JSON consumers always see arrays.
func generateInsights(v feature.Vector, score float64) model.Insights {
	ins := model.Insights{
		KeyInsights:     []string{},
		Recommendations: []string{},
		RiskFactors:     []string{},
		Opportunities:   []string{},
	}

	competitors := v["competitors_500m"]
	switch {
	case competitors == 0:
		ins.Opportunities = append(ins.Opportunities,
			"No direct competitors within 500m, first-mover advantage available")
	case competitors > 10:
		ins.RiskFactors = append(ins.RiskFactors,
			fmt.Sprintf("High competition: %d similar businesses within 500m", int(competitors)))
	}

	if competitors > 0 {
		switch avgRating := v["avg_competitor_rating_500m"]; {
		case avgRating >= 4.0:
			ins.KeyInsights = append(ins.KeyInsights,
				"Surrounding businesses are highly rated, indicating a quality-conscious customer base")
		case avgRating <= 3.0:
			ins.Opportunities = append(ins.Opportunities,
				"Nearby competitors are poorly rated, room to win on quality")
		}
	}

	if v[feature.KeyAccessibilityScore] < 0.3 {
		ins.RiskFactors = append(ins.RiskFactors,
			"Limited transport accessibility may reduce walk-in traffic")
		ins.Recommendations = append(ins.Recommendations,
			"Consider delivery or online channels to offset weak physical access")
	}

	if v[feature.KeyTourismFactor] > 0.6 {
		ins.Opportunities = append(ins.Opportunities,
			"Strong tourism activity in the area, seasonal demand upside")
		ins.Recommendations = append(ins.Recommendations,
			"Tailor offering and signage to visitors as well as locals")
	}

	switch {
	case score >= 8.0:
		ins.KeyInsights = append(ins.KeyInsights,
			"Overall indicators rate this location as excellent for the category")
	case score >= 6.0:
		ins.KeyInsights = append(ins.KeyInsights,
			"Overall indicators rate this location as good, with manageable risks")
		ins.Recommendations = append(ins.Recommendations,
			"A well-matched concept can succeed here")
	default:
		ins.RiskFactors = append(ins.RiskFactors,
			"Low overall potential, a detailed on-site assessment is needed")
		ins.Recommendations = append(ins.Recommendations,
			"Consider alternative locations before committing")
	}

	return ins
}
