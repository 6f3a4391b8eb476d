package metrics

import "github.com/kanna-karuppasamy/solarwaterflow/internal/models"

const (
	sufficientMessage   = "Solar energy is SUFFICIENT to meet water demand."
	insufficientMessage = "Energy is INSUFFICIENT. Consider battery storage or demand reduction."
)

// Recommend decides whether solar production covers the site's water demand.
func Recommend(m models.DerivedMetrics) models.Recommendation {
	if m.SolarEnergyKWh > m.WaterDemandLiters*SufficiencyRatio {
		return models.Recommendation{Decision: models.DecisionSufficient, Message: sufficientMessage}
	}
	return models.Recommendation{Decision: models.DecisionInsufficient, Message: insufficientMessage}
}
