package analysis

import "github.com/kanna-karuppasamy/solarwaterflow/internal/models"

const (
	daysPerMonth = 30
	trendMonths  = 12
)

// BuildCharts derives the supply/demand comparison and the cumulative savings
// trend. The trend is a straight projection of today's savings.
func BuildCharts(m models.DerivedMetrics) models.Charts {
	trend := make([]models.TrendPoint, 0, trendMonths)
	for month := 1; month <= trendMonths; month++ {
		trend = append(trend, models.TrendPoint{
			Month:      month,
			MoneySaved: m.MoneySaved * daysPerMonth * float64(month),
		})
	}

	return models.Charts{
		SupplyDemand: []models.ChartBar{
			{Label: "Solar energy", Value: m.SolarEnergyKWh, Unit: "kWh"},
			{Label: "Pumping energy needed", Value: m.EnergyNeededKWh, Unit: "kWh"},
			{Label: "Water demand", Value: m.WaterDemandLiters, Unit: "L"},
		},
		SavingsTrend: trend,
	}
}
