// Package metrics maps site inputs to derived energy, water and savings figures.
//
// Compute is pure: the same SystemInputs always yield the same DerivedMetrics,
// and it neither clamps nor rejects values. Range checks live in Validate and
// are the caller's responsibility.
package metrics

import (
	"github.com/kanna-karuppasamy/solarwaterflow/internal/models"
)

// Model coefficients.
const (
	SolarYieldFactor      = 0.5  // kWh per sunlight hour per °C
	WaterDemandFactor     = 0.3  // liters per person per °C
	PumpEnergyPerLiter    = 0.05 // kWh per liter pumped
	DieselPerKWh          = 0.4  // liters of diesel per kWh
	CO2PerDieselLiter     = 2.68 // kg CO2 per liter of diesel burned
	SufficiencyRatio      = 0.01 // solar must exceed this share of water demand
	carbonPerLiterOfWater = PumpEnergyPerLiter * DieselPerKWh * CO2PerDieselLiter
)

// Compute derives all metrics for the given inputs.
func Compute(in models.SystemInputs) models.DerivedMetrics {
	solar := SolarYieldFactor * in.SunlightHours * in.Temperature
	water := WaterDemandFactor * float64(in.Population) * in.Temperature
	energy := water * PumpEnergyPerLiter
	diesel := energy * DieselPerKWh

	return models.DerivedMetrics{
		SolarEnergyKWh:    solar,
		WaterDemandLiters: water,
		EnergyNeededKWh:   energy,
		DieselSavedLiters: diesel,
		MoneySaved:        diesel * in.DieselPrice,
		CarbonOffsetKg:    diesel * CO2PerDieselLiter,
	}
}

// CarbonOffsetFromWaterDemand recomputes the CO2 offset from water demand alone.
func CarbonOffsetFromWaterDemand(waterDemandLiters float64) float64 {
	return waterDemandLiters * carbonPerLiterOfWater
}
