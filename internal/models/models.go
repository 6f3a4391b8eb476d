package models

import (
	"time"
)

// SystemInputs holds the four operator-supplied parameters of a pumping site
type SystemInputs struct {
	Temperature   float64 `json:"temperature" yaml:"temperature"`     // °C
	SunlightHours float64 `json:"sunlightHours" yaml:"sunlight_hours"` // hours per day
	Population    int     `json:"population" yaml:"population"`
	DieselPrice   float64 `json:"dieselPrice" yaml:"diesel_price"` // currency per liter
}

// DerivedMetrics is the output of the metrics engine for one SystemInputs value
type DerivedMetrics struct {
	SolarEnergyKWh    float64 `json:"solarEnergyKwh"`
	WaterDemandLiters float64 `json:"waterDemandLiters"`
	EnergyNeededKWh   float64 `json:"energyNeededKwh"`
	DieselSavedLiters float64 `json:"dieselSavedLiters"`
	MoneySaved        float64 `json:"moneySaved"`
	CarbonOffsetKg    float64 `json:"carbonOffsetKg"`
}

// Decision is the outcome of the solar sufficiency check
type Decision string

const (
	DecisionSufficient   Decision = "sufficient"
	DecisionInsufficient Decision = "insufficient"
)

// Recommendation pairs a sufficiency decision with its operator message
type Recommendation struct {
	Decision Decision `json:"decision"`
	Message  string   `json:"message"`
}

// AdviceSource tells where the advice text came from
type AdviceSource string

const (
	AdviceFromModel    AdviceSource = "model"
	AdviceFromFallback AdviceSource = "fallback"
)

// Advice is the display form of an advisory result
type Advice struct {
	Text   string       `json:"text"`
	Source AdviceSource `json:"source"`
}

// Analysis is the full result of one compute-then-advise interaction
type Analysis struct {
	ID             string         `json:"id"`
	Inputs         SystemInputs   `json:"inputs"`
	Metrics        DerivedMetrics `json:"metrics"`
	Recommendation Recommendation `json:"recommendation"`
	Advice         *Advice        `json:"advice,omitempty"`
	Charts         Charts         `json:"charts"`
}

// Charts holds the data behind the two dashboard panels
type Charts struct {
	SupplyDemand []ChartBar   `json:"supplyDemand"`
	SavingsTrend []TrendPoint `json:"savingsTrend"`
}

// ChartBar is a single labelled bar
type ChartBar struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// TrendPoint is one month of the cumulative savings trend
type TrendPoint struct {
	Month      int     `json:"month"`
	MoneySaved float64 `json:"moneySaved"`
}

// Reading represents a sensor reading published by a pumping site
type Reading struct {
	ID        string    `json:"id"`
	SiteID    string    `json:"siteId"`
	Region    string    `json:"region"`
	Timestamp time.Time `json:"timestamp"`
	SystemInputs
}

// MetricsPoint is a computed reading ready to be written to the time-series store
type MetricsPoint struct {
	Reading        Reading
	Metrics        DerivedMetrics
	Recommendation Recommendation
}

// SiteSavings represents aggregated savings for a single site
type SiteSavings struct {
	SiteID            string  `json:"siteId"`
	Region            string  `json:"region"`
	ReadingCount      int     `json:"readingCount"`
	MoneySaved        float64 `json:"moneySaved"`
	DieselSavedLiters float64 `json:"dieselSavedLiters"`
	CarbonOffsetKg    float64 `json:"carbonOffsetKg"`
	SufficientCount   int     `json:"sufficientCount"`
}
