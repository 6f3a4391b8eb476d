package advisory

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kanna-karuppasamy/solarwaterflow/internal/models"
)

// DefaultMaxPromptChars bounds the user prompt length.
const DefaultMaxPromptChars = 1200

// SystemPrompt frames every advisory request.
const SystemPrompt = "You are an energy advisor for solar-powered water pumping systems in off-grid communities. " +
	"Give practical, concise recommendations in at most five bullet points."

// BuildPrompt renders the metrics into the user prompt. Energy and water use
// one decimal, money two. The basic variant only reports solar energy and
// water demand.
func BuildPrompt(m models.DerivedMetrics, extended bool, maxChars int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Solar energy production: %.1f kWh per day.\n", m.SolarEnergyKWh)
	fmt.Fprintf(&b, "Water demand: %.1f liters per day.\n", m.WaterDemandLiters)
	if extended {
		fmt.Fprintf(&b, "Money saved by replacing diesel pumping: %.2f per day.\n", m.MoneySaved)
		fmt.Fprintf(&b, "CO2 offset: %.1f kg per day.\n", m.CarbonOffsetKg)
	}
	b.WriteString("How should this site optimize its solar water pumping, storage and usage?")

	return truncate(b.String(), maxChars)
}

func truncate(s string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxChars])
}
