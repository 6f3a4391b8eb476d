package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/kanna-karuppasamy/solarwaterflow/internal/models"
)

const barWidth = 30

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F5A623")).
			MarginBottom(1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4A90E2")).
			Padding(0, 1).
			Width(24)

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	valueStyle = lipgloss.NewStyle().Bold(true)

	sufficientStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#2ECC71")).Bold(true)
	insufficientStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E74C3C")).Bold(true)
	sectionStyle      = lipgloss.NewStyle().Bold(true).Underline(true)
)

func renderJSON(w io.Writer, a *models.Analysis) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(a)
}

func renderText(w io.Writer, a *models.Analysis) error {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Solar-Powered Water Pumping"))
	b.WriteString("\n")

	m := a.Metrics
	row1 := lipgloss.JoinHorizontal(lipgloss.Top,
		panel("Solar energy", fmt.Sprintf("%.1f kWh", m.SolarEnergyKWh)),
		panel("Water demand", fmt.Sprintf("%.1f L", m.WaterDemandLiters)),
		panel("Pumping energy", fmt.Sprintf("%.1f kWh", m.EnergyNeededKWh)),
	)
	row2 := lipgloss.JoinHorizontal(lipgloss.Top,
		panel("Diesel saved", fmt.Sprintf("%.1f L", m.DieselSavedLiters)),
		panel("Money saved", fmt.Sprintf("$%.2f", m.MoneySaved)),
		panel("CO2 offset", fmt.Sprintf("%.1f kg", m.CarbonOffsetKg)),
	)
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left, row1, row2))
	b.WriteString("\n\n")

	style := insufficientStyle
	if a.Recommendation.Decision == models.DecisionSufficient {
		style = sufficientStyle
	}
	b.WriteString(style.Render(a.Recommendation.Message))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Energy supply vs demand"))
	b.WriteString("\n")
	b.WriteString(barChart(a.Charts.SupplyDemand))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Projected savings"))
	b.WriteString("\n")
	b.WriteString(trendTable(a.Charts.SavingsTrend))

	if a.Advice != nil {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render("Advice"))
		if a.Advice.Source == models.AdviceFromFallback {
			b.WriteString(labelStyle.Render(" (fallback)"))
		}
		b.WriteString("\n")
		b.WriteString(renderMarkdown(a.Advice.Text))
	}

	_, err := io.WriteString(w, b.String()+"\n")
	return err
}

func panel(label, value string) string {
	return panelStyle.Render(labelStyle.Render(label) + "\n" + valueStyle.Render(value))
}

func barChart(bars []models.ChartBar) string {
	peak := 0.0
	labelWidth := 0
	for _, bar := range bars {
		peak = math.Max(peak, bar.Value)
		labelWidth = max(labelWidth, len(bar.Label))
	}

	var b strings.Builder
	for _, bar := range bars {
		n := 0
		if peak > 0 {
			n = int(math.Round(bar.Value / peak * barWidth))
		}
		fmt.Fprintf(&b, "%-*s %s %.1f %s\n", labelWidth, bar.Label, strings.Repeat("█", n), bar.Value, bar.Unit)
	}
	return b.String()
}

func trendTable(points []models.TrendPoint) string {
	var b strings.Builder
	for _, p := range points {
		fmt.Fprintf(&b, "  month %2d  $%.2f\n", p.Month, p.MoneySaved)
	}
	return b.String()
}

// renderMarkdown falls back to the raw text if glamour cannot render it.
func renderMarkdown(text string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return text + "\n"
	}
	out, err := r.Render(text)
	if err != nil {
		return text + "\n"
	}
	return out
}
