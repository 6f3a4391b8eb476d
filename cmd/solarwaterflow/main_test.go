package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanna-karuppasamy/solarwaterflow/internal/config"
	"github.com/kanna-karuppasamy/solarwaterflow/internal/metrics"
	"github.com/kanna-karuppasamy/solarwaterflow/internal/models"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	noAdvice, jsonOutput = false, false
	cfgFile, verbose, logFormat = "", false, ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestAnalyze_JSONWithoutAdvice(t *testing.T) {
	out, err := runCLI(t, "analyze", "--no-advice", "--json",
		"--temperature", "30", "--sunlight", "10", "--population", "2500", "--diesel-price", "1.2")
	require.NoError(t, err)

	var a models.Analysis
	require.NoError(t, json.Unmarshal([]byte(out), &a))
	assert.InDelta(t, 150.0, a.Metrics.SolarEnergyKWh, 1e-9)
	assert.InDelta(t, 540.0, a.Metrics.MoneySaved, 1e-6)
	assert.Equal(t, models.DecisionInsufficient, a.Recommendation.Decision)
	assert.Nil(t, a.Advice)
}

func TestAnalyze_RejectsOutOfRange(t *testing.T) {
	_, err := runCLI(t, "analyze", "--no-advice", "--temperature=-5")
	require.Error(t, err)
	assert.ErrorIs(t, err, metrics.ErrInvalidInput)
}

func TestAnalyze_MissingCredential(t *testing.T) {
	t.Setenv("ADVISORY_ENABLED", "true")
	t.Setenv("ADVISORY_PROVIDER", "openai")
	t.Setenv("USE_SECRET_STORE", "false")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := runCLI(t, "analyze")
	require.Error(t, err)

	var cfgErr *config.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.NotEmpty(t, cfgErr.Remediation)
}

func TestRenderText(t *testing.T) {
	in := models.SystemInputs{Temperature: 30, SunlightHours: 10, Population: 2500, DieselPrice: 1.2}
	m := metrics.Compute(in)
	a := &models.Analysis{
		Inputs:         in,
		Metrics:        m,
		Recommendation: metrics.Recommend(m),
		Advice:         &models.Advice{Text: "Shift pumping to midday.", Source: models.AdviceFromFallback},
		Charts: models.Charts{
			SupplyDemand: []models.ChartBar{{Label: "Solar energy", Value: 150, Unit: "kWh"}},
			SavingsTrend: []models.TrendPoint{{Month: 1, MoneySaved: 16200}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, renderText(&buf, a))
	out := buf.String()

	assert.Contains(t, out, "$540.00")
	assert.Contains(t, out, "150.0 kWh")
	assert.Contains(t, out, "1206.0 kg")
	assert.Contains(t, out, "INSUFFICIENT")
	assert.Contains(t, out, "month  1  $16200.00")
	assert.Contains(t, out, "(fallback)")
	assert.Contains(t, out, "midday")
}

func TestBarChart_ScalesToPeak(t *testing.T) {
	out := barChart([]models.ChartBar{
		{Label: "a", Value: 10, Unit: "kWh"},
		{Label: "b", Value: 5, Unit: "kWh"},
		{Label: "c", Value: 0, Unit: "kWh"},
	})
	lines := bytes.Split([]byte(out), []byte("\n"))
	assert.Equal(t, barWidth, bytes.Count(lines[0], []byte("█")))
	assert.Equal(t, barWidth/2, bytes.Count(lines[1], []byte("█")))
	assert.Zero(t, bytes.Count(lines[2], []byte("█")))
}
