// Package analysis runs one compute-then-advise interaction.
package analysis

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kanna-karuppasamy/solarwaterflow/internal/advisory"
	"github.com/kanna-karuppasamy/solarwaterflow/internal/metrics"
	"github.com/kanna-karuppasamy/solarwaterflow/internal/models"
)

// Advisor produces advice for derived metrics. *advisory.Client implements it.
type Advisor interface {
	Advise(ctx context.Context, m models.DerivedMetrics) advisory.Result
}

// Analyzer validates inputs, computes metrics and optionally asks for advice.
// It keeps no state between calls.
type Analyzer struct {
	advisor Advisor
	logger  *zap.Logger
}

// New creates an Analyzer. advisor may be nil when advice is disabled.
func New(advisor Advisor, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{advisor: advisor, logger: logger}
}

// AdviceAvailable reports whether an advisor is configured.
func (a *Analyzer) AdviceAvailable() bool { return a.advisor != nil }

// Analyze returns a *metrics.InputError for out-of-range inputs and never
// fails for advisory problems.
func (a *Analyzer) Analyze(ctx context.Context, in models.SystemInputs, withAdvice bool) (*models.Analysis, error) {
	if err := metrics.Validate(in); err != nil {
		return nil, err
	}

	m := metrics.Compute(in)
	out := &models.Analysis{
		ID:             uuid.NewString(),
		Inputs:         in,
		Metrics:        m,
		Recommendation: metrics.Recommend(m),
		Charts:         BuildCharts(m),
	}

	if withAdvice && a.advisor != nil {
		res := a.advisor.Advise(ctx, m)
		advice := res.Advice()
		out.Advice = &advice
	}

	a.logger.Info("analysis complete",
		zap.String("analysis_id", out.ID),
		zap.String("decision", string(out.Recommendation.Decision)),
		zap.Float64("solar_kwh", m.SolarEnergyKWh),
		zap.Float64("water_liters", m.WaterDemandLiters),
		zap.Bool("advised", out.Advice != nil))

	return out, nil
}
