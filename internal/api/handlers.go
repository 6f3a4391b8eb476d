package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kanna-karuppasamy/solarwaterflow/internal/metrics"
	"github.com/kanna-karuppasamy/solarwaterflow/internal/models"
)

// AnalysisRequest is the body of POST /api/v1/analysis.
type AnalysisRequest struct {
	Inputs models.SystemInputs `json:"inputs"`
	Advice *bool               `json:"advice,omitempty"` // defaults to true
}

// MetricsResponse is the body returned by POST /api/v1/metrics.
type MetricsResponse struct {
	Inputs         models.SystemInputs   `json:"inputs"`
	Metrics        models.DerivedMetrics `json:"metrics"`
	Recommendation models.Recommendation `json:"recommendation"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"advisory": s.analyzer.AdviceAvailable(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	var in models.SystemInputs
	if !s.decode(w, r, &in) {
		return
	}

	out, err := s.analyzer.Analyze(r.Context(), in, false)
	if err != nil {
		s.writeAnalysisError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, MetricsResponse{
		Inputs:         out.Inputs,
		Metrics:        out.Metrics,
		Recommendation: out.Recommendation,
	})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	var req AnalysisRequest
	if !s.decode(w, r, &req) {
		return
	}

	withAdvice := req.Advice == nil || *req.Advice
	out, err := s.analyzer.Analyze(r.Context(), req.Inputs, withAdvice)
	if err != nil {
		s.writeAnalysisError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) writeAnalysisError(w http.ResponseWriter, err error) {
	var inputErr *metrics.InputError
	if errors.As(err, &inputErr) {
		s.writeError(w, http.StatusBadRequest, "invalid_input", inputErr.Error(), inputErr.Violations)
		return
	}
	s.logger.Error("analysis failed", zap.Error(err))
	s.writeError(w, http.StatusInternalServerError, "internal", "internal server error", nil)
}
