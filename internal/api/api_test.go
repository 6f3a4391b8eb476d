package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kanna-karuppasamy/solarwaterflow/internal/advisory"
	"github.com/kanna-karuppasamy/solarwaterflow/internal/analysis"
	"github.com/kanna-karuppasamy/solarwaterflow/internal/config"
	"github.com/kanna-karuppasamy/solarwaterflow/internal/models"
)

type stubCompleter struct {
	text  string
	err   error
	calls int
}

func (s *stubCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	s.calls++
	return s.text, s.err
}

func setupTestServer(t *testing.T, completer advisory.Completer) http.Handler {
	t.Helper()
	var advisor analysis.Advisor
	if completer != nil {
		advisor = advisory.NewClient(completer, advisory.Options{Fallback: "advice offline"}, zap.NewNop())
	}
	srv := NewServer(analysis.New(advisor, zap.NewNop()), config.Default().Server, zap.NewNop())
	return srv.Routes()
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const referenceBody = `{"temperature":30,"sunlightHours":10,"population":2500,"dieselPrice":1.2}`

func TestHealth(t *testing.T) {
	rec := doJSON(t, setupTestServer(t, nil), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["advisory"])
}

func TestMetrics(t *testing.T) {
	stub := &stubCompleter{text: "unused"}
	rec := doJSON(t, setupTestServer(t, stub), http.MethodPost, "/api/v1/metrics", referenceBody)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp MetricsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 150.0, resp.Metrics.SolarEnergyKWh, 1e-9)
	assert.InDelta(t, 22500.0, resp.Metrics.WaterDemandLiters, 1e-6)
	assert.InDelta(t, 540.0, resp.Metrics.MoneySaved, 1e-6)
	assert.InDelta(t, 1206.0, resp.Metrics.CarbonOffsetKg, 1e-6)
	assert.Equal(t, models.DecisionInsufficient, resp.Recommendation.Decision)
	assert.Zero(t, stub.calls)
}

func TestAnalysis_WithAdvice(t *testing.T) {
	stub := &stubCompleter{text: "Run pumps at midday."}
	rec := doJSON(t, setupTestServer(t, stub), http.MethodPost, "/api/v1/analysis", `{"inputs":`+referenceBody+`}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var out models.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotNil(t, out.Advice)
	assert.Equal(t, "Run pumps at midday.", out.Advice.Text)
	assert.Equal(t, models.AdviceFromModel, out.Advice.Source)
	assert.NotEmpty(t, out.ID)
	assert.Len(t, out.Charts.SavingsTrend, 12)
	assert.Len(t, out.Charts.SupplyDemand, 3)
	assert.Equal(t, 1, stub.calls)
}

func TestAnalysis_AdvisoryFailureStillOK(t *testing.T) {
	stub := &stubCompleter{err: errors.New("401 unauthorized: key sk-live-123")}
	rec := doJSON(t, setupTestServer(t, stub), http.MethodPost, "/api/v1/analysis", `{"inputs":`+referenceBody+`}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var out models.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotNil(t, out.Advice)
	assert.Equal(t, "advice offline", out.Advice.Text)
	assert.Equal(t, models.AdviceFromFallback, out.Advice.Source)
	assert.NotContains(t, rec.Body.String(), "sk-live-123")
}

func TestAnalysis_AdviceOptOut(t *testing.T) {
	stub := &stubCompleter{text: "x"}
	rec := doJSON(t, setupTestServer(t, stub), http.MethodPost, "/api/v1/analysis", `{"inputs":`+referenceBody+`,"advice":false}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var out models.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Nil(t, out.Advice)
	assert.Zero(t, stub.calls)
}

func TestBadRequests(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
		code string
	}{
		{"malformed json", "/api/v1/metrics", `{"temperature":`, "invalid_json"},
		{"unknown field", "/api/v1/metrics", `{"temp":30}`, "invalid_json"},
		{"out of range", "/api/v1/metrics", `{"temperature":60,"sunlightHours":10,"population":2500,"dieselPrice":1}`, "invalid_input"},
		{"out of range analysis", "/api/v1/analysis", `{"inputs":{"temperature":30,"sunlightHours":10,"population":20,"dieselPrice":1}}`, "invalid_input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubCompleter{text: "x"}
			rec := doJSON(t, setupTestServer(t, stub), http.MethodPost, tt.path, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Code)
			assert.Zero(t, stub.calls)
		})
	}
}

func TestInvalidInputDetails(t *testing.T) {
	rec := doJSON(t, setupTestServer(t, nil), http.MethodPost, "/api/v1/metrics",
		`{"temperature":60,"sunlightHours":10,"population":2500,"dieselPrice":-1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Details []struct {
			Field string `json:"field"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Details, 2)
	assert.Equal(t, "temperature", resp.Details[0].Field)
	assert.Equal(t, "dieselPrice", resp.Details[1].Field)
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	cfg := config.Default().Server
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	srv := NewServer(analysis.New(nil, nil), cfg, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()
	cancel()

	assert.NoError(t, <-done)
}
