package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swipe/internal/handler"
	"swipe/internal/port"
)

type stubProber struct {
	result port.ProbeResult
}

func (s *stubProber) Probe(_ context.Context) port.ProbeResult {
	return s.result
}

func newHealthRouter(prober port.ServiceProber) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewHealthHandler(prober)
	r := gin.New()
	r.GET("/healthz", h.Liveness)
	r.GET("/readyz", h.Readiness)
	return r
}

func TestLiveness(t *testing.T) {
	r := newHealthRouter(&stubProber{})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadiness_ShallowSkipsProbe(t *testing.T) {
	// a shallow check passes even when the backend would not
	r := newHealthRouter(&stubProber{result: port.ProbeResult{}})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadiness_DeepReportsProbe(t *testing.T) {
	r := newHealthRouter(&stubProber{result: port.ProbeResult{
		KeyPlausible: true,
		Reachable:    true,
		Model:        "gemini-2.0-flash",
		APIVersion:   "v1beta",
	}})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz?deep=true", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	probe := body["probe"].(map[string]any)
	assert.Equal(t, "gemini-2.0-flash", probe["model"])
}

func TestReadiness_DeepUnavailable(t *testing.T) {
	r := newHealthRouter(&stubProber{result: port.ProbeResult{
		KeyPlausible: true,
		Reachable:    false,
		Error:        "all candidates failed",
	}})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz?deep=true", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
