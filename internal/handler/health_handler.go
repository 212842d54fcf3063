package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"swipe/internal/port"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	prober port.ServiceProber
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(prober port.ServiceProber) *HealthHandler {
	return &HealthHandler{prober: prober}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz. A shallow check only verifies the API
// key looks usable; ?deep=true additionally probes the extraction
// backend for a responding model.
func (h *HealthHandler) Readiness(c *gin.Context) {
	deep, _ := strconv.ParseBool(c.Query("deep"))
	if !deep {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	result := h.prober.Probe(c.Request.Context())
	if !result.KeyPlausible || !result.Reachable {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"probe":  result,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"probe":  result,
	})
}
