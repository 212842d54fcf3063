package handler

import (
	"github.com/gin-gonic/gin"

	"swipe/internal/port"
)

// CandidateLister exposes the configured model candidates of the
// extraction backend.
type CandidateLister interface {
	Models() []string
	APIVersions() []string
}

// ModelsHandler reports the configured extraction model candidates and
// which one currently answers.
type ModelsHandler struct {
	lister CandidateLister
	prober port.ServiceProber
}

// NewModelsHandler creates a ModelsHandler.
func NewModelsHandler(lister CandidateLister, prober port.ServiceProber) *ModelsHandler {
	return &ModelsHandler{lister: lister, prober: prober}
}

// List handles GET /api/v1/models.
func (h *ModelsHandler) List(c *gin.Context) {
	result := h.prober.Probe(c.Request.Context())
	RespondOK(c, gin.H{
		"models":      h.lister.Models(),
		"apiVersions": h.lister.APIVersions(),
		"active":      result,
	})
}
