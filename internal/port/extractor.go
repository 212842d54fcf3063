package port

import (
	"context"

	"swipe/internal/domain"
)

// ExtractInput carries one document (or its decoded text) to the
// external extraction service. Exactly one of FileBytes or Text is set:
// FileBytes with ContentType for binary payloads, Text for the
// spreadsheet-as-text escalation path.
type ExtractInput struct {
	FileBytes   []byte
	ContentType string
	Filename    string
	Text        string
}

// FragmentExtractor abstracts the external generative extraction
// service. Implementations must be safe for concurrent use.
type FragmentExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (domain.Fragment, error)
}

// ProbeResult reports external-service connectivity for the deep
// health check.
type ProbeResult struct {
	KeyPlausible bool   `json:"keyPlausible"`
	Reachable    bool   `json:"reachable"`
	Model        string `json:"model,omitempty"`
	APIVersion   string `json:"apiVersion,omitempty"`
	Error        string `json:"error,omitempty"`
}

// ServiceProber checks whether the external extraction service is
// reachable with the configured credentials.
type ServiceProber interface {
	Probe(ctx context.Context) ProbeResult
}
