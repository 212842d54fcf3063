package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"swipe/internal/config"
	"swipe/internal/domain"
	"swipe/internal/port"
)

const apiBaseURL = "https://generativelanguage.googleapis.com"

// Client implements port.FragmentExtractor against Google's Gemini API.
// Model names and API revisions are both candidate lists: a model that
// does not exist under one revision is retried under the next, and a
// missing model advances to the next model entirely.
type Client struct {
	apiKey          string
	models          []string
	apiVersions     []string
	baseURL         string
	maxOutputTokens int
	probeTimeout    time.Duration
	client          *http.Client
}

// NewClient creates a Gemini-backed fragment extractor.
func NewClient(cfg *config.GeminiConfig) *Client {
	return NewClientWithBaseURL(cfg, apiBaseURL)
}

// NewClientWithBaseURL creates a client pointing at a custom API base URL (for testing).
func NewClientWithBaseURL(cfg *config.GeminiConfig, baseURL string) *Client {
	models := cfg.Models
	if len(models) == 0 {
		models = []string{"gemini-2.0-flash"}
	}
	apiVersions := cfg.APIVersions
	if len(apiVersions) == 0 {
		apiVersions = []string{"v1beta"}
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	probeTimeout := time.Duration(cfg.ProbeTimeoutSecs) * time.Second
	if probeTimeout == 0 {
		probeTimeout = 4 * time.Second
	}
	maxTokens := cfg.MaxOutputTokens
	if maxTokens == 0 {
		maxTokens = 16384
	}
	return &Client{
		apiKey:          cfg.APIKey,
		models:          models,
		apiVersions:     apiVersions,
		baseURL:         baseURL,
		maxOutputTokens: maxTokens,
		probeTimeout:    probeTimeout,
		client:          &http.Client{Timeout: timeout},
	}
}

// Models returns the configured model candidates in preference order.
func (c *Client) Models() []string { return append([]string(nil), c.models...) }

// APIVersions returns the configured API revisions in preference order.
func (c *Client) APIVersions() []string { return append([]string(nil), c.apiVersions...) }

// Extract sends the document to Gemini and parses the returned fragment.
// Candidates are tried model-major: every API revision of a model is
// exhausted before moving to the next model. Only a missing model or
// revision advances the walk; any other API failure aborts it.
func (c *Client) Extract(ctx context.Context, input port.ExtractInput) (domain.Fragment, error) {
	parts, err := c.buildParts(input)
	if err != nil {
		return domain.Fragment{}, err
	}

	var lastErr error
	for _, model := range c.models {
		for _, version := range c.apiVersions {
			text, callErr := c.generateContent(ctx, model, version, parts)
			if callErr != nil {
				lastErr = callErr
				if callErr.Retryable() {
					continue
				}
				return domain.Fragment{}, callErr
			}
			frag, parseErr := ParseFragment(text)
			if parseErr != nil {
				return domain.Fragment{}, fmt.Errorf("model %s (%s): %w", model, version, parseErr)
			}
			return frag, nil
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no gemini model candidates configured")
	}
	return domain.Fragment{}, fmt.Errorf("all gemini candidates exhausted: %w", lastErr)
}

// Probe checks whether the configured key looks usable and whether any
// model candidate answers. It never takes longer than the probe timeout
// per candidate; the first responding candidate is reported.
func (c *Client) Probe(ctx context.Context) port.ProbeResult {
	result := port.ProbeResult{KeyPlausible: keyPlausible(c.apiKey)}
	if !result.KeyPlausible {
		result.Error = "api key missing or too short"
		return result
	}

	parts := []map[string]any{{"text": "Reply with the JSON object {\"ok\": true} and nothing else."}}

	var lastErr error
	for _, model := range c.models {
		for _, version := range c.apiVersions {
			probeCtx, cancel := context.WithTimeout(ctx, c.probeTimeout)
			_, callErr := c.generateContent(probeCtx, model, version, parts)
			cancel()
			if callErr == nil {
				result.Reachable = true
				result.Model = model
				result.APIVersion = version
				return result
			}
			lastErr = callErr
			if !callErr.Retryable() {
				result.Error = callErr.Error()
				return result
			}
		}
	}

	if lastErr != nil {
		result.Error = lastErr.Error()
	}
	return result
}

func keyPlausible(key string) bool {
	key = strings.TrimSpace(key)
	return len(key) >= 20
}

func (c *Client) buildParts(input port.ExtractInput) ([]map[string]any, error) {
	prompt := BuildExtractionPrompt()

	if input.Text != "" {
		return []map[string]any{
			{"text": "Document text:\n\n" + input.Text},
			{"text": prompt},
		}, nil
	}

	mimeType, err := toGeminiMimeType(input.ContentType)
	if err != nil {
		return nil, err
	}
	encoded := base64.StdEncoding.EncodeToString(input.FileBytes)
	return []map[string]any{
		{
			"inline_data": map[string]any{
				"mime_type": mimeType,
				"data":      encoded,
			},
		},
		{"text": prompt},
	}, nil
}

func toGeminiMimeType(contentType string) (string, error) {
	switch contentType {
	case "application/pdf":
		return "application/pdf", nil
	case "image/jpeg", "image/jpg":
		return "image/jpeg", nil
	case "image/png":
		return "image/png", nil
	case "image/webp":
		return "image/webp", nil
	default:
		return "", fmt.Errorf("unsupported content type for extraction: %s", contentType)
	}
}

// generateContent performs a single generateContent call. Errors are
// always *CallError so callers can branch on the error class.
func (c *Client) generateContent(ctx context.Context, model, version string, parts []map[string]any) (string, *CallError) {
	reqBody := map[string]any{
		"contents": []map[string]any{
			{
				"role":  "user",
				"parts": parts,
			},
		},
		"generationConfig": map[string]any{
			"responseMimeType": "application/json",
			"maxOutputTokens":  c.maxOutputTokens,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", newCallError(model, version, 0, ClassTerminal, fmt.Errorf("marshaling request: %w", err))
	}

	url := fmt.Sprintf("%s/%s/models/%s:generateContent", c.baseURL, version, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", newCallError(model, version, 0, ClassTerminal, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", newCallError(model, version, 0, ClassTerminal, fmt.Errorf("calling gemini API: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", newCallError(model, version, resp.StatusCode, ClassTerminal, fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		class := classifyStatus(resp.StatusCode, respBody)
		return "", newCallError(model, version, resp.StatusCode, class,
			fmt.Errorf("gemini API error: %s", truncate(string(respBody), 500)))
	}

	text, err := candidateText(respBody)
	if err != nil {
		return "", newCallError(model, version, resp.StatusCode, ClassTerminal, err)
	}
	return text, nil
}

// classifyStatus decides whether a failed call means the model/revision
// pair does not exist (advance to the next candidate) or the request
// itself is broken (abort the walk).
func classifyStatus(status int, body []byte) ErrorClass {
	if status == http.StatusNotFound {
		return ClassModelNotFound
	}
	if bytes.Contains(body, []byte("NOT_FOUND")) {
		return ClassModelNotFound
	}
	return ClassTerminal
}

// geminiResponse models the Gemini API response.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

func candidateText(body []byte) (string, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty response from API: no candidates")
	}
	if len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from API: no parts")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
