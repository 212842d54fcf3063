package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swipe/internal/config"
	"swipe/internal/gemini"
	"swipe/internal/port"
)

func newTestClient(serverURL string) *gemini.Client {
	cfg := &config.GeminiConfig{
		APIKey:      "test-gemini-key-0123456789",
		Models:      []string{"gemini-2.0-flash", "gemini-1.5-flash"},
		APIVersions: []string{"v1beta", "v1"},
		TimeoutSecs: 30,
	}
	return gemini.NewClientWithBaseURL(cfg, serverURL)
}

func successResponse(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
	}
}

type callLog struct {
	mu    sync.Mutex
	paths []string
}

func (l *callLog) add(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.paths = append(l.paths, path)
}

func (l *callLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.paths...)
}

func TestClient_Extract_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-gemini-key-0123456789", r.Header.Get("x-goog-api-key"))
		assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", r.URL.Path)

		var reqBody map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		genConfig := reqBody["generationConfig"].(map[string]any)
		assert.Equal(t, "application/json", genConfig["responseMimeType"])

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(successResponse(fragmentJSON))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	frag, err := c.Extract(context.Background(), port.ExtractInput{
		FileBytes:   []byte("%PDF-1.4 fake"),
		ContentType: "application/pdf",
		Filename:    "invoice.pdf",
	})

	require.NoError(t, err)
	assert.Len(t, frag.Invoices, 1)
}

func TestClient_Extract_WalksCandidatesOnNotFound(t *testing.T) {
	log := &callLog{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.add(r.URL.Path)
		if len(log.all()) < 4 {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"status":"NOT_FOUND","message":"model not found"}}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(successResponse(fragmentJSON))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	frag, err := c.Extract(context.Background(), port.ExtractInput{Text: "some invoice text"})

	require.NoError(t, err)
	assert.Len(t, frag.Invoices, 1)
	assert.Equal(t, []string{
		"/v1beta/models/gemini-2.0-flash:generateContent",
		"/v1/models/gemini-2.0-flash:generateContent",
		"/v1beta/models/gemini-1.5-flash:generateContent",
		"/v1/models/gemini-1.5-flash:generateContent",
	}, log.all())
}

func TestClient_Extract_TerminalErrorAborts(t *testing.T) {
	log := &callLog{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.add(r.URL.Path)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"status":"UNAUTHENTICATED","message":"bad key"}}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.Extract(context.Background(), port.ExtractInput{Text: "some invoice text"})

	require.Error(t, err)
	assert.Len(t, log.all(), 1, "a terminal error must not advance to the next candidate")

	var callErr *gemini.CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, gemini.ClassTerminal, callErr.Class)
	assert.False(t, callErr.Retryable())
}

func TestClient_Extract_AllCandidatesExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"status":"NOT_FOUND"}}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.Extract(context.Background(), port.ExtractInput{Text: "text"})
	assert.ErrorContains(t, err, "exhausted")
}

func TestClient_Extract_UnsupportedContentType(t *testing.T) {
	c := newTestClient("http://127.0.0.1:0")
	_, err := c.Extract(context.Background(), port.ExtractInput{
		FileBytes:   []byte("zip bytes"),
		ContentType: "application/zip",
	})
	assert.ErrorContains(t, err, "unsupported content type")
}

func TestClient_Probe_ReportsFirstRespondingCandidate(t *testing.T) {
	count := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count++
		if count == 1 {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"status":"NOT_FOUND"}}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(successResponse(`{"ok": true}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	result := c.Probe(context.Background())

	assert.True(t, result.KeyPlausible)
	assert.True(t, result.Reachable)
	assert.Equal(t, "gemini-2.0-flash", result.Model)
	assert.Equal(t, "v1", result.APIVersion)
}

func TestClient_Probe_ImplausibleKey(t *testing.T) {
	cfg := &config.GeminiConfig{APIKey: "short", Models: []string{"gemini-2.0-flash"}}
	c := gemini.NewClientWithBaseURL(cfg, "http://127.0.0.1:0")

	result := c.Probe(context.Background())
	assert.False(t, result.KeyPlausible)
	assert.False(t, result.Reachable)
	assert.NotEmpty(t, result.Error)
}

func TestClient_CandidateAccessorsCopy(t *testing.T) {
	c := newTestClient("http://127.0.0.1:0")
	models := c.Models()
	models[0] = "mutated"
	assert.Equal(t, "gemini-2.0-flash", c.Models()[0])
}
