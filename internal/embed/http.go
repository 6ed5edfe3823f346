package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	vaulterrors "github.com/Aman-CERP/qrvault/internal/errors"
)

// DefaultEmbedderTimeout bounds embedding network calls unless the
// caller's context is tighter.
const DefaultEmbedderTimeout = 30 * time.Second

// HTTPConfig configures an HTTPEmbedder against a third-party embedding
// provider's HTTP API. It assumes the common "POST {model, input} ->
// {embedding: [...]}" shape and is meant to be adapted per-provider by
// callers, not treated as a universal client.
type HTTPConfig struct {
	Endpoint   string
	Model      string
	APIKey     string
	Dimensions int
	Timeout    time.Duration
}

// httpRequestBody is the request payload sent to Endpoint.
type httpRequestBody struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// httpResponseBody is the expected response shape.
type httpResponseBody struct {
	Embedding []float32 `json:"embedding"`
}

// HTTPEmbedder calls a configurable HTTP endpoint to compute embeddings,
// the network-bound counterpart to StaticEmbedder.
type HTTPEmbedder struct {
	client *http.Client
	cfg    HTTPConfig

	mu     sync.RWMutex
	closed bool
}

var _ Embedder = (*HTTPEmbedder)(nil)

// NewHTTPEmbedder constructs an HTTPEmbedder. Dimensions must be known
// up front so the index can validate uniformity; a zero value is a
// ConfigError.
func NewHTTPEmbedder(cfg HTTPConfig) (*HTTPEmbedder, error) {
	if cfg.Endpoint == "" {
		return nil, vaulterrors.ConfigError("http embedder endpoint must not be empty", nil)
	}
	if cfg.Dimensions <= 0 {
		return nil, vaulterrors.ConfigError("http embedder dimensions must be positive", nil)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultEmbedderTimeout
	}

	return &HTTPEmbedder{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
	}, nil
}

// Embed posts text to the configured endpoint and parses the embedding
// out of the response. The caller's context carries cancellation and,
// if set tighter than cfg.Timeout, the caller's deadline wins.
func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.RLock()
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return nil, fmt.Errorf("embedder is closed")
	}

	body, err := json.Marshal(httpRequestBody{Model: e.cfg.Model, Input: text})
	if err != nil {
		return nil, vaulterrors.EmbedderError("failed to marshal embed request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, vaulterrors.EmbedderError("failed to build embed request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, vaulterrors.EmbedderError("embed request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return nil, vaulterrors.EmbedderError(
			fmt.Sprintf("embed request returned status %d", resp.StatusCode), nil).
			WithDetail("body", string(payload))
	}

	var parsed httpResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, vaulterrors.EmbedderError("failed to decode embed response", err)
	}

	if len(parsed.Embedding) != e.cfg.Dimensions {
		return nil, vaulterrors.EmbedderError(
			fmt.Sprintf("embed response dimension %d does not match configured %d",
				len(parsed.Embedding), e.cfg.Dimensions), nil)
	}

	return parsed.Embedding, nil
}

// Dimensions returns the configured embedding width.
func (e *HTTPEmbedder) Dimensions() int { return e.cfg.Dimensions }

// ModelName returns the configured model identifier.
func (e *HTTPEmbedder) ModelName() string { return e.cfg.Model }

// Available probes the endpoint is reachable (best-effort HEAD request;
// failures just report unavailable rather than erroring).
func (e *HTTPEmbedder) Available(ctx context.Context) bool {
	e.mu.RLock()
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, e.cfg.Endpoint, nil)
	if err != nil {
		return false
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return true
}

// Close marks the embedder closed and releases idle connections.
func (e *HTTPEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	if t, ok := e.client.Transport.(*http.Transport); ok {
		t.CloseIdleConnections()
	}
	return nil
}
