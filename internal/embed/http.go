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
)

// HTTPConfig configures the HTTP embedder.
type HTTPConfig struct {
	// Endpoint is the embedding service base URL (e.g. http://localhost:9710).
	Endpoint string
	// Model is the model identifier reported by the sidecar.
	Model string
	// Dimensions is the expected vector dimension D.
	Dimensions int
	// Timeout is the per-request timeout.
	Timeout time.Duration
	// PoolSize bounds idle connections to the sidecar.
	PoolSize int
}

// HTTPEmbedder generates embeddings through an external embedding
// service speaking a small JSON protocol:
//
//	POST /embed/text  {"text": "..."}   -> {"embedding": [...]}
//	POST /embed/image {"path": "..."}   -> {"embedding": [...]}
//	GET  /health                        -> 200
type HTTPEmbedder struct {
	client    *http.Client
	transport *http.Transport
	config    HTTPConfig

	mu     sync.RWMutex
	closed bool
}

var _ Embedder = (*HTTPEmbedder)(nil)

// NewHTTPEmbedder creates an embedder talking to the given service.
func NewHTTPEmbedder(cfg HTTPConfig) *HTTPEmbedder {
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 4
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.PoolSize,
		MaxIdleConnsPerHost: cfg.PoolSize,
		IdleConnTimeout:     10 * time.Second,
	}

	// No client-level timeout: per-request context timeouts keep caller
	// deadlines in charge.
	return &HTTPEmbedder{
		client:    &http.Client{Transport: transport},
		transport: transport,
		config:    cfg,
	}
}

type embedRequest struct {
	Text string `json:"text,omitempty"`
	Path string `json:"path,omitempty"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
	Error     string    `json:"error,omitempty"`
}

// EmbedText generates an embedding for a text query.
func (e *HTTPEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return e.do(ctx, "/embed/text", embedRequest{Text: text})
}

// EmbedImage generates an embedding for the image file at path.
// The sidecar reads the file itself; only the path crosses the wire.
func (e *HTTPEmbedder) EmbedImage(ctx context.Context, path string) ([]float32, error) {
	return e.do(ctx, "/embed/image", embedRequest{Path: path})
}

func (e *HTTPEmbedder) do(ctx context.Context, route string, reqBody embedRequest) ([]float32, error) {
	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return nil, fmt.Errorf("embedder is closed")
	}
	e.mu.RUnlock()

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost,
		e.config.Endpoint+route, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding service request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read embedding response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding service returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed embedResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("embedding service error: %s", parsed.Error)
	}
	if len(parsed.Embedding) != e.config.Dimensions {
		return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d",
			e.config.Dimensions, len(parsed.Embedding))
	}

	return normalizeVector(parsed.Embedding), nil
}

// Dimensions returns the embedding dimension.
func (e *HTTPEmbedder) Dimensions() int { return e.config.Dimensions }

// ModelName returns the model identifier.
func (e *HTTPEmbedder) ModelName() string {
	if e.config.Model != "" {
		return e.config.Model
	}
	return "clip-vit-b-32"
}

// Available checks the service health endpoint.
func (e *HTTPEmbedder) Available(ctx context.Context) bool {
	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, e.config.Endpoint+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

// Close releases idle connections.
func (e *HTTPEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.transport.CloseIdleConnections()
	return nil
}
