package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaConfig configures the Ollama embeddings client.
type OllamaConfig struct {
	BaseURL    string
	Model      string
	Dimensions int
	Timeout    time.Duration
}

// OllamaEmbedder requests embeddings from an Ollama server's /api/embeddings endpoint.
// It holds no mutable state, so concurrent Embed calls are safe.
type OllamaEmbedder struct {
	baseURL    string
	model      string
	dimensions int
	timeout    time.Duration
	client     *http.Client
}

type ollamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

// NewOllamaEmbedder creates an embedder for cfg. Model and Dimensions are required.
func NewOllamaEmbedder(cfg OllamaConfig) (*OllamaEmbedder, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("ollama embedding model is empty")
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &OllamaEmbedder{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		timeout:    cfg.Timeout,
		client:     &http.Client{},
	}, nil
}

// Embed returns the model's embedding for text. Blank text embeds to the zero vector without a
// network call, since Ollama returns an empty embedding for an empty prompt.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return make([]float32, e.dimensions), nil
	}
	body, err := json.Marshal(ollamaEmbeddingRequest{Model: e.model, Prompt: text})
	if err != nil {
		return nil, &EmbeddingError{Model: e.model, Err: fmt.Errorf("marshal embedding request: %w", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, &EmbeddingError{Model: e.model, Err: fmt.Errorf("create embedding request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &EmbeddingError{Model: e.model, Err: fmt.Errorf("embedding request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &EmbeddingError{Model: e.model, Err: fmt.Errorf("embedding request failed: %s: %s", resp.Status, strings.TrimSpace(string(raw)))}
	}

	var parsed ollamaEmbeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &EmbeddingError{Model: e.model, Err: fmt.Errorf("parse embedding response: %w", err)}
	}
	if err := checkDimensions(e.model, parsed.Embedding, e.dimensions); err != nil {
		return nil, err
	}
	return parsed.Embedding, nil
}

// Dimensions returns the embedding dimension.
func (e *OllamaEmbedder) Dimensions() int {
	return e.dimensions
}

// Model returns the Ollama model name.
func (e *OllamaEmbedder) Model() string {
	return e.model
}

// Close releases idle connections.
func (e *OllamaEmbedder) Close() error {
	e.client.CloseIdleConnections()
	return nil
}
