package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// DefaultBaseURL is the local Ollama server.
const DefaultBaseURL = "http://localhost:11434"

// OllamaClient calls the Ollama /api/generate endpoint with streaming disabled.
// Each Generate makes exactly one HTTP attempt.
type OllamaClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// Option configures an OllamaClient.
type Option func(*OllamaClient)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *OllamaClient) { o.client = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *OllamaClient) { o.logger = l }
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response *string `json:"response"`
}

// NewOllamaClient creates a client for baseURL (DefaultBaseURL when empty).
func NewOllamaClient(baseURL string, opts ...Option) *OllamaClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &OllamaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		logger:  zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Generate posts req to the backend and returns the response text. A present but empty
// response field is a successful empty answer.
func (c *OllamaClient) Generate(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	body, err := json.Marshal(generateRequest{Model: req.Model, Prompt: req.Prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	url := c.baseURL + "/api/generate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", c.classify(ctx, url, req, err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("generation backend returned error status",
			zap.Int("status", resp.StatusCode), zap.String("model", req.Model))
		return "", &BackendStatusError{Code: resp.StatusCode, Body: readErrorBody(resp)}
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		if ctx.Err() != nil {
			return "", c.classify(ctx, url, req, err)
		}
		return "", &MalformedResponseError{Reason: err.Error()}
	}
	if parsed.Response == nil {
		return "", &MalformedResponseError{Reason: `missing "response" field`}
	}
	return *parsed.Response, nil
}

// classify maps a transport error to a timeout or unreachable error. Cancellation by the
// caller is returned as is.
func (c *OllamaClient) classify(ctx context.Context, url string, req Request, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &BackendTimeoutError{Timeout: req.Timeout.String(), Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &BackendTimeoutError{Timeout: req.Timeout.String(), Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &BackendUnreachableError{URL: url, Err: err}
}

func drainAndClose(r io.ReadCloser) {
	_, _ = io.Copy(io.Discard, r)
	r.Close()
}

func readErrorBody(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(body))
}
