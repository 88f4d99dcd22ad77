package models

import "strings"

// AnswerRequest is the inbound request for a generated answer.
// Zero values of K, Template, and Model mean "use the configured default".
type AnswerRequest struct {
	Query    string `json:"query"`
	K        int    `json:"k,omitempty"`
	Template string `json:"template,omitempty"`
	Model    string `json:"model,omitempty"`
}

// Validate checks the request and trims the query. Defaults are applied by the service.
func (r *AnswerRequest) Validate() error {
	r.Query = strings.TrimSpace(r.Query)
	if r.Query == "" {
		return NewInvalidArgument("query", "must not be empty")
	}
	if r.K < 0 {
		return NewInvalidArgument("k", "must be positive, got %d", r.K)
	}
	return nil
}

// Answer is the result of a completed pipeline run.
type Answer struct {
	RequestID string       `json:"request_id"`
	Response  string       `json:"response"`
	Hits      []*SearchHit `json:"hits"`
	// HitsUsed is how many of Hits fit into the prompt budget (always a prefix of Hits).
	HitsUsed int              `json:"hits_used"`
	Template string           `json:"template"`
	Model    string           `json:"model"`
	Timings  map[string]int64 `json:"timings_ms"`
}

// ErrorBody is the JSON error envelope returned by the API.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Stage   string `json:"stage,omitempty"`
	Message string `json:"message"`
}
