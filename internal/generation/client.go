// Package generation sends assembled prompts to a text-generation backend.
package generation

import (
	"context"
	"time"

	"github.com/hyperjump/ragd/internal/models"
)

// Request is a single generation call. Timeout is mandatory.
type Request struct {
	Prompt  string
	Model   string
	Timeout time.Duration
}

// Validate checks the request before any network traffic.
func (r Request) Validate() error {
	if r.Timeout <= 0 {
		return models.NewInvalidArgument("timeout", "must be positive, got %s", r.Timeout)
	}
	if r.Model == "" {
		return models.NewInvalidArgument("model", "must not be empty")
	}
	return nil
}

// Generator turns a prompt into generated text.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}
