package embedding

import (
	"fmt"
	"time"
)

// Provider names accepted by NewEmbedder.
const (
	ProviderHashing = "hashing"
	ProviderOllama  = "ollama"
	ProviderONNX    = "onnx"
)

// Options selects and configures an embedder.
type Options struct {
	Provider   string
	Dimensions int
	Model      string
	BaseURL    string
	ModelPath  string
	MaxTokens  int
	Timeout    time.Duration
}

// NewEmbedder creates the embedder named by opts.Provider. A provider that cannot start is an error.
func NewEmbedder(opts Options) (Embedder, error) {
	switch opts.Provider {
	case ProviderHashing, "":
		return NewHashingEmbedder(opts.Dimensions)
	case ProviderOllama:
		return NewOllamaEmbedder(OllamaConfig{
			BaseURL:    opts.BaseURL,
			Model:      opts.Model,
			Dimensions: opts.Dimensions,
			Timeout:    opts.Timeout,
		})
	case ProviderONNX:
		e, err := NewONNXEmbedder(opts.ModelPath, opts.Dimensions, opts.MaxTokens)
		if err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: hashing, ollama, onnx)", opts.Provider)
	}
}
