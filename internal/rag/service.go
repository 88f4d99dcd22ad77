package rag

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/ragd/internal/generation"
	"github.com/hyperjump/ragd/internal/models"
	"github.com/hyperjump/ragd/internal/prompt"
	"go.uber.org/zap"
)

// Config holds the pipeline defaults applied to requests that leave a field unset.
type Config struct {
	DefaultK        int
	Template        prompt.Template
	MaxPromptLength int
	Model           string
	Timeout         time.Duration
}

// Service answers queries by retrieving context, assembling a prompt and calling the generator.
// It is safe for concurrent use; each Answer call runs independently.
type Service struct {
	retriever *Retriever
	generator generation.Generator
	cfg       Config
	logger    *zap.Logger
}

// NewService creates a service. A nil logger is replaced with a no-op logger.
func NewService(retriever *Retriever, generator generation.Generator, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultK <= 0 {
		cfg.DefaultK = 2
	}
	return &Service{retriever: retriever, generator: generator, cfg: cfg, logger: logger}
}

// Config returns the service defaults.
func (s *Service) Config() Config {
	return s.cfg
}

// Retriever returns the retriever used by the service.
func (s *Service) Retriever() *Retriever {
	return s.retriever
}

// Answer runs the pipeline for req. Any failure is a *StageError naming the failed stage.
func (s *Service) Answer(ctx context.Context, req models.AnswerRequest) (*models.Answer, error) {
	requestID := uuid.NewString()
	logger := s.logger.With(zap.String("request_id", requestID))
	timings := make(map[string]int64, 5)
	fail := func(stage Stage, err error) (*models.Answer, error) {
		logger.Warn("answer failed",
			zap.String("stage", string(stage)),
			zap.String("kind", models.KindOf(err)),
			zap.Error(err))
		return nil, &StageError{Stage: stage, Cause: err}
	}
	track := func(stage Stage, start time.Time) {
		timings[string(stage)] = time.Since(start).Milliseconds()
	}

	if err := req.Validate(); err != nil {
		return fail(StageValidating, err)
	}
	k := req.K
	if k == 0 {
		k = s.cfg.DefaultK
	}
	tmpl := s.cfg.Template
	if req.Template != "" {
		t, err := prompt.ParseTemplate(req.Template)
		if err != nil {
			return fail(StageValidating, err)
		}
		tmpl = t
	}
	model := s.cfg.Model
	if req.Model != "" {
		model = req.Model
	}

	start := time.Now()
	vec, err := s.retriever.embedder.Embed(ctx, req.Query)
	if err != nil {
		return fail(StageEmbedding, err)
	}
	track(StageEmbedding, start)

	start = time.Now()
	hits, err := s.retriever.index.Search(ctx, vec, k)
	if err != nil {
		return fail(StageSearching, err)
	}
	track(StageSearching, start)

	start = time.Now()
	p, err := prompt.Build(req.Query, hits, tmpl, s.cfg.MaxPromptLength)
	if err != nil {
		return fail(StageAssembling, err)
	}
	track(StageAssembling, start)
	if p.HitsUsed < len(hits) {
		logger.Debug("prompt budget dropped hits",
			zap.Int("retrieved", len(hits)), zap.Int("used", p.HitsUsed))
	}

	start = time.Now()
	text, err := s.generator.Generate(ctx, generation.Request{Prompt: p.Text, Model: model, Timeout: s.cfg.Timeout})
	if err != nil {
		return fail(StageGenerating, err)
	}
	track(StageGenerating, start)

	logger.Info("answered query",
		zap.Int("k", k),
		zap.Int("hits", len(hits)),
		zap.Int("hits_used", p.HitsUsed),
		zap.String("model", model),
		zap.Int64("generation_ms", timings[string(StageGenerating)]))

	return &models.Answer{
		RequestID: requestID,
		Response:  text,
		Hits:      hits,
		HitsUsed:  p.HitsUsed,
		Template:  tmpl.String(),
		Model:     model,
		Timings:   timings,
	}, nil
}

// Retrieve runs only the retrieval half of the pipeline. k == 0 uses the default.
func (s *Service) Retrieve(ctx context.Context, query string, k int) ([]*models.SearchHit, error) {
	if k == 0 {
		k = s.cfg.DefaultK
	}
	hits, err := s.retriever.Retrieve(ctx, query, k)
	if err != nil {
		return nil, err
	}
	return hits, nil
}
