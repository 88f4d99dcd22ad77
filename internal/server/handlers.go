package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/ragd/internal/keyword"
	"github.com/hyperjump/ragd/internal/models"
	"github.com/hyperjump/ragd/internal/rag"
	"github.com/hyperjump/ragd/internal/search"
	"github.com/hyperjump/ragd/internal/storage"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type retrieveRequest struct {
	Query string `json:"query"`
	K     int    `json:"k,omitempty"`
}

type hitsResponse struct {
	Hits []*models.SearchHit `json:"hits"`
}

type catalogSearchHit struct {
	Item  *models.CatalogItem `json:"item"`
	Score float64             `json:"score"`
}

// handleAnswer runs the full pipeline. Invalid input is a 400. Generation backend failures are
// server errors reported as 502 (unreachable, bad status, malformed body) or 504 (timeout);
// any other pipeline failure is a 500.
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req models.AnswerRequest
	if err := s.decode(r, s.schemas.answer, &req); err != nil {
		s.respondKindError(w, err)
		return
	}
	s.logger.Debug("answer request", zap.String("query", req.Query), zap.Int("k", req.K))
	answer, err := s.service.Answer(r.Context(), req)
	if err != nil {
		s.respondKindError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, answer)
}

// handleLegacySearch serves the first-generation single-route API: {query} in, {response} out.
func (s *Server) handleLegacySearch(w http.ResponseWriter, r *http.Request) {
	var req models.AnswerRequest
	if err := s.decode(r, s.schemas.legacy, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Query parameter is required")
		return
	}
	answer, err := s.service.Answer(r.Context(), models.AnswerRequest{Query: req.Query})
	if err != nil {
		status, _ := statusFor(err)
		if status == http.StatusBadRequest {
			s.respondError(w, status, "Query parameter is required")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"response": answer.Response})
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	var req retrieveRequest
	if err := s.decode(r, s.schemas.retrieve, &req); err != nil {
		s.respondKindError(w, err)
		return
	}
	hits, err := s.service.Retrieve(r.Context(), req.Query, req.K)
	if err != nil {
		s.respondKindError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, hitsResponse{Hits: hits})
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, ok := s.service.Retriever().Index().Get(id)
	if !ok {
		s.respondJSON(w, http.StatusNotFound, map[string]models.ErrorBody{
			"error": {Kind: models.KindNotFound, Message: fmt.Sprintf("catalog item %q not found", id)},
		})
		return
	}
	s.respondJSON(w, http.StatusOK, item)
}

func (s *Server) handleCatalogSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > s.maxK {
			s.respondKindError(w, models.NewInvalidArgument("limit", "must be an integer between 1 and %d", s.maxK))
			return
		}
		limit = n
	}
	fuzzy := r.URL.Query().Get("fuzzy") == "true"

	switch mode := r.URL.Query().Get("mode"); mode {
	case "", "keyword":
	case "hybrid":
		if s.hybrid == nil {
			s.respondError(w, http.StatusNotImplemented, "hybrid search not enabled")
			return
		}
		resp, err := s.hybrid.Search(r.Context(), search.Query{Text: q, Limit: limit, FuzzyEnabled: fuzzy})
		if err != nil {
			s.respondKindError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, resp)
		return
	default:
		s.respondKindError(w, models.NewInvalidArgument("mode", "must be keyword or hybrid, got %q", mode))
		return
	}

	if s.keyword == nil {
		s.respondError(w, http.StatusNotImplemented, "keyword search not enabled")
		return
	}
	results, err := s.keyword.Search(r.Context(), q, limit, &keyword.SearchOptions{
		TitleBoost:   s.config.Search.KeywordTitleBoost,
		FuzzyEnabled: fuzzy,
	})
	if err != nil {
		s.respondKindError(w, err)
		return
	}
	index := s.service.Retriever().Index()
	hits := make([]catalogSearchHit, 0, len(results))
	for _, res := range results {
		if item, ok := index.Get(res.ID); ok {
			hits = append(hits, catalogSearchHit{Item: item, Score: res.Score})
		}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"hits": hits})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	index := s.service.Retriever().Index()
	embedder := s.service.Retriever().Embedder()
	svcCfg := s.service.Config()
	resp := map[string]interface{}{
		"catalog_items":     index.Size(),
		"vector_index_type": index.Type(),
		"uptime_seconds":    int64(time.Since(s.started).Seconds()),
	}
	configInfo := map[string]interface{}{
		"embedding_model":      embedder.Model(),
		"embedding_dimensions": embedder.Dimensions(),
		"default_k":            svcCfg.DefaultK,
		"template":             svcCfg.Template.String(),
		"max_prompt_length":    svcCfg.MaxPromptLength,
		"generation_model":     svcCfg.Model,
		"generation_timeout":   svcCfg.Timeout.String(),
		"catalog_source":       s.config.Catalog.Source,
		"database_path":        s.config.Storage.DatabasePath,
	}
	if s.keyword != nil {
		if n, err := s.keyword.DocCount(); err == nil {
			resp["keyword_index_size"] = n
		}
	}
	if s.watcher != nil {
		stale, at := s.watcher.Stale()
		resp["catalog_stale"] = stale
		if stale {
			resp["catalog_changed_at"] = at.UTC().Format(time.RFC3339)
		}
	}
	if s.config.Storage.DatabasePath != "" {
		diskBytes, err := storage.DiskUsageBytes(storage.DatabaseFiles(s.config.Storage.DatabasePath)...)
		if err == nil {
			resp["disk_usage_bytes"] = diskBytes
		}
	}
	resp["config"] = configInfo
	s.respondJSON(w, http.StatusOK, resp)
}

// decode reads the body, validates it against schema and unmarshals it into dst.
func (s *Server) decode(r *http.Request, schema *gojsonschema.Schema, dst interface{}) error {
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err != nil {
		return models.NewInvalidArgument("body", "could not read request body: %v", err)
	}
	if err := validate(schema, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return models.NewInvalidArgument("body", "invalid request body: %v", err)
	}
	return nil
}

// statusFor maps an error to an HTTP status and the failed pipeline stage, if any.
func statusFor(err error) (int, string) {
	stage := ""
	var stageErr *rag.StageError
	if errors.As(err, &stageErr) {
		stage = string(stageErr.Stage)
	}
	switch models.KindOf(err) {
	case models.KindInvalidArgument:
		return http.StatusBadRequest, stage
	case models.KindBackendTimeout:
		return http.StatusGatewayTimeout, stage
	case models.KindBackendUnreachable, models.KindBackendStatus, models.KindMalformedResponse:
		return http.StatusBadGateway, stage
	default:
		return http.StatusInternalServerError, stage
	}
}

func (s *Server) respondKindError(w http.ResponseWriter, err error) {
	status, stage := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("stage", stage), zap.Error(err))
	}
	s.respondJSON(w, status, map[string]models.ErrorBody{
		"error": {Kind: models.KindOf(err), Stage: stage, Message: err.Error()},
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
