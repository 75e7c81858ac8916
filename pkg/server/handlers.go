package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/declutter/pkg/buildinfo"
	"github.com/matzehuels/declutter/pkg/errors"
	dio "github.com/matzehuels/declutter/pkg/io"
	"github.com/matzehuels/declutter/pkg/observability"
	"github.com/matzehuels/declutter/pkg/pipeline"
	"github.com/matzehuels/declutter/pkg/render"
	"github.com/matzehuels/declutter/pkg/reposition"
)

// =============================================================================
// Wire Types
// =============================================================================

// RepositionRequest is the body of /v1/reposition and /v1/preview.
type RepositionRequest struct {
	Entities []dio.Record    `json:"entities"`
	Options  pipeline.Options `json:"options"`
}

// RepositionResponse is the body returned by /v1/reposition and
// /v1/results/{key}.
type RepositionResponse struct {
	Entities []dio.Record       `json:"entities"`
	Stats    pipeline.Stats     `json:"stats"`
	Key      string             `json:"key,omitempty"`
	Cache    pipeline.CacheInfo `json:"cache"`
}

// CheckRequest is the body of /v1/check.
type CheckRequest struct {
	Entities []dio.Record `json:"entities"`
}

// CheckResponse lists the overlapping pairs of a check request.
type CheckResponse struct {
	Count     int                 `json:"count"`
	Conflicts []pipeline.Conflict `json:"conflicts"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
	Index   *int        `json:"index,omitempty"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleReposition(w http.ResponseWriter, r *http.Request) {
	entities, opts, ok := s.decodeReposition(w, r)
	if !ok {
		return
	}

	res, err := s.runner.Resolve(r.Context(), entities, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, RepositionResponse{
		Entities: dio.NewDocument(res.Entities).Entities,
		Stats:    res.Stats,
		Key:      res.Key,
		Cache:    res.CacheInfo,
	})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	entities, opts, ok := s.decodeReposition(w, r)
	if !ok {
		return
	}

	res, err := s.runner.Resolve(r.Context(), entities, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	data, _, err := s.runner.Preview(r.Context(), res, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	format := opts.PreviewFormat
	if format == "" {
		format = pipeline.DefaultPreviewFormat
	}
	w.Header().Set("Content-Type", render.ContentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	entities, err := dio.Document{Entities: req.Entities}.Decode()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	conflicts := pipeline.Conflicts(entities)
	writeJSON(w, http.StatusOK, CheckResponse{Count: len(conflicts), Conflicts: conflicts})
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	entities, stats, err := s.runner.Lookup(r.Context(), key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, RepositionResponse{
		Entities: dio.NewDocument(entities).Entities,
		Stats:    stats,
		Key:      key,
		Cache:    pipeline.CacheInfo{ResolveHit: true},
	})
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) decodeReposition(w http.ResponseWriter, r *http.Request) ([]reposition.Entity, pipeline.Options, bool) {
	var req RepositionRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return nil, pipeline.Options{}, false
	}
	if req.Options.Budget() > s.maxBudget {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidOption,
			"budget_ms must not exceed %d", s.maxBudget.Milliseconds()))
		return nil, pipeline.Options{}, false
	}

	entities, err := dio.Document{Entities: req.Entities}.Decode()
	if err != nil {
		s.writeError(w, r, err)
		return nil, pipeline.Options{}, false
	}

	opts := req.Options
	opts.Logger = s.logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, r, err)
		return nil, pipeline.Options{}, false
	}
	return entities, opts, true
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request body")
	}
	return nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}

	body := ErrorResponse{Code: code, Message: errors.UserMessage(err)}
	var ee *errors.EntityError
	if stderrors.As(err, &ee) {
		body.Index = &ee.Index
	}

	if status >= http.StatusInternalServerError {
		observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
		s.logger.Error("request failed", "path", r.URL.Path, "err", err, "request_id", RequestID(r.Context()))
		body.Message = http.StatusText(status)
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
