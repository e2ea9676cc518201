package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/matzehuels/spectra/pkg/buildinfo"
	"github.com/matzehuels/spectra/pkg/errors"
	"github.com/matzehuels/spectra/pkg/graph"
	"github.com/matzehuels/spectra/pkg/observability"
	"github.com/matzehuels/spectra/pkg/pipeline"
)

// =============================================================================
// Wire Types
// =============================================================================

// LayoutRequest is the body of POST /v1/layout and POST /v1/render.
type LayoutRequest struct {
	Graph   graph.Graph      `json:"graph"`
	Options pipeline.Options `json:"options"`
}

// LayoutResponse is the body returned by POST /v1/layout.
type LayoutResponse struct {
	Layout     graph.Layout `json:"layout"`
	GraphHash  string       `json:"graph_hash"`
	Cached     bool         `json:"cached"`
	DurationMS int64        `json:"duration_ms"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatJSON: "application/json",
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req, err := decodeRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	g, err := graph.ToCGraph(req.Graph)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	hash, err := pipeline.GraphHash(g)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := req.Options
	opts.Logger = s.logger.With("request_id", RequestID(r.Context()))
	layout, cached, err := s.runner.ComputeLayoutWithHash(r.Context(), g, hash, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, LayoutResponse{
		Layout:     layout,
		GraphHash:  hash,
		Cached:     cached,
		DurationMS: time.Since(start).Milliseconds(),
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}

	req, err := decodeRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	g, err := graph.ToCGraph(req.Graph)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := req.Options
	opts.Formats = []string{format}
	opts.Logger = s.logger.With("request_id", RequestID(r.Context()))
	res, err := s.runner.Execute(r.Context(), g, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

// =============================================================================
// Helpers
// =============================================================================

func decodeRequest(r *http.Request) (LayoutRequest, error) {
	var req LayoutRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return req, errors.New(errors.ErrCodeRequestTooLong, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return req, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request")
	}
	return req, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// classify gives context errors a code so they map to a useful status.
func classify(err error) error {
	switch {
	case errors.GetCode(err) != "":
		return err
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(errors.ErrCodeTimeout, err, "layout timed out")
	default:
		return err
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	err = classify(err)
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	message := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestID(r.Context()), "error", err)
	}
	observability.HTTP().OnError(r.Context(), r.Method, routePattern(r), err)
	s.writeErrorStatus(w, r, status, code, message)
}

func (s *Server) writeErrorStatus(w http.ResponseWriter, r *http.Request, status int, code errors.Code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{
		Code:      code,
		Message:   message,
		RequestID: RequestID(r.Context()),
	}})
}

func errNotFound(r *http.Request) error {
	return errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path)
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.writeErrorStatus(w, r, http.StatusMethodNotAllowed, errors.ErrCodeInvalidInput,
		"method "+r.Method+" not allowed on "+r.URL.Path)
}
