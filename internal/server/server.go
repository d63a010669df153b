// Package server exposes the assembly pipeline over HTTP.
package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/topoforge/topoforge/pkg/assembly"
	"github.com/topoforge/topoforge/pkg/chem"
	"github.com/topoforge/topoforge/pkg/errors"
	"github.com/topoforge/topoforge/pkg/export"
	"github.com/topoforge/topoforge/pkg/observability"
	"github.com/topoforge/topoforge/pkg/pipeline"
	"github.com/topoforge/topoforge/pkg/topology"
)

// Server serves the assembly API on top of a pipeline runner.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
}

// New creates a server. A nil logger falls back to log.Default().
func New(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, logger: logger}
}

// Router builds the HTTP route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/assemble", s.handleAssemble)
		r.Get("/topologies", s.handleTopologies)
		r.Get("/units", s.handleUnits)
	})
	return r
}

// observe emits request/response events through the observability hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// assembleResponse is the body returned by POST /api/assemble.
type assembleResponse struct {
	Framework export.Document `json:"framework"`
	XYZ       string          `json:"xyz,omitempty"`
	Cached    bool            `json:"cached"`
	Warnings  []string        `json:"warnings,omitempty"`
}

func (s *Server) handleAssemble(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse request body"))
		return
	}
	opts.Logger = s.logger
	opts.Formats = []string{pipeline.FormatXYZ}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := assembleResponse{
		Framework: export.FromFramework(result.Framework),
		XYZ:       string(result.Artifacts[pipeline.FormatXYZ]),
		Cached:    result.CacheInfo.FrameworkHit,
	}
	if result.Framework.Unconverged {
		resp.Warnings = append(resp.Warnings,
			"refinement hit its iteration budget; result is best-effort")
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// topologyInfo is one entry of GET /api/topologies.
type topologyInfo struct {
	Name   string   `json:"name"`
	Slots  int      `json:"slots"`
	Shapes []string `json:"shapes"`
}

// handleTopologies lists the built-in nets. With ?units=a,b only nets
// compatible with those units are returned: exact shape coverage by
// default, any-slot usability with ?partial=1. A bare ?compatible=1
// filters to nets fillable from the whole library.
func (s *Server) handleTopologies(w http.ResponseWriter, r *http.Request) {
	var out []topologyInfo
	names := topology.Names()
	q := r.URL.Query()
	var units []string
	if raw := q.Get("units"); raw != "" {
		units = strings.Split(raw, ",")
	}
	if q.Get("compatible") != "" || len(units) > 0 {
		full := q.Get("partial") == ""
		filtered, err := assembly.CompatibleTopologies(names, units, nil, full)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		names = filtered
	}
	for _, name := range names {
		t, err := topology.Lookup(name)
		if err != nil {
			continue
		}
		out = append(out, topologyInfo{
			Name:   name,
			Slots:  t.SlotCount(),
			Shapes: t.UniqueShapes(),
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

// unitInfo is one entry of GET /api/units.
type unitInfo struct {
	Name        string `json:"name"`
	Shape       string `json:"shape"`
	Connections int    `json:"connections"`
	Atoms       int    `json:"atoms"`
}

func (s *Server) handleUnits(w http.ResponseWriter, r *http.Request) {
	lib := chem.Builtin()

	names := lib.Names()
	if topoName := r.URL.Query().Get("topology"); topoName != "" {
		t, err := topology.Lookup(topoName)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		names = assembly.CompatibleUnits(t, lib)
	}

	var out []unitInfo
	for _, name := range names {
		u, err := lib.Lookup(name)
		if err != nil {
			continue
		}
		out = append(out, unitInfo{
			Name:        name,
			Shape:       u.Shape,
			Connections: u.ConnectionCount(),
			Atoms:       len(u.Atoms),
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// Responses
// =============================================================================

// errorResponse is the standard error body.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := statusForCode(code)
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	s.writeJSON(w, status, errorResponse{
		Error: errors.UserMessage(err),
		Code:  string(code),
	})
}

// statusForCode maps domain error codes to HTTP statuses.
func statusForCode(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidTopology,
		errors.ErrCodeInvalidUnit,
		errors.ErrCodeInvalidBlueprint:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound,
		errors.ErrCodeTopologyNotFound,
		errors.ErrCodeUnitNotFound:
		return http.StatusNotFound
	case errors.ErrCodeShapeMismatch,
		errors.ErrCodeDegenerateGeometry:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
