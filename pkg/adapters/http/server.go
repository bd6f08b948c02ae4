package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/statescript"
	"github.com/aretw0/statescript/internal/presentation/graph"
	"github.com/aretw0/statescript/internal/validator"
	"github.com/aretw0/statescript/pkg/compiler"
	"github.com/aretw0/statescript/pkg/domain"
	"github.com/aretw0/statescript/pkg/registry"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodyBytes bounds graph documents posted to the API.
const maxBodyBytes = 4 << 20

// Engine defines what the API needs from the Statescript core.
type Engine interface {
	Registry() *registry.Registry
	Parse(data []byte) (*domain.Graph, error)
	Compile(ctx context.Context, g *domain.Graph) (*compiler.Result, error)
	ListGraphs(ctx context.Context) ([]string, error)
	Load(ctx context.Context, name string) (*domain.Graph, error)
	Watch(ctx context.Context) (<-chan string, error)
}

// Server serves the node catalog and graph build reports to editors.
type Server struct {
	Engine   Engine
	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics exposes the collectors of g on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// ValidationReport is the response of a validate request.
type ValidationReport struct {
	Valid  bool              `json:"valid"`
	Issues []validator.Issue `json:"issues"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{
		Engine: engine,
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/catalog", s.GetCatalog)
	r.Get("/catalog/{typeID}", s.GetNodeType)
	r.Get("/graphs", s.ListGraphs)
	r.Get("/graphs/*", s.GetGraph)
	r.Post("/build", s.Build)
	r.Post("/validate", s.Validate)
	r.Get("/events", s.SubscribeEvents)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":        "statescript-http",
		"version":    strings.TrimSpace(statescript.Version),
		"node_types": s.Engine.Registry().Len(),
	})
}

// GetCatalog handles GET /catalog, optionally filtered by ?category=.
func (s *Server) GetCatalog(w http.ResponseWriter, r *http.Request) {
	reg := s.Engine.Registry()
	c := r.URL.Query().Get("category")
	if c == "" {
		s.writeJSON(w, http.StatusOK, reg.Catalog())
		return
	}
	cat := domain.Category(c)
	if !cat.Valid() {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %s", domain.ErrInvalidCategory, c))
		return
	}
	types := reg.ByCategory(cat)
	if types == nil {
		types = []registry.NodeType{}
	}
	s.writeJSON(w, http.StatusOK, types)
}

// GetNodeType handles GET /catalog/{typeID}.
func (s *Server) GetNodeType(w http.ResponseWriter, r *http.Request) {
	typeID := chi.URLParam(r, "typeID")
	nt, ok := s.Engine.Registry().Lookup(typeID)
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", compiler.ErrUnknownType, typeID))
		return
	}
	s.writeJSON(w, http.StatusOK, nt)
}

// ListGraphs handles GET /graphs.
func (s *Server) ListGraphs(w http.ResponseWriter, r *http.Request) {
	names, err := s.Engine.ListGraphs(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	s.writeJSON(w, http.StatusOK, names)
}

// GetGraph handles GET /graphs/{name}. With ?format=mermaid the graph is
// built and returned as a Mermaid flowchart with warnings highlighted.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	g, err := s.Engine.Load(r.Context(), name)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	if r.URL.Query().Get("format") != "mermaid" {
		s.writeJSON(w, http.StatusOK, g)
		return
	}

	var overlay *graph.GraphOverlay
	if res, err := s.Engine.Compile(r.Context(), g); err == nil {
		overlay = graph.OverlayFromWarnings(res.Warnings)
	} else {
		s.logger.Warn("mermaid: build failed, rendering without overlay", "graph", name, "err", err)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, graph.GenerateMermaid(g, s.Engine.Registry(), overlay))
}

// Build handles POST /build. The body is a graph document; with ?graph=
// the named graph is loaded instead.
func (s *Server) Build(w http.ResponseWriter, r *http.Request) {
	g, err := s.requestGraph(r)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	res, err := s.Engine.Compile(r.Context(), g)
	if err != nil {
		s.logger.Info("build rejected", "graph", g.Name, "err", err)
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	s.writeJSON(w, http.StatusOK, res.Summary())
}

// Validate handles POST /validate.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	g, err := s.requestGraph(r)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	issues := validator.ValidateGraph(g, s.Engine.Registry())
	if issues == nil {
		issues = []validator.Issue{}
	}
	s.writeJSON(w, http.StatusOK, ValidationReport{
		Valid:  validator.Err(issues) == nil,
		Issues: issues,
	})
}

func (s *Server) requestGraph(r *http.Request) (*domain.Graph, error) {
	if name := r.URL.Query().Get("graph"); name != "" {
		return s.Engine.Load(r.Context(), name)
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%w: empty body", errBadRequest)
	}
	g, err := s.Engine.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return g, nil
}

// SubscribeEvents handles the GET /events request (SSE). Each changed graph
// name is sent as a data line.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	events, err := s.Engine.Watch(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, statescript.ErrWatchUnsupported) {
			status = http.StatusNotImplemented
		}
		s.writeError(w, status, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.logger.Info("SSE: client subscribed")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected")
			return
		case name, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: graph_changed\ndata: %s\n\n", name)
			flusher.Flush()
		}
	}
}

var errBadRequest = errors.New("bad request")

func statusFor(err error) int {
	var nodeErr *compiler.NodeError
	switch {
	case errors.Is(err, domain.ErrGraphNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.As(err, &nodeErr):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}
