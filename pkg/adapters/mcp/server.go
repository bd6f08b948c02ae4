package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/statescript"
	"github.com/aretw0/statescript/internal/presentation/graph"
	"github.com/aretw0/statescript/internal/validator"
	"github.com/aretw0/statescript/pkg/compiler"
	"github.com/aretw0/statescript/pkg/domain"
	"github.com/aretw0/statescript/pkg/registry"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const catalogURI = "statescript://catalog"

// Engine defines the interface required by the MCP server to interact with Statescript.
type Engine interface {
	Registry() *registry.Registry
	Parse(data []byte) (*domain.Graph, error)
	Compile(ctx context.Context, g *domain.Graph) (*compiler.Result, error)
	ListGraphs(ctx context.Context) ([]string, error)
	Load(ctx context.Context, name string) (*domain.Graph, error)
}

// CatalogResponse lists node types for creation menus.
type CatalogResponse struct {
	NodeTypes []registry.NodeType `json:"node_types" jsonschema_description:"Registered node types with their port labels"`
}

// GraphsResponse lists the stored graphs.
type GraphsResponse struct {
	Graphs []string `json:"graphs" jsonschema_description:"Names of the graphs the loader knows about"`
}

// ValidationResponse is the result of validate_graph.
type ValidationResponse struct {
	Valid  bool              `json:"valid" jsonschema_description:"False when any issue has error severity"`
	Issues []validator.Issue `json:"issues" jsonschema_description:"Lint findings"`
}

// Server wraps the Statescript Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		logger:    slog.New(slog.NewJSONHandler(io.Discard, nil)),
		mcpServer: server.NewMCPServer("statescript-mcp", strings.TrimSpace(statescript.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when
// ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_node_types",
		mcp.WithDescription("List the node types that can be placed in a graph, with their input and output port labels."),
		mcp.WithString("category", mcp.Description("Only list one category: entry, exit, action, condition or state")),
		mcp.WithOutputSchema[CatalogResponse](),
	), mcp.NewStructuredToolHandler(s.handleListNodeTypes))

	s.mcpServer.AddTool(mcp.NewTool("list_graphs",
		mcp.WithDescription("List the stored graphs."),
		mcp.WithOutputSchema[GraphsResponse](),
	), mcp.NewStructuredToolHandler(s.handleListGraphs))

	s.mcpServer.AddTool(mcp.NewTool("build_graph",
		mcp.WithDescription("Build a graph and report the warnings raised, including dropped connections."),
		mcp.WithString("graph", mcp.Description("Name of a stored graph")),
		mcp.WithString("document", mcp.Description("Graph document (JSON or YAML), used when graph is omitted")),
		mcp.WithOutputSchema[compiler.Summary](),
	), mcp.NewStructuredToolHandler(s.handleBuildGraph))

	s.mcpServer.AddTool(mcp.NewTool("validate_graph",
		mcp.WithDescription("Lint a graph without building it."),
		mcp.WithString("graph", mcp.Description("Name of a stored graph")),
		mcp.WithString("document", mcp.Description("Graph document (JSON or YAML), used when graph is omitted")),
		mcp.WithOutputSchema[ValidationResponse](),
	), mcp.NewStructuredToolHandler(s.handleValidateGraph))

	s.mcpServer.AddTool(mcp.NewTool("render_mermaid",
		mcp.WithDescription("Render a stored graph as a Mermaid flowchart."),
		mcp.WithString("graph", mcp.Required(), mcp.Description("Name of a stored graph")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, _ := request.GetArguments()["graph"].(string)
		out, err := s.mermaid(ctx, name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	})
}

func (s *Server) handleListNodeTypes(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (CatalogResponse, error) {
	reg := s.engine.Registry()
	c, _ := args["category"].(string)
	if c == "" {
		return CatalogResponse{NodeTypes: reg.Catalog()}, nil
	}
	cat := domain.Category(c)
	if !cat.Valid() {
		return CatalogResponse{}, fmt.Errorf("%w: %s", domain.ErrInvalidCategory, c)
	}
	types := reg.ByCategory(cat)
	if types == nil {
		types = []registry.NodeType{}
	}
	return CatalogResponse{NodeTypes: types}, nil
}

func (s *Server) handleListGraphs(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (GraphsResponse, error) {
	names, err := s.engine.ListGraphs(ctx)
	if err != nil {
		return GraphsResponse{}, fmt.Errorf("list failed: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return GraphsResponse{Graphs: names}, nil
}

func (s *Server) handleBuildGraph(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (compiler.Summary, error) {
	g, err := s.graphArg(ctx, args)
	if err != nil {
		return compiler.Summary{}, err
	}
	res, err := s.engine.Compile(ctx, g)
	if err != nil {
		s.logger.Info("MCP build rejected", "graph", g.Name, "err", err)
		return compiler.Summary{}, fmt.Errorf("build failed: %w", err)
	}
	return res.Summary(), nil
}

func (s *Server) handleValidateGraph(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ValidationResponse, error) {
	g, err := s.graphArg(ctx, args)
	if err != nil {
		return ValidationResponse{}, err
	}
	issues := validator.ValidateGraph(g, s.engine.Registry())
	if issues == nil {
		issues = []validator.Issue{}
	}
	return ValidationResponse{Valid: validator.Err(issues) == nil, Issues: issues}, nil
}

var errNoGraph = errors.New("either graph or document is required")

func (s *Server) graphArg(ctx context.Context, args map[string]interface{}) (*domain.Graph, error) {
	if name, _ := args["graph"].(string); name != "" {
		return s.engine.Load(ctx, name)
	}
	doc, _ := args["document"].(string)
	if strings.TrimSpace(doc) == "" {
		return nil, errNoGraph
	}
	return s.engine.Parse([]byte(doc))
}

func (s *Server) mermaid(ctx context.Context, name string) (string, error) {
	g, err := s.engine.Load(ctx, name)
	if err != nil {
		return "", err
	}
	var overlay *graph.GraphOverlay
	if res, err := s.engine.Compile(ctx, g); err == nil {
		overlay = graph.OverlayFromWarnings(res.Warnings)
	}
	return graph.GenerateMermaid(g, s.engine.Registry(), overlay), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(catalogURI, "Node Type Catalog",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.engine.Registry().Catalog())
		if err != nil {
			return nil, fmt.Errorf("failed to encode catalog: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      catalogURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
