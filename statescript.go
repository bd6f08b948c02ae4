package statescript

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/loam"
	"github.com/aretw0/statescript/internal/validator"
	loamAdapter "github.com/aretw0/statescript/pkg/adapters/loam"
	"github.com/aretw0/statescript/pkg/adapters/memory"
	"github.com/aretw0/statescript/pkg/compiler"
	"github.com/aretw0/statescript/pkg/domain"
	"github.com/aretw0/statescript/pkg/nodes"
	"github.com/aretw0/statescript/pkg/observability"
	"github.com/aretw0/statescript/pkg/ports"
	"github.com/aretw0/statescript/pkg/registry"
	"github.com/aretw0/statescript/pkg/runtime"
)

// ErrWatchUnsupported is returned by Watch when the loader cannot report changes.
var ErrWatchUnsupported = errors.New("current loader does not support watching")

// Engine is the high-level entry point for the Statescript library.
// It ties a node type registry, a graph loader and the builder together.
type Engine struct {
	registry *registry.Registry
	loader   ports.GraphLoader
	parser   *compiler.Parser
	builder  *compiler.Builder
	hooks    domain.LifecycleHooks
	metrics  *observability.Metrics
	logger   *slog.Logger
	Name     string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRegistry replaces the standard node library with reg.
func WithRegistry(reg *registry.Registry) Option {
	return func(e *Engine) {
		e.registry = reg
	}
}

// WithLoader injects a custom GraphLoader, bypassing the default Loam initialization.
func WithLoader(l ports.GraphLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithLifecycleHooks registers build observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMetrics records every build in m.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// New initializes a new Engine.
// When repoPath is set and no loader is injected, graphs are read from a
// read-only Loam repository at that path. With neither, an empty in-memory
// store is used.
func New(repoPath string, opts ...Option) (*Engine, error) {
	eng := &Engine{parser: compiler.NewParser()}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	switch {
	case eng.loader != nil:
		if repoPath != "" {
			eng.Name = filepath.Base(repoPath)
		}
	case repoPath != "":
		absPath, err := filepath.Abs(repoPath)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		eng.Name = filepath.Base(absPath)

		// Strict mode keeps numbers as json.Number so uint64 constants survive.
		repo, err := loam.Init(absPath,
			loam.WithStrict(true),
			loam.WithReadOnly(true),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize loam: %w", err)
		}
		eng.loader = loamAdapter.New(loam.NewTypedRepository[loamAdapter.GraphMetadata](repo))
	default:
		eng.loader = memory.NewStore()
	}

	if eng.Name != "" {
		eng.logger = eng.logger.With("repo", eng.Name)
	}
	if eng.registry == nil {
		eng.registry = registry.New(registry.WithLogger(eng.logger))
		if err := nodes.Register(eng.registry, nodes.WithLogger(eng.logger)); err != nil {
			return nil, fmt.Errorf("failed to register standard nodes: %w", err)
		}
	}

	hooks := eng.hooks
	if eng.metrics != nil {
		hooks = observability.Chain(hooks, eng.metrics.Hooks())
	}
	eng.builder = compiler.NewBuilder(eng.registry,
		compiler.WithLogger(eng.logger),
		compiler.WithLifecycleHooks(hooks),
	)
	return eng, nil
}

// Registry returns the node type registry used for builds.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Loader returns the underlying GraphLoader used by the engine.
func (e *Engine) Loader() ports.GraphLoader {
	return e.loader
}

// Catalog lists the registered node types.
func (e *Engine) Catalog() []registry.NodeType {
	return e.registry.Catalog()
}

// Parse decodes a JSON or YAML graph document.
func (e *Engine) Parse(data []byte) (*domain.Graph, error) {
	return e.parser.Parse(data)
}

// ListGraphs returns the names of the graphs the loader knows about.
func (e *Engine) ListGraphs(ctx context.Context) ([]string, error) {
	return e.loader.ListGraphs(ctx)
}

// Load fetches and parses the named graph.
func (e *Engine) Load(ctx context.Context, name string) (*domain.Graph, error) {
	data, err := e.loader.GetGraph(ctx, name)
	if err != nil {
		return nil, err
	}
	g, err := e.parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse graph %s: %w", name, err)
	}
	if g.Name == "" {
		g.Name = name
	}
	return g, nil
}

// Compile builds g and reports the warnings raised on the way.
func (e *Engine) Compile(ctx context.Context, g *domain.Graph) (*compiler.Result, error) {
	return e.builder.Compile(ctx, g)
}

// Build builds g into a runtime graph.
func (e *Engine) Build(ctx context.Context, g *domain.Graph) (*runtime.Graph, error) {
	return e.builder.Build(ctx, g)
}

// BuildNamed loads the named graph and compiles it.
func (e *Engine) BuildNamed(ctx context.Context, name string) (*compiler.Result, error) {
	g, err := e.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	return e.builder.Compile(ctx, g)
}

// BuildFile reads a graph document from disk and compiles it.
func (e *Engine) BuildFile(ctx context.Context, path string) (*compiler.Result, error) {
	g, err := e.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return e.builder.Compile(ctx, g)
}

// ReadFile parses a graph document from disk. A graph without a name takes
// the file's base name.
func (e *Engine) ReadFile(path string) (*domain.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph: %w", err)
	}
	g, err := e.parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if g.Name == "" {
		base := filepath.Base(path)
		g.Name = base[:len(base)-len(filepath.Ext(base))]
	}
	return g, nil
}

// Validate lints g against the engine's registry without building it.
// Only error-level issues make it fail; warnings are logged.
func (e *Engine) Validate(g *domain.Graph) error {
	if g == nil {
		return compiler.ErrNilGraph
	}
	issues := validator.ValidateGraph(g, e.registry)
	for _, issue := range issues {
		if issue.Severity == validator.SeverityWarning {
			e.logger.Warn("graph lint", "graph", g.Name, "node", issue.NodeID, "issue", issue.Message)
		}
	}
	return validator.Err(issues)
}

// Watch returns a channel that emits graph names as they change.
// Returns ErrWatchUnsupported if the loader does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := e.loader.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, ErrWatchUnsupported
}
