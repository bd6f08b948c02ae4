package registry

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/aretw0/statescript/pkg/domain"
	"github.com/aretw0/statescript/pkg/runtime"
)

var (
	// ErrDuplicateType is returned when registering a TypeID twice.
	ErrDuplicateType = errors.New("node type already registered")
	// ErrInvalidDefinition is returned for definitions the builder could never use.
	ErrInvalidDefinition = errors.New("invalid node definition")
)

// Constructor builds a node from converted arguments.
type Constructor struct {
	Params []Param
	New    func(Args) (runtime.Node, error)
}

// Definition registers one node implementation.
type Definition struct {
	// TypeID is the stable runtime type id stored in serialized graphs.
	TypeID string
	// Name is the implementation name used for display, e.g. "DealDamageNode".
	// Defaults to the last dot separated segment of TypeID.
	Name        string
	Category    domain.Category
	Description string

	Constructors []Constructor

	// InputProperties and OutputVariables describe the node's slots when a
	// catalog instance cannot be built.
	InputProperties []runtime.PropertyDescriptor
	OutputVariables []runtime.PropertyDescriptor
}

func (d Definition) name() string {
	if d.Name != "" {
		return d.Name
	}
	if i := strings.LastIndex(d.TypeID, "."); i >= 0 {
		return d.TypeID[i+1:]
	}
	return d.TypeID
}

// Widest returns the constructor with the most parameters. Ties go to the
// first registered.
func (d Definition) Widest() (Constructor, bool) {
	if len(d.Constructors) == 0 {
		return Constructor{}, false
	}
	best := d.Constructors[0]
	for _, c := range d.Constructors[1:] {
		if len(c.Params) > len(best.Params) {
			best = c
		}
	}
	return best, true
}

// Narrowest returns the constructor with the fewest parameters. Ties go to
// the first registered.
func (d Definition) Narrowest() (Constructor, bool) {
	if len(d.Constructors) == 0 {
		return Constructor{}, false
	}
	best := d.Constructors[0]
	for _, c := range d.Constructors[1:] {
		if len(c.Params) < len(best.Params) {
			best = c
		}
	}
	return best, true
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for discovery diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// Registry manages the available node implementations and their catalog.
type Registry struct {
	mu      sync.RWMutex
	defs    []Definition
	index   map[string]int
	catalog []NodeType
	cached  bool
	logger  *slog.Logger
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		index:  make(map[string]int),
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a node implementation and drops the cached catalog.
func (r *Registry) Register(def Definition) error {
	if def.TypeID == "" {
		return fmt.Errorf("%w: empty type id", ErrInvalidDefinition)
	}
	switch def.Category {
	case domain.CategoryAction, domain.CategoryCondition, domain.CategoryState:
	default:
		return fmt.Errorf("%w: %s has category %q", ErrInvalidDefinition, def.TypeID, def.Category)
	}
	if len(def.Constructors) == 0 {
		return fmt.Errorf("%w: %s has no constructor", ErrInvalidDefinition, def.TypeID)
	}
	for _, c := range def.Constructors {
		if c.New == nil {
			return fmt.Errorf("%w: %s has a nil constructor", ErrInvalidDefinition, def.TypeID)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.index[def.TypeID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateType, def.TypeID)
	}
	r.index[def.TypeID] = len(r.defs)
	r.defs = append(r.defs, def)
	r.cached = false
	r.catalog = nil
	return nil
}

// MustRegister is like Register but panics on error. It suits package
// level registration of built-in node libraries.
func (r *Registry) MustRegister(defs ...Definition) *Registry {
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			panic(err)
		}
	}
	return r
}

// Definition returns the registered definition for typeID.
func (r *Registry) Definition(typeID string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[typeID]
	if !ok {
		return Definition{}, false
	}
	return r.defs[i], true
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

// Invalidate drops the cached catalog. The next Catalog call rebuilds it.
func (r *Registry) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cached = false
	r.catalog = nil
}

// Catalog returns one entry per registered definition in registration order.
// It is computed on first use and cached until Invalidate or Register.
func (r *Registry) Catalog() []NodeType {
	r.mu.RLock()
	if r.cached {
		out := append([]NodeType(nil), r.catalog...)
		r.mu.RUnlock()
		return out
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.cached {
		r.catalog = make([]NodeType, 0, len(r.defs))
		for _, def := range r.defs {
			r.catalog = append(r.catalog, r.discover(def))
		}
		r.cached = true
		r.logger.Debug("node catalog built", "types", len(r.catalog))
	}
	return append([]NodeType(nil), r.catalog...)
}

// Lookup finds a catalog entry by runtime type id.
func (r *Registry) Lookup(typeID string) (NodeType, bool) {
	for _, t := range r.Catalog() {
		if t.TypeID == typeID {
			return t, true
		}
	}
	return NodeType{}, false
}

// ByCategory returns the catalog entries of one category.
func (r *Registry) ByCategory(c domain.Category) []NodeType {
	var out []NodeType
	for _, t := range r.Catalog() {
		if t.Category == c {
			out = append(out, t)
		}
	}
	return out
}
