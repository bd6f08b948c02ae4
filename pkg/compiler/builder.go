package compiler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/statescript/pkg/domain"
	"github.com/aretw0/statescript/pkg/registry"
	"github.com/aretw0/statescript/pkg/resolver"
	"github.com/aretw0/statescript/pkg/runtime"
	"github.com/aretw0/statescript/pkg/variant"
)

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger that receives build warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithLifecycleHooks registers build lifecycle callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(b *Builder) {
		b.hooks = hooks
	}
}

// Builder turns serialized graphs into runtime graphs. A Builder holds no
// per-build state and may be shared; the registry is only read.
type Builder struct {
	registry *registry.Registry
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	now      func() time.Time
}

// NewBuilder creates a builder resolving node types against reg.
func NewBuilder(reg *registry.Registry, opts ...Option) *Builder {
	b := &Builder{
		registry: reg,
		logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Result is a built graph plus the warnings raised while building it.
type Result struct {
	Graph    *runtime.Graph
	Warnings []Warning
}

// Dropped counts the serialized connections left out of the graph.
func (r *Result) Dropped() int {
	n := 0
	for _, w := range r.Warnings {
		if w.DroppedConnection() {
			n++
		}
	}
	return n
}

// Summary is the serializable digest of a Result reported to editors.
type Summary struct {
	Graph       string    `json:"graph"`
	Nodes       int       `json:"nodes"`
	Connections int       `json:"connections"`
	Dropped     int       `json:"dropped"`
	Warnings    []Warning `json:"warnings"`
}

// Summary digests r. Warnings is never nil.
func (r *Result) Summary() Summary {
	warnings := r.Warnings
	if warnings == nil {
		warnings = []Warning{}
	}
	return Summary{
		Graph:       r.Graph.Name,
		Nodes:       len(r.Graph.Nodes()),
		Connections: len(r.Graph.Connections()),
		Dropped:     r.Dropped(),
		Warnings:    warnings,
	}
}

// Build compiles g and discards warnings (they are still logged).
func (b *Builder) Build(ctx context.Context, g *domain.Graph) (*runtime.Graph, error) {
	res, err := b.Compile(ctx, g)
	if err != nil {
		return nil, err
	}
	return res.Graph, nil
}

// Compile builds g into a fresh runtime graph.
//
// Unresolvable node types, unconvertible construction data and cyclic
// resolvers abort the build. Dangling or out-of-range connections,
// out-of-range bindings and bad variable values are reported as warnings and
// skipped. g is never modified.
func (b *Builder) Compile(ctx context.Context, g *domain.Graph) (*Result, error) {
	if g == nil {
		return nil, ErrNilGraph
	}
	start := b.now()
	if b.hooks.OnBuildStart != nil {
		b.hooks.OnBuildStart(ctx, &domain.BuildEvent{
			EventBase:   domain.EventBase{Timestamp: start, Type: domain.EventBuildStart, Graph: g.Name},
			Nodes:       len(g.Nodes),
			Connections: len(g.Connections),
		})
	}

	s := &session{
		ctx:     ctx,
		builder: b,
		source:  g,
		graph:   runtime.NewGraph(g.Name),
	}
	err := s.run()

	if b.hooks.OnBuildFinish != nil {
		ev := &domain.BuildEvent{
			EventBase: domain.EventBase{Timestamp: b.now(), Type: domain.EventBuildFinish, Graph: g.Name},
			Warnings:  len(s.warnings),
			Duration:  b.now().Sub(start),
			Err:       err,
		}
		if err == nil {
			ev.Nodes = len(s.graph.Nodes())
			ev.Connections = len(s.graph.Connections())
		}
		b.hooks.OnBuildFinish(ctx, ev)
	}
	if err != nil {
		b.logger.Error("graph build failed", "graph", g.Name, "err", err)
		return nil, err
	}
	b.logger.Debug("graph built", "graph", g.Name,
		"nodes", len(s.graph.Nodes()),
		"connections", len(s.graph.Connections()),
		"warnings", len(s.warnings))
	return &Result{Graph: s.graph, Warnings: s.warnings}, nil
}

// session is the state of one Compile call.
type session struct {
	ctx      context.Context
	builder  *Builder
	source   *domain.Graph
	graph    *runtime.Graph
	warnings []Warning
	entries  int
}

func (s *session) warn(w Warning) {
	s.warnings = append(s.warnings, w)
	s.builder.logger.Warn("graph build warning",
		"graph", s.source.Name,
		"reason", string(w.Reason),
		"detail", w.String())
}

func (s *session) run() error {
	s.defineVariables()
	for i := range s.source.Nodes {
		if err := s.buildNode(&s.source.Nodes[i]); err != nil {
			return err
		}
	}
	for i := range s.source.Connections {
		s.connect(s.source.Connections[i])
	}
	return nil
}

func (s *session) defineVariables() {
	seen := make(map[string]bool, len(s.source.Variables))
	for _, v := range s.source.Variables {
		if !v.Kind.Valid() || v.Name == "" {
			s.warn(Warning{Reason: ReasonInvalidVariable, Variable: v.Name, Message: "variable has no name or kind, skipped"})
			continue
		}
		if seen[v.Name] {
			s.warn(Warning{Reason: ReasonDuplicateVariable, Variable: v.Name, Message: "declared again, later definition wins"})
		}
		seen[v.Name] = true

		initial, err := v.Initial()
		if err != nil {
			s.warn(Warning{Reason: ReasonInvalidVariable, Variable: v.Name, Message: err.Error() + ", using default"})
			initial = nil
			if !v.IsArray {
				initial = []variant.Variant{variant.Default(v.Kind)}
			}
		}
		s.graph.Variables().Define(runtime.VariableDef{
			Name:    v.Name,
			Kind:    v.Kind,
			IsArray: v.IsArray,
			Initial: initial,
		})
	}
}

func (s *session) buildNode(n *domain.Node) error {
	var (
		node runtime.Node
		err  error
	)
	switch n.Category {
	case domain.CategoryEntry:
		s.entries++
		if s.entries > 1 {
			s.warn(Warning{Reason: ReasonExtraEntry, NodeID: n.ID, Message: "additional entry node mapped to the graph entry"})
		}
		node = s.graph.EntryNode()
	case domain.CategoryExit:
		node = runtime.NewExit()
	default:
		node, err = s.instantiate(n)
		if err != nil {
			return err
		}
	}

	replaced, err := s.graph.AddNode(n.ID, node)
	if err != nil {
		return &NodeError{NodeID: n.ID, TypeID: n.RuntimeTypeID, Err: err}
	}
	if replaced {
		s.warn(Warning{Reason: ReasonDuplicateNode, NodeID: n.ID, Message: "id declared again, later node wins"})
	}

	if err := s.bind(n, node); err != nil {
		return err
	}

	if hook := s.builder.hooks.OnNodeBuilt; hook != nil {
		hook(s.ctx, &domain.NodeEvent{
			EventBase: domain.EventBase{Timestamp: s.builder.now(), Type: domain.EventNodeBuilt, Graph: s.source.Name},
			NodeID:    n.ID,
			Category:  node.Category(),
			TypeID:    n.RuntimeTypeID,
		})
	}
	return nil
}

func (s *session) instantiate(n *domain.Node) (runtime.Node, error) {
	if n.RuntimeTypeID == "" {
		return nil, &NodeError{NodeID: n.ID, Err: ErrMissingType}
	}
	def, ok := s.builder.registry.Definition(n.RuntimeTypeID)
	if !ok {
		return nil, &NodeError{NodeID: n.ID, TypeID: n.RuntimeTypeID, Err: ErrUnknownType}
	}
	if n.Category != "" && n.Category != def.Category {
		s.warn(Warning{
			Reason:  ReasonCategoryMismatch,
			NodeID:  n.ID,
			Message: fmt.Sprintf("serialized as %s but %s is a %s", n.Category, def.TypeID, def.Category),
		})
	}

	ctor, _ := def.Widest()
	args := make(registry.Args, len(ctor.Params))
	for _, p := range ctor.Params {
		raw, present := n.CustomData[p.Name]
		if !present {
			args[p.Name] = p.Zero()
			continue
		}
		v, err := p.Convert(raw)
		if err != nil {
			s.warn(Warning{
				Reason:  ReasonInvalidArgument,
				NodeID:  n.ID,
				Message: fmt.Sprintf("%v, default used", err),
			})
			v = p.Zero()
		}
		args[p.Name] = v
	}

	node, err := construct(ctor, args)
	if err != nil {
		return nil, &NodeError{NodeID: n.ID, TypeID: n.RuntimeTypeID, Err: fmt.Errorf("%w: %w", ErrConstructor, err)}
	}
	return node, nil
}

func construct(ctor registry.Constructor, args registry.Args) (node runtime.Node, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			node, err = nil, fmt.Errorf("panic: %v", rec)
		}
	}()
	node, err = ctor.New(args)
	if err == nil && node == nil {
		err = errors.New("constructor returned nil")
	}
	return node, err
}

func (s *session) bind(n *domain.Node, node runtime.Node) error {
	for _, p := range n.Properties {
		key := p.Key()
		var slots []runtime.PropertyDescriptor
		switch p.Direction {
		case domain.Input:
			slots = node.InputProperties()
		case domain.Output:
			slots = node.OutputVariables()
		}
		if p.Index < 0 || p.Index >= len(slots) {
			s.warn(Warning{
				Reason:   ReasonPropertyOutOfRange,
				NodeID:   n.ID,
				Property: &key,
				Message:  fmt.Sprintf("node declares %d %s slots, binding skipped", len(slots), p.Direction),
			})
			continue
		}

		if err := resolver.Validate(p.Resolver); err != nil {
			return &NodeError{NodeID: n.ID, TypeID: n.RuntimeTypeID, Err: fmt.Errorf("property %s: %w", key, err)}
		}

		if p.Direction == domain.Output {
			if _, isVar := p.Resolver.(*resolver.VariableRef); p.Resolver != nil && !isVar {
				s.warn(Warning{
					Reason:   ReasonInvalidOutputBinding,
					NodeID:   n.ID,
					Property: &key,
					Message:  fmt.Sprintf("outputs bind to variables, got %s", resolver.TypeOf(p.Resolver)),
				})
				continue
			}
		}

		slot := slots[p.Index]
		if p.Resolver != nil && !resolver.IsCompatible(p.Resolver, slot.Type, s.graph.Variables()) {
			s.warn(Warning{
				Reason:   ReasonIncompatibleBinding,
				NodeID:   n.ID,
				Property: &key,
				Message:  fmt.Sprintf("%s does not produce %s, it will evaluate to a default", resolver.Describe(p.Resolver), typeName(slot)),
			})
		}

		if node.Bindings().Bind(p.Direction, p.Index, p.Resolver) {
			s.warn(Warning{
				Reason:   ReasonDuplicateBinding,
				NodeID:   n.ID,
				Property: &key,
				Message:  "bound more than once, last binding wins",
			})
		}
	}
	return nil
}

func typeName(d runtime.PropertyDescriptor) string {
	if d.Type == nil {
		return "<nil>"
	}
	return d.Type.String()
}

func (s *session) connect(c domain.Connection) {
	from, okFrom := s.graph.Node(c.From.NodeID)
	to, okTo := s.graph.Node(c.To.NodeID)
	switch {
	case !okFrom:
		s.drop(c, ReasonUnknownNode, fmt.Sprintf("source node '%s' does not exist", c.From.NodeID))
		return
	case !okTo:
		s.drop(c, ReasonUnknownNode, fmt.Sprintf("target node '%s' does not exist", c.To.NodeID))
		return
	}

	outs, ins := from.OutputPorts(), to.InputPorts()
	switch {
	case c.From.Port < 0 || c.From.Port >= len(outs):
		s.drop(c, ReasonPortOutOfRange, fmt.Sprintf("output port %d out of range [0,%d)", c.From.Port, len(outs)))
		return
	case c.To.Port < 0 || c.To.Port >= len(ins):
		s.drop(c, ReasonPortOutOfRange, fmt.Sprintf("input port %d out of range [0,%d)", c.To.Port, len(ins)))
		return
	}

	if _, err := s.graph.AddConnection(outs[c.From.Port], ins[c.To.Port]); err != nil {
		s.drop(c, ReasonUnknownNode, err.Error())
	}
}

func (s *session) drop(c domain.Connection, reason Reason, msg string) {
	s.warn(Warning{Reason: reason, Connection: &c, Message: msg + ", connection dropped"})
	if hook := s.builder.hooks.OnConnectionDropped; hook != nil {
		hook(s.ctx, &domain.ConnectionEvent{
			EventBase:  domain.EventBase{Timestamp: s.builder.now(), Type: domain.EventConnectionDropped, Graph: s.source.Name},
			Connection: c,
			Reason:     string(reason),
		})
	}
}
