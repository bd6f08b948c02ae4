package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/statescript/pkg/domain"
)

// Chain combines hook sets. Each callback runs the non-nil callbacks of every
// set in order.
func Chain(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		out.OnBuildStart = chainBuild(out.OnBuildStart, h.OnBuildStart)
		out.OnBuildFinish = chainBuild(out.OnBuildFinish, h.OnBuildFinish)
		out.OnNodeBuilt = chainNode(out.OnNodeBuilt, h.OnNodeBuilt)
		out.OnConnectionDropped = chainConnection(out.OnConnectionDropped, h.OnConnectionDropped)
	}
	return out
}

func chainBuild(a, b func(context.Context, *domain.BuildEvent)) func(context.Context, *domain.BuildEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.BuildEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainNode(a, b func(context.Context, *domain.NodeEvent)) func(context.Context, *domain.NodeEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.NodeEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainConnection(a, b func(context.Context, *domain.ConnectionEvent)) func(context.Context, *domain.ConnectionEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.ConnectionEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

// LoggingHooks logs every build event to logger.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnBuildStart: func(ctx context.Context, e *domain.BuildEvent) {
			logger.DebugContext(ctx, "build_start",
				"graph", e.Graph,
				"nodes", e.Nodes,
				"connections", e.Connections,
			)
		},
		OnNodeBuilt: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_built",
				"graph", e.Graph,
				"node_id", e.NodeID,
				"category", e.Category,
				"type", e.TypeID,
			)
		},
		OnConnectionDropped: func(ctx context.Context, e *domain.ConnectionEvent) {
			logger.InfoContext(ctx, "connection_dropped",
				"graph", e.Graph,
				"connection", e.Connection.String(),
				"reason", e.Reason,
			)
		},
		OnBuildFinish: func(ctx context.Context, e *domain.BuildEvent) {
			if e.Err != nil {
				logger.ErrorContext(ctx, "build_finish", "graph", e.Graph, "err", e.Err)
				return
			}
			logger.InfoContext(ctx, "build_finish",
				"graph", e.Graph,
				"nodes", e.Nodes,
				"connections", e.Connections,
				"warnings", e.Warnings,
				"duration", e.Duration,
			)
		},
	}
}
