package main

import (
	"context"
	"os"

	"github.com/aretw0/statescript"
	"github.com/aretw0/statescript/pkg/domain"
)

// resolveGraph reads arg as a file when it exists on disk and otherwise
// loads it by name from the engine's store.
func resolveGraph(ctx context.Context, eng *statescript.Engine, arg string) (*domain.Graph, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		return eng.ReadFile(arg)
	}
	return eng.Load(ctx, arg)
}
