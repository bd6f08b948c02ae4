package ports

import "context"

// GraphLoader defines how serialized graphs are retrieved.
// This allows the storage layer (Loam, FS, Memory, Redis) to be decoupled.
type GraphLoader interface {
	// GetGraph retrieves the raw definition (JSON or YAML) of a graph by name.
	// It returns the raw bytes (which the compiler will parse) or an error.
	GetGraph(ctx context.Context, name string) ([]byte, error)

	// ListGraphs returns the names of all graphs available, sorted.
	ListGraphs(ctx context.Context) ([]string, error)
}

// GraphStore is a GraphLoader that can also persist graphs.
type GraphStore interface {
	GraphLoader

	// SaveGraph stores the raw definition of a graph under name.
	SaveGraph(ctx context.Context, name string, data []byte) error

	// DeleteGraph removes a graph. Deleting a missing graph is not an error.
	DeleteGraph(ctx context.Context, name string) error
}

// Watchable is implemented by loaders that can report changed graphs.
type Watchable interface {
	// Watch emits the name of each graph that changed until ctx is done.
	Watch(ctx context.Context) (<-chan string, error)
}
