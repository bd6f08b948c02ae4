package loam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/statescript/pkg/domain"
)

// Loader adapts a Loam repository to the GraphLoader interface.
type Loader struct {
	Repo *loam.TypedRepository[GraphMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[GraphMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// GetGraph retrieves a graph document and re-encodes it as JSON for the
// compiler.
func (l *Loader) GetGraph(ctx context.Context, name string) ([]byte, error) {
	doc, err := l.Repo.Get(ctx, name)
	if err != nil {
		// Loam reports missing documents either as fs errors or by message.
		if errors.Is(err, os.ErrNotExist) || strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, fmt.Errorf("%w: %s", domain.ErrGraphNotFound, name)
		}
		return nil, fmt.Errorf("loam get failed for %s: %w", name, err)
	}

	meta := doc.Data
	graphName := meta.Name
	if graphName == "" {
		graphName = meta.Title
	}
	if graphName == "" {
		graphName = graphID(doc.ID, meta)
	}
	description := meta.Description
	if body := strings.TrimSpace(doc.Content); description == "" && body != "" {
		description = body
	}

	data := map[string]any{"name": graphName}
	if description != "" {
		data["description"] = description
	}
	if len(meta.Nodes) > 0 {
		data["nodes"] = normalize(meta.Nodes)
	}
	if len(meta.Connections) > 0 {
		data["connections"] = normalize(meta.Connections)
	}
	if len(meta.Variables) > 0 {
		data["variables"] = normalize(meta.Variables)
	}

	bytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal graph %s: %w", name, err)
	}
	return bytes, nil
}

// ListGraphs returns the normalized ids of every document in the repository.
func (l *Loader) ListGraphs(ctx context.Context) ([]string, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		id := graphID(doc.ID, doc.Data)
		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: graph '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func graphID(docID string, meta GraphMetadata) string {
	if meta.ID != "" {
		return trimExtension(meta.ID)
	}
	return trimExtension(docID)
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	switch ext {
	case ".md", ".json", ".yaml", ".yml":
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Watch implements ports.Watchable.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

// normalize turns map[interface{}]interface{} values, which some YAML
// decoders produce, into map[string]any so they encode as JSON.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, sub := range val {
			out[k] = normalize(sub)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, sub := range val {
			out[fmt.Sprintf("%v", k)] = normalize(sub)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, sub := range val {
			out[i] = normalize(sub)
		}
		return out
	}
	return v
}
