package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/statescript/pkg/domain"
)

var extensions = []string{".yaml", ".yml", ".json"}

// Store implements ports.GraphStore on a directory tree.
// A graph named "combat/low-health" lives in combat/low-health.yaml (or .yml,
// .json). New graphs are written as YAML.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to "graphs".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = "graphs"
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(name string) (string, error) {
	clean := filepath.ToSlash(filepath.Clean(name))
	if name == "" || clean == "." || strings.HasPrefix(clean, "../") || clean == ".." || filepath.IsAbs(name) {
		return "", fmt.Errorf("invalid graph name %q", name)
	}
	return filepath.Join(s.BasePath, filepath.FromSlash(clean)), nil
}

// find returns the existing file for name.
func (s *Store) find(name string) (string, error) {
	base, err := s.path(name)
	if err != nil {
		return "", err
	}
	for _, ext := range extensions {
		if _, err := os.Stat(base + ext); err == nil {
			return base + ext, nil
		}
	}
	return "", fmt.Errorf("%w: %s", domain.ErrGraphNotFound, name)
}

// GetGraph reads the document of a graph.
func (s *Store) GetGraph(_ context.Context, name string) ([]byte, error) {
	path, err := s.find(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}
	return data, nil
}

// ListGraphs returns the names of every graph file below BasePath.
func (s *Store) ListGraphs(_ context.Context) ([]string, error) {
	seen := map[string]bool{}
	err := filepath.WalkDir(s.BasePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), "tmp-") {
			return nil
		}
		ext := filepath.Ext(path)
		if !isGraphExt(ext) {
			return nil
		}
		rel, err := filepath.Rel(s.BasePath, path)
		if err != nil {
			return err
		}
		seen[filepath.ToSlash(strings.TrimSuffix(rel, ext))] = true
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list graphs: %w", err)
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func isGraphExt(ext string) bool {
	for _, e := range extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// SaveGraph writes data atomically. An existing file keeps its extension.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) SaveGraph(_ context.Context, name string, data []byte) error {
	destPath, err := s.find(name)
	if err != nil {
		base, perr := s.path(name)
		if perr != nil {
			return perr
		}
		destPath = base + ".yaml"
	}

	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure graph directory: %w", err)
	}

	// Same directory keeps the rename on one filesystem.
	tmpFile, err := os.CreateTemp(dir, "tmp-"+filepath.Base(destPath)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing graph file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to graph file: %w", err)
	}
	return nil
}

// DeleteGraph removes the graph file.
func (s *Store) DeleteGraph(_ context.Context, name string) error {
	path, err := s.find(name)
	if err != nil {
		if errors.Is(err, domain.ErrGraphNotFound) {
			return nil
		}
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete graph file: %w", err)
	}
	return nil
}
