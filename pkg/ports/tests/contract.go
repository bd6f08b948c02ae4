package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/statescript/pkg/domain"
	"github.com/aretw0/statescript/pkg/ports"
)

// GraphLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.GraphLoader.
func GraphLoaderContractTest(t *testing.T, loader ports.GraphLoader, setupData map[string][]byte) {
	t.Helper()
	ctx := context.Background()

	t.Run("GetGraph_Success", func(t *testing.T) {
		for name, expectedContent := range setupData {
			content, err := loader.GetGraph(ctx, name)
			if err != nil {
				t.Fatalf("unexpected error getting graph %s: %v", name, err)
			}
			if string(content) != string(expectedContent) {
				t.Errorf("content mismatch for %s. got %q, want %q", name, content, expectedContent)
			}
		}
	})

	t.Run("GetGraph_NotFound", func(t *testing.T) {
		_, err := loader.GetGraph(ctx, "non-existent-graph")
		if !errors.Is(err, domain.ErrGraphNotFound) {
			t.Errorf("expected ErrGraphNotFound, got %v", err)
		}
	})

	t.Run("ListGraphs", func(t *testing.T) {
		names, err := loader.ListGraphs(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing graphs: %v", err)
		}
		if len(names) != len(setupData) {
			t.Errorf("expected %d graphs, got %d", len(setupData), len(names))
		}
		for i := 1; i < len(names); i++ {
			if names[i-1] > names[i] {
				t.Errorf("graph names not sorted: %v", names)
				break
			}
		}

		lookup := make(map[string]bool)
		for _, name := range names {
			lookup[name] = true
		}
		for name := range setupData {
			if !lookup[name] {
				t.Errorf("graph %s missing from list", name)
			}
		}
	})
}

// GraphStoreContractTest verifies save, overwrite, list and delete on an
// initially empty store.
func GraphStoreContractTest(t *testing.T, store ports.GraphStore) {
	t.Helper()
	ctx := context.Background()

	first := []byte("name: first\n")
	second := []byte("name: second\n")

	if err := store.SaveGraph(ctx, "combat/first", first); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.SaveGraph(ctx, "second", second); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	GraphLoaderContractTest(t, store, map[string][]byte{"combat/first": first, "second": second})

	updated := []byte("name: first\ndescription: updated\n")
	if err := store.SaveGraph(ctx, "combat/first", updated); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	got, err := store.GetGraph(ctx, "combat/first")
	if err != nil {
		t.Fatalf("get after overwrite failed: %v", err)
	}
	if string(got) != string(updated) {
		t.Errorf("overwrite not visible: got %q", got)
	}

	if err := store.DeleteGraph(ctx, "second"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.GetGraph(ctx, "second"); !errors.Is(err, domain.ErrGraphNotFound) {
		t.Errorf("expected ErrGraphNotFound after delete, got %v", err)
	}
	if err := store.DeleteGraph(ctx, "second"); err != nil {
		t.Errorf("deleting a missing graph should succeed, got %v", err)
	}
	names, err := store.ListGraphs(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(names) != 1 || names[0] != "combat/first" {
		t.Errorf("unexpected graphs after delete: %v", names)
	}
}
