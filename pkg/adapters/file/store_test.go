package file_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/statescript/internal/testutils"
	"github.com/aretw0/statescript/pkg/adapters/file"
	contract "github.com/aretw0/statescript/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	contract.GraphStoreContractTest(t, file.New(filepath.Join(t.TempDir(), "graphs")))
}

func TestFileStore_ExistingFiles(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteGraph(t, dir, "combat/low-health.json", `{"name": "low-health"}`)
	testutils.WriteGraph(t, dir, "patrol.yml", "name: patrol\n")
	testutils.WriteGraph(t, dir, "README.md", "# not a graph\n")

	store := file.New(dir)
	ctx := context.Background()

	names, err := store.ListGraphs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"combat/low-health", "patrol"}, names)

	require.NoError(t, store.SaveGraph(ctx, "patrol", []byte("name: patrol\ndescription: v2\n")))
	assert.FileExists(t, filepath.Join(dir, "patrol.yml"), "overwrite keeps the extension")
	assert.NoFileExists(t, filepath.Join(dir, "patrol.yaml"))

	data, err := store.GetGraph(ctx, "combat/low-health")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name": "low-health"}`, string(data))
}

func TestFileStore_RejectsEscapingNames(t *testing.T) {
	store := file.New(t.TempDir())
	for _, name := range []string{"", "../outside", "/etc/passwd"} {
		err := store.SaveGraph(context.Background(), name, []byte("x"))
		assert.Error(t, err, name)
	}
}

func TestFileStore_MissingDirectory(t *testing.T) {
	names, err := file.New(filepath.Join(t.TempDir(), "absent")).ListGraphs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}
