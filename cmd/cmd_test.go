package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/seta/internal/config"
	"github.com/ziadkadry99/seta/internal/history"
	"github.com/ziadkadry99/seta/internal/indexer"
	"github.com/ziadkadry99/seta/internal/search"
)

// resetFlags restores every flag to its default so commands can be executed
// repeatedly within one test binary.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func docsTree(t *testing.T) string {
	t.Helper()
	t.Setenv("SETA_PROVIDER", "static")
	t.Setenv("SETA_DIMENSIONS", "64")
	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")

	root := t.TempDir()
	for rel, content := range map[string]string{
		"docs-a/intro.md":        "Configuring the database connection pool.",
		"docs-a/guides/setup.md": "Install the server and create a database.",
		"docs-b/intro.txt":       "Rendering buttons with utility classes.",
	} {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func TestIndexCommand(t *testing.T) {
	root := docsTree(t)

	out, err := execute(t, "index", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Indexing complete!")
	assert.Contains(t, out, "Files processed:  3")
	assert.Contains(t, out, "Total chunks:     3")
	assert.Contains(t, out, "Unique libraries: 2")
	assert.Contains(t, out, "Unique topics:    1")
	assert.DirExists(t, filepath.Join(root, ".seta_index", "vectors"))
	assert.FileExists(t, filepath.Join(root, ".seta_index", indexer.StateFileName))

	out, err = execute(t, root)
	require.NoError(t, err, "bare folder argument indexes too")
	assert.Contains(t, out, "Files skipped:    3 (unchanged)")

	out, err = execute(t, "index", root, "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Files processed:  3")
}

func TestIndexCommand_DBPathAndExclude(t *testing.T) {
	root := docsTree(t)
	dbDir := filepath.Join(t.TempDir(), "idx")

	out, err := execute(t, "index", root, "--db-path", dbDir, "--exclude", "docs-b/**")
	require.NoError(t, err)
	assert.Contains(t, out, "Files processed:  2")
	assert.FileExists(t, filepath.Join(dbDir, indexer.StateFileName))
	assert.NoDirExists(t, filepath.Join(root, ".seta_index"))
}

func TestIndexCommand_ModelChanged(t *testing.T) {
	root := docsTree(t)
	_, err := execute(t, "index", root)
	require.NoError(t, err)

	t.Setenv("SETA_DIMENSIONS", "32")
	_, err = execute(t, "index", root)
	require.ErrorIs(t, err, indexer.ErrModelChanged)
	assert.Contains(t, err.Error(), "--force")
}

func TestIndexCommand_InvalidConfig(t *testing.T) {
	root := docsTree(t)
	_, err := execute(t, "index", root, "--chunk-size", "0")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	_, err = execute(t, "index", filepath.Join(root, "missing"))
	assert.Error(t, err)
}

func TestSearchCommand(t *testing.T) {
	root := docsTree(t)

	out, err := execute(t, "search", "database", root)
	require.NoError(t, err)
	assert.Contains(t, out, "No index found")

	_, err = execute(t, "index", root)
	require.NoError(t, err)

	out, err = execute(t, "search", "database connection pool", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Found 3 relevant documentation chunks:")
	assert.Contains(t, out, "1. Relevance: ")
	assert.Contains(t, out, "Source: docs-a/intro.md")

	out, err = execute(t, "search", "database", root, "--library", "docs-a", "--json")
	require.NoError(t, err)
	var results []search.Hit
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	for i, r := range results {
		assert.Equal(t, i+1, r.Rank)
		assert.Equal(t, "docs-a", r.Library)
	}

	out, err = execute(t, "search", "database", root, "--topic", "guides", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 relevant")
	assert.Contains(t, out, "Topic: guides")

	_, err = execute(t, "search", "database", root, "--limit", "0")
	assert.Error(t, err)
}

func TestSearchCommand_ModelMismatch(t *testing.T) {
	root := docsTree(t)
	_, err := execute(t, "index", root)
	require.NoError(t, err)

	t.Setenv("SETA_DIMENSIONS", "32")
	_, err = execute(t, "search", "database", root)
	assert.ErrorIs(t, err, indexer.ErrModelChanged)
}

func TestStatsAndCleanCommands(t *testing.T) {
	root := docsTree(t)

	out, err := execute(t, "stats", root)
	require.NoError(t, err)
	assert.Contains(t, out, "No index found")

	_, err = execute(t, "index", root)
	require.NoError(t, err)

	out, err = execute(t, "stats", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Total chunks: 3")
	assert.Contains(t, out, "Unique libraries: 2")
	assert.Contains(t, out, "Unique topics: 1")
	assert.Contains(t, out, "Indexed files: 3")
	assert.Contains(t, out, "Embedding model: static/hash (64 dimensions)")
	assert.Contains(t, out, "Last updated: ")

	out, err = execute(t, "clean", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed index at")
	assert.NoDirExists(t, filepath.Join(root, ".seta_index"))
	for _, f := range []string{"docs-a/intro.md", "docs-b/intro.txt"} {
		assert.FileExists(t, filepath.Join(root, filepath.FromSlash(f)), "documents are kept")
	}

	out, err = execute(t, "clean", root)
	require.NoError(t, err)
	assert.Contains(t, out, "No index found")
}

func TestCleanCommand_Locked(t *testing.T) {
	root := docsTree(t)
	_, err := execute(t, "index", root)
	require.NoError(t, err)

	lock := indexer.NewIndexLock(filepath.Join(root, ".seta_index"))
	require.NoError(t, lock.TryLock())
	defer lock.Unlock()

	_, err = execute(t, "clean", root)
	assert.ErrorIs(t, err, indexer.ErrIndexLocked)
	assert.DirExists(t, filepath.Join(root, ".seta_index"))
}

func TestHistoryCommand(t *testing.T) {
	root := docsTree(t)

	out, err := execute(t, "history", root)
	require.NoError(t, err)
	assert.Contains(t, out, "No run history")

	_, err = execute(t, "index", root)
	require.NoError(t, err)
	_, err = execute(t, "index", root, "--force")
	require.NoError(t, err)

	out, err = execute(t, "history", root)
	require.NoError(t, err)
	assert.Contains(t, out, "STATUS")
	assert.Contains(t, out, "completed (forced)")

	out, err = execute(t, "history", root, "--json", "--limit", "1")
	require.NoError(t, err)
	var runs []history.Run
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1)
	assert.True(t, runs[0].Forced, "newest run first")
	assert.Equal(t, 3, runs[0].FilesProcessed)
	assert.Equal(t, 3, runs[0].StoreChunks)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "seta dev\n", out)
}
