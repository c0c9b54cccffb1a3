package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/seta/internal/embeddings"
	"github.com/ziadkadry99/seta/internal/extract"
	"github.com/ziadkadry99/seta/internal/indexer"
	"github.com/ziadkadry99/seta/internal/vectordb"
)

// newIndexedServer indexes a small documentation tree and serves it.
func newIndexedServer(t *testing.T, files map[string]string) *Server {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	indexDir := filepath.Join(root, ".seta_index")
	store, err := vectordb.NewChromemStore(vectordb.ChromemConfig{Dir: filepath.Join(indexDir, "vectors")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	embedder := embeddings.NewStaticEmbedder(64)

	if len(files) > 0 {
		p := indexer.NewPipeline(indexer.Options{
			RootDir:   root,
			IndexDir:  indexDir,
			ChunkSize: 1000,
		}, store, embedder, extract.TextExtractor{}, nil)
		if _, err := p.Run(context.Background()); err != nil {
			t.Fatalf("indexing failed: %v", err)
		}
	}

	return NewServer(store, embedder, indexDir, nil)
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", result.Content[0])
	}
	return text.Text
}

var testDocs = map[string]string{
	"react/hooks/state.md": "useState keeps local component state between renders.",
	"react/intro.md":       "React builds user interfaces from components.",
	"postgres/vacuum.md":   "Vacuum reclaims storage occupied by dead tuples.",
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"search_docs", searchDocsTool, "search_docs"},
		{"index_stats", indexStatsTool, "index_stats"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}

	required := searchDocsTool.InputSchema.Required
	if len(required) != 1 || required[0] != "query" {
		t.Errorf("search_docs required = %v, want [query]", required)
	}
}

func TestNewServer(t *testing.T) {
	srv := newIndexedServer(t, nil)
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
	if srv.search == nil {
		t.Fatal("search service not initialized")
	}
}

func TestHandleSearchDocs(t *testing.T) {
	srv := newIndexedServer(t, testDocs)
	ctx := context.Background()

	t.Run("basic search", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"query": "component state",
		}

		result, err := srv.handleSearchDocs(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		text := resultText(t, result)
		if !strings.HasPrefix(text, "Found 3 relevant documentation chunks") {
			t.Errorf("unexpected output:\n%s", text)
		}
		if !strings.Contains(text, "Source: react/hooks/state.md") {
			t.Errorf("expected hooks source in output:\n%s", text)
		}
	})

	t.Run("library filter", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"query":   "storage",
			"library": "postgres",
			"limit":   5,
		}

		result, err := srv.handleSearchDocs(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		text := resultText(t, result)
		if !strings.Contains(text, "Found 1 relevant") || strings.Contains(text, "Library: react") {
			t.Errorf("filter not applied:\n%s", text)
		}
	})

	t.Run("no match", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"query": "anything",
			"topic": "missing",
		}

		result, err := srv.handleSearchDocs(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Error("empty results should not be an error")
		}
		if got := resultText(t, result); got != "No relevant documentation found." {
			t.Errorf("unexpected output %q", got)
		}
	})

	t.Run("missing query", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleSearchDocs(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing query")
		}
	})

	t.Run("blank query", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"query": "  "}

		result, err := srv.handleSearchDocs(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for blank query")
		}
	})

	for _, limit := range []int{0, -3} {
		t.Run(fmt.Sprintf("limit %d", limit), func(t *testing.T) {
			req := mcp.CallToolRequest{}
			req.Params.Arguments = map[string]any{"query": "component state", "limit": limit}

			result, err := srv.handleSearchDocs(ctx, req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !result.IsError {
				t.Errorf("expected error for limit %d, got %q", limit, resultText(t, result))
			}
		})
	}
}

func TestHandleSearchDocs_EmptyIndex(t *testing.T) {
	srv := newIndexedServer(t, nil)
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"query": "anything"}

	result, err := srv.handleSearchDocs(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Error("an empty index should not be an error")
	}
	if !strings.Contains(resultText(t, result), "seta index") {
		t.Errorf("expected indexing hint, got %q", resultText(t, result))
	}
}

func TestHandleIndexStats(t *testing.T) {
	srv := newIndexedServer(t, testDocs)

	result, err := srv.handleIndexStats(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}

	text := resultText(t, result)
	for _, want := range []string{
		"Total chunks: 3",
		"Unique libraries: 2",
		"Unique topics: 1",
		"Indexed files: 3",
		"Embedding model: static/hash (64 dimensions)",
		"  postgres: 1",
		"  react: 2",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("stats missing %q:\n%s", want, text)
		}
	}
}
