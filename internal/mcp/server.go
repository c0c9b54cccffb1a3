package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ziadkadry99/seta/internal/embeddings"
	"github.com/ziadkadry99/seta/internal/search"
	"github.com/ziadkadry99/seta/internal/vectordb"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes documentation search tools.
type Server struct {
	store    vectordb.ChunkStore
	search   *search.Service
	indexDir string
	logger   *zap.Logger
	mcp      *server.MCPServer
}

// NewServer creates a new MCP server over an existing index. Query
// embeddings are cached, since agents tend to repeat queries.
func NewServer(store vectordb.ChunkStore, embedder embeddings.Embedder, indexDir string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	cached := embeddings.NewCachedEmbedder(embedder, embeddings.DefaultCacheSize)
	s := &Server{
		store:    store,
		search:   search.NewService(store, cached, logger),
		indexDir: indexDir,
		logger:   logger,
	}

	s.mcp = server.NewMCPServer(
		"seta",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(searchDocsTool, s.handleSearchDocs)
	s.mcp.AddTool(indexStatsTool, s.handleIndexStats)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
