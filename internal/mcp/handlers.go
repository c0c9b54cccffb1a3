package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/ziadkadry99/seta/internal/indexer"
	"github.com/ziadkadry99/seta/internal/search"
	"github.com/ziadkadry99/seta/internal/vectordb"
)

// handleSearchDocs performs semantic search over the documentation index.
func (s *Server) handleSearchDocs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", search.DefaultLimit)
	if limit <= 0 {
		return mcp.NewToolResultError(fmt.Sprintf("invalid limit %d: %v", limit, search.ErrInvalidLimit)), nil
	}

	filter := vectordb.SearchFilter{
		LibraryID:  request.GetString("library", ""),
		TopicName:  request.GetString("topic", ""),
		Difficulty: request.GetString("difficulty", ""),
	}

	results, err := s.search.Search(ctx, query, limit, filter)
	if err != nil {
		s.logger.Warn("search_docs failed", zap.String("query", query), zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(results) == 0 && s.store.Count() == 0 {
		return mcp.NewToolResultText("No results found. The documentation may not be indexed yet. Run `seta index <folder>` first."), nil
	}

	return mcp.NewToolResultText(vectordb.FormatResults(results)), nil
}

// handleIndexStats summarizes the store and the index state.
func (s *Server) handleIndexStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reading stats failed: %v", err)), nil
	}
	state, err := indexer.LoadState(s.indexDir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reading index state failed: %v", err)), nil
	}
	return mcp.NewToolResultText(indexer.FormatStats(stats, state)), nil
}
