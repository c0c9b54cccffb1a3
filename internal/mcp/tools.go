package mcp

import "github.com/mark3labs/mcp-go/mcp"

// searchDocsTool defines the search_docs MCP tool.
var searchDocsTool = mcp.NewTool("search_docs",
	mcp.WithDescription("Search the indexed documentation semantically. Returns the most relevant chunks with their library, topic and source file."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 10)"),
	),
	mcp.WithString("library",
		mcp.Description("Only return chunks from this library (top-level folder)"),
	),
	mcp.WithString("topic",
		mcp.Description("Only return chunks from this topic (second-level folder)"),
	),
	mcp.WithString("difficulty",
		mcp.Description("Only return chunks with this difficulty"),
	),
)

// indexStatsTool defines the index_stats MCP tool.
var indexStatsTool = mcp.NewTool("index_stats",
	mcp.WithDescription("Report what the documentation index contains: chunk, library, topic and file counts."),
)
