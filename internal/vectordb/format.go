package vectordb

import (
	"fmt"
	"strings"
)

// PreviewLength is the number of runes of chunk text shown per result.
const PreviewLength = 300

// FormatResults renders search results as human-readable text.
func FormatResults(results []SearchResult) string {
	if len(results) == 0 {
		return "No relevant documentation found."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d relevant documentation chunks:\n\n", len(results))

	for i, r := range results {
		fmt.Fprintf(&sb, "%d. Relevance: %.3f\n", i+1, r.Relevance())
		fmt.Fprintf(&sb, "   Library: %s\n", r.Chunk.LibraryID)
		if r.Chunk.TopicName != "" {
			fmt.Fprintf(&sb, "   Topic: %s\n", r.Chunk.TopicName)
		}
		if r.Chunk.Metadata.Difficulty != "" {
			fmt.Fprintf(&sb, "   Difficulty: %s\n", r.Chunk.Metadata.Difficulty)
		}
		fmt.Fprintf(&sb, "   Source: %s\n", r.Chunk.OriginalFilePath)
		fmt.Fprintf(&sb, "   Text: %s\n\n", Preview(r.Chunk.Text, PreviewLength))
	}

	return sb.String()
}

// Preview returns the first n runes of s, with "..." appended when cut.
func Preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
