package indexer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ziadkadry99/seta/internal/vectordb"
)

// FormatStats renders store statistics together with the index state.
func FormatStats(stats vectordb.Stats, state *IndexState) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Total chunks: %d\n", stats.TotalChunks)
	fmt.Fprintf(&sb, "Unique libraries: %d\n", stats.UniqueLibraries)
	fmt.Fprintf(&sb, "Unique topics: %d\n", stats.UniqueTopics)
	fmt.Fprintf(&sb, "Indexed files: %d\n", len(state.Files))
	if state.EmbeddingModel != "" {
		fmt.Fprintf(&sb, "Embedding model: %s (%d dimensions)\n", state.EmbeddingModel, state.Dimensions)
	}
	if !state.LastUpdated.IsZero() {
		fmt.Fprintf(&sb, "Last updated: %s\n", state.LastUpdated.Local().Format("2006-01-02 15:04:05 MST"))
	}
	if state.Dirty {
		sb.WriteString("Warning: the last indexing run did not finish; the next run re-indexes every file.\n")
	}

	if len(stats.LibraryChunks) > 0 {
		libs := make([]string, 0, len(stats.LibraryChunks))
		for lib := range stats.LibraryChunks {
			libs = append(libs, lib)
		}
		sort.Strings(libs)
		sb.WriteString("\nChunks per library:\n")
		for _, lib := range libs {
			fmt.Fprintf(&sb, "  %s: %d\n", lib, stats.LibraryChunks[lib])
		}
	}
	return sb.String()
}
