package vectordb

import "fmt"

// Chunk is a contiguous piece of a source document as stored in the index.
type Chunk struct {
	// ID is "<relative path>::<order>", unique within the store.
	ID               string
	LibraryID        string
	TopicName        string
	OriginalFilePath string
	Text             string
	Order            int
	Metadata         ChunkMetadata
}

// ChunkMetadata holds enrichment fields. The indexer never fills these in;
// they are carried through the store for external enrichment tools.
type ChunkMetadata struct {
	Difficulty   string
	UseCases     []string
	CodePatterns []string
	Tags         []string
}

// EmbeddedChunk pairs a chunk with its embedding vector.
type EmbeddedChunk struct {
	Chunk
	Embedding []float32
}

// ChunkID builds the store identifier for the chunk at the given position
// within a file.
func ChunkID(relPath string, order int) string {
	return fmt.Sprintf("%s::%d", relPath, order)
}

// SearchFilter narrows a search by exact metadata equality. Empty fields
// impose no constraint; non-empty fields are AND-combined.
type SearchFilter struct {
	LibraryID  string
	Difficulty string
	TopicName  string
}

// IsEmpty reports whether the filter constrains nothing.
func (f SearchFilter) IsEmpty() bool {
	return f.LibraryID == "" && f.Difficulty == "" && f.TopicName == ""
}

// SearchResult is a stored chunk together with its distance to the query.
type SearchResult struct {
	Chunk    Chunk
	Distance float32
}

// Relevance is 1 - distance. With cosine distance this lies in [0, 2] in
// theory and is not a probability.
func (r SearchResult) Relevance() float32 {
	return 1 - r.Distance
}

// Stats summarizes the store contents.
type Stats struct {
	TotalChunks     int
	UniqueLibraries int
	UniqueTopics    int
	UniqueFiles     int
	Dimensions      int
	LibraryChunks   map[string]int
}
