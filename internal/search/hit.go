package search

import "github.com/ziadkadry99/seta/internal/vectordb"

// Hit is the JSON form of a search result.
type Hit struct {
	Rank       int      `json:"rank"`
	Relevance  float64  `json:"relevance"`
	ID         string   `json:"id"`
	Library    string   `json:"library"`
	Topic      string   `json:"topic,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Source     string   `json:"source"`
	Order      int      `json:"order"`
	Text       string   `json:"text"`
}

// Hits converts ranked results to their JSON form, ranks starting at 1.
func Hits(results []vectordb.SearchResult) []Hit {
	out := make([]Hit, 0, len(results))
	for i, r := range results {
		out = append(out, Hit{
			Rank:       i + 1,
			Relevance:  float64(r.Relevance()),
			ID:         r.Chunk.ID,
			Library:    r.Chunk.LibraryID,
			Topic:      r.Chunk.TopicName,
			Difficulty: r.Chunk.Metadata.Difficulty,
			Tags:       r.Chunk.Metadata.Tags,
			Source:     r.Chunk.OriginalFilePath,
			Order:      r.Chunk.Order,
			Text:       r.Chunk.Text,
		})
	}
	return out
}
