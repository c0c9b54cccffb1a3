package vectordb

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Row metadata keys. Every stored row carries the same key set so that
// equality filters never depend on whether an optional field was written.
const (
	keyLibraryID    = "library_id"
	keyTopicName    = "topic_name"
	keyOriginalFile = "original_file_path"
	keyOrder        = "order"
	keyDifficulty   = "difficulty"
	keyUseCases     = "use_cases"
	keyCodePatterns = "code_patterns"
	keyTags         = "tags"
)

// ErrInvalidRow is returned when a stored row does not decode into a Chunk.
var ErrInvalidRow = errors.New("invalid stored row")

func encodeMetadata(c Chunk) (map[string]string, error) {
	useCases, err := encodeList(c.Metadata.UseCases)
	if err != nil {
		return nil, fmt.Errorf("encode use cases: %w", err)
	}
	patterns, err := encodeList(c.Metadata.CodePatterns)
	if err != nil {
		return nil, fmt.Errorf("encode code patterns: %w", err)
	}
	tags, err := encodeList(c.Metadata.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	return map[string]string{
		keyLibraryID:    c.LibraryID,
		keyTopicName:    c.TopicName,
		keyOriginalFile: c.OriginalFilePath,
		keyOrder:        strconv.Itoa(c.Order),
		keyDifficulty:   c.Metadata.Difficulty,
		keyUseCases:     useCases,
		keyCodePatterns: patterns,
		keyTags:         tags,
	}, nil
}

func decodeChunk(id, content string, md map[string]string) (Chunk, error) {
	if id == "" {
		return Chunk{}, fmt.Errorf("%w: empty id", ErrInvalidRow)
	}
	file, ok := md[keyOriginalFile]
	if !ok || file == "" {
		return Chunk{}, fmt.Errorf("%w: %s has no %s", ErrInvalidRow, id, keyOriginalFile)
	}
	order, err := strconv.Atoi(md[keyOrder])
	if err != nil || order < 0 {
		return Chunk{}, fmt.Errorf("%w: %s has bad %s %q", ErrInvalidRow, id, keyOrder, md[keyOrder])
	}

	c := Chunk{
		ID:               id,
		LibraryID:        md[keyLibraryID],
		TopicName:        md[keyTopicName],
		OriginalFilePath: file,
		Text:             content,
		Order:            order,
		Metadata: ChunkMetadata{
			Difficulty: md[keyDifficulty],
		},
	}
	if c.Metadata.UseCases, err = decodeList(md[keyUseCases]); err != nil {
		return Chunk{}, fmt.Errorf("%w: %s: %v", ErrInvalidRow, id, err)
	}
	if c.Metadata.CodePatterns, err = decodeList(md[keyCodePatterns]); err != nil {
		return Chunk{}, fmt.Errorf("%w: %s: %v", ErrInvalidRow, id, err)
	}
	if c.Metadata.Tags, err = decodeList(md[keyTags]); err != nil {
		return Chunk{}, fmt.Errorf("%w: %s: %v", ErrInvalidRow, id, err)
	}
	return c, nil
}

func encodeList(items []string) (string, error) {
	if len(items) == 0 {
		return "", nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeList(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// whereClause converts a SearchFilter to a chromem metadata filter.
func whereClause(f SearchFilter) map[string]string {
	if f.IsEmpty() {
		return nil
	}
	where := make(map[string]string, 3)
	if f.LibraryID != "" {
		where[keyLibraryID] = f.LibraryID
	}
	if f.Difficulty != "" {
		where[keyDifficulty] = f.Difficulty
	}
	if f.TopicName != "" {
		where[keyTopicName] = f.TopicName
	}
	return where
}
