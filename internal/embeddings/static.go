package embeddings

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
	"unicode"
)

// DefaultStaticDimensions matches the width of the default Ollama model so
// an index can be built offline and queried later with the same width.
const DefaultStaticDimensions = 384

const (
	wordWeight    = 0.7
	trigramWeight = 0.3
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// StaticEmbedder hashes words and character trigrams into a fixed-width
// vector. It needs no network or model download and is deterministic, at
// the cost of only lexical similarity.
type StaticEmbedder struct {
	dimensions int
}

// NewStaticEmbedder creates a static embedder. dimensions <= 0 uses
// DefaultStaticDimensions.
func NewStaticEmbedder(dimensions int) *StaticEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultStaticDimensions
	}
	return &StaticEmbedder{dimensions: dimensions}
}

func (e *StaticEmbedder) Name() string {
	return "static/hash"
}

func (e *StaticEmbedder) Dimensions() int {
	return e.dimensions
}

// Embed returns one L2-normalized vector per text. Text without letters or
// digits maps to the zero vector.
func (e *StaticEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.vector(text)
	}
	return out, nil
}

func (e *StaticEmbedder) vector(text string) []float32 {
	vec := make([]float32, e.dimensions)
	lower := strings.ToLower(text)

	for _, w := range wordPattern.FindAllString(lower, -1) {
		vec[e.bucket("w:"+w)] += wordWeight
	}

	var compact []rune
	for _, r := range lower {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			compact = append(compact, r)
		}
	}
	for i := 0; i+3 <= len(compact); i++ {
		vec[e.bucket("t:"+string(compact[i:i+3]))] += trigramWeight
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}

func (e *StaticEmbedder) bucket(token string) int {
	h := fnv.New32a()
	h.Write([]byte(token))
	return int(h.Sum32() % uint32(e.dimensions))
}
