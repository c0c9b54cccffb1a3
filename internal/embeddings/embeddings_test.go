package embeddings

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func TestStaticEmbedder(t *testing.T) {
	ctx := context.Background()
	e := NewStaticEmbedder(0)
	assert.Equal(t, DefaultStaticDimensions, e.Dimensions())

	vecs, err := e.Embed(ctx, []string{
		"React hooks manage component state",
		"React hooks manage component state",
		"PostgreSQL vacuum and index maintenance",
		"...",
	})
	require.NoError(t, err)
	require.Len(t, vecs, 4)

	assert.Equal(t, vecs[0], vecs[1], "deterministic")
	assert.InDelta(t, 1.0, cosine(vecs[0], vecs[0]), 1e-5)
	assert.Less(t, cosine(vecs[0], vecs[2]), 0.5)

	for _, v := range vecs[3] {
		assert.Zero(t, v)
	}
}

func TestStaticEmbedder_SimilarTextsCloser(t *testing.T) {
	e := NewStaticEmbedder(256)
	vecs, err := e.Embed(context.Background(), []string{
		"configure the database connection pool",
		"database connection pool settings",
		"render a button with tailwind classes",
	})
	require.NoError(t, err)
	assert.Greater(t, cosine(vecs[0], vecs[1]), cosine(vecs[0], vecs[2]))
}

type countingEmbedder struct {
	calls atomic.Int32
	texts atomic.Int32
	dims  int
	err   error
}

func (c *countingEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	c.calls.Add(1)
	c.texts.Add(int32(len(texts)))
	if c.err != nil {
		return nil, c.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, c.dims)
		v[len(t)%c.dims] = 1
		out[i] = v
	}
	return out, nil
}

func (c *countingEmbedder) Dimensions() int { return c.dims }
func (c *countingEmbedder) Name() string    { return "counting" }

func TestCachedEmbedder(t *testing.T) {
	ctx := context.Background()
	inner := &countingEmbedder{dims: 4}
	c := NewCachedEmbedder(inner, 10)

	first, err := c.Embed(ctx, []string{"a", "bb"})
	require.NoError(t, err)
	second, err := c.Embed(ctx, []string{"bb", "ccc", "a"})
	require.NoError(t, err)

	assert.Equal(t, int32(2), inner.calls.Load())
	assert.Equal(t, int32(3), inner.texts.Load(), "only the uncached text is sent again")
	assert.Equal(t, first[1], second[0])
	assert.Equal(t, first[0], second[2])
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, "counting", c.Name())
	assert.Equal(t, 4, c.Dimensions())
}

func TestCachedEmbedder_Error(t *testing.T) {
	inner := &countingEmbedder{dims: 4, err: errors.New("down")}
	c := NewCachedEmbedder(inner, 0)
	_, err := c.Embed(context.Background(), []string{"x"})
	assert.Error(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestFallbackEmbedder(t *testing.T) {
	inner := &countingEmbedder{dims: 3, err: errors.New("model unavailable")}
	f := NewFallbackEmbedder(inner, nil)

	vecs, err := f.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0, 0, 0}, {0, 0, 0}}, vecs)

	inner.err = nil
	vecs, err = f.Embed(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 0}, vecs[0])
}

func TestFallbackEmbedder_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := NewFallbackEmbedder(&countingEmbedder{dims: 3, err: context.Canceled}, nil)
	_, err := f.Embed(ctx, []string{"a"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOllamaEmbedder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		var req ollamaEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "all-minilm", req.Model)

		resp := ollamaEmbedResponse{}
		for i := range req.Input {
			resp.Embeddings = append(resp.Embeddings, []float32{float32(i), 1})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	e := NewOllamaEmbedder("", 2, srv.URL)
	assert.Equal(t, "ollama/all-minilm", e.Name())

	vecs, err := e.Embed(context.Background(), []string{"x", "y", "z"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0, 1}, {1, 1}, {2, 1}}, vecs)
}

func TestOllamaEmbedder_WrongDimensions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{Embeddings: [][]float32{{1, 2, 3}}})
	}))
	defer srv.Close()

	_, err := NewOllamaEmbedder("all-minilm", 384, srv.URL).Embed(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, ErrUnexpectedDimensions)
}

func TestOllamaEmbedder_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaEmbedder("nope", 2, srv.URL).Embed(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestOpenAIEmbedder_OrdersByIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","model":"text-embedding-3-small","data":[
			{"object":"embedding","index":1,"embedding":[0,1]},
			{"object":"embedding","index":0,"embedding":[1,0]}
		]}`))
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder("test-key", ModelTextEmbedding3Small, srv.URL, 2)
	assert.Equal(t, "openai/text-embedding-3-small", e.Name())
	assert.Equal(t, 2, e.Dimensions())

	vecs, err := e.Embed(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, vecs)
}

func TestGoogleEmbedder(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/models/gemini-embedding-001:batchEmbedContents", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req googleBatchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		var resp googleBatchResponse
		for _, sub := range req.Requests {
			assert.Equal(t, "models/gemini-embedding-001", sub.Model)
			assert.Equal(t, 3, sub.OutputDimensionality)
			resp.Embeddings = append(resp.Embeddings, struct {
				Values []float32 `json:"values"`
			}{Values: []float32{float32(len(sub.Content.Parts[0].Text)), 0, 1}})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	e := NewGoogleEmbedder("test-key", "", 3)
	e.endpoint = srv.URL + "/models/gemini-embedding-001:batchEmbedContents"
	assert.Equal(t, "google/gemini-embedding-001", e.Name())
	assert.Equal(t, 3, e.Dimensions())

	texts := make([]string, googleMaxBatch+5)
	for i := range texts {
		texts[i] = strings.Repeat("a", i%7)
	}
	vecs, err := e.Embed(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vecs, len(texts))
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, []float32{6, 0, 1}, vecs[6])
	assert.Equal(t, []float32{5, 0, 1}, vecs[googleMaxBatch+3])
}

func TestGoogleEmbedder_WrongDimensions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings":[{"values":[1,2]}]}`))
	}))
	defer srv.Close()

	e := NewGoogleEmbedder("test-key", ModelGeminiEmbedding001, 768)
	e.endpoint = srv.URL
	_, err := e.Embed(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, ErrUnexpectedDimensions)
}

func TestGoogleEmbedder_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "API key not valid", http.StatusBadRequest)
	}))
	defer srv.Close()

	e := NewGoogleEmbedder("bad", ModelGeminiEmbedding001, 768)
	e.endpoint = srv.URL
	_, err := e.Embed(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestCheckVectors(t *testing.T) {
	assert.NoError(t, checkVectors([][]float32{{1, 2}}, 1, 2))
	assert.NoError(t, checkVectors([][]float32{{1, 2, 3}}, 1, 0))
	assert.Error(t, checkVectors([][]float32{{1, 2}}, 2, 2))
	assert.ErrorIs(t, checkVectors([][]float32{{1}}, 1, 2), ErrUnexpectedDimensions)
}
