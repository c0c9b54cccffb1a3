package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const googleBatchEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/%s:batchEmbedContents"

// googleMaxBatch is the request cap of batchEmbedContents.
const googleMaxBatch = 100

// GoogleModel represents a supported Google embedding model.
type GoogleModel string

const (
	ModelGeminiEmbedding001 GoogleModel = "gemini-embedding-001"
)

// GoogleEmbedder generates embeddings using Google's Generative AI API.
type GoogleEmbedder struct {
	apiKey     string
	model      GoogleModel
	dimensions int
	endpoint   string
	httpClient *http.Client
}

// NewGoogleEmbedder creates a new Google embedder. dimensions <= 0 keeps
// the model's full 3072-wide output.
func NewGoogleEmbedder(apiKey string, model GoogleModel, dimensions int) *GoogleEmbedder {
	if model == "" {
		model = ModelGeminiEmbedding001
	}
	if dimensions <= 0 {
		dimensions = 3072
	}
	return &GoogleEmbedder{
		apiKey:     apiKey,
		model:      model,
		dimensions: dimensions,
		endpoint:   fmt.Sprintf(googleBatchEndpoint, model),
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

func (e *GoogleEmbedder) Name() string {
	return "google/" + string(e.model)
}

func (e *GoogleEmbedder) Dimensions() int {
	return e.dimensions
}

type googleBatchRequest struct {
	Requests []googleEmbedRequest `json:"requests"`
}

type googleEmbedRequest struct {
	Model                string        `json:"model"`
	Content              googleContent `json:"content"`
	OutputDimensionality int           `json:"outputDimensionality,omitempty"`
}

type googleContent struct {
	Parts []googlePart `json:"parts"`
}

type googlePart struct {
	Text string `json:"text"`
}

type googleBatchResponse struct {
	Embeddings []struct {
		Values []float32 `json:"values"`
	} `json:"embeddings"`
}

func (e *GoogleEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += googleMaxBatch {
		batch := texts[i:min(i+googleMaxBatch, len(texts))]
		vectors, err := e.embedBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		results = append(results, vectors...)
	}
	return results, nil
}

func (e *GoogleEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	reqs := make([]googleEmbedRequest, len(texts))
	for i, text := range texts {
		reqs[i] = googleEmbedRequest{
			Model:                "models/" + string(e.model),
			Content:              googleContent{Parts: []googlePart{{Text: text}}},
			OutputDimensionality: e.dimensions,
		}
	}
	body, err := json.Marshal(googleBatchRequest{Requests: reqs})
	if err != nil {
		return nil, fmt.Errorf("marshal google embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create google embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google embed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("google embed API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result googleBatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode google embed response: %w", err)
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		vectors[i] = emb.Values
	}
	if err := checkVectors(vectors, len(texts), e.dimensions); err != nil {
		return nil, fmt.Errorf("google: %w", err)
	}
	return vectors, nil
}
