package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/seta/internal/indexer"
	"github.com/ziadkadry99/seta/internal/search"
	"github.com/ziadkadry99/seta/internal/vectordb"
)

type errorResponse struct {
	Error string `json:"error"`
}

type searchResponse struct {
	Query   string       `json:"query"`
	Results []search.Hit `json:"results"`
}

// handleSearch serves GET /api/search?q=...&limit=&library=&topic=&difficulty=.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")

	limit := search.DefaultLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be an integer"})
			return
		}
		limit = n
	}
	filter := vectordb.SearchFilter{
		LibraryID:  q.Get("library"),
		TopicName:  q.Get("topic"),
		Difficulty: q.Get("difficulty"),
	}

	results, err := s.search.Search(r.Context(), query, limit, filter)
	switch {
	case errors.Is(err, search.ErrEmptyQuery), errors.Is(err, search.ErrInvalidLimit):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	case errors.Is(err, vectordb.ErrDimensionMismatch):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
		return
	case err != nil:
		s.logger.Warn("search failed", zap.String("query", query), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{Query: query, Results: search.Hits(results)})
}

type statsResponse struct {
	TotalChunks     int            `json:"total_chunks"`
	UniqueLibraries int            `json:"unique_libraries"`
	UniqueTopics    int            `json:"unique_topics"`
	IndexedFiles    int            `json:"indexed_files"`
	EmbeddingModel  string         `json:"embedding_model,omitempty"`
	Dimensions      int            `json:"dimensions,omitempty"`
	LastUpdated     *time.Time     `json:"last_updated,omitempty"`
	Dirty           bool           `json:"dirty"`
	LibraryChunks   map[string]int `json:"library_chunks"`
}

// handleStats serves GET /api/stats.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	state, err := indexer.LoadState(s.cfg.IndexDir)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	resp := statsResponse{
		TotalChunks:     stats.TotalChunks,
		UniqueLibraries: stats.UniqueLibraries,
		UniqueTopics:    stats.UniqueTopics,
		IndexedFiles:    len(state.Files),
		EmbeddingModel:  state.EmbeddingModel,
		Dimensions:      state.Dimensions,
		Dirty:           state.Dirty,
		LibraryChunks:   stats.LibraryChunks,
	}
	if resp.LibraryChunks == nil {
		resp.LibraryChunks = map[string]int{}
	}
	if !state.LastUpdated.IsZero() {
		resp.LastUpdated = &state.LastUpdated
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
