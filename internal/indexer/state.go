package indexer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio"

	"github.com/ziadkadry99/seta/internal/walker"
)

// StateFileName is the name of the fingerprint file inside the index directory.
const StateFileName = "index_state.json"

// ChangeDetection selects how a file is judged changed since it was indexed.
type ChangeDetection string

const (
	// DetectHashOrMtime treats a file as changed when its digest or its
	// modification time differs, so a touched file is re-embedded.
	DetectHashOrMtime ChangeDetection = "hash+mtime"

	// DetectHash only compares content digests.
	DetectHash ChangeDetection = "hash"
)

// FileState is the fingerprint of one indexed file.
type FileState struct {
	Hash         string    `json:"hash"`
	LastModified time.Time `json:"lastModified"`
	ChunkCount   int       `json:"chunkCount"`
	RelativePath string    `json:"relativePath,omitempty"`
}

// IndexState maps absolute file paths to the fingerprint under which their
// chunks currently sit in the store.
type IndexState struct {
	Files          map[string]FileState `json:"files"`
	LastUpdated    time.Time            `json:"lastUpdated"`
	EmbeddingModel string               `json:"embeddingModel,omitempty"`
	Dimensions     int                  `json:"dimensions,omitempty"`

	// Dirty is set while a run is mutating the store. A state loaded with
	// Dirty set came from an interrupted run.
	Dirty bool `json:"dirty,omitempty"`
}

// NewIndexState returns an empty state.
func NewIndexState() *IndexState {
	return &IndexState{Files: make(map[string]FileState)}
}

// LoadState reads the state file from dir. A missing file yields an empty state.
func LoadState(dir string) (*IndexState, error) {
	data, err := os.ReadFile(filepath.Join(dir, StateFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewIndexState(), nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}

	var state IndexState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	if state.Files == nil {
		state.Files = make(map[string]FileState)
	}
	return &state, nil
}

// Save atomically replaces the state file in dir.
func (s *IndexState) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := renameio.WriteFile(filepath.Join(dir, StateFileName), data, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// RemoveState deletes the state file in dir if present.
func RemoveState(dir string) error {
	err := os.Remove(filepath.Join(dir, StateFileName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove state: %w", err)
	}
	return nil
}

// Fingerprint hashes file and records its modification time.
func Fingerprint(file walker.DocumentFile) (FileState, error) {
	hash, err := walker.HashFile(file.Path)
	if err != nil {
		return FileState{}, err
	}
	return FileState{
		Hash:         hash,
		LastModified: file.ModTime,
		RelativePath: file.RelPath,
	}, nil
}

// HasChanged reports whether file differs from its stored fingerprint. The
// freshly computed fingerprint is returned so callers hash each file once.
func (s *IndexState) HasChanged(file walker.DocumentFile, mode ChangeDetection) (bool, FileState, error) {
	current, err := Fingerprint(file)
	if err != nil {
		return false, FileState{}, err
	}

	prev, ok := s.Files[file.Path]
	if !ok {
		return true, current, nil
	}
	if prev.Hash != current.Hash {
		return true, current, nil
	}
	if mode != DetectHash && !prev.LastModified.Equal(current.LastModified) {
		return true, current, nil
	}
	return false, current, nil
}

// RelPathFor returns the store key of an indexed file: the recorded relative
// path, or the path relative to root for states written without one.
func (s *IndexState) RelPathFor(absPath, root string) (string, error) {
	if fs, ok := s.Files[absPath]; ok && fs.RelativePath != "" {
		return fs.RelativePath, nil
	}
	rel, err := filepath.Rel(root, absPath)
	if err != nil {
		return "", fmt.Errorf("relative path for %s: %w", absPath, err)
	}
	return filepath.ToSlash(rel), nil
}
