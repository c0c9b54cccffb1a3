// Package extract turns documentation files into plain text.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultTimeout bounds the extraction of a single file.
const DefaultTimeout = 30 * time.Second

// ErrTimeout is returned when extraction exceeds its deadline.
var ErrTimeout = errors.New("extraction timed out")

// Extractor converts the file at path into plain text.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// TextExtractor reads files as UTF-8 text.
type TextExtractor struct{}

// Extract reads the whole file. Invalid UTF-8 sequences are replaced.
func (TextExtractor) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return strings.ToValidUTF8(string(data), "�"), nil
	}
	return string(data), nil
}

// Router dispatches to an extractor by file extension, falling back to
// Default, and applies a per-file timeout.
type Router struct {
	ByExtension map[string]Extractor
	Default     Extractor
	Timeout     time.Duration
}

// NewRouter returns a router that reads PDFs with pdf and everything else
// as text.
func NewRouter(pdf Extractor, timeout time.Duration) *Router {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Router{
		ByExtension: map[string]Extractor{".pdf": pdf},
		Default:     TextExtractor{},
		Timeout:     timeout,
	}
}

// Extract runs the matching extractor under the router's timeout. A
// deadline hit is reported as ErrTimeout so callers can tell it apart from
// cancellation of the whole run.
func (r *Router) Extract(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	e, ok := r.ByExtension[ext]
	if !ok || e == nil {
		e = r.Default
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	fileCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, err := e.Extract(fileCtx, path)
	if err != nil {
		if ctx.Err() == nil && errors.Is(fileCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s: %s", ErrTimeout, timeout, path)
		}
		return "", err
	}
	return text, nil
}
