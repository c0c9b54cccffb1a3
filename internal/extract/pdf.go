package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner runs an external command and returns its standard output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec, killing them when ctx is done.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// ErrPDFToolMissing is returned when pdftotext is not installed.
var ErrPDFToolMissing = errors.New("pdftotext not found; install poppler (brew install poppler / apt install poppler-utils)")

// PDFExtractor extracts text with poppler's pdftotext.
type PDFExtractor struct {
	Binary string
	Runner CommandRunner
}

// NewPDFExtractor returns an extractor using binary, or "pdftotext" from
// PATH when binary is empty.
func NewPDFExtractor(binary string) *PDFExtractor {
	if binary == "" {
		binary = "pdftotext"
	}
	return &PDFExtractor{Binary: binary, Runner: ExecRunner{}}
}

// Extract writes the document text to stdout ("-") with page layout
// flattened, one form feed between pages.
func (p *PDFExtractor) Extract(ctx context.Context, path string) (string, error) {
	if _, ok := p.Runner.(ExecRunner); ok {
		if _, err := exec.LookPath(p.Binary); err != nil {
			return "", ErrPDFToolMissing
		}
	}
	out, err := p.Runner.Run(ctx, p.Binary, "-enc", "UTF-8", "-q", path, "-")
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("pdf %s: %w", path, err)
	}
	// Page breaks become paragraph breaks for the chunker.
	return strings.ReplaceAll(string(out), "\f", "\n\n"), nil
}
