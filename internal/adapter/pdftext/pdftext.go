// Package pdftext extracts the text lines of a PDF document by shelling
// out to pdftotext. The extraction core consumes the resulting lines and
// never touches PDF binary structure itself.
package pdftext

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// LineSource supplies the text lines of a document in reading order.
type LineSource interface {
	Lines(ctx context.Context, path string) ([]string, error)
}

// Extractor implements LineSource via the pdftotext binary.
type Extractor struct{}

// NewExtractor creates a pdftotext-backed line source.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Lines runs pdftotext on the file and splits its output into lines.
func (e *Extractor) Lines(ctx context.Context, path string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "pdftotext", path, "-")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext failed for %s: %w", path, err)
	}
	text := strings.ReplaceAll(string(output), "\r\n", "\n")
	return strings.Split(text, "\n"), nil
}
