// Package ocr turns receipt photos into plain text using a document OCR
// service.
package ocr

import (
	"context"
	"strings"
)

// Extractor defines the interface for receipt text extraction
type Extractor interface {
	// ExtractText sends the image to the OCR service once and returns the
	// detected lines joined by newlines, in the order the service reported them
	ExtractText(ctx context.Context, imageData []byte, contentType string) (string, error)
	// Close releases the underlying client
	Close() error
}

// joinLines trims every line and joins them with newlines. Order is kept
// exactly as given.
func joinLines(lines []string) string {
	trimmed := make([]string, len(lines))
	for i, line := range lines {
		trimmed[i] = strings.TrimSpace(line)
	}
	return strings.Join(trimmed, "\n")
}
