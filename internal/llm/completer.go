// Package llm wraps the chat completion providers used to interpret
// receipt text.
package llm

import "context"

// Completer defines the interface for a single chat completion
type Completer interface {
	// Complete sends one system instruction and one user message and returns
	// the text of the first reply. A reply with no content is returned as an
	// empty string and a nil error.
	Complete(ctx context.Context, system, user string) (string, error)
	// Close releases the underlying client
	Close() error
}
