// Package logging provides structured logging for HomeDeck.
//
// It wraps log/slog with level parsing, JSON/text output selection
// and default service fields.
package logging
