// Package database provides SQLite persistence for HomeDeck.
//
// It wraps database/sql with WAL-mode configuration, a single-writer
// connection pool and embedded schema migrations applied on startup.
package database
