// Package backend selects and wires the persistence backend.
package backend

import (
	"fintrack/internal/ports"
)

// CleanupFunc represents a cleanup function for resources.
type CleanupFunc func() error

// Result contains the wired store and optional cleanup function.
type Result struct {
	Store   ports.Store
	Cleanup CleanupFunc
}

// Type represents the kind of persistence backend.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer.
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid.
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Config holds configuration for backend creation.
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string
}
