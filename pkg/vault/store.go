// Package vault provides the path-addressed document store the chat engine
// persists through. The engine only ever touches documents via this narrow
// interface; pathing, atomicity, and listing live behind it.
package vault

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("vault: file not found")
	ErrAlreadyExists = errors.New("vault: file already exists")
)

// Store is the read/write interface for vault documents. Paths are
// slash-separated and relative to the vault root.
type Store interface {
	// Read returns the full text of the document at path, or ErrNotFound.
	Read(ctx context.Context, path string) (string, error)

	// Write replaces the content of an existing document. Returns
	// ErrNotFound when the document does not exist.
	Write(ctx context.Context, path, content string) error

	// Create writes a new document. Returns ErrAlreadyExists when a
	// document is already present at path.
	Create(ctx context.Context, path, content string) error

	// Exists reports whether a document is present at path.
	Exists(ctx context.Context, path string) (bool, error)

	// List returns the paths of the documents directly inside dir.
	List(ctx context.Context, dir string) ([]string, error)

	// EnsureDir creates dir (and parents) if absent.
	EnsureDir(ctx context.Context, dir string) error
}
