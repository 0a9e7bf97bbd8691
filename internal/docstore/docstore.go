// Package docstore stores uploaded patient documents. It defines the
// Store interface, a filesystem implementation used in production, and
// an in-memory implementation for testing and development.
package docstore

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrDocumentNotFound is returned when no document exists for a reference.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrInvalidReference is returned for references that are empty or
	// contain path separators. References are opaque filenames generated
	// by Save; anything else is rejected before touching the backend.
	ErrInvalidReference = errors.New("invalid document reference")

	// ErrDocumentTooLarge is returned by Save when the content exceeds
	// the store's configured byte cap.
	ErrDocumentTooLarge = errors.New("document exceeds maximum allowed size")
)

// Store is the contract for document storage backends.
//
// Save persists the content and returns an opaque reference (a generated
// filename) that is later passed to Open. ext is the file extension to
// record, including the leading dot.
type Store interface {
	Save(ctx context.Context, content io.Reader, ext string) (string, error)
	Open(ctx context.Context, ref string) (io.ReadCloser, int64, error)
	Delete(ctx context.Context, ref string) error
}
