package docstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FSStore stores documents as files under a single directory. Filenames
// are generated uuids so concurrent uploads never collide and uploaded
// names never reach the filesystem.
type FSStore struct {
	dir      string
	maxBytes int64
}

// NewFSStore creates the storage directory if needed and returns a store
// rooted at dir. maxBytes caps the size of a single document; zero means
// no cap.
func NewFSStore(dir string, maxBytes int64) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FSStore{dir: dir, maxBytes: maxBytes}, nil
}

func (s *FSStore) Save(_ context.Context, content io.Reader, ext string) (string, error) {
	ref := uuid.New().String() + ext

	// The cap is validated upstream; the LimitReader catches callers
	// that hand us an unchecked stream.
	if s.maxBytes > 0 {
		content = io.LimitReader(content, s.maxBytes+1)
	}

	f, err := os.OpenFile(filepath.Join(s.dir, ref), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("create document file: %w", err)
	}

	written, err := io.Copy(f, content)
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write document: %w", err)
	}
	if s.maxBytes > 0 && written > s.maxBytes {
		f.Close()
		os.Remove(f.Name())
		return "", ErrDocumentTooLarge
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close document file: %w", err)
	}

	return ref, nil
}

func (s *FSStore) Open(_ context.Context, ref string) (io.ReadCloser, int64, error) {
	if err := validateRef(ref); err != nil {
		return nil, 0, err
	}

	f, err := os.Open(filepath.Join(s.dir, ref))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, ErrDocumentNotFound
		}
		return nil, 0, fmt.Errorf("open document: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("stat document: %w", err)
	}

	return f, info.Size(), nil
}

func (s *FSStore) Delete(_ context.Context, ref string) error {
	if err := validateRef(ref); err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.dir, ref)); err != nil {
		if os.IsNotExist(err) {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("remove document: %w", err)
	}
	return nil
}

// validateRef rejects references that could escape the storage
// directory. Valid references are bare filenames produced by Save.
func validateRef(ref string) error {
	if ref == "" || ref == "." || ref == ".." {
		return ErrInvalidReference
	}
	if strings.ContainsAny(ref, `/\`) {
		return ErrInvalidReference
	}
	return nil
}
