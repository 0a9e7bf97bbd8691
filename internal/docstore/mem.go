package docstore

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/google/uuid"
)

// MemStore is a thread-safe, in-memory Store for testing and development.
type MemStore struct {
	mu   sync.RWMutex
	docs map[string][]byte

	// SaveErr, when set, is returned by Save. Lets tests exercise the
	// storage-failure path.
	SaveErr error
}

// NewMemStore returns a ready-to-use MemStore.
func NewMemStore() *MemStore {
	return &MemStore{docs: make(map[string][]byte)}
}

func (s *MemStore) Save(_ context.Context, content io.Reader, ext string) (string, error) {
	if s.SaveErr != nil {
		return "", s.SaveErr
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}

	ref := uuid.New().String() + ext

	s.mu.Lock()
	s.docs[ref] = data
	s.mu.Unlock()

	return ref, nil
}

func (s *MemStore) Open(_ context.Context, ref string) (io.ReadCloser, int64, error) {
	if err := validateRef(ref); err != nil {
		return nil, 0, err
	}

	s.mu.RLock()
	data, ok := s.docs[ref]
	s.mu.RUnlock()

	if !ok {
		return nil, 0, ErrDocumentNotFound
	}

	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

func (s *MemStore) Delete(_ context.Context, ref string) error {
	if err := validateRef(ref); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[ref]; !ok {
		return ErrDocumentNotFound
	}
	delete(s.docs, ref)
	return nil
}

// Len reports the number of stored documents.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
