package session

import (
	"context"
	"os"
)

// FileDocumentStore is a DocumentStore backed by a file on disk
type FileDocumentStore struct {
	path string
}

// NewFileDocumentStore creates a store over the given path
func NewFileDocumentStore(path string) *FileDocumentStore {
	return &FileDocumentStore{path: path}
}

// Path returns the backing file path
func (s *FileDocumentStore) Path() string {
	return s.path
}

// Read returns the full document text
func (s *FileDocumentStore) Read(ctx context.Context) ([]byte, error) {
	return os.ReadFile(s.path)
}

// Write replaces the full document text
func (s *FileDocumentStore) Write(ctx context.Context, data []byte) error {
	return os.WriteFile(s.path, data, 0o644)
}
