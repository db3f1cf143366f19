package ports

import (
	"context"
)

// DocumentStore defines the interface for reading and writing the backing
// board document. This is a port in hexagonal architecture - the core does
// not know whether the document lives on disk, in a host application's
// vault, or in a test buffer.
type DocumentStore interface {
	// Read returns the full document text
	Read(ctx context.Context) ([]byte, error)

	// Write replaces the full document text
	Write(ctx context.Context, data []byte) error
}

// AttachmentStore defines the interface for binary asset persistence. The
// core never handles attachment bytes beyond passing them through; it only
// keeps the returned link string keyed by an id it mints itself.
type AttachmentStore interface {
	// Save stores the attachment content and returns a link usable inside
	// the document's asset list
	Save(ctx context.Context, name string, content []byte) (string, error)
}
