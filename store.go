package chunksync

import (
	"context"
	"errors"
	"io"
	"time"
)

// Info is what a store knows about a chunk besides its content.
type Info struct {
	Size    int64
	ModTime time.Time
}

// Getter is a read-only Store (qv).
type Getter interface {
	// Has tells whether the store holds the chunk with digest d.
	Has(ctx context.Context, d Digest) (bool, error)

	// Stat returns the Info for the chunk with digest d,
	// or ErrNotFound.
	Stat(ctx context.Context, d Digest) (Info, error)

	// Open returns a reader over the content of the chunk with digest d,
	// or ErrNotFound.
	// The caller must close it.
	Open(ctx context.Context, d Digest) (io.ReadCloser, error)
}

// Store is a chunk store.
// Unlike a general blob store it does not compute digests itself:
// chunks are copied in under the digest they already have elsewhere.
type Store interface {
	Getter

	// Put stores the content read from r as the chunk with digest d,
	// replacing any chunk already there.
	// If info.ModTime is nonzero the store records it as the chunk's modification time.
	Put(ctx context.Context, d Digest, r io.Reader, info Info) error
}

// ErrNotFound is the error returned
// when a Getter tries to access a non-existent chunk.
var ErrNotFound = errors.New("not found")
