// Package mem implements an in-memory chunk store.
package mem

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/pkg/errors"

	"github.com/bobg/chunksync"
	"github.com/bobg/chunksync/store"
)

var _ chunksync.Store = &Store{}

type chunk struct {
	data []byte
	info chunksync.Info
}

// Store is a memory-based implementation of a chunk store.
type Store struct {
	mu     sync.Mutex
	chunks map[chunksync.Digest]chunk
}

// New produces a new Store.
func New() *Store {
	return &Store{
		chunks: make(map[chunksync.Digest]chunk),
	}
}

// Has tells whether the store holds the chunk with digest d.
func (s *Store) Has(_ context.Context, d chunksync.Digest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.chunks[d]
	return ok, nil
}

// Stat returns the Info of the chunk with digest d.
func (s *Store) Stat(_ context.Context, d chunksync.Digest) (chunksync.Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chunks[d]
	if !ok {
		return chunksync.Info{}, chunksync.ErrNotFound
	}
	return c.info, nil
}

// Open returns a reader over the chunk with digest d.
func (s *Store) Open(_ context.Context, d chunksync.Digest) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chunks[d]
	if !ok {
		return nil, chunksync.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(c.data)), nil
}

// Put stores the chunk with digest d, replacing any existing one.
// Nothing is stored if reading r fails.
func (s *Store) Put(_ context.Context, d chunksync.Digest, r io.Reader, info chunksync.Info) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrapf(err, "reading data for %s", d)
	}
	info.Size = int64(len(data))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.chunks[d] = chunk{data: data, info: info}
	return nil
}

// Bytes returns the content of the chunk with digest d.
func (s *Store) Bytes(d chunksync.Digest) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chunks[d]
	return c.data, ok
}

func init() {
	store.Register("mem", func(context.Context, map[string]interface{}) (chunksync.Store, error) {
		return New(), nil
	})
}
