// Package lru implements a chunk store that remembers, in a least-recently-used cache,
// which chunks a nested store is known to hold.
//
// Chunks are immutable once present in a store,
// so a positive answer from Has or Stat stays true
// for as long as nothing deletes chunks behind the cache's back.
// Negative answers are never cached.
package lru

import (
	"context"
	"io"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/bobg/chunksync"
	"github.com/bobg/chunksync/store"
)

var _ chunksync.Store = &Store{}

// Store caches chunk metadata for a nested store.
// Content is not cached.
// Writes pass through to the nested store.
type Store struct {
	c *lru.Cache // Digest->chunksync.Info
	s chunksync.Store
}

// New produces a new Store backed by `s` and remembering up to `size` chunks.
func New(s chunksync.Store, size int) (*Store, error) {
	c, err := lru.New(size)
	return &Store{s: s, c: c}, err
}

// Has tells whether the nested store holds the chunk with digest d.
func (s *Store) Has(ctx context.Context, d chunksync.Digest) (bool, error) {
	if s.c.Contains(d) {
		return true, nil
	}
	info, err := s.s.Stat(ctx, d)
	if errors.Is(err, chunksync.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.c.Add(d, info)
	return true, nil
}

// Stat returns the Info of the chunk with digest d.
func (s *Store) Stat(ctx context.Context, d chunksync.Digest) (chunksync.Info, error) {
	if got, ok := s.c.Get(d); ok {
		return got.(chunksync.Info), nil
	}
	info, err := s.s.Stat(ctx, d)
	if err != nil {
		return info, err
	}
	s.c.Add(d, info)
	return info, nil
}

// Open opens the chunk with digest d in the nested store.
func (s *Store) Open(ctx context.Context, d chunksync.Digest) (io.ReadCloser, error) {
	return s.s.Open(ctx, d)
}

// Put writes the chunk with digest d to the nested store.
// The cached Info for d is dropped rather than guessed.
func (s *Store) Put(ctx context.Context, d chunksync.Digest, r io.Reader, info chunksync.Info) error {
	s.c.Remove(d)
	return s.s.Put(ctx, d, r, info)
}

func init() {
	store.Register("lru", func(ctx context.Context, conf map[string]interface{}) (chunksync.Store, error) {
		size, err := store.IntParam(conf, "size")
		if err != nil {
			return nil, err
		}
		nested, ok := conf["nested"].(map[string]interface{})
		if !ok {
			return nil, errors.New(`missing "nested" parameter`)
		}
		nestedStore, err := store.FromConfig(ctx, nested)
		if err != nil {
			return nil, errors.Wrap(err, "creating nested store")
		}
		return New(nestedStore, size)
	})
}
