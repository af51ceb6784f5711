// Package logging implements a store that delegates everything to a nested store,
// logging operations as they happen.
package logging

import (
	"context"
	"io"
	"log"

	"github.com/pkg/errors"

	"github.com/bobg/chunksync"
	"github.com/bobg/chunksync/store"
)

var _ chunksync.Store = &Store{}

type Store struct {
	s chunksync.Store
	l *log.Logger
}

// New produces a Store logging to l,
// or to the standard logger if l is nil.
func New(s chunksync.Store, l *log.Logger) *Store {
	if l == nil {
		l = log.Default()
	}
	return &Store{s: s, l: l}
}

func (s *Store) Has(ctx context.Context, d chunksync.Digest) (bool, error) {
	has, err := s.s.Has(ctx, d)
	if err != nil {
		s.l.Printf("ERROR Has %s: %s", d, err)
	} else {
		s.l.Printf("Has %s: %v", d, has)
	}
	return has, err
}

func (s *Store) Stat(ctx context.Context, d chunksync.Digest) (chunksync.Info, error) {
	info, err := s.s.Stat(ctx, d)
	if err != nil {
		s.l.Printf("ERROR Stat %s: %s", d, err)
	} else {
		s.l.Printf("Stat %s: size=%d modtime=%s", d, info.Size, info.ModTime)
	}
	return info, err
}

func (s *Store) Open(ctx context.Context, d chunksync.Digest) (io.ReadCloser, error) {
	r, err := s.s.Open(ctx, d)
	if err != nil {
		s.l.Printf("ERROR Open %s: %s", d, err)
	} else {
		s.l.Printf("Open %s", d)
	}
	return r, err
}

func (s *Store) Put(ctx context.Context, d chunksync.Digest, r io.Reader, info chunksync.Info) error {
	err := s.s.Put(ctx, d, r, info)
	if err != nil {
		s.l.Printf("ERROR in Put %s: %s", d, err)
	} else {
		s.l.Printf("Put %s", d)
	}
	return err
}

func init() {
	store.Register("logging", func(ctx context.Context, conf map[string]interface{}) (chunksync.Store, error) {
		nested, ok := conf["nested"].(map[string]interface{})
		if !ok {
			return nil, errors.New(`missing "nested" parameter`)
		}
		nestedStore, err := store.FromConfig(ctx, nested)
		if err != nil {
			return nil, errors.Wrap(err, "creating nested store")
		}
		return New(nestedStore, nil), nil
	})
}
