// Package testutil holds checks shared by the tests of chunk store implementations.
package testutil

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/bobg/chunksync"
)

// ReadWrite permits testing a Store implementation
// by writing some chunks to it,
// then reading them back out to make sure they're the same.
// It also checks the behavior for absent chunks
// and that Put replaces an existing chunk.
func ReadWrite(ctx context.Context, t *testing.T, s chunksync.Store) {
	t.Helper()

	mtime := time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)

	absent := chunksync.Digest(sha256.Sum256([]byte("absent")))
	if has, err := s.Has(ctx, absent); err != nil || has {
		t.Errorf("Has on absent chunk: got %v, %v; want false, nil", has, err)
	}
	if _, err := s.Stat(ctx, absent); !errors.Is(err, chunksync.ErrNotFound) {
		t.Errorf("Stat on absent chunk: got error %v, want %v", err, chunksync.ErrNotFound)
	}
	if _, err := s.Open(ctx, absent); !errors.Is(err, chunksync.ErrNotFound) {
		t.Errorf("Open on absent chunk: got error %v, want %v", err, chunksync.ErrNotFound)
	}

	chunks := [][]byte{
		[]byte("a"),
		bytes.Repeat([]byte("chunk data "), 1000),
		{},
	}
	for _, data := range chunks {
		d := chunksync.Digest(sha256.Sum256(data))
		if err := s.Put(ctx, d, bytes.NewReader(data), chunksync.Info{ModTime: mtime}); err != nil {
			t.Fatalf("Put %s: %s", d, err)
		}
		check(ctx, t, s, d, data, mtime)
	}

	d := chunksync.Digest(sha256.Sum256(chunks[0]))
	replacement := []byte("replacement")
	if err := s.Put(ctx, d, bytes.NewReader(replacement), chunksync.Info{ModTime: mtime}); err != nil {
		t.Fatalf("replacing %s: %s", d, err)
	}
	check(ctx, t, s, d, replacement, mtime)
}

func check(ctx context.Context, t *testing.T, s chunksync.Store, d chunksync.Digest, want []byte, mtime time.Time) {
	t.Helper()

	has, err := s.Has(ctx, d)
	if err != nil {
		t.Fatal(err)
	}
	if !has {
		t.Errorf("chunk %s missing after Put", d)
		return
	}

	info, err := s.Stat(ctx, d)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size != int64(len(want)) {
		t.Errorf("chunk %s: got size %d, want %d", d, info.Size, len(want))
	}
	if !info.ModTime.Equal(mtime) {
		t.Errorf("chunk %s: got modtime %s, want %s", d, info.ModTime, mtime)
	}

	r, err := s.Open(ctx, d)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("chunk %s: got %d bytes of content, want %d (or content differs)", d, len(got), len(want))
	}
}
