// Package file implements a chunk store as a sharded file hierarchy.
package file

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/bobg/flock"
	"github.com/pkg/errors"

	"github.com/bobg/chunksync"
	"github.com/bobg/chunksync/store"
)

var _ chunksync.Store = &Store{}

// LockFileName is the name of the lock file Lock creates in the store root.
const LockFileName = ".chunksync.lock"

// ErrNotRegular is the error when something other than a regular file
// occupies the path of a chunk.
var ErrNotRegular = errors.New("not a regular file")

// Store is a file-based implementation of a chunk store.
// The chunk with digest d lives at
//
//	root/<first 4 hex digits of d>/<64 hex digits of d>
//
// and shard directories are created as needed.
type Store struct {
	root    string
	flocker flock.Locker
}

// New produces a new Store keeping chunks beneath `root`.
func New(root string) *Store {
	return &Store{root: root}
}

// Root is the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// Path is where the chunk with digest d lives,
// whether or not it exists.
func (s *Store) Path(d chunksync.Digest) string {
	h := d.String()
	return filepath.Join(s.root, h[:chunksync.ShardSize], h)
}

// Has tells whether the chunk with digest d exists.
func (s *Store) Has(_ context.Context, d chunksync.Digest) (bool, error) {
	path := s.Path(d)
	fi, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "statting %s", path)
	}
	if !fi.Mode().IsRegular() {
		return false, errors.Wrapf(ErrNotRegular, "statting %s", path)
	}
	return true, nil
}

// Stat returns the size and modification time of the chunk with digest d.
func (s *Store) Stat(_ context.Context, d chunksync.Digest) (chunksync.Info, error) {
	path := s.Path(d)
	fi, err := os.Stat(path)
	if os.IsNotExist(err) {
		return chunksync.Info{}, chunksync.ErrNotFound
	}
	if err != nil {
		return chunksync.Info{}, errors.Wrapf(err, "statting %s", path)
	}
	if !fi.Mode().IsRegular() {
		return chunksync.Info{}, errors.Wrapf(ErrNotRegular, "statting %s", path)
	}
	return chunksync.Info{Size: fi.Size(), ModTime: fi.ModTime()}, nil
}

// Open opens the chunk with digest d for reading.
func (s *Store) Open(_ context.Context, d chunksync.Digest) (io.ReadCloser, error) {
	path := s.Path(d)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, chunksync.ErrNotFound
	}
	return f, errors.Wrapf(err, "opening %s", path)
}

// Put writes the chunk with digest d,
// replacing any existing one.
// The content goes to a temporary file in the shard directory first,
// which is renamed into place only when complete,
// so an interrupted Put never leaves a partial chunk behind.
func (s *Store) Put(_ context.Context, d chunksync.Digest, r io.Reader, info chunksync.Info) error {
	var (
		path = s.Path(d)
		dir  = filepath.Dir(path)
	)

	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return errors.Wrapf(err, "ensuring path %s exists", dir)
	}

	f, err := os.CreateTemp(dir, "."+d.String()+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "creating temp file in %s", dir)
	}
	tmpname := f.Name()

	var renamed bool
	defer func() {
		if !renamed {
			os.Remove(tmpname)
		}
	}()

	err = func() error {
		defer f.Close()

		if err := f.Chmod(0644); err != nil {
			return errors.Wrapf(err, "setting mode of %s", tmpname)
		}
		if _, err := io.Copy(f, r); err != nil {
			return errors.Wrapf(err, "writing data to %s", tmpname)
		}
		return errors.Wrapf(f.Close(), "closing %s", tmpname)
	}()
	if err != nil {
		return err
	}

	if !info.ModTime.IsZero() {
		err = os.Chtimes(tmpname, info.ModTime, info.ModTime)
		if err != nil {
			return errors.Wrapf(err, "setting times of %s", tmpname)
		}
	}

	err = os.Rename(tmpname, path)
	if err != nil {
		return errors.Wrapf(err, "renaming %s to %s", tmpname, path)
	}
	renamed = true

	return nil
}

func (s *Store) lockFilePath() string {
	return filepath.Join(s.root, LockFileName)
}

// Lock takes an advisory lock on the store,
// creating the root directory if needed.
// It blocks while another process or goroutine holds the lock.
func (s *Store) Lock() error {
	if err := os.MkdirAll(s.root, 0755); err != nil {
		return errors.Wrapf(err, "ensuring path %s exists", s.root)
	}
	return errors.Wrapf(s.flocker.Lock(s.lockFilePath()), "locking %s", s.lockFilePath())
}

// Unlock releases the lock taken by Lock.
func (s *Store) Unlock() error {
	return errors.Wrapf(s.flocker.Unlock(s.lockFilePath()), "unlocking %s", s.lockFilePath())
}

func init() {
	store.Register("file", func(_ context.Context, conf map[string]interface{}) (chunksync.Store, error) {
		root, ok := conf["root"].(string)
		if !ok {
			return nil, errors.New(`missing "root" parameter`)
		}
		return New(root), nil
	})
}
