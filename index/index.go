// Package index reads the digest lists out of chunk-index files.
//
// A chunk index describes one backed-up file as the sequence of chunks making it up.
// It begins with a fixed-size header,
// which this package skips without interpreting,
// followed by one record per chunk.
// In a fixed index (Fixed) each record is just the chunk's 32-byte digest.
// In a dynamic index (Dynamic) each record is an 8-byte end offset followed by the digest.
package index

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/bobg/chunksync"
)

// HeaderSize is the size of the header at the start of every index file.
const HeaderSize = 4096

// Layout describes the record structure of an index file.
type Layout struct {
	HeaderSize   int64
	RecordSize   int
	DigestOffset int
}

var (
	// Fixed is the layout of a fixed-size chunk index (.fidx).
	Fixed = Layout{HeaderSize: HeaderSize, RecordSize: chunksync.Size}

	// Dynamic is the layout of a dynamic-size chunk index (.didx).
	Dynamic = Layout{HeaderSize: HeaderSize, RecordSize: 8 + chunksync.Size, DigestOffset: 8}
)

// ForPath chooses a layout from the file name:
// Dynamic for names ending in .didx,
// Fixed for everything else.
func ForPath(path string) Layout {
	if filepath.Ext(path) == ".didx" {
		return Dynamic
	}
	return Fixed
}

// Read returns the digests listed in the index file at path, in file order,
// choosing the layout with ForPath.
// Duplicates are not removed.
func Read(path string) ([]chunksync.Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	digests, err := ForPath(path).Decode(f)
	return digests, errors.Wrapf(err, "reading %s", path)
}

// Decode returns the digests in the index read from r.
func (l Layout) Decode(r io.Reader) ([]chunksync.Digest, error) {
	var result []chunksync.Digest
	err := l.Each(r, func(d chunksync.Digest) error {
		result = append(result, d)
		return nil
	})
	return result, err
}

// Each calls f on each digest in the index read from r.
//
// Input too short to hold the whole header holds no digests.
// A partial record at the end of the input is ignored.
// Neither is an error.
//
// If f returns an error,
// Each exits with that error.
func (l Layout) Each(r io.Reader, f func(chunksync.Digest) error) error {
	br := bufio.NewReaderSize(r, 64*1024)

	_, err := io.CopyN(io.Discard, br, l.HeaderSize)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "skipping header")
	}

	rec := make([]byte, l.RecordSize)
	for {
		_, err = io.ReadFull(br, rec)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			// A truncated trailing record is dropped.
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "reading record")
		}
		d, err := chunksync.DigestFromBytes(rec[l.DigestOffset : l.DigestOffset+chunksync.Size])
		if err != nil {
			return err
		}
		if err = f(d); err != nil {
			return err
		}
	}
}
