// Package logscan extracts chunk digests from free-form log text,
// such as the output of a verification job reporting missing or corrupt chunks.
package logscan

import (
	"bufio"
	"io"
	"os"
	"regexp"

	"github.com/pkg/errors"

	"github.com/bobg/chunksync"
)

// Each line contributes at most its first match.
var chunkRegex = regexp.MustCompile(`chunk (\w{64})`)

const maxLine = 16 * 1024 * 1024

// ScanFile returns the digests mentioned in the log file at path,
// in order of appearance.
func ScanFile(path string) ([]chunksync.Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	digests, err := Scan(f)
	return digests, errors.Wrapf(err, "scanning %s", path)
}

// Scan returns the digests mentioned in the log text read from r,
// in order of appearance.
// A digest is recognized as the word "chunk",
// a single space,
// and 64 word characters.
// Lines with no such match,
// or whose match is not a valid hex digest,
// are ignored.
func Scan(r io.Reader) ([]chunksync.Digest, error) {
	var result []chunksync.Digest
	err := Each(r, func(d chunksync.Digest) error {
		result = append(result, d)
		return nil
	})
	return result, err
}

// Each calls f on each digest found in the log text read from r.
// If f returns an error,
// Each exits with that error.
func Each(r io.Reader, f func(chunksync.Digest) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	for sc.Scan() {
		d, ok := Line(sc.Text())
		if !ok {
			continue
		}
		if err := f(d); err != nil {
			return err
		}
	}
	return errors.Wrap(sc.Err(), "reading log")
}

// Line returns the digest mentioned in a single log line, if any.
func Line(line string) (chunksync.Digest, bool) {
	m := chunkRegex.FindStringSubmatch(line)
	if m == nil {
		return chunksync.Zero, false
	}
	d, err := chunksync.DigestFromHex(m[1])
	if err != nil {
		return chunksync.Zero, false
	}
	return d, true
}
