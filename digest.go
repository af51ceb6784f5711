package chunksync

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// Size is the length of a binary digest in bytes.
const Size = sha256.Size

// HexSize is the length of the textual form of a digest.
const HexSize = 2 * Size

// ShardSize is the number of leading hex digits naming a chunk's shard directory.
const ShardSize = 4

// Digest identifies a chunk by the sha256 hash of its content.
type Digest [Size]byte

// ErrMalformedDigest is the error returned when decoding a digest
// from input of the wrong size or alphabet.
var ErrMalformedDigest = errors.New("malformed digest")

// Zero is the zero value of a Digest.
var Zero Digest

// String renders d as 64 lowercase hex digits.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Shard is the name of the shard directory holding d.
func (d Digest) Shard() string {
	return d.String()[:ShardSize]
}

// IsZero tells whether d is the zero digest.
func (d Digest) IsZero() bool {
	return d == Zero
}

// DigestFromBytes decodes a binary digest.
// The input must be exactly Size bytes.
func DigestFromBytes(b []byte) (Digest, error) {
	var out Digest
	if len(b) != Size {
		return out, ErrMalformedDigest
	}
	copy(out[:], b)
	return out, nil
}

// DigestFromHex decodes the textual form of a digest.
// Upper- and lowercase hex digits are both accepted.
func DigestFromHex(s string) (Digest, error) {
	var out Digest
	if !ValidHex(s) {
		return out, ErrMalformedDigest
	}
	_, err := hex.Decode(out[:], []byte(strings.ToLower(s)))
	return out, err
}

// ValidHex tells whether s is the textual form of a digest:
// exactly HexSize characters, all hex digits.
func ValidHex(s string) bool {
	if len(s) != HexSize {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case '0' <= c && c <= '9':
		case 'a' <= c && c <= 'f':
		case 'A' <= c && c <= 'F':
		default:
			return false
		}
	}
	return true
}
