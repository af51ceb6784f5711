package chunksync

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"
	"testing/quick"
)

func TestDigestRoundTrip(t *testing.T) {
	f := func(b [Size]byte) bool {
		d, err := DigestFromBytes(b[:])
		if err != nil {
			t.Logf("decoding %x: %s", b, err)
			return false
		}
		s := d.String()
		if s != hex.EncodeToString(b[:]) {
			t.Logf("got %s, want %x", s, b)
			return false
		}
		d2, err := DigestFromHex(s)
		if err != nil {
			t.Logf("decoding %s: %s", s, err)
			return false
		}
		return d2 == d && ValidHex(s)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestDigestFromBytes(t *testing.T) {
	for _, n := range []int{0, 1, Size - 1, Size + 1, 2 * Size} {
		_, err := DigestFromBytes(make([]byte, n))
		if !errors.Is(err, ErrMalformedDigest) {
			t.Errorf("length %d: got error %v, want %v", n, err, ErrMalformedDigest)
		}
	}
}

func TestDigestFromHex(t *testing.T) {
	lower := strings.Repeat("a1b2", 16)

	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: lower, want: lower},
		{in: strings.ToUpper(lower), want: lower},
		{in: "A1b2" + lower[4:], want: lower},
		{in: lower[:63], wantErr: true},
		{in: lower + "0", wantErr: true},
		{in: "g" + lower[1:], wantErr: true},
		{in: "_" + lower[1:], wantErr: true},
		{in: "", wantErr: true},
	}

	for i, c := range cases {
		d, err := DigestFromHex(c.in)
		if c.wantErr {
			if !errors.Is(err, ErrMalformedDigest) {
				t.Errorf("case %d: got error %v, want %v", i, err, ErrMalformedDigest)
			}
			continue
		}
		if err != nil {
			t.Errorf("case %d: %s", i, err)
			continue
		}
		if got := d.String(); got != c.want {
			t.Errorf("case %d: got %s, want %s", i, got, c.want)
		}
	}
}

func TestShard(t *testing.T) {
	d, err := DigestFromHex("aabb" + strings.Repeat("0", 60))
	if err != nil {
		t.Fatal(err)
	}
	if got := d.Shard(); got != "aabb" {
		t.Errorf("got shard %s, want aabb", got)
	}
	if d.IsZero() {
		t.Error("nonzero digest reports IsZero")
	}
	if !Zero.IsZero() {
		t.Error("Zero does not report IsZero")
	}
}
