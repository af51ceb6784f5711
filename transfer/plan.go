package transfer

import "github.com/bobg/chunksync"

// Set is a deduplicated collection of digests
// that remembers the order in which they were first added.
// The zero value is an empty Set ready to use.
type Set struct {
	order []chunksync.Digest
	seen  map[chunksync.Digest]struct{}
}

// Plan merges digest sequences into a Set.
func Plan(seqs ...[]chunksync.Digest) *Set {
	s := new(Set)
	for _, seq := range seqs {
		s.Add(seq...)
	}
	return s
}

// Add adds digests to s, ignoring those already present.
func (s *Set) Add(digests ...chunksync.Digest) {
	if s.seen == nil {
		s.seen = make(map[chunksync.Digest]struct{})
	}
	for _, d := range digests {
		if _, ok := s.seen[d]; ok {
			continue
		}
		s.seen[d] = struct{}{}
		s.order = append(s.order, d)
	}
}

// Has tells whether d is in s.
func (s *Set) Has(d chunksync.Digest) bool {
	_, ok := s.seen[d]
	return ok
}

// Len is the number of digests in s.
func (s *Set) Len() int {
	return len(s.order)
}

// Digests returns the members of s in first-added order.
// The caller must not modify the result.
func (s *Set) Digests() []chunksync.Digest {
	return s.order
}
