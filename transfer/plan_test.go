package transfer

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bobg/chunksync"
)

func TestPlan(t *testing.T) {
	var (
		d1 = chunksync.Digest{1}
		d2 = chunksync.Digest{2}
		d3 = chunksync.Digest{3}
	)

	cases := []struct {
		seqs [][]chunksync.Digest
		want []chunksync.Digest
	}{
		{},
		{seqs: [][]chunksync.Digest{{}, nil}},
		{
			seqs: [][]chunksync.Digest{{d1, d2, d1}, {d2, d3}},
			want: []chunksync.Digest{d1, d2, d3},
		},
		{
			seqs: [][]chunksync.Digest{{d3, d3, d3}, {d1}, {d3, d2}},
			want: []chunksync.Digest{d3, d1, d2},
		},
	}

	for i, c := range cases {
		set := Plan(c.seqs...)
		if set.Len() != len(c.want) {
			t.Errorf("case %d: got %d digests, want %d", i, set.Len(), len(c.want))
			continue
		}
		if len(c.want) == 0 {
			continue
		}
		if diff := cmp.Diff(c.want, set.Digests()); diff != "" {
			t.Errorf("case %d: mismatch (-want +got):\n%s", i, diff)
		}
		for _, d := range c.want {
			if !set.Has(d) {
				t.Errorf("case %d: set lacks %s", i, d)
			}
		}
	}
}

func TestSetZeroValue(t *testing.T) {
	var s Set
	if s.Has(chunksync.Digest{1}) {
		t.Error("empty set has digest")
	}
	s.Add(chunksync.Digest{1}, chunksync.Digest{1})
	if s.Len() != 1 {
		t.Errorf("got length %d, want 1", s.Len())
	}
}
