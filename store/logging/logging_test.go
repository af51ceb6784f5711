package logging

import (
	"bytes"
	"context"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/bobg/chunksync"
	"github.com/bobg/chunksync/store/mem"
	"github.com/bobg/chunksync/testutil"
)

func TestStore(t *testing.T) {
	var (
		ctx = context.Background()
		buf = new(bytes.Buffer)
		s   = New(mem.New(), log.New(buf, "", 0))
		d   = chunksync.Digest{1, 2, 3}
	)

	if _, err := s.Stat(ctx, d); err == nil {
		t.Fatal("got no error statting absent chunk")
	}
	if err := s.Put(ctx, d, strings.NewReader("data"), chunksync.Info{}); err != nil {
		t.Fatal(err)
	}
	if has, err := s.Has(ctx, d); err != nil || !has {
		t.Fatalf("got has=%v err=%v, want true, nil", has, err)
	}

	want := []string{
		"ERROR Stat " + d.String() + ": not found",
		"Put " + d.String(),
		"Has " + d.String() + ": true",
	}
	got := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(got) != len(want) {
		t.Fatalf("got %d log lines, want %d:\n%s", len(got), len(want), buf.String())
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestReadWrite(t *testing.T) {
	testutil.ReadWrite(context.Background(), t, New(mem.New(), log.New(io.Discard, "", 0)))
}
