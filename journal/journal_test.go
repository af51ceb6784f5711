package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bobg/chunksync"
	"github.com/bobg/chunksync/transfer"
)

func withTestJournal(t *testing.T, fn func(context.Context, *Journal)) {
	ctx := context.Background()
	j, err := Open(ctx, filepath.Join(t.TempDir(), "journal.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	defer j.Close()
	fn(ctx, j)
}

func TestJournal(t *testing.T) {
	withTestJournal(t, func(ctx context.Context, j *Journal) {
		if _, err := j.Failed(ctx); !errors.Is(err, ErrNoRuns) {
			t.Errorf("got error %v, want %v", err, ErrNoRuns)
		}

		var (
			d1 = chunksync.Digest{1}
			d2 = chunksync.Digest{2}
			d3 = chunksync.Digest{3}
			d4 = chunksync.Digest{4}
		)

		run, err := j.Begin(ctx, "index")
		if err != nil {
			t.Fatal(err)
		}
		results := []transfer.Result{
			{Digest: d1, Outcome: transfer.Copied},
			{Digest: d2, Outcome: transfer.Failed, Err: errors.New("permission denied")},
			{Digest: d3, Outcome: transfer.SkippedMissing},
			{Digest: d4, Outcome: transfer.Failed, Err: errors.New("no space left on device")},
		}
		for _, res := range results {
			if err := run.Record(ctx, res); err != nil {
				t.Fatal(err)
			}
		}

		stats, err := run.Stats(ctx)
		if err != nil {
			t.Fatal(err)
		}
		want := transfer.Stats{Copied: 1, SkippedMissing: 1, Failed: 2}
		if diff := cmp.Diff(want, stats); diff != "" {
			t.Errorf("stats mismatch (-want +got):\n%s", diff)
		}
		if err := run.Finish(ctx, stats); err != nil {
			t.Fatal(err)
		}

		failed, err := j.Failed(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]chunksync.Digest{d2, d4}, failed); diff != "" {
			t.Errorf("failed mismatch (-want +got):\n%s", diff)
		}

		// A retry run supersedes the first.
		retry, err := j.Begin(ctx, "retry")
		if err != nil {
			t.Fatal(err)
		}
		if err := retry.Record(ctx, transfer.Result{Digest: d2, Outcome: transfer.Copied}); err != nil {
			t.Fatal(err)
		}
		if err := retry.Record(ctx, transfer.Result{Digest: d4, Outcome: transfer.Failed, Err: errors.New("still full")}); err != nil {
			t.Fatal(err)
		}

		failed, err = j.Failed(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]chunksync.Digest{d4}, failed); diff != "" {
			t.Errorf("failed mismatch after retry (-want +got):\n%s", diff)
		}
	})
}
