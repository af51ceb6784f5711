// Package transfer copies sets of chunks from one store to another.
//
// Digests to copy are gathered into a Set with Plan,
// then an Executor works through the Set,
// copying each chunk that the source has and the destination lacks
// (or, with Overwrite, each chunk the source has).
// A failure to copy one chunk is recorded and the run goes on to the next;
// only cancellation of the context ends a run early.
package transfer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/bobg/chunksync"
)

// Outcome is what happened to one chunk in a transfer.
type Outcome int

const (
	// Copied means the chunk was written to the destination.
	Copied Outcome = iota

	// SkippedExisting means the destination already had the chunk
	// and overwriting was not requested.
	SkippedExisting

	// SkippedMissing means the source does not have the chunk.
	SkippedMissing

	// Failed means an error prevented copying the chunk.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Copied:
		return "copied"
	case SkippedExisting:
		return "skipped-existing"
	case SkippedMissing:
		return "skipped-missing"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Result is the outcome for one digest.
// Err is set when Outcome is Failed.
type Result struct {
	Digest  chunksync.Digest
	Outcome Outcome
	Err     error
}

// Stats counts the outcomes of a run.
type Stats struct {
	Copied          int
	SkippedExisting int
	SkippedMissing  int
	Failed          int
}

// Skipped is the number of chunks not copied for either skip reason.
func (s Stats) Skipped() int {
	return s.SkippedExisting + s.SkippedMissing
}

// Total is the number of chunks processed.
func (s Stats) Total() int {
	return s.Copied + s.Skipped() + s.Failed
}

func (s *Stats) add(o Outcome) {
	switch o {
	case Copied:
		s.Copied++
	case SkippedExisting:
		s.SkippedExisting++
	case SkippedMissing:
		s.SkippedMissing++
	case Failed:
		s.Failed++
	}
}

// ProgressFunc receives a tick after each chunk is processed:
// the number done so far,
// the total in the run,
// and the time since the run began.
type ProgressFunc func(done, total int, elapsed time.Duration)

// Executor copies chunks from Source to Destination.
type Executor struct {
	Source      chunksync.Getter
	Destination chunksync.Store

	// Overwrite causes chunks already in Destination to be copied again.
	Overwrite bool

	// Workers is the number of copies that may be in flight at once.
	// Values below 2 mean chunks are processed one at a time, in Set order.
	Workers int

	// Progress, if set, is called after each chunk.
	Progress ProgressFunc

	// OnResult, if set, is called with the Result for each chunk.
	OnResult func(Result)
}

// Run processes every digest in set and reports the tally.
// Per-chunk errors are counted as Failed and never stop the run.
// The returned error is non-nil only if ctx is canceled,
// in which case the Stats cover the chunks processed before that.
//
// Callbacks are never invoked concurrently,
// but with more than one worker they arrive in completion order.
func (e *Executor) Run(ctx context.Context, set *Set) (Stats, error) {
	var (
		stats   Stats
		mu      sync.Mutex // protects stats and serializes callbacks
		digests = set.Digests()
		total   = len(digests)
		start   = time.Now()
	)

	record := func(res Result) {
		mu.Lock()
		defer mu.Unlock()

		stats.add(res.Outcome)
		if e.OnResult != nil {
			e.OnResult(res)
		}
		if e.Progress != nil {
			e.Progress(stats.Total(), total, time.Since(start))
		}
	}

	if e.Workers < 2 {
		for _, d := range digests {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			record(e.One(ctx, d))
		}
		return stats, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.Workers)

	for _, d := range digests {
		d := d
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			record(e.One(gctx, d))
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return stats, err
}

// One processes a single digest.
func (e *Executor) One(ctx context.Context, d chunksync.Digest) Result {
	res := Result{Digest: d}

	info, err := e.Source.Stat(ctx, d)
	if errors.Is(err, chunksync.ErrNotFound) {
		res.Outcome = SkippedMissing
		return res
	}
	if err != nil {
		res.Outcome, res.Err = Failed, errors.Wrapf(err, "checking source for %s", d)
		return res
	}

	if !e.Overwrite {
		has, err := e.Destination.Has(ctx, d)
		if err != nil {
			res.Outcome, res.Err = Failed, errors.Wrapf(err, "checking destination for %s", d)
			return res
		}
		if has {
			res.Outcome = SkippedExisting
			return res
		}
	}

	// The chunk may vanish from the source between Stat and Open.
	r, err := e.Source.Open(ctx, d)
	if errors.Is(err, chunksync.ErrNotFound) {
		res.Outcome = SkippedMissing
		return res
	}
	if err != nil {
		res.Outcome, res.Err = Failed, errors.Wrapf(err, "opening %s in source", d)
		return res
	}
	defer r.Close()

	if err = e.Destination.Put(ctx, d, r, info); err != nil {
		res.Outcome, res.Err = Failed, errors.Wrapf(err, "copying %s to destination", d)
		return res
	}
	res.Outcome = Copied
	return res
}
