package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/bobg/subcmd"
	"github.com/pkg/errors"

	"github.com/bobg/chunksync/index"
	"github.com/bobg/chunksync/journal"
	"github.com/bobg/chunksync/logscan"
	"github.com/bobg/chunksync/transfer"
)

type copyOptions struct {
	chunks    string
	output    string
	overwrite bool
	workers   int
	verbose   bool
	quiet     bool
}

// copyParams are the flags of the index and log subcommands,
// in the order their functions take them.
func (c maincmd) copyParams(overwrite bool) []subcmd.Param {
	return subcmd.Params(
		"chunks", subcmd.String, "", "source chunk store directory",
		"output", subcmd.String, "", "destination chunk store directory",
		"overwrite", subcmd.Bool, overwrite, "overwrite chunks already in the destination",
		"workers", subcmd.Int, c.workers(), "number of chunks to copy concurrently",
		"journal", subcmd.String, c.journalPath(), "record outcomes in this sqlite3 file",
		"v", subcmd.Bool, false, "log each chunk copied or missing",
		"quiet", subcmd.Bool, false, "no progress display",
	)
}

// retryParams are copyParams without -overwrite,
// which retry always does.
func (c maincmd) retryParams() []subcmd.Param {
	return subcmd.Params(
		"chunks", subcmd.String, "", "source chunk store directory",
		"output", subcmd.String, "", "destination chunk store directory",
		"workers", subcmd.Int, c.workers(), "number of chunks to copy concurrently",
		"journal", subcmd.String, c.journalPath(), "sqlite3 journal of the run to retry",
		"v", subcmd.Bool, false, "log each chunk copied or missing",
		"quiet", subcmd.Bool, false, "no progress display",
	)
}

func (c maincmd) workers() int {
	if c.conf == nil || c.conf.Workers == "" {
		return 1
	}
	n, err := c.conf.Workers.Int64()
	if err != nil {
		log.Printf("ignoring config value workers=%s: %s", c.conf.Workers, err)
		return 1
	}
	return int(n)
}

func (c maincmd) journalPath() string {
	if c.conf == nil {
		return ""
	}
	return c.conf.Journal
}

func (c maincmd) indexcmd(ctx context.Context, chunks, output string, overwrite bool, workers int, journalPath string, verbose, quiet bool, args []string) error {
	if len(args) == 0 {
		return errors.New("missing index file")
	}

	set := new(transfer.Set)
	for _, path := range args {
		digests, err := index.Read(path)
		if err != nil {
			return err
		}
		set.Add(digests...)
		if verbose {
			log.Printf("%s: %d chunks (%d unique so far)", path, len(digests), set.Len())
		}
	}

	j, err := openJournal(ctx, journalPath)
	if err != nil {
		return err
	}
	if j != nil {
		defer j.Close()
	}

	opts := copyOptions{
		chunks:    chunks,
		output:    output,
		overwrite: overwrite,
		workers:   workers,
		verbose:   verbose,
		quiet:     quiet,
	}
	return c.run(ctx, "index", opts, set, j)
}

// logcmd overwrites by default:
// a chunk named in a verify log may be present in the destination but corrupt.
func (c maincmd) logcmd(ctx context.Context, chunks, output string, overwrite bool, workers int, journalPath string, verbose, quiet bool, args []string) error {
	if len(args) == 0 {
		return errors.New("missing log file")
	}

	set := new(transfer.Set)
	for _, path := range args {
		digests, err := logscan.ScanFile(path)
		if err != nil {
			return err
		}
		set.Add(digests...)
		if verbose {
			log.Printf("%s: %d chunks mentioned", path, len(digests))
		}
	}

	j, err := openJournal(ctx, journalPath)
	if err != nil {
		return err
	}
	if j != nil {
		defer j.Close()
	}

	opts := copyOptions{
		chunks:    chunks,
		output:    output,
		overwrite: overwrite,
		workers:   workers,
		verbose:   verbose,
		quiet:     quiet,
	}
	return c.run(ctx, "log", opts, set, j)
}

func (c maincmd) retrycmd(ctx context.Context, chunks, output string, workers int, journalPath string, verbose, quiet bool, _ []string) error {
	if journalPath == "" {
		return errors.New("retry requires -journal")
	}

	j, err := openJournal(ctx, journalPath)
	if err != nil {
		return err
	}
	defer j.Close()

	failed, err := j.Failed(ctx)
	if err != nil {
		return errors.Wrap(err, "reading failures from journal")
	}
	if len(failed) == 0 {
		fmt.Fprintln(c.out, "Nothing to retry.")
		return nil
	}

	// A failed copy may have been caused by a bad chunk in the destination.
	opts := copyOptions{
		chunks:    chunks,
		output:    output,
		overwrite: true,
		workers:   workers,
		verbose:   verbose,
		quiet:     quiet,
	}
	return c.run(ctx, "retry", opts, transfer.Plan(failed), j)
}

func openJournal(ctx context.Context, path string) (*journal.Journal, error) {
	if path == "" {
		return nil, nil
	}
	return journal.Open(ctx, path)
}

type locker interface {
	Lock() error
	Unlock() error
}

func (c maincmd) run(ctx context.Context, kind string, opts copyOptions, set *transfer.Set, j *journal.Journal) error {
	var srcConf, dstConf map[string]interface{}
	if c.conf != nil {
		srcConf, dstConf = c.conf.Source, c.conf.Destination
	}
	src, err := openStore(ctx, "source", opts.chunks, srcConf)
	if err != nil {
		return err
	}
	dst, err := openStore(ctx, "destination", opts.output, dstConf)
	if err != nil {
		return err
	}

	if l, ok := dst.(locker); ok {
		if err = l.Lock(); err != nil {
			return errors.Wrap(err, "locking destination")
		}
		defer l.Unlock()
	}

	var run *journal.Run
	if j != nil {
		run, err = j.Begin(ctx, kind)
		if err != nil {
			return errors.Wrap(err, "starting journal run")
		}
	}

	e := &transfer.Executor{
		Source:      src,
		Destination: dst,
		Overwrite:   opts.overwrite,
		Workers:     opts.workers,
		OnResult:    resultLogger(opts.verbose, run),
	}
	if !opts.quiet {
		p := newProgress(os.Stderr)
		e.Progress = p.tick
	}

	start := time.Now()
	stats, runErr := e.Run(ctx, set)
	elapsed := time.Since(start)

	if run != nil {
		// The run context may be canceled; the journal must still be closed out.
		if err := run.Finish(context.Background(), stats); err != nil {
			log.Printf("ERROR %s", err)
		}
	}

	printSummary(c.out, stats, set.Len(), elapsed)

	if runErr != nil {
		return errors.Wrap(runErr, "transfer interrupted")
	}
	if stats.Failed > 0 {
		return fmt.Errorf("%d chunk(s) failed to copy", stats.Failed)
	}
	return nil
}

func resultLogger(verbose bool, run *journal.Run) func(transfer.Result) {
	return func(res transfer.Result) {
		switch res.Outcome {
		case transfer.Failed:
			log.Printf("ERROR copying chunk %s: %s", res.Digest, res.Err)
		case transfer.Copied:
			if verbose {
				log.Printf("Copied %s", res.Digest)
			}
		case transfer.SkippedMissing:
			if verbose {
				log.Printf("Chunk %s not found in source", res.Digest)
			}
		}
		if run != nil {
			if err := run.Record(context.Background(), res); err != nil {
				log.Printf("ERROR %s", err)
			}
		}
	}
}

func printSummary(w io.Writer, stats transfer.Stats, total int, elapsed time.Duration) {
	fmt.Fprintln(w, "Copy statistics:")
	fmt.Fprintf(w, "  requested:          %d\n", total)
	fmt.Fprintf(w, "  copied:             %d\n", stats.Copied)
	fmt.Fprintf(w, "  skipped (existing): %d\n", stats.SkippedExisting)
	fmt.Fprintf(w, "  skipped (missing):  %d\n", stats.SkippedMissing)
	fmt.Fprintf(w, "  skipped (total):    %d\n", stats.Skipped())
	fmt.Fprintf(w, "  failed:             %d\n", stats.Failed)
	fmt.Fprintf(w, "  elapsed:            %s\n", elapsed.Round(10*time.Millisecond))
}
