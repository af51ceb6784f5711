// Package journal records the outcome of transfer runs in a Sqlite database,
// so that chunks that failed to copy can be retried later.
package journal

import (
	"context"
	"database/sql"
	stderrs "errors"
	"time"

	"github.com/bobg/sqlutil"
	_ "github.com/mattn/go-sqlite3" // register the sqlite3 type for sql.Open
	"github.com/pkg/errors"

	"github.com/bobg/chunksync"
	"github.com/bobg/chunksync/transfer"
)

// Schema is the SQL that Open executes.
// It creates the `runs` and `results` tables if they do not exist.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  kind TEXT NOT NULL,
  started TEXT NOT NULL,
  finished TEXT,
  copied INTEGER,
  skipped_existing INTEGER,
  skipped_missing INTEGER,
  failed INTEGER
);

CREATE TABLE IF NOT EXISTS results (
  run_id INTEGER NOT NULL,
  digest TEXT NOT NULL,
  outcome TEXT NOT NULL,
  reason TEXT,
  PRIMARY KEY (run_id, digest)
);
`

// ErrNoRuns is the error returned by Failed when the journal is empty.
var ErrNoRuns = stderrs.New("no runs in journal")

// Journal is a Sqlite-based record of transfer runs.
type Journal struct {
	db *sql.DB
}

// Open opens the journal database at path,
// creating it and its tables if needed.
func Open(ctx context.Context, path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	db.SetMaxOpenConns(1)

	if _, err = db.ExecContext(ctx, Schema); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "creating schema in %s", path)
	}
	return &Journal{db: db}, nil
}

// Close closes the journal database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Run is one transfer run in a journal.
type Run struct {
	j  *Journal
	ID int64
}

// Begin records the start of a new run.
// Kind is a free-form label such as "index" or "log".
func (j *Journal) Begin(ctx context.Context, kind string) (*Run, error) {
	const q = `INSERT INTO runs (kind, started) VALUES ($1, $2)`

	res, err := j.db.ExecContext(ctx, q, kind, now())
	if err != nil {
		return nil, errors.Wrap(err, "inserting run")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "getting run id")
	}
	return &Run{j: j, ID: id}, nil
}

// Record records the result for one chunk.
// A later Record for the same digest in the same run replaces the earlier one.
func (r *Run) Record(ctx context.Context, res transfer.Result) error {
	const q = `INSERT OR REPLACE INTO results (run_id, digest, outcome, reason) VALUES ($1, $2, $3, $4)`

	var reason sql.NullString
	if res.Err != nil {
		reason = sql.NullString{String: res.Err.Error(), Valid: true}
	}
	_, err := r.j.db.ExecContext(ctx, q, r.ID, res.Digest.String(), res.Outcome.String(), reason)
	return errors.Wrapf(err, "recording result for %s", res.Digest)
}

// Finish records the end of the run and its tally.
func (r *Run) Finish(ctx context.Context, stats transfer.Stats) error {
	const q = `UPDATE runs SET finished = $1, copied = $2, skipped_existing = $3, skipped_missing = $4, failed = $5 WHERE id = $6`

	_, err := r.j.db.ExecContext(ctx, q, now(), stats.Copied, stats.SkippedExisting, stats.SkippedMissing, stats.Failed, r.ID)
	return errors.Wrapf(err, "finishing run %d", r.ID)
}

// Stats tallies the results recorded so far for the run.
func (r *Run) Stats(ctx context.Context) (transfer.Stats, error) {
	const q = `SELECT outcome, COUNT(*) FROM results WHERE run_id = $1 GROUP BY outcome`

	var stats transfer.Stats
	err := sqlutil.ForQueryRows(ctx, r.j.db, q, r.ID, func(outcome string, n int) {
		switch outcome {
		case transfer.Copied.String():
			stats.Copied = n
		case transfer.SkippedExisting.String():
			stats.SkippedExisting = n
		case transfer.SkippedMissing.String():
			stats.SkippedMissing = n
		case transfer.Failed.String():
			stats.Failed = n
		}
	})
	return stats, errors.Wrapf(err, "tallying run %d", r.ID)
}

// Latest returns the most recently begun run.
func (j *Journal) Latest(ctx context.Context) (*Run, error) {
	const q = `SELECT id FROM runs ORDER BY id DESC LIMIT 1`

	var id int64
	err := j.db.QueryRowContext(ctx, q).Scan(&id)
	if stderrs.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, errors.Wrap(err, "finding latest run")
	}
	return &Run{j: j, ID: id}, nil
}

// Failed returns the digests that failed to copy in the run,
// in the order they were recorded.
func (r *Run) Failed(ctx context.Context) ([]chunksync.Digest, error) {
	const q = `SELECT digest FROM results WHERE run_id = $1 AND outcome = $2 ORDER BY rowid`

	var result []chunksync.Digest
	err := sqlutil.ForQueryRows(ctx, r.j.db, q, r.ID, transfer.Failed.String(), func(h string) error {
		d, err := chunksync.DigestFromHex(h)
		if err != nil {
			return errors.Wrapf(err, "decoding digest %s", h)
		}
		result = append(result, d)
		return nil
	})
	return result, errors.Wrapf(err, "listing failures of run %d", r.ID)
}

// Failed returns the digests that failed to copy in the latest run.
func (j *Journal) Failed(ctx context.Context) ([]chunksync.Digest, error) {
	run, err := j.Latest(ctx)
	if err != nil {
		return nil, err
	}
	return run.Failed(ctx)
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
