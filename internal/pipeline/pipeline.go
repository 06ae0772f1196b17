// Package pipeline runs one integration end to end: reference keys, source
// files, filtering, batched imports, pruning, and the daily summary, retried
// as a whole until it succeeds or runs out of attempts.
package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/dbsmedya/cdosync/internal/config"
	"github.com/dbsmedya/cdosync/internal/eloqua"
	"github.com/dbsmedya/cdosync/internal/records"
	"github.com/dbsmedya/cdosync/internal/schema"
)

// Integration is one resolved entity pipeline and its effective processing
// settings.
type Integration struct {
	Definition *schema.Definition
	Processing config.ProcessingConfig
}

// Name returns the configured integration name.
func (i Integration) Name() string {
	return i.Definition.Name
}

// Summary holds the day's created and updated CDO record counts.
type Summary struct {
	Created int
	Updated int
}

// Attempt records one pass through the pipeline.
type Attempt struct {
	Integration string
	Number      int
	Success     bool
	Created     int
	Updated     int
	Files       int
	Matched     int
	Batches     int
	Pruned      int
	Err         error
	StartedAt   time.Time
	Duration    time.Duration
}

// RunResult is the outcome of all attempts of one run.
type RunResult struct {
	Integration string
	Label       string
	Mode        string
	Attempts    []Attempt
	Success     bool
	Created     int
	Updated     int
	StartedAt   time.Time
	CompletedAt time.Time
}

// LastError returns the error of the final attempt, if any.
func (r *RunResult) LastError() error {
	if len(r.Attempts) == 0 {
		return nil
	}
	return r.Attempts[len(r.Attempts)-1].Err
}

// ReferenceKeyProvider supplies the set of keys a source record must match.
type ReferenceKeyProvider interface {
	Keys(ctx context.Context) (records.KeySet, error)
}

// SourceStore lists and opens the provider's flat files.
type SourceStore interface {
	List(ctx context.Context, marker string) ([]string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// BatchSubmitter imports one batch of filtered records. n numbers the batch
// within the attempt, starting at 1.
type BatchSubmitter interface {
	Submit(ctx context.Context, n int, batch []records.RawRecord) (eloqua.ImportOutcome, error)
}

// SummarySource counts the CDO records created and updated today.
type SummarySource interface {
	Count(ctx context.Context) (Summary, error)
}

// StalePruner removes CDO instances whose identifier is not in keep.
type StalePruner interface {
	Prune(ctx context.Context, keep map[string]struct{}) (int, error)
}

// SyncMonitor counts syncs that ended in warning or error but were let
// through by continue_on_sync_failure.
type SyncMonitor interface {
	Tolerated() int
}

// Reporter receives attempt and run outcomes.
type Reporter interface {
	ReportAttempt(ctx context.Context, a Attempt) error
	ReportRun(ctx context.Context, r *RunResult) error
}
