package pipeline

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/dbsmedya/cdosync/internal/logger"
	"github.com/dbsmedya/cdosync/internal/records"
)

// reportTimeout bounds each Reporter call, which runs even after the run
// context is cancelled.
const reportTimeout = 30 * time.Second

// Components are the collaborators a Runner drives. Pruner, Syncs and
// Reporter may be nil. Pruning is skipped in any attempt where Syncs reports
// a tolerated sync failure.
type Components struct {
	Keys      ReferenceKeyProvider
	Source    SourceStore
	Submitter BatchSubmitter
	Summary   SummarySource
	Pruner    StalePruner
	Syncs     SyncMonitor
	Reporter  Reporter
}

// Runner executes one integration with whole-pipeline retries.
type Runner struct {
	integration Integration
	components  Components
	logger      *logger.Logger
	sleep       func(ctx context.Context, d time.Duration) error
	now         func() time.Time
}

// NewRunner creates a runner for integration.
func NewRunner(integration Integration, components Components, log *logger.Logger) (*Runner, error) {
	if integration.Definition == nil {
		return nil, fmt.Errorf("integration definition is nil")
	}
	if integration.Processing.BatchSize < 1 {
		return nil, fmt.Errorf("batch size must be positive, got %d", integration.Processing.BatchSize)
	}
	switch {
	case components.Keys == nil:
		return nil, fmt.Errorf("reference key provider is nil")
	case components.Source == nil:
		return nil, fmt.Errorf("source store is nil")
	case components.Submitter == nil:
		return nil, fmt.Errorf("batch submitter is nil")
	case components.Summary == nil:
		return nil, fmt.Errorf("summary source is nil")
	}
	if log == nil {
		log = logger.NewDefault()
	}

	return &Runner{
		integration: integration,
		components:  components,
		logger:      log.WithIntegration(integration.Name()),
		sleep:       sleepContext,
		now:         time.Now,
	}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Run attempts the pipeline up to max_attempts times, waiting retry_delay
// between failures. It never returns an error; failures are in the result.
func (r *Runner) Run(ctx context.Context) *RunResult {
	proc := r.integration.Processing
	def := r.integration.Definition
	maxAttempts := proc.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	result := &RunResult{
		Integration: r.integration.Name(),
		Label:       def.Label,
		Mode:        proc.Mode,
		StartedAt:   r.now(),
	}

	r.logger.Infow("Starting integration run",
		"entity", def.Entity,
		"custom_object_id", def.CustomObjectID,
		"mode", proc.Mode,
		"max_attempts", maxAttempts)

	for n := 1; n <= maxAttempts; n++ {
		attempt := r.attempt(ctx, n)
		result.Attempts = append(result.Attempts, attempt)
		r.report(ctx, attempt)

		if attempt.Success {
			result.Success = true
			result.Created = attempt.Created
			result.Updated = attempt.Updated
			break
		}
		if ctx.Err() != nil {
			r.logger.Warn("Context cancelled - not retrying")
			break
		}
		if n < maxAttempts {
			r.logger.Infof("Retrying in %s", proc.RetryDelay())
			if err := r.sleep(ctx, proc.RetryDelay()); err != nil {
				r.logger.Warn("Context cancelled while waiting to retry")
				break
			}
		}
	}

	result.CompletedAt = r.now()
	if result.Success {
		r.logger.Infow("Integration run succeeded",
			"attempts", len(result.Attempts),
			"created", result.Created,
			"updated", result.Updated)
	} else {
		r.logger.Errorw("Integration run failed",
			"attempts", len(result.Attempts),
			"error", result.LastError())
	}

	if rep := r.components.Reporter; rep != nil {
		rctx, cancel := reportContext(ctx)
		defer cancel()
		if err := rep.ReportRun(rctx, result); err != nil {
			r.logger.Warnw("Failed to report run", "error", err)
		}
	}
	return result
}

// reportContext keeps ctx's values but not its cancellation, so the outcome
// of an interrupted run is still recorded.
func reportContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), reportTimeout)
}

func (r *Runner) report(ctx context.Context, a Attempt) {
	if rep := r.components.Reporter; rep != nil {
		rctx, cancel := reportContext(ctx)
		defer cancel()
		if err := rep.ReportAttempt(rctx, a); err != nil {
			r.logger.WithAttempt(a.Number).Warnw("Failed to report attempt", "error", err)
		}
	}
}

func (r *Runner) tolerated() int {
	if r.components.Syncs == nil {
		return 0
	}
	return r.components.Syncs.Tolerated()
}

func (r *Runner) attempt(ctx context.Context, n int) Attempt {
	log := r.logger.WithAttempt(n)
	a := Attempt{Integration: r.integration.Name(), Number: n, StartedAt: r.now()}

	err := r.execute(ctx, log, &a)
	a.Duration = r.now().Sub(a.StartedAt)
	if err != nil {
		a.Err = err
		a.Created, a.Updated = 0, 0
		log.Errorw("Attempt failed", "error", err, "duration", a.Duration)
		return a
	}

	a.Success = true
	log.Infow("Attempt succeeded",
		"files", a.Files,
		"matched", a.Matched,
		"batches", a.Batches,
		"pruned", a.Pruned,
		"created", a.Created,
		"updated", a.Updated,
		"duration", a.Duration)
	return a
}

// execute is one pass: keys, files, filter, import, prune, summary.
func (r *Runner) execute(ctx context.Context, log *logger.Logger, a *Attempt) error {
	def := r.integration.Definition
	c := r.components
	tolerated := r.tolerated()

	keys, err := c.Keys.Keys(ctx)
	if err != nil {
		return fmt.Errorf("reference keys: %w", err)
	}

	files, err := c.Source.List(ctx, def.FileMarker)
	if err != nil {
		return fmt.Errorf("list source files: %w", err)
	}
	if len(files) == 0 {
		log.Warnf("No source files matching %q", def.FileMarker)
	}

	var keep map[string]struct{}
	if c.Pruner != nil && def.Prune {
		keep = make(map[string]struct{})
	}

	for _, key := range files {
		if err := r.importFile(ctx, log, key, keys, keep, a); err != nil {
			return err
		}
		a.Files++
	}

	if keep != nil {
		switch {
		case a.Files == 0:
			log.Warn("Skipping prune: no source files were read")
		case len(keep) == 0:
			log.Warn("Skipping prune: source files hold no identifiers")
		case r.tolerated() > tolerated:
			log.Warnf("Skipping prune: %d sync(s) ended in warning or error this attempt", r.tolerated()-tolerated)
		default:
			pruned, err := c.Pruner.Prune(ctx, keep)
			a.Pruned = pruned
			if err != nil {
				return err
			}
		}
	}

	summary, err := c.Summary.Count(ctx)
	if err != nil {
		return fmt.Errorf("summary: %w", err)
	}
	a.Created, a.Updated = summary.Created, summary.Updated
	return nil
}

func (r *Runner) importFile(ctx context.Context, log *logger.Logger, key string, keys records.KeySet, keep map[string]struct{}, a *Attempt) (err error) {
	def := r.integration.Definition
	log = log.WithFields(map[string]interface{}{"file": key})

	body, err := r.components.Source.Open(ctx, key)
	if err != nil {
		return fmt.Errorf("open %s: %w", key, err)
	}
	defer func() {
		if cerr := body.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", key, cerr)
		}
	}()

	lines := records.NewLineReader(body)
	parsed := records.NewParser(def.Schema).Parse(lines.Lines())
	if keep != nil {
		parsed = collectIdentifiers(parsed, def.Identifier().Source, keep)
	}
	matched := records.Filter(parsed, def.KeyField, keys)

	fileMatched := 0
	for batch := range records.Chunk(matched, r.integration.Processing.BatchSize) {
		if err := ctx.Err(); err != nil {
			return err
		}
		fileMatched += len(batch)
		if _, err := r.components.Submitter.Submit(ctx, a.Batches+1, batch); err != nil {
			return fmt.Errorf("import %s: %w", key, err)
		}
		a.Batches++
	}
	if err := lines.Err(); err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}

	a.Matched += fileMatched
	log.Infof("Processed file: %d matching records", fileMatched)
	return nil
}

// collectIdentifiers records the identifier of every parsed record, matched
// or not, so pruning only removes instances absent from the file.
func collectIdentifiers(seq iter.Seq[records.RawRecord], field string, into map[string]struct{}) iter.Seq[records.RawRecord] {
	return func(yield func(records.RawRecord) bool) {
		for rec := range seq {
			if id := rec[field]; id != "" {
				into[id] = struct{}{}
			}
			if !yield(rec) {
				return
			}
		}
	}
}

// IsCancelled reports whether err stems from context cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
