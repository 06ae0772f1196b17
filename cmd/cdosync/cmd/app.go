package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/dbsmedya/cdosync/internal/config"
	"github.com/dbsmedya/cdosync/internal/database"
	"github.com/dbsmedya/cdosync/internal/eloqua"
	"github.com/dbsmedya/cdosync/internal/logger"
	"github.com/dbsmedya/cdosync/internal/pipeline"
	"github.com/dbsmedya/cdosync/internal/report"
	"github.com/dbsmedya/cdosync/internal/schema"
	"github.com/dbsmedya/cdosync/internal/storage"
)

// app holds the clients shared by every integration of one invocation.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	eloqua   *eloqua.Client
	store    *storage.S3Store
	db       *database.Manager
	summary  *report.SummaryStore
	notifier *report.Notifier
}

// newApp connects to Eloqua, S3, and (when enabled) the summary database.
func newApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	a.eloqua = eloqua.NewClient(cfg.Eloqua, log)
	if err := a.eloqua.Discover(ctx); err != nil {
		return nil, err
	}

	store, err := storage.NewS3Store(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	a.store = store

	loc, err := location(cfg.Processing.Timezone)
	if err != nil {
		return nil, err
	}

	if cfg.Database.Enabled {
		a.db = database.NewManager(cfg.Database, log)
		if err := a.db.Connect(ctx); err != nil {
			return nil, err
		}
		a.summary, err = report.NewSummaryStore(a.db.DB, cfg.Database.SummaryTable, cfg.Client, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		if err := a.summary.InitializeTable(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}

	if cfg.Notification.Enabled {
		a.notifier, err = report.NewNotifier(cfg.Notification, cfg.Client, loc, log)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	return a, nil
}

// Close releases the database connection.
func (a *app) Close() {
	if a.db == nil {
		return
	}
	if err := a.db.Close(); err != nil {
		a.log.Warnf("Failed to close database: %v", err)
	}
}

func (a *app) reporter() pipeline.Reporter {
	var m report.Multi
	if a.summary != nil {
		m = append(m, a.summary)
	}
	if a.notifier != nil {
		m = append(m, a.notifier)
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

// runner wires one integration's pipeline.
func (a *app) runner(name string, o CLIOverrides) (*pipeline.Runner, error) {
	ic, err := a.cfg.GetIntegration(name)
	if err != nil {
		return nil, err
	}
	def, err := schema.Resolve(name, *ic)
	if err != nil {
		return nil, err
	}
	proc := a.cfg.ApplyIntegrationOverrides(name, o.Mode, o.BatchSize, o.MaxAttempts)
	loc, err := location(proc.Timezone)
	if err != nil {
		return nil, err
	}

	log := a.log.WithIntegration(name)
	poller := eloqua.NewSyncPoller(a.eloqua, proc.PollInterval(), proc.MaxPolls, log)
	syncer := eloqua.NewSyncer(a.eloqua, poller, proc.ContinueOnSyncFailure, log)
	fetcher := eloqua.NewPageFetcher(a.eloqua, proc.PageSize)

	components := pipeline.Components{
		Keys:      pipeline.NewContactKeyProvider(a.eloqua, syncer, fetcher, log),
		Source:    a.store,
		Submitter: eloqua.NewImportSubmitter(a.eloqua, syncer, def, proc, log),
		Summary:   pipeline.NewSummaryCounter(a.eloqua, syncer, fetcher, def, loc, log),
		Syncs:     syncer,
		Reporter:  a.reporter(),
	}
	if def.Prune {
		components.Pruner = pipeline.NewInstancePruner(a.eloqua, def, proc.IsLive(), log)
	}

	return pipeline.NewRunner(pipeline.Integration{Definition: def, Processing: proc}, components, a.log)
}

// location resolves a configured timezone name; empty means UTC.
func location(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}
