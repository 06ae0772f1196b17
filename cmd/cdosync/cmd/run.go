package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/cdosync/internal/lock"
	"github.com/dbsmedya/cdosync/internal/pipeline"
)

var (
	runIntegration string
	runAll         bool
	runForce       bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one or all integrations",
	Long: `Run executes the full pipeline for an integration:
  1. Export every contact email address from Eloqua
  2. Read the integration's files from S3 and keep rows of known contacts
  3. Import the rows into the custom data object in batches
  4. Optionally delete custom object records missing from the files
  5. Count today's created and updated records and report them

A failed pass is retried from the top after retry_delay_seconds, up to
max_attempts times. The command exits non-zero if any integration fails.

Example:
  cdosync run --config cdosync.yaml --integration membership
  cdosync run --config cdosync.yaml --all --mode live`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runIntegration, "integration", "i", "",
		"Integration name from configuration file")
	runCmd.Flags().BoolVar(&runAll, "all", false,
		"Run every configured integration in name order")
	runCmd.Flags().BoolVar(&runForce, "force", false,
		"Run without taking the integration lock (use with caution)")
	runCmd.MarkFlagsMutuallyExclusive("integration", "all")
	runCmd.MarkFlagsOneRequired("integration", "all")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadValidConfig()
	if err != nil {
		return err
	}

	names := []string{runIntegration}
	if runAll {
		names = cfg.ListIntegrations()
	} else if _, err := cfg.GetIntegration(runIntegration); err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signalContext(log)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	overrides := GetCLIOverrides()
	var results []*pipeline.RunResult
	var failed []string
	for _, name := range names {
		if ctx.Err() != nil {
			break
		}
		res, err := runOne(ctx, a, name, overrides)
		if err != nil {
			log.WithIntegration(name).Errorw("Integration did not run", "error", err)
			failed = append(failed, name)
			continue
		}
		results = append(results, res)
		if !res.Success {
			failed = append(failed, name)
		}
		if pipeline.IsCancelled(res.LastError()) {
			log.Warn("Run cancelled by user")
		}
	}

	printResults(cmd, results)

	if len(failed) > 0 {
		return fmt.Errorf("%d integration(s) failed: %v", len(failed), failed)
	}
	return nil
}

// runOne runs one integration, holding its lock when a database is
// configured.
func runOne(ctx context.Context, a *app, name string, o CLIOverrides) (*pipeline.RunResult, error) {
	r, err := a.runner(name, o)
	if err != nil {
		return nil, err
	}

	if a.db == nil || runForce {
		if runForce {
			a.log.WithIntegration(name).Warn("Skipping integration lock (--force flag used)")
		}
		return r.Run(ctx), nil
	}

	var res *pipeline.RunResult
	err = lock.WithLock(ctx, a.db.DB, name, lock.TimeoutShort, func(ctx context.Context) error {
		res = r.Run(ctx)
		return nil
	})
	if errors.Is(err, lock.ErrLockHeld) {
		return nil, fmt.Errorf("integration %q is already running on another instance (use --force to override)", name)
	}
	if err != nil && res == nil {
		return nil, err
	}
	if err != nil {
		a.log.WithIntegration(name).Warnf("Failed to release integration lock: %v", err)
	}
	return res, nil
}

func printResults(cmd *cobra.Command, results []*pipeline.RunResult) {
	if len(results) == 0 {
		return
	}
	cmd.Printf("\n%s\n", headingText("=== Run Complete ==="))
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		rows = append(rows, []string{
			res.Integration,
			res.Mode,
			fmt.Sprint(len(res.Attempts)),
			fmt.Sprint(res.Created),
			fmt.Sprint(res.Updated),
			res.CompletedAt.Sub(res.StartedAt).Round(time.Second).String(),
			statusText(res.Success),
		})
	}
	cmd.Print(table([]string{"INTEGRATION", "MODE", "ATTEMPTS", "CREATED", "UPDATED", "DURATION", "STATUS"}, rows))

	for _, res := range results {
		if !res.Success && res.LastError() != nil {
			cmd.Printf("%s %s: %v\n", errorText("x"), res.Integration, res.LastError())
		}
	}
}
