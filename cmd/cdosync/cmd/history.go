package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/cdosync/internal/database"
	"github.com/dbsmedya/cdosync/internal/report"
)

var (
	historyIntegration string
	historyLimit       int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent attempts from the summary table",
	Long: `History reads the most recent attempt rows written to the MySQL
summary table. Requires database.enabled.

Example:
  cdosync history --config cdosync.yaml --integration membership --limit 10`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVarP(&historyIntegration, "integration", "i", "",
		"Only show this integration")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20,
		"Maximum rows to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Database.Enabled {
		return fmt.Errorf("summary database is not enabled in %s", GetConfigFile())
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db := database.NewManager(cfg.Database, log)
	if err := db.Connect(ctx); err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	store, err := report.NewSummaryStore(db.DB, cfg.Database.SummaryTable, cfg.Client, log)
	if err != nil {
		return err
	}
	rows, err := store.Recent(ctx, historyIntegration, historyLimit)
	if err != nil {
		return err
	}

	printHistory(cmd, rows)
	return nil
}

func printHistory(cmd *cobra.Command, rows []report.SummaryRow) {
	if len(rows) == 0 {
		cmd.Println("No attempts recorded")
		return
	}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		status := okText(r.Status)
		if r.Status != report.StatusSuccess {
			status = errorText(r.Status)
		}
		out = append(out, []string{
			r.RunAt.Format("2006-01-02 15:04:05"),
			r.Integration,
			fmt.Sprint(r.Attempt),
			fmt.Sprint(r.RecordsCreated),
			fmt.Sprint(r.RecordsUpdated),
			status,
			r.ErrorMessage,
		})
	}
	cmd.Print(table([]string{"RUN AT", "INTEGRATION", "ATTEMPT", "CREATED", "UPDATED", "STATUS", "ERROR"}, out))
}
