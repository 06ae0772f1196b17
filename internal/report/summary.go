// Package report records integration outcomes: a MySQL summary table of
// every attempt and an email once a run finishes.
package report

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dbsmedya/cdosync/internal/logger"
	"github.com/dbsmedya/cdosync/internal/pipeline"
	"github.com/dbsmedya/cdosync/internal/sqlutil"
)

// Summary row statuses.
const (
	StatusSuccess = "Success"
	StatusFailed  = "Failed"
)

const createSummaryTableSQL = `
CREATE TABLE IF NOT EXISTS %s (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	run_at DATETIME NOT NULL,
	client VARCHAR(255) NOT NULL,
	integration VARCHAR(255) NOT NULL,
	status VARCHAR(20) NOT NULL,
	attempt INT NOT NULL,
	records_created INT NOT NULL DEFAULT 0,
	records_updated INT NOT NULL DEFAULT 0,
	error_message TEXT,
	INDEX idx_integration_run (client, integration, run_at)
) ENGINE=InnoDB;
`

// SummaryRow is one stored attempt.
type SummaryRow struct {
	RunAt          time.Time
	Client         string
	Integration    string
	Status         string
	Attempt        int
	RecordsCreated int
	RecordsUpdated int
	ErrorMessage   string
}

// SummaryStore writes one row per attempt into the configured summary table.
type SummaryStore struct {
	db     *sql.DB
	table  string
	client string
	logger *logger.Logger
}

// NewSummaryStore creates a store writing to table on behalf of client.
func NewSummaryStore(db *sql.DB, table, client string, log *logger.Logger) (*SummaryStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	quoted, err := sqlutil.QuoteIdentifierSafe(table)
	if err != nil {
		return nil, fmt.Errorf("summary table: %w", err)
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &SummaryStore{db: db, table: quoted, client: client, logger: log}, nil
}

// InitializeTable creates the summary table if it does not exist.
func (s *SummaryStore) InitializeTable(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(createSummaryTableSQL, s.table)); err != nil {
		return fmt.Errorf("failed to create summary table: %w", err)
	}
	s.logger.Debugf("Summary table %s ready", s.table)
	return nil
}

// Insert stores row.
func (s *SummaryStore) Insert(ctx context.Context, row SummaryRow) error {
	query := fmt.Sprintf(`INSERT INTO %s
		(run_at, client, integration, status, attempt, records_created, records_updated, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, s.table)

	var errMsg sql.NullString
	if row.ErrorMessage != "" {
		errMsg = sql.NullString{String: row.ErrorMessage, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		row.RunAt, row.Client, row.Integration, row.Status, row.Attempt,
		row.RecordsCreated, row.RecordsUpdated, errMsg)
	if err != nil {
		return fmt.Errorf("failed to insert summary for %s: %w", row.Integration, err)
	}
	return nil
}

// ReportAttempt stores a, with zero counts for a failed attempt.
func (s *SummaryStore) ReportAttempt(ctx context.Context, a pipeline.Attempt) error {
	row := SummaryRow{
		RunAt:       a.StartedAt,
		Client:      s.client,
		Integration: a.Integration,
		Status:      StatusSuccess,
		Attempt:     a.Number,
	}
	if a.Success {
		row.RecordsCreated = a.Created
		row.RecordsUpdated = a.Updated
	} else {
		row.Status = StatusFailed
		if a.Err != nil {
			row.ErrorMessage = a.Err.Error()
		}
	}
	return s.Insert(ctx, row)
}

// ReportRun is a no-op; attempts are already stored.
func (s *SummaryStore) ReportRun(context.Context, *pipeline.RunResult) error {
	return nil
}

// Recent returns up to limit rows for integration, newest first. An empty
// integration returns rows for every integration of the client.
func (s *SummaryStore) Recent(ctx context.Context, integration string, limit int) ([]SummaryRow, error) {
	query := fmt.Sprintf(`SELECT run_at, client, integration, status, attempt,
		records_created, records_updated, COALESCE(error_message, '')
		FROM %s WHERE client = ?`, s.table)
	args := []interface{}{s.client}
	if integration != "" {
		query += " AND integration = ?"
		args = append(args, integration)
	}
	query += " ORDER BY run_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Warnf("Failed to close summary rows: %v", err)
		}
	}()

	var out []SummaryRow
	for rows.Next() {
		var r SummaryRow
		if err := rows.Scan(&r.RunAt, &r.Client, &r.Integration, &r.Status, &r.Attempt,
			&r.RecordsCreated, &r.RecordsUpdated, &r.ErrorMessage); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
