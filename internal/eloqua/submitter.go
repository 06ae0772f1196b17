package eloqua

import (
	"context"
	"fmt"
	"time"

	"github.com/dbsmedya/cdosync/internal/config"
	"github.com/dbsmedya/cdosync/internal/logger"
	"github.com/dbsmedya/cdosync/internal/records"
	"github.com/dbsmedya/cdosync/internal/schema"
)

// ImportAPI is the subset of Client used to stage imports.
type ImportAPI interface {
	CreateCustomObjectImport(ctx context.Context, cdoID int, def ImportDefinition) (string, error)
	PushImportData(ctx context.Context, importURI string, rows []map[string]string) error
}

// ImportOutcome describes one submitted (or dry-run) batch.
type ImportOutcome struct {
	Batch     int
	Rows      int
	Tries     int
	ImportURI string
	Sync      SyncJob
	Submitted bool
}

// ImportSubmitter upserts batches of records into an entity's CDO.
type ImportSubmitter struct {
	api        ImportAPI
	syncer     *Syncer
	def        *schema.Definition
	live       bool
	tries      int
	retryDelay time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
	logger     *logger.Logger
}

// NewImportSubmitter creates a submitter. Only mode live reaches the API;
// each batch is tried up to import_attempts times.
func NewImportSubmitter(api ImportAPI, syncer *Syncer, def *schema.Definition, proc config.ProcessingConfig, log *logger.Logger) *ImportSubmitter {
	if log == nil {
		log = logger.NewDefault()
	}
	return &ImportSubmitter{
		api:        api,
		syncer:     syncer,
		def:        def,
		live:       proc.IsLive(),
		tries:      max(proc.ImportAttempts, 1),
		retryDelay: proc.ImportRetryDelay(),
		sleep:      sleepContext,
		logger:     log,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Definition returns the import definition sent for every batch.
func (s *ImportSubmitter) Definition() ImportDefinition {
	def := ImportDefinition{
		Name:            fmt.Sprintf("SYSTEM - KORE %s CDO Import", s.def.Label),
		IdentifierField: s.def.IdentifierField,
	}
	for el := s.def.Columns.Front(); el != nil; el = el.Next() {
		def.Fields = append(def.Fields, ExportField{
			Name:      el.Key,
			Statement: CustomObjectField(s.def.CustomObjectID, el.Value.FieldID),
		})
	}
	if s.def.LinkContacts {
		def.LinkSourceField = s.def.LinkColumn
	}
	return def
}

// Submit imports batch number n of the current attempt: define the import,
// stage the rows, then sync and wait for the sync. A failed try starts over
// with a new import after import_retry_delay_seconds.
func (s *ImportSubmitter) Submit(ctx context.Context, n int, batch []records.RawRecord) (ImportOutcome, error) {
	outcome := ImportOutcome{Batch: n, Rows: len(batch)}
	log := s.logger.WithBatch(n)

	rows := make([]map[string]string, 0, len(batch))
	for _, r := range batch {
		rows = append(rows, s.def.Row(r))
	}

	if !s.live {
		log.Infof("Dry run: would import %d rows into CDO %d", len(rows), s.def.CustomObjectID)
		return outcome, nil
	}

	var err error
	for try := 1; try <= s.tries; try++ {
		outcome.Tries = try
		err = s.submitOnce(ctx, rows, &outcome)
		if err == nil {
			outcome.Submitted = true
			log.Infof("Imported %d rows into CDO %d (sync %s)", len(rows), s.def.CustomObjectID, outcome.Sync.URI)
			return outcome, nil
		}
		if ctx.Err() != nil || try == s.tries {
			break
		}
		log.Warnw("Import try failed, retrying",
			"try", try,
			"of", s.tries,
			"delay", s.retryDelay,
			"error", err)
		if serr := s.sleep(ctx, s.retryDelay); serr != nil {
			break
		}
	}
	return outcome, fmt.Errorf("batch %d: %w", n, err)
}

func (s *ImportSubmitter) submitOnce(ctx context.Context, rows []map[string]string, outcome *ImportOutcome) error {
	uri, err := s.api.CreateCustomObjectImport(ctx, s.def.CustomObjectID, s.Definition())
	if err != nil {
		return err
	}
	outcome.ImportURI = uri

	if err := s.api.PushImportData(ctx, uri, rows); err != nil {
		return err
	}

	job, err := s.syncer.Sync(ctx, uri)
	outcome.Sync = job
	return err
}
