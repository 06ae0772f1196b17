package pipeline

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/cdosync/internal/config"
	"github.com/dbsmedya/cdosync/internal/eloqua"
	"github.com/dbsmedya/cdosync/internal/logger"
	"github.com/dbsmedya/cdosync/internal/records"
	"github.com/dbsmedya/cdosync/internal/schema"
)

var errBoom = errors.New("boom")

type fakeSyncAPI struct {
	status  string
	created []string
}

func (f *fakeSyncAPI) CreateSync(_ context.Context, instanceURI string) (eloqua.SyncJob, error) {
	f.created = append(f.created, instanceURI)
	return eloqua.SyncJob{URI: "/syncs/" + instanceURI, SyncedInstanceURI: instanceURI, Status: eloqua.StatusPending}, nil
}

func (f *fakeSyncAPI) GetSync(_ context.Context, syncURI string) (eloqua.SyncJob, string, error) {
	status := f.status
	if status == "" {
		status = "success"
	}
	return eloqua.SyncJob{URI: syncURI, Status: eloqua.ParseSyncStatus(status)}, status, nil
}

func (f *fakeSyncAPI) SyncLogs(context.Context, string) ([]string, error) {
	return nil, nil
}

func newSyncer(api eloqua.SyncAPI) *eloqua.Syncer {
	return eloqua.NewSyncer(api, eloqua.NewSyncPoller(api, time.Millisecond, 3, logger.NewNop()), false, logger.NewNop())
}

// fakePages serves one single-page export per instance URI.
type fakePages struct {
	data map[string][]records.RawRecord
	err  error
}

func (f *fakePages) Page(_ context.Context, uri string, offset, _ int) (eloqua.Page, error) {
	if f.err != nil {
		return eloqua.Page{}, f.err
	}
	if offset > 0 {
		return eloqua.Page{}, nil
	}
	items := f.data[uri]
	return eloqua.Page{Items: items, Count: len(items)}, nil
}

type fakeExports struct {
	contacts []eloqua.ExportDefinition
	cdo      []eloqua.ExportDefinition
	err      error
}

func (f *fakeExports) CreateContactExport(_ context.Context, def eloqua.ExportDefinition) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.contacts = append(f.contacts, def)
	return "/contacts/exports/1", nil
}

func (f *fakeExports) CreateCustomObjectExport(_ context.Context, _ int, def eloqua.ExportDefinition) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.cdo = append(f.cdo, def)
	if strings.Contains(def.Name, "Created") {
		return "/customObjects/13/exports/created", nil
	}
	return "/customObjects/13/exports/updated", nil
}

type fakeKeys struct {
	keys  records.KeySet
	fails int
	calls int
}

func (f *fakeKeys) Keys(context.Context) (records.KeySet, error) {
	f.calls++
	if f.calls <= f.fails {
		return nil, errBoom
	}
	return f.keys, nil
}

type fakeSource struct {
	files   map[string]string
	listErr error
	opened  []string
}

func (f *fakeSource) List(_ context.Context, marker string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var keys []string
	for k := range f.files {
		if strings.Contains(k, marker) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *fakeSource) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f.opened = append(f.opened, key)
	return io.NopCloser(strings.NewReader(f.files[key])), nil
}

type fakeSubmitter struct {
	batches [][]records.RawRecord
	numbers []int
	err     error
}

func (f *fakeSubmitter) Submit(_ context.Context, n int, batch []records.RawRecord) (eloqua.ImportOutcome, error) {
	f.numbers = append(f.numbers, n)
	if f.err != nil {
		return eloqua.ImportOutcome{}, f.err
	}
	f.batches = append(f.batches, batch)
	return eloqua.ImportOutcome{Batch: n, Rows: len(batch), Submitted: true}, nil
}

type fakeSummary struct {
	summary Summary
	err     error
	calls   int
}

func (f *fakeSummary) Count(context.Context) (Summary, error) {
	f.calls++
	return f.summary, f.err
}

type fakePruner struct {
	keep  map[string]struct{}
	calls int
}

func (f *fakePruner) Prune(_ context.Context, keep map[string]struct{}) (int, error) {
	f.calls++
	f.keep = keep
	return 1, nil
}

// recordingReporter keeps every report and the state of the context it was
// given.
type recordingReporter struct {
	attempts []Attempt
	runs     []*RunResult
	ctxErrs  []error
}

func (r *recordingReporter) ReportAttempt(ctx context.Context, a Attempt) error {
	r.attempts = append(r.attempts, a)
	r.ctxErrs = append(r.ctxErrs, ctx.Err())
	return nil
}

func (r *recordingReporter) ReportRun(ctx context.Context, res *RunResult) error {
	r.runs = append(r.runs, res)
	r.ctxErrs = append(r.ctxErrs, ctx.Err())
	return nil
}

func membershipDefinition(t *testing.T, prune bool) *schema.Definition {
	t.Helper()
	def, err := schema.Resolve("membership", config.IntegrationConfig{
		Entity: config.EntityMembership,
		Prune:  config.PruneConfig{Enabled: prune},
	})
	require.NoError(t, err)
	return def
}

const membershipFile = "pk|email|ticketGroupCategory|ticketGroupName|ticketGroupDisplayName|season|ticketingSystem\n" +
	"1|A@x.com|Full|FS|Full Season|2024|TM\n" +
	"2|b@x.com|Half|HS|Half Season|2024|TM\n" +
	"3|c@x.com|Half|HS|Half Season|2024|TM\n" +
	"4|short\n"
