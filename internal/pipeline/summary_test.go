package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/cdosync/internal/eloqua"
	"github.com/dbsmedya/cdosync/internal/logger"
	"github.com/dbsmedya/cdosync/internal/records"
)

func newCounter(t *testing.T, exports *fakeExports, pages *fakePages, loc *time.Location) *SummaryCounter {
	t.Helper()
	c := NewSummaryCounter(exports, newSyncer(&fakeSyncAPI{}), eloqua.NewPageFetcher(pages, 10),
		membershipDefinition(t, false), loc, logger.NewNop())
	c.now = func() time.Time { return time.Date(2024, 3, 10, 2, 30, 0, 0, time.UTC) }
	return c
}

func TestSummaryCounter_Definitions(t *testing.T) {
	c := newCounter(t, &fakeExports{}, &fakePages{}, nil)
	created, updated := c.Definitions()

	assert.Equal(t, "Membership Created Today", created.Name)
	assert.Equal(t, "'{{CustomObject[13].CreatedAt}}' >= '2024-03-10'", created.Filter)
	assert.Equal(t,
		"'{{CustomObject[13].UpdatedAt}}' >= '2024-03-10' AND '{{CustomObject[13].CreatedAt}}' < '2024-03-10'",
		updated.Filter)

	require.Len(t, created.Fields, 4)
	assert.Equal(t, eloqua.ExportField{Name: "pk", Statement: "{{CustomObject[13].Field[190]}}"}, created.Fields[0])
	assert.Equal(t, eloqua.ExportField{Name: "emailAddress", Statement: "{{CustomObject[13].Field[191]}}"}, created.Fields[1])
	assert.Equal(t, "createDate", created.Fields[2].Name)
	assert.Equal(t, "updateDate", created.Fields[3].Name)
}

func TestSummaryCounter_TodayUsesLocation(t *testing.T) {
	loc := time.FixedZone("EST", -5*60*60)
	c := newCounter(t, &fakeExports{}, &fakePages{}, loc)
	assert.Equal(t, "2024-03-09", c.Today())
}

func TestSummaryCounter_Count(t *testing.T) {
	exports := &fakeExports{}
	pages := &fakePages{data: map[string][]records.RawRecord{
		"/customObjects/13/exports/created": {{"pk": "1"}, {"pk": "2"}, {"pk": "3"}},
		"/customObjects/13/exports/updated": {{"pk": "9"}},
	}}
	c := newCounter(t, exports, pages, nil)

	s, err := c.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Created: 3, Updated: 1}, s)
	assert.Len(t, exports.cdo, 2)
}

func TestSummaryCounter_CountErrors(t *testing.T) {
	c := newCounter(t, &fakeExports{err: errBoom}, &fakePages{}, nil)
	_, err := c.Count(context.Background())
	assert.ErrorIs(t, err, errBoom)

	c = newCounter(t, &fakeExports{}, &fakePages{err: errBoom}, nil)
	_, err = c.Count(context.Background())
	assert.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "Created Today data")
}
