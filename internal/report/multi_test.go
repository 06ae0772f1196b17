package report

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dbsmedya/cdosync/internal/pipeline"
)

type countingReporter struct {
	attempts, runs int
	err            error
}

func (c *countingReporter) ReportAttempt(context.Context, pipeline.Attempt) error {
	c.attempts++
	return c.err
}

func (c *countingReporter) ReportRun(context.Context, *pipeline.RunResult) error {
	c.runs++
	return c.err
}

func TestMulti(t *testing.T) {
	failing := &countingReporter{err: errors.New("db down")}
	ok := &countingReporter{}
	m := Multi{failing, ok}

	err := m.ReportAttempt(context.Background(), pipeline.Attempt{})
	assert.ErrorContains(t, err, "db down")
	err = m.ReportRun(context.Background(), &pipeline.RunResult{})
	assert.ErrorContains(t, err, "db down")

	assert.Equal(t, 1, ok.attempts)
	assert.Equal(t, 1, ok.runs)
	assert.NoError(t, Multi{ok}.ReportRun(context.Background(), &pipeline.RunResult{}))
}
