package report

import (
	"context"
	"errors"

	"github.com/dbsmedya/cdosync/internal/pipeline"
)

// Multi fans outcomes out to several reporters. Every reporter is called
// even when an earlier one fails.
type Multi []pipeline.Reporter

// ReportAttempt forwards a to every reporter.
func (m Multi) ReportAttempt(ctx context.Context, a pipeline.Attempt) error {
	var errs []error
	for _, r := range m {
		if err := r.ReportAttempt(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ReportRun forwards res to every reporter.
func (m Multi) ReportRun(ctx context.Context, res *pipeline.RunResult) error {
	var errs []error
	for _, r := range m {
		if err := r.ReportRun(ctx, res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
