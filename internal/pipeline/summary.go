package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/dbsmedya/cdosync/internal/eloqua"
	"github.com/dbsmedya/cdosync/internal/logger"
	"github.com/dbsmedya/cdosync/internal/schema"
)

// CustomObjectExporter is the subset of eloqua.Client used to export CDO data.
type CustomObjectExporter interface {
	CreateCustomObjectExport(ctx context.Context, cdoID int, def eloqua.ExportDefinition) (string, error)
}

// SummaryCounter counts today's created and updated CDO records through two
// filtered exports.
type SummaryCounter struct {
	exports CustomObjectExporter
	syncer  *eloqua.Syncer
	fetcher *eloqua.PageFetcher
	def     *schema.Definition
	loc     *time.Location
	now     func() time.Time
	logger  *logger.Logger
}

// NewSummaryCounter creates a counter. "Today" is evaluated in loc; nil means
// UTC.
func NewSummaryCounter(exports CustomObjectExporter, syncer *eloqua.Syncer, fetcher *eloqua.PageFetcher, def *schema.Definition, loc *time.Location, log *logger.Logger) *SummaryCounter {
	if log == nil {
		log = logger.NewDefault()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &SummaryCounter{
		exports: exports,
		syncer:  syncer,
		fetcher: fetcher,
		def:     def,
		loc:     loc,
		now:     time.Now,
		logger:  log,
	}
}

// Today returns the current date as used in export filters.
func (c *SummaryCounter) Today() string {
	return c.now().In(c.loc).Format("2006-01-02")
}

// Definitions returns the created and updated export definitions for today.
func (c *SummaryCounter) Definitions() (created, updated eloqua.ExportDefinition) {
	cdo := c.def.CustomObjectID
	today := c.Today()

	fields := []eloqua.ExportField{
		{Name: "pk", Statement: eloqua.CustomObjectField(cdo, c.def.Identifier().FieldID)},
	}
	if key, ok := c.def.ColumnFor(c.def.KeyField); ok {
		fields = append(fields, eloqua.ExportField{Name: "emailAddress", Statement: eloqua.CustomObjectField(cdo, key.FieldID)})
	}
	fields = append(fields,
		eloqua.ExportField{Name: "createDate", Statement: eloqua.CustomObjectCreatedAt(cdo)},
		eloqua.ExportField{Name: "updateDate", Statement: eloqua.CustomObjectUpdatedAt(cdo)},
	)

	created = eloqua.ExportDefinition{
		Name:   fmt.Sprintf("%s Created Today", c.def.Label),
		Fields: fields,
		Filter: fmt.Sprintf("'%s' >= '%s'", eloqua.CustomObjectCreatedAt(cdo), today),
	}
	updated = eloqua.ExportDefinition{
		Name:   fmt.Sprintf("%s Updated Today", c.def.Label),
		Fields: fields,
		Filter: fmt.Sprintf("'%s' >= '%s' AND '%s' < '%s'",
			eloqua.CustomObjectUpdatedAt(cdo), today, eloqua.CustomObjectCreatedAt(cdo), today),
	}
	return created, updated
}

// Count runs both exports and counts their records.
func (c *SummaryCounter) Count(ctx context.Context) (Summary, error) {
	createdDef, updatedDef := c.Definitions()

	created, err := c.count(ctx, createdDef)
	if err != nil {
		return Summary{}, err
	}
	updated, err := c.count(ctx, updatedDef)
	if err != nil {
		return Summary{}, err
	}

	c.logger.Infof("%s summary for %s: %d created, %d updated", c.def.Label, c.Today(), created, updated)
	return Summary{Created: created, Updated: updated}, nil
}

func (c *SummaryCounter) count(ctx context.Context, def eloqua.ExportDefinition) (int, error) {
	uri, err := c.exports.CreateCustomObjectExport(ctx, c.def.CustomObjectID, def)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", def.Name, err)
	}
	if _, err := c.syncer.Sync(ctx, uri); err != nil {
		return 0, fmt.Errorf("%s: %w", def.Name, err)
	}

	n := 0
	for _, err := range c.fetcher.Fetch(ctx, uri) {
		if err != nil {
			return 0, fmt.Errorf("%s data: %w", def.Name, err)
		}
		n++
	}
	return n, nil
}
