package pipeline

import (
	"context"
	"fmt"

	"github.com/dbsmedya/cdosync/internal/eloqua"
	"github.com/dbsmedya/cdosync/internal/logger"
	"github.com/dbsmedya/cdosync/internal/records"
)

// ContactExporter is the subset of eloqua.Client used to export contacts.
type ContactExporter interface {
	CreateContactExport(ctx context.Context, def eloqua.ExportDefinition) (string, error)
}

// ContactKeyProvider builds the reference key set from every contact email
// address in the Eloqua instance.
type ContactKeyProvider struct {
	exports ContactExporter
	syncer  *eloqua.Syncer
	fetcher *eloqua.PageFetcher
	logger  *logger.Logger
}

// NewContactKeyProvider creates a provider backed by a contact export.
func NewContactKeyProvider(exports ContactExporter, syncer *eloqua.Syncer, fetcher *eloqua.PageFetcher, log *logger.Logger) *ContactKeyProvider {
	if log == nil {
		log = logger.NewDefault()
	}
	return &ContactKeyProvider{exports: exports, syncer: syncer, fetcher: fetcher, logger: log}
}

// Keys exports, syncs, and reads all contact email addresses.
func (p *ContactKeyProvider) Keys(ctx context.Context) (records.KeySet, error) {
	def := eloqua.ContactEmailExport()
	uri, err := p.exports.CreateContactExport(ctx, def)
	if err != nil {
		return nil, fmt.Errorf("contact export: %w", err)
	}
	if _, err := p.syncer.Sync(ctx, uri); err != nil {
		return nil, fmt.Errorf("contact export: %w", err)
	}

	var fetchErr error
	keys := records.BuildKeySet(eloqua.Records(p.fetcher.Fetch(ctx, uri), &fetchErr), def.Fields[0].Name)
	if fetchErr != nil {
		return nil, fmt.Errorf("contact export data: %w", fetchErr)
	}

	p.logger.Infof("Loaded %d contact email addresses", keys.Len())
	return keys, nil
}
