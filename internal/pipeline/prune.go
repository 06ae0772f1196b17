package pipeline

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dbsmedya/cdosync/internal/eloqua"
	"github.com/dbsmedya/cdosync/internal/logger"
	"github.com/dbsmedya/cdosync/internal/schema"
)

// InstancePruner deletes CDO instances whose identifier no longer appears in
// the source files.
type InstancePruner struct {
	api      eloqua.InstanceAPI
	def      *schema.Definition
	live     bool
	pageSize int
	logger   *logger.Logger
}

// NewInstancePruner creates a pruner. Outside live mode it only reports what
// it would delete.
func NewInstancePruner(api eloqua.InstanceAPI, def *schema.Definition, live bool, log *logger.Logger) *InstancePruner {
	if log == nil {
		log = logger.NewDefault()
	}
	return &InstancePruner{
		api:      api,
		def:      def,
		live:     live,
		pageSize: eloqua.DefaultInstancePageSize,
		logger:   log,
	}
}

// Stale lists the ids of instances whose identifier value is not in keep.
func (p *InstancePruner) Stale(ctx context.Context, keep map[string]struct{}) ([]string, error) {
	fieldID := strconv.Itoa(p.def.Identifier().FieldID)

	var stale []string
	for inst, err := range eloqua.AllInstances(ctx, p.api, p.def.CustomObjectID, p.pageSize) {
		if err != nil {
			return nil, err
		}
		if _, ok := keep[inst.Values[fieldID]]; !ok {
			stale = append(stale, inst.ID)
		}
	}
	return stale, nil
}

// Prune deletes stale instances and returns how many were removed.
func (p *InstancePruner) Prune(ctx context.Context, keep map[string]struct{}) (int, error) {
	stale, err := p.Stale(ctx, keep)
	if err != nil {
		return 0, fmt.Errorf("prune %s: %w", p.def.Name, err)
	}
	if len(stale) == 0 {
		p.logger.Info("No stale instances to prune")
		return 0, nil
	}
	if !p.live {
		p.logger.Infof("Dry run: would delete %d stale instances from CDO %d", len(stale), p.def.CustomObjectID)
		return 0, nil
	}

	for i, id := range stale {
		if err := p.api.DeleteInstance(ctx, p.def.CustomObjectID, id); err != nil {
			return i, fmt.Errorf("prune %s: %w", p.def.Name, err)
		}
	}
	p.logger.Infof("Deleted %d stale instances from CDO %d", len(stale), p.def.CustomObjectID)
	return len(stale), nil
}
