package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/cdosync/internal/eloqua"
	"github.com/dbsmedya/cdosync/internal/logger"
)

type fakeInstances struct {
	pages     [][]eloqua.Instance
	deleted   []string
	deleteErr error
}

func (f *fakeInstances) ListInstances(_ context.Context, _, page, _ int) (eloqua.InstancePage, error) {
	total := 0
	for _, p := range f.pages {
		total += len(p)
	}
	if page > len(f.pages) {
		return eloqua.InstancePage{Page: page, Total: total}, nil
	}
	return eloqua.InstancePage{Page: page, Total: total, Instances: f.pages[page-1]}, nil
}

func (f *fakeInstances) DeleteInstance(_ context.Context, _ int, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func instance(id, pk string) eloqua.Instance {
	return eloqua.Instance{ID: id, Values: map[string]string{"190": pk, "191": pk + "@x.com"}}
}

func instancePages() [][]eloqua.Instance {
	return [][]eloqua.Instance{
		{instance("100", "1"), instance("101", "2")},
		{instance("102", "3")},
	}
}

func TestInstancePruner_Live(t *testing.T) {
	api := &fakeInstances{pages: instancePages()}
	p := NewInstancePruner(api, membershipDefinition(t, true), true, logger.NewNop())

	n, err := p.Prune(context.Background(), map[string]struct{}{"1": {}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"101", "102"}, api.deleted)
}

func TestInstancePruner_DryRun(t *testing.T) {
	api := &fakeInstances{pages: instancePages()}
	p := NewInstancePruner(api, membershipDefinition(t, true), false, logger.NewNop())

	stale, err := p.Stale(context.Background(), map[string]struct{}{"3": {}})
	require.NoError(t, err)
	assert.Equal(t, []string{"100", "101"}, stale)

	n, err := p.Prune(context.Background(), map[string]struct{}{"3": {}})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, api.deleted)
}

func TestInstancePruner_NothingStale(t *testing.T) {
	api := &fakeInstances{pages: instancePages()}
	p := NewInstancePruner(api, membershipDefinition(t, true), true, nil)

	n, err := p.Prune(context.Background(), map[string]struct{}{"1": {}, "2": {}, "3": {}})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, api.deleted)
}

func TestInstancePruner_DeleteError(t *testing.T) {
	api := &fakeInstances{pages: instancePages(), deleteErr: errBoom}
	p := NewInstancePruner(api, membershipDefinition(t, true), true, logger.NewNop())

	n, err := p.Prune(context.Background(), map[string]struct{}{})
	assert.ErrorIs(t, err, errBoom)
	assert.Zero(t, n)
}
