package eloqua

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInstanceAPI struct {
	pages   [][]Instance
	total   int
	failAt  int
	calls   []int
	deleted []string
}

func (f *fakeInstanceAPI) ListInstances(_ context.Context, _ int, page, _ int) (InstancePage, error) {
	f.calls = append(f.calls, page)
	if page == f.failAt {
		return InstancePage{}, errors.New("503 service unavailable")
	}
	if page > len(f.pages) {
		return InstancePage{Page: page, Total: f.total}, nil
	}
	return InstancePage{Page: page, Total: f.total, Instances: f.pages[page-1]}, nil
}

func (f *fakeInstanceAPI) DeleteInstance(_ context.Context, _ int, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func TestAllInstances_PagesUntilTotal(t *testing.T) {
	api := &fakeInstanceAPI{
		pages: [][]Instance{{{ID: "1"}, {ID: "2"}}, {{ID: "3"}}},
		total: 3,
	}

	var ids []string
	for inst, err := range AllInstances(context.Background(), api, 13, 2) {
		require.NoError(t, err)
		ids = append(ids, inst.ID)
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids)
	assert.Equal(t, []int{1, 2}, api.calls)
}

func TestAllInstances_StopsOnEmptyPage(t *testing.T) {
	api := &fakeInstanceAPI{pages: [][]Instance{{{ID: "1"}}}, total: 5}

	n := 0
	for range AllInstances(context.Background(), api, 13, 1) {
		n++
	}
	assert.Equal(t, 1, n)
	assert.Equal(t, []int{1, 2}, api.calls)
}

func TestAllInstances_Error(t *testing.T) {
	api := &fakeInstanceAPI{pages: [][]Instance{{{ID: "1"}}, {{ID: "2"}}}, total: 2, failAt: 2}

	var errs int
	for _, err := range AllInstances(context.Background(), api, 13, 1) {
		if err != nil {
			errs++
		}
	}
	assert.Equal(t, 1, errs)
}

func TestClient_ListAndDeleteInstances(t *testing.T) {
	var deleted string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/REST/2.0/data/customObject/13/instances", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "500", r.URL.Query().Get("count"))
		_, _ = w.Write([]byte(`{"elements":[
			{"type":"CustomObjectData","id":"41","fieldValues":[{"type":"FieldValue","id":"190","value":"pk-1"},{"id":"191","value":"a@x.com"}]},
			{"type":"CustomObjectData","id":"42","fieldValues":[{"id":"190","value":"pk-2"}]}
		],"page":2,"pageSize":500,"total":502}`))
	})
	mux.HandleFunc("/api/REST/2.0/data/customObject/13/instance/41", func(w http.ResponseWriter, r *http.Request) {
		deleted = r.Method
		w.WriteHeader(http.StatusOK)
	})
	c := newTestClient(t, mux)

	page, err := c.ListInstances(context.Background(), 13, 2, 500)
	require.NoError(t, err)
	assert.Equal(t, 502, page.Total)
	require.Len(t, page.Instances, 2)
	assert.Equal(t, "41", page.Instances[0].ID)
	assert.Equal(t, "pk-1", page.Instances[0].Values["190"])
	assert.Equal(t, "pk-2", page.Instances[1].Values["190"])

	require.NoError(t, c.DeleteInstance(context.Background(), 13, "41"))
	assert.Equal(t, http.MethodDelete, deleted)
}
