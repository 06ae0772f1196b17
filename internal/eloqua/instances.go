package eloqua

import (
	"context"
	"fmt"
	"iter"
	"net/http"

	"github.com/tidwall/gjson"
)

// DefaultInstancePageSize is the REST page size used when listing instances.
const DefaultInstancePageSize = 1000

// Instance is one stored CDO record.
type Instance struct {
	ID     string
	Values map[string]string // field id -> value
}

// InstancePage is one page of a REST instance listing.
type InstancePage struct {
	Page      int
	Total     int
	Instances []Instance
}

// ListInstances fetches page (1-based) of CDO cdoID's instances.
func (c *Client) ListInstances(ctx context.Context, cdoID, page, count int) (InstancePage, error) {
	b, err := c.rest(ctx, fmt.Sprintf("/data/customObject/%d/instances", cdoID))
	if err != nil {
		return InstancePage{}, err
	}
	res, err := fetch(ctx,
		b.Param("page", fmt.Sprint(page)).Param("count", fmt.Sprint(count)).Param("depth", "complete"),
		fmt.Sprintf("list instances of custom object %d", cdoID))
	if err != nil {
		return InstancePage{}, err
	}

	out := InstancePage{Page: page, Total: int(res.Get("total").Int())}
	res.Get("elements").ForEach(func(_, el gjson.Result) bool {
		inst := Instance{ID: el.Get("id").String(), Values: map[string]string{}}
		el.Get("fieldValues").ForEach(func(_, fv gjson.Result) bool {
			inst.Values[fv.Get("id").String()] = fv.Get("value").String()
			return true
		})
		out.Instances = append(out.Instances, inst)
		return true
	})
	return out, nil
}

// DeleteInstance removes one CDO instance.
func (c *Client) DeleteInstance(ctx context.Context, cdoID int, id string) error {
	b, err := c.rest(ctx, fmt.Sprintf("/data/customObject/%d/instance/%s", cdoID, id))
	if err != nil {
		return err
	}
	_, err = fetch(ctx, b.Method(http.MethodDelete), fmt.Sprintf("delete instance %s of custom object %d", id, cdoID))
	return err
}

// InstanceAPI is the subset of Client used to enumerate and delete instances.
type InstanceAPI interface {
	ListInstances(ctx context.Context, cdoID, page, count int) (InstancePage, error)
	DeleteInstance(ctx context.Context, cdoID int, id string) error
}

// AllInstances pages through every instance of a CDO. A failed page request
// is yielded once and ends the sequence.
func AllInstances(ctx context.Context, api InstanceAPI, cdoID, pageSize int) iter.Seq2[Instance, error] {
	if pageSize <= 0 {
		pageSize = DefaultInstancePageSize
	}
	return func(yield func(Instance, error) bool) {
		seen := 0
		for page := 1; ; page++ {
			p, err := api.ListInstances(ctx, cdoID, page, pageSize)
			if err != nil {
				yield(Instance{}, err)
				return
			}
			for _, inst := range p.Instances {
				if !yield(inst, nil) {
					return
				}
			}
			seen += len(p.Instances)
			if len(p.Instances) == 0 || seen >= p.Total {
				return
			}
		}
	}
}
