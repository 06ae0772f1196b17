package eloqua

import (
	"context"
	"fmt"
	"iter"

	"github.com/tidwall/gjson"

	"github.com/dbsmedya/cdosync/internal/records"
)

// DefaultPageSize is the largest page the bulk API serves.
const DefaultPageSize = 50000

// Page is one slice of a synced export.
type Page struct {
	Items   []records.RawRecord
	Count   int
	HasMore bool
}

// PageCursor tracks progress through a paginated export.
type PageCursor struct {
	Offset   int
	PageSize int
	HasMore  bool
}

// Advance moves past a page.
func (c *PageCursor) Advance(hasMore bool) {
	c.Offset += c.PageSize
	c.HasMore = hasMore
}

// PageAPI retrieves a single page of synced data.
type PageAPI interface {
	Page(ctx context.Context, instanceURI string, offset, limit int) (Page, error)
}

// Page fetches offset..offset+limit of a synced export or import.
func (c *Client) Page(ctx context.Context, instanceURI string, offset, limit int) (Page, error) {
	b, err := c.bulk(ctx, instanceURI+"/data")
	if err != nil {
		return Page{}, err
	}
	res, err := fetch(ctx,
		b.Param("offset", fmt.Sprint(offset)).Param("limit", fmt.Sprint(limit)),
		fmt.Sprintf("fetch %s at offset %d", instanceURI, offset))
	if err != nil {
		return Page{}, err
	}

	page := Page{
		Count:   int(res.Get("count").Int()),
		HasMore: res.Get("hasMore").Bool(),
	}
	if page.Count > 0 {
		res.Get("items").ForEach(func(_, item gjson.Result) bool {
			record := make(records.RawRecord)
			item.ForEach(func(k, v gjson.Result) bool {
				record[k.String()] = v.String()
				return true
			})
			page.Items = append(page.Items, record)
			return true
		})
	}
	return page, nil
}

// PageFetcher streams every record of a synced export.
type PageFetcher struct {
	api      PageAPI
	pageSize int
}

// NewPageFetcher creates a fetcher requesting pageSize records per page.
func NewPageFetcher(api PageAPI, pageSize int) *PageFetcher {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &PageFetcher{api: api, pageSize: pageSize}
}

// Fetch yields records page by page. The next page is requested only after
// the current one has been consumed. A request failure is yielded once as
// the error and ends the sequence.
func (f *PageFetcher) Fetch(ctx context.Context, instanceURI string) iter.Seq2[records.RawRecord, error] {
	return func(yield func(records.RawRecord, error) bool) {
		cursor := PageCursor{PageSize: f.pageSize, HasMore: true}
		for cursor.HasMore {
			page, err := f.api.Page(ctx, instanceURI, cursor.Offset, cursor.PageSize)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, item := range page.Items {
				if !yield(item, nil) {
					return
				}
			}
			cursor.Advance(page.HasMore)
		}
	}
}

// Records adapts a fetch sequence for record-only consumers. The first error
// stops iteration and is stored in errp.
func Records(seq iter.Seq2[records.RawRecord, error], errp *error) iter.Seq[records.RawRecord] {
	return func(yield func(records.RawRecord) bool) {
		for r, err := range seq {
			if err != nil {
				*errp = err
				return
			}
			if !yield(r) {
				return
			}
		}
	}
}
