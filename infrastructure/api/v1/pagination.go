package v1

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/helixml/dagforge/application/service"
	"github.com/helixml/dagforge/domain/repository"
	"github.com/helixml/dagforge/infrastructure/api/jsonapi"
)

// Listing is the paging and sorting policy of one collection endpoint.
// Clients page with ?page= and ?page_size= and sort with ?sort=field or
// ?sort=-field for descending order. Ties always break on id in the same
// direction, so pages never overlap.
type Listing struct {
	defaultSize int
	maxSize     int
	defaultSort string
	columns     map[string]string
}

var (
	// Connections fill a single picker, so one page holds them all.
	connectionListing = Listing{
		defaultSize: 100,
		maxSize:     100,
		defaultSort: "name",
		columns: map[string]string{
			"name":       "name",
			"type":       "conn_type",
			"created_at": "created_at",
		},
	}

	// Mappings are bulk-selected for generation; pages are large.
	mappingListing = Listing{
		defaultSize: 50,
		maxSize:     500,
		defaultSort: "-created_at",
		columns: map[string]string{
			"created_at":   "created_at",
			"source_table": "source_table",
			"target_table": "target_table",
			"status":       "status",
		},
	}

	artifactListing = Listing{
		defaultSize: 50,
		maxSize:     500,
		defaultSort: "-created_at",
		columns: map[string]string{
			"created_at": "created_at",
			"filename":   "filename",
			"status":     "status",
		},
	}
)

// Page is one parsed page request against a Listing.
type Page struct {
	number    int
	size      int
	sort      string
	column    string
	ascending bool
}

// Parse reads page, page_size and sort from the request. Unusable page
// numbers and sizes fall back to the listing defaults and sizes are capped
// at the listing maximum. Sorting by an unlisted field is a validation error.
func (l Listing) Parse(r *http.Request) (Page, error) {
	q := r.URL.Query()
	p := Page{number: 1, size: l.defaultSize}

	if n, err := strconv.Atoi(q.Get("page")); err == nil && n >= 1 {
		p.number = n
	}
	if n, err := strconv.Atoi(q.Get("page_size")); err == nil && n >= 1 {
		p.size = min(n, l.maxSize)
	}

	sort := strings.TrimSpace(q.Get("sort"))
	if sort == "" {
		sort = l.defaultSort
	}
	field, descending := strings.CutPrefix(sort, "-")
	column, ok := l.columns[field]
	if !ok {
		return Page{}, fmt.Errorf("%w: cannot sort by %q", service.ErrValidation, field)
	}
	p.sort = sort
	p.column = column
	p.ascending = !descending
	return p, nil
}

// Number returns the page number (1-indexed).
func (p Page) Number() int { return p.number }

// Size returns the page size.
func (p Page) Size() int { return p.size }

// Sort returns the effective sort, e.g. "-created_at".
func (p Page) Sort() string { return p.sort }

// Options returns repository options for the page window and its ordering.
func (p Page) Options() []repository.Option {
	order := repository.WithOrderDesc
	if p.ascending {
		order = repository.WithOrderAsc
	}
	options := repository.WithPagination(p.size, (p.number-1)*p.size)
	return append(options, order(p.column), order("id"))
}

func (p Page) totalPages(total int64) int {
	return int((total + int64(p.size) - 1) / int64(p.size))
}

// Meta builds the JSON:API meta object for a page of total records.
func (p Page) Meta(total int64) *jsonapi.Meta {
	return &jsonapi.Meta{
		"page":        p.number,
		"page_size":   p.size,
		"sort":        p.sort,
		"total_count": total,
		"total_pages": p.totalPages(total),
	}
}

// Links builds JSON:API navigation links. Filters in the request query are
// carried into every link.
func (p Page) Links(r *http.Request, total int64) *jsonapi.Links {
	link := func(page int) string {
		q := r.URL.Query()
		q.Set("page", strconv.Itoa(page))
		q.Set("page_size", strconv.Itoa(p.size))
		q.Set("sort", p.sort)
		return r.URL.Path + "?" + q.Encode()
	}

	pages := p.totalPages(total)
	links := jsonapi.Links{Self: link(p.number), First: link(1)}
	if pages > 0 {
		links.Last = link(pages)
	}
	if p.number > 1 {
		links.Prev = link(p.number - 1)
	}
	if p.number < pages {
		links.Next = link(p.number + 1)
	}
	return &links
}
