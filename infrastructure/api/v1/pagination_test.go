package v1

import (
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/helixml/dagforge/application/service"
	"github.com/helixml/dagforge/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListing_Parse(t *testing.T) {
	tests := []struct {
		name      string
		listing   Listing
		query     string
		wantPage  int
		wantSize  int
		wantSort  string
		wantOrder string
		wantAsc   bool
	}{
		{"mapping defaults", mappingListing, "", 1, 50, "-created_at", "created_at", false},
		{"connection defaults", connectionListing, "", 1, 100, "name", "name", true},
		{"artifact defaults", artifactListing, "", 1, 50, "-created_at", "created_at", false},
		{"explicit page", mappingListing, "page=3&page_size=25", 3, 25, "-created_at", "created_at", false},
		{"size capped", mappingListing, "page_size=10000", 1, 500, "-created_at", "created_at", false},
		{"connection size capped", connectionListing, "page_size=500", 1, 100, "name", "name", true},
		{"garbage falls back", artifactListing, "page=0&page_size=abc", 1, 50, "-created_at", "created_at", false},
		{"ascending sort", mappingListing, "sort=source_table", 1, 50, "source_table", "source_table", true},
		{"descending sort", artifactListing, "sort=-filename", 1, 50, "-filename", "filename", false},
		{"sort maps to column", connectionListing, "sort=type", 1, 100, "type", "conn_type", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := tt.listing.Parse(httptest.NewRequest("GET", "/x?"+tt.query, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, page.Number())
			assert.Equal(t, tt.wantSize, page.Size())
			assert.Equal(t, tt.wantSort, page.Sort())

			q := repository.Build(page.Options()...)
			assert.Equal(t, tt.wantSize, q.LimitValue())
			assert.Equal(t, (tt.wantPage-1)*tt.wantSize, q.OffsetValue())
			orders := q.Orders()
			require.Len(t, orders, 2)
			assert.Equal(t, tt.wantOrder, orders[0].Field())
			assert.Equal(t, tt.wantAsc, orders[0].Ascending())
			assert.Equal(t, "id", orders[1].Field())
			assert.Equal(t, tt.wantAsc, orders[1].Ascending())
		})
	}
}

func TestListing_ParseRejectsUnknownSort(t *testing.T) {
	for _, sort := range []string{"password", "-password", "conn_type", "-"} {
		_, err := connectionListing.Parse(httptest.NewRequest("GET", "/x?sort="+url.QueryEscape(sort), nil))
		assert.ErrorIs(t, err, service.ErrValidation, sort)
	}
}

func TestPage_MetaAndLinks(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/mappings?status=Draft&page=2&page_size=10", nil)
	page, err := mappingListing.Parse(req)
	require.NoError(t, err)

	meta := *page.Meta(35)
	assert.Equal(t, 2, meta["page"])
	assert.Equal(t, 10, meta["page_size"])
	assert.Equal(t, "-created_at", meta["sort"])
	assert.Equal(t, int64(35), meta["total_count"])
	assert.Equal(t, 4, meta["total_pages"])

	links := page.Links(req, 35)
	for name, link := range map[string]string{
		"self": links.Self, "first": links.First, "last": links.Last, "prev": links.Prev, "next": links.Next,
	} {
		u, err := url.Parse(link)
		require.NoError(t, err, name)
		assert.Equal(t, "/api/v1/mappings", u.Path, name)
		assert.Equal(t, "Draft", u.Query().Get("status"), name)
		assert.Equal(t, "-created_at", u.Query().Get("sort"), name)
	}
	assert.Contains(t, links.Self, "page=2")
	assert.Contains(t, links.Prev, "page=1")
	assert.Contains(t, links.Next, "page=3")
	assert.Contains(t, links.Last, "page=4")
}

func TestPage_LinksOnEmptyListing(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/artifacts", nil)
	page, err := artifactListing.Parse(req)
	require.NoError(t, err)

	assert.Equal(t, 0, (*page.Meta(0))["total_pages"])
	links := page.Links(req, 0)
	assert.Empty(t, links.Last)
	assert.Empty(t, links.Prev)
	assert.Empty(t, links.Next)
}
