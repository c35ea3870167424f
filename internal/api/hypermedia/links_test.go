package hypermedia

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/easypark/server/internal/domain/paging"
	"github.com/stretchr/testify/require"
)

func linkByRel(t *testing.T, links []Link, rel string) Link {
	t.Helper()
	for _, l := range links {
		if l.Rel == rel {
			return l
		}
	}
	t.Fatalf("link %q not found", rel)
	return Link{}
}

func rels(links []Link) []string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		out = append(out, l.Rel)
	}
	return out
}

func TestFacilityResourceLinks(t *testing.T) {
	res := FacilityResource("payload", "/api/estacionamentos", 42)

	require.Equal(t, "payload", res.Data)
	require.Equal(t, []string{"self", "update", "delete", "vagas"}, rels(res.Links))

	self := linkByRel(t, res.Links, "self")
	require.Equal(t, "/api/estacionamentos/42", self.Href)
	require.Equal(t, "GET", self.Method)
	require.Equal(t, "PUT", linkByRel(t, res.Links, "update").Method)
	require.Equal(t, "DELETE", linkByRel(t, res.Links, "delete").Method)
	require.Equal(t, "/api/estacionamentos/42/vagas", linkByRel(t, res.Links, "vagas").Href)
}

func TestSpaceResourceLinks(t *testing.T) {
	res := SpaceResource("payload", "/api/vagas", 7)

	require.Equal(t, []string{"self", "update", "delete", "status"}, rels(res.Links))
	require.Equal(t, "/api/vagas/7/status", linkByRel(t, res.Links, "status").Href)
}

func TestPageResourceFirstPage(t *testing.T) {
	page := paging.Page[string]{Page: 1, PageSize: 10, TotalItems: 25, TotalPages: 3, Items: []string{"a"}}
	res := PageResource(page, "/api/vagas", url.Values{})

	require.ElementsMatch(t, []string{"self", "next", "last"}, rels(res.Links))
	require.Equal(t, "/api/vagas?page=2", linkByRel(t, res.Links, "next").Href)
	require.Equal(t, "/api/vagas?page=3", linkByRel(t, res.Links, "last").Href)
}

func TestPageResourceLastPage(t *testing.T) {
	page := paging.Page[string]{Page: 3, PageSize: 10, TotalItems: 25, TotalPages: 3}
	res := PageResource(page, "/api/vagas", url.Values{})

	require.ElementsMatch(t, []string{"self", "prev", "first"}, rels(res.Links))
	require.Equal(t, "/api/vagas?page=2", linkByRel(t, res.Links, "prev").Href)
	require.Equal(t, "/api/vagas?page=1", linkByRel(t, res.Links, "first").Href)
}

func TestPageResourceMiddlePageHasAllLinks(t *testing.T) {
	page := paging.Page[string]{Page: 2, PageSize: 10, TotalItems: 25, TotalPages: 3}
	res := PageResource(page, "/api/vagas", url.Values{})

	require.ElementsMatch(t, []string{"self", "prev", "first", "next", "last"}, rels(res.Links))
}

func TestPageLinksEchoQueryParameters(t *testing.T) {
	query := url.Values{}
	query.Set("status", "OCUPADA")
	query.Set("sortBy", "codigo")
	query.Set("sortDir", "desc")
	query.Set("pageSize", "5")
	query.Set("page", "2")

	page := paging.Page[string]{Page: 2, PageSize: 5, TotalItems: 12, TotalPages: 3}
	res := PageResource(page, "/api/vagas", query)

	self, err := url.Parse(linkByRel(t, res.Links, "self").Href)
	require.NoError(t, err)
	got := self.Query()
	require.Equal(t, "2", got.Get("page"))
	require.Equal(t, "5", got.Get("pageSize"))
	require.Equal(t, "codigo", got.Get("sortBy"))
	require.Equal(t, "desc", got.Get("sortDir"))
	require.Equal(t, "OCUPADA", got.Get("status"))

	next, err := url.Parse(linkByRel(t, res.Links, "next").Href)
	require.NoError(t, err)
	got = next.Query()
	require.Equal(t, "3", got.Get("page"))
	require.Equal(t, "OCUPADA", got.Get("status"))
	require.Equal(t, "desc", got.Get("sortDir"))

	// The caller's values are not mutated by link construction.
	require.Equal(t, "2", query.Get("page"))
}

func TestPageResourceSinglePageHasOnlySelf(t *testing.T) {
	page := paging.Page[string]{Page: 1, PageSize: 10, TotalItems: 4, TotalPages: 1}
	res := PageResource(page, "/api/reservas", url.Values{})

	require.Equal(t, []string{"self"}, rels(res.Links))
}

func TestPagedResourceEnvelopeFieldNames(t *testing.T) {
	page := paging.Page[string]{Page: 2, PageSize: 5, TotalItems: 12, TotalPages: 3, Items: []string{"a"}}
	res := PageResource(page, "/api/vagas", url.Values{})

	payload, err := json.Marshal(res)
	require.NoError(t, err)

	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(payload, &envelope))
	for _, key := range []string{"page", "pageSize", "totalItems", "totalPages", "items", "links"} {
		require.Contains(t, envelope, key)
	}
	require.Len(t, envelope, 6)
}
