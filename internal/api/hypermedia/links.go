// Package hypermedia builds the navigation links attached to API
// resources and result pages. Builders are pure: they take paths and
// query values instead of reaching into the request pipeline.
package hypermedia

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/easypark/server/internal/domain/paging"
)

// Link is one follow-up operation available from a resource or page.
type Link struct {
	Rel    string `json:"rel"`
	Href   string `json:"href"`
	Method string `json:"method"`
}

// Resource wraps a single item with its links.
type Resource[T any] struct {
	Data  T      `json:"data"`
	Links []Link `json:"links"`
}

// PagedResource wraps one result page with its navigation links.
type PagedResource[T any] struct {
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	TotalItems int64  `json:"totalItems"`
	TotalPages int    `json:"totalPages"`
	Items      []T    `json:"items"`
	Links      []Link `json:"links"`
}

// FacilityResource attaches the facility link set: self, update, delete
// and the facility's space collection.
func FacilityResource[T any](data T, basePath string, id int64) Resource[T] {
	href := fmt.Sprintf("%s/%d", basePath, id)
	return Resource[T]{
		Data: data,
		Links: []Link{
			{Rel: "self", Href: href, Method: http.MethodGet},
			{Rel: "update", Href: href, Method: http.MethodPut},
			{Rel: "delete", Href: href, Method: http.MethodDelete},
			{Rel: "vagas", Href: href + "/vagas", Method: http.MethodGet},
		},
	}
}

// SpaceResource attaches the space link set: self, update, delete and
// the space's live status.
func SpaceResource[T any](data T, basePath string, id int64) Resource[T] {
	href := fmt.Sprintf("%s/%d", basePath, id)
	return Resource[T]{
		Data: data,
		Links: []Link{
			{Rel: "self", Href: href, Method: http.MethodGet},
			{Rel: "update", Href: href, Method: http.MethodPut},
			{Rel: "delete", Href: href, Method: http.MethodDelete},
			{Rel: "status", Href: href + "/status", Method: http.MethodGet},
		},
	}
}

// PageResource wraps a page with navigation links built from the caller's
// own query values. Every link echoes every parameter the caller supplied,
// changing only "page": self always, prev/first when there is an earlier
// page, next/last when there is a later one.
func PageResource[T any](page paging.Page[T], basePath string, query url.Values) PagedResource[T] {
	links := []Link{pageLink("self", basePath, query, page.Page)}
	if page.Page > 1 {
		links = append(links,
			pageLink("prev", basePath, query, page.Page-1),
			pageLink("first", basePath, query, 1),
		)
	}
	if page.Page < page.TotalPages {
		links = append(links,
			pageLink("next", basePath, query, page.Page+1),
			pageLink("last", basePath, query, page.TotalPages),
		)
	}
	return PagedResource[T]{
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
		Items:      page.Items,
		Links:      links,
	}
}

func pageLink(rel, basePath string, query url.Values, page int) Link {
	values := url.Values{}
	for key, vals := range query {
		values[key] = append([]string(nil), vals...)
	}
	values.Set("page", strconv.Itoa(page))
	return Link{Rel: rel, Href: basePath + "?" + values.Encode(), Method: http.MethodGet}
}
