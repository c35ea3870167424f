// Package paging holds the shared page container and parameter
// normalization used by every search endpoint. Each resource supplies its
// own filter set and sort-key table; slicing, counting, and clamping
// behave identically everywhere.
package paging

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Params carries the normalized pagination and ordering arguments of a
// search request. Build it with ParseParams or call Normalize before use.
type Params struct {
	Page     int
	PageSize int
	SortBy   string
	SortDir  string
}

// ParseParams reads page, pageSize, sortBy, and sortDir from query values.
// Unparseable or out-of-range values are clamped, never rejected.
func ParseParams(values url.Values) Params {
	p := Params{
		Page:     atoiOr(values.Get("page"), 1),
		PageSize: atoiOr(values.Get("pageSize"), DefaultPageSize),
		SortBy:   strings.TrimSpace(values.Get("sortBy")),
		SortDir:  strings.TrimSpace(values.Get("sortDir")),
	}
	p.Normalize()
	return p
}

// Normalize clamps Page to [1, ∞) and PageSize to [1, MaxPageSize]
// (DefaultPageSize when non-positive), and lowercases the sort arguments.
func (p *Params) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	p.SortBy = strings.ToLower(strings.TrimSpace(p.SortBy))
	p.SortDir = strings.ToLower(strings.TrimSpace(p.SortDir))
}

// Descending reports whether the requested direction is exactly "desc".
// Every other value, including empty, sorts ascending.
func (p Params) Descending() bool {
	return p.SortDir == "desc"
}

// Offset is the index of the first row of the requested page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Page is one bounded slice of a filtered, sorted result set.
type Page[T any] struct {
	Page       int
	PageSize   int
	TotalItems int64
	TotalPages int
	Items      []T
}

// NewPage assembles a Page from an already-sliced item list and the exact
// total count over the same filtered predicate.
func NewPage[T any](items []T, params Params, totalItems int64) Page[T] {
	return Page[T]{
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalItems: totalItems,
		TotalPages: totalPages(totalItems, params.PageSize),
		Items:      items,
	}
}

func totalPages(totalItems int64, pageSize int) int {
	if totalItems <= 0 {
		return 0
	}
	return int((totalItems + int64(pageSize) - 1) / int64(pageSize))
}

// SortKeys maps recognized sortBy tokens to SQL column expressions.
// Resolve falls back to the default token instead of erroring so that an
// unrecognized key degrades to the documented default ordering.
type SortKeys struct {
	Default string
	Columns map[string]string
}

// Resolve returns the column expression for the requested token, or the
// default column when the token is blank or unknown.
func (s SortKeys) Resolve(sortBy string) string {
	key := strings.ToLower(strings.TrimSpace(sortBy))
	if column, ok := s.Columns[key]; ok {
		return column
	}
	return s.Columns[s.Default]
}

func atoiOr(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
