package http

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 200
)

// Pagination holds normalized page and limit values from query parameters.
type Pagination struct {
	Page  int
	Limit int
}

// ParsePagination reads page and limit from query parameters, falling back
// to defaults and clamping out-of-range values.
func ParsePagination(query url.Values) Pagination {
	p := Pagination{Page: defaultPage, Limit: defaultLimit}

	if v := strings.TrimSpace(query.Get("page")); v != "" {
		if page, err := strconv.Atoi(v); err == nil && page > 0 {
			p.Page = page
		}
	}
	if v := strings.TrimSpace(query.Get("limit")); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 {
			p.Limit = limit
		}
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

// ParseAllFlag reports whether the unlimited variant of a series was asked
// for. Only the literal "true" enables it.
func ParseAllFlag(query url.Values) bool {
	return strings.TrimSpace(query.Get("all")) == "true"
}
