package common

import (
	"net/http"
	"strconv"
)

// MaxPerPage caps the page size a client may request.
const MaxPerPage = 100

// Pagination describes one page of a list response.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
}

// Offset returns the row offset for this page.
func (p Pagination) Offset() int {
	if p.Page < 2 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}

// ParsePagination reads page and limit from the query string. Missing or
// malformed values fall back to page 1 and the given default page size;
// limit is capped at MaxPerPage.
func ParsePagination(r *http.Request, defaultPerPage int) (page, perPage int) {
	q := r.URL.Query()
	page, perPage = 1, defaultPerPage
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		perPage = v
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}
