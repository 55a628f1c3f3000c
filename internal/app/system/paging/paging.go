// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of rows shown in paged lists.
// Keep this as an int because most call sites multiply it by a page
// number and then cast to int64 for Mongo Find().SetSkip().
const PageSize = 50

// ParsePage extracts the 1-based "page" query parameter.
// Returns 1 if not present or invalid.
func ParsePage(r *http.Request) int {
	s := query.Get(r, "page")
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Offset returns the number of rows to skip for page.
func Offset(page int) int64 {
	if page < 1 {
		page = 1
	}
	return int64((page - 1) * PageSize)
}

// Pages holds the navigation values for a numbered page.
type Pages struct {
	Page       int
	TotalPages int
	HasPrev    bool
	HasNext    bool
	PrevPage   int
	NextPage   int

	// Start and End are the 1-based positions of the rows shown
	// (both 0 when nothing is shown).
	Start int
	End   int
}

// Compute calculates the navigation values for page given the total number
// of matching rows and how many were shown. An empty result is one page.
func Compute(page int, total int64, shown int) Pages {
	if page < 1 {
		page = 1
	}
	totalPages := int((total + PageSize - 1) / PageSize)
	if totalPages < 1 {
		totalPages = 1
	}

	p := Pages{
		Page:       page,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
		PrevPage:   max(page-1, 1),
		NextPage:   min(page+1, totalPages),
	}
	if shown > 0 {
		p.Start = int(Offset(page)) + 1
		p.End = p.Start + shown - 1
	}
	return p
}
