// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of rows shown in paged lists.
const PageSize = 50

// MaxPageSize caps the "size" query parameter.
const MaxPageSize = 500

// ParseStart extracts the human-friendly "start" query parameter (1-based index).
// Returns 1 if not present or invalid.
func ParseStart(r *http.Request) int {
	s := query.Get(r, "start")
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ParseSize extracts the "size" query parameter. Returns PageSize if not
// present or invalid and clamps to MaxPageSize.
func ParseSize(r *http.Request) int {
	n, err := strconv.Atoi(query.Get(r, "size"))
	if err != nil || n < 1 {
		return PageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

// Range holds computed display range values for a paginated list.
type Range struct {
	Start     int `json:"start"`      // 1-based start index (0 if no results)
	End       int `json:"end"`        // 1-based end index (0 if no results)
	PrevStart int `json:"prev_start"` // start value for previous page link
	NextStart int `json:"next_start"` // start value for next page link
}

// ComputeRange calculates display range values given the current start index
// and number of items shown.
func ComputeRange(start, shown int) Range {
	return computeRangeWithSize(start, shown, PageSize)
}

// ComputeRangeSize is ComputeRange for a page size other than PageSize.
func ComputeRangeSize(start, shown, pageSize int) Range {
	return computeRangeWithSize(start, shown, pageSize)
}

func computeRangeWithSize(start, shown, pageSize int) Range {
	if shown == 0 {
		return Range{Start: 0, End: 0, PrevStart: 1, NextStart: 1}
	}

	prevStart := start - pageSize
	if prevStart < 1 {
		prevStart = 1
	}

	return Range{
		Start:     start,
		End:       start + shown - 1,
		PrevStart: prevStart,
		NextStart: start + shown,
	}
}

// Page is one window of an in-memory list.
type Page[T any] struct {
	Items   []T   `json:"items"`
	Total   int   `json:"total"`
	HasPrev bool  `json:"has_prev"`
	HasNext bool  `json:"has_next"`
	Range   Range `json:"range"`
}

// Window slices rows starting at the 1-based index start. A start past the
// end yields an empty page that still reports the total.
func Window[T any](rows []T, start, size int) Page[T] {
	if start < 1 {
		start = 1
	}
	if size < 1 {
		size = PageSize
	}
	total := len(rows)
	from := start - 1
	if from > total {
		from = total
	}
	to := from + size
	if to > total {
		to = total
	}
	items := rows[from:to]
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:   items,
		Total:   total,
		HasPrev: from > 0,
		HasNext: to < total,
		Range:   computeRangeWithSize(start, len(items), size),
	}
}

// FromRequest windows rows using the request's start and size parameters.
func FromRequest[T any](r *http.Request, rows []T) Page[T] {
	return Window(rows, ParseStart(r), ParseSize(r))
}
