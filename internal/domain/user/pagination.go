package user

import "math"

// Pagination represents pagination information for list responses.
type Pagination struct {
	Total       int64 // Total number of records matching the search
	Page        int64 // Current page number (1-based)
	Limit       int64 // Number of records per page
	TotalPages  int64 // Total number of pages
	HasNext     bool  // Whether records exist after this page
	HasPrevious bool  // Whether records exist before this page
}

// NewPagination creates a new Pagination instance with calculated total pages
// and neighbour flags for the window [(page-1)*limit, (page-1)*limit+limit).
func NewPagination(total, page, limit int64) *Pagination {
	var totalPages int64
	if limit > 0 {
		totalPages = total / limit
		if total%limit != 0 {
			totalPages++
		}
	}

	start, ok := Offset(page, limit)

	return &Pagination{
		Total:       total,
		Page:        page,
		Limit:       limit,
		TotalPages:  totalPages,
		HasNext:     ok && start < total && limit < total-start,
		HasPrevious: !ok || start > 0,
	}
}

// Offset returns (page-1)*limit. ok is false when the product does not fit
// in an int64; such a page lies past any stored set.
func Offset(page, limit int64) (offset int64, ok bool) {
	if page <= 1 || limit <= 0 {
		return 0, true
	}
	if page-1 > math.MaxInt64/limit {
		return math.MaxInt64, false
	}
	return (page - 1) * limit, true
}

// Window returns the clipped [start, end) bounds of the page over total records.
// Out-of-range pages return an empty window.
func Window(total, page, limit int64) (start, end int64) {
	start, ok := Offset(page, limit)
	if !ok || start > total {
		start = total
	}
	return start, start + min(max(limit, 0), total-start)
}
