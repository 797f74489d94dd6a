package store

// PaginationParams contains pagination request parameters.
type PaginationParams struct {
	Limit  int // Items per page (defaults to 50, capped at 500)
	Offset int // Rows to skip
}

// PaginatedResult contains paginated data and metadata.
type PaginatedResult[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}

// DefaultPaginationParams returns sensible defaults.
func DefaultPaginationParams() PaginationParams {
	return PaginationParams{Limit: 50}
}

// Validate clamps pagination parameters to safe values.
func (p *PaginationParams) Validate() {
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Limit > 500 {
		p.Limit = 500
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}
