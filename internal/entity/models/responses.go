package models

// Envelope is the uniform success response wrapper.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	TotalDocs   int  `json:"totalDocs"`
	TotalPages  int  `json:"totalPages"`
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	HasPrevPage bool `json:"hasPrevPage"`
	HasNextPage bool `json:"hasNextPage"`
	PrevPage    *int `json:"prevPage"`
	NextPage    *int `json:"nextPage"`
}

// NewPagination computes page metadata from a total count.
func NewPagination(total, page, limit int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	p := Pagination{
		TotalDocs:  total,
		TotalPages: totalPages,
		Page:       page,
		Limit:      limit,
	}
	// A previous page only exists when it holds rows; a page number past
	// the end must not point at one.
	if page > 1 && page-1 <= totalPages {
		p.HasPrevPage = true
		prev := page - 1
		p.PrevPage = &prev
	}
	if page < totalPages {
		p.HasNextPage = true
		next := page + 1
		p.NextPage = &next
	}
	return p
}

// EntityPage is the listing payload: one page of entities plus metadata.
type EntityPage struct {
	Entities   []*Entity  `json:"entities"`
	Pagination Pagination `json:"pagination"`
}

// Stats aggregates entity counts by workflow status.
type Stats struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	Approved    int `json:"approved"`
	Rejected    int `json:"rejected"`
	UnderReview int `json:"underReview"`
}
