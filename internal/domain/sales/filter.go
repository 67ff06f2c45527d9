package sales

import "time"

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Filter selects sales for the admin listing.
type Filter struct {
	Status     PaymentStatus
	TicketType TicketType
	Search     string
	From       time.Time
	To         time.Time
	SortBy     string
	SortOrder  SortOrder
	Page       int
	Limit      int
}

var sortableFields = map[string]bool{
	"createdAt": true,
	"amount":    true,
	"reference": true,
	"status":    true,
}

func (f Filter) Normalized() Filter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
	if !sortableFields[f.SortBy] {
		f.SortBy = "createdAt"
	}
	if f.SortOrder != SortAsc {
		f.SortOrder = SortDesc
	}
	return f
}

func (f Filter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// Page is one page of a sales listing.
type Page struct {
	Sales      []TicketSale `json:"sales"`
	TotalCount int          `json:"totalCount"`
}
