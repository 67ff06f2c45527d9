package dashboard

import (
	"context"
	"fmt"
	"sort"
	"ticketsale/internal/domain/sales"
	"ticketsale/internal/entities"
	"time"
)

const trendDays = 7

type SalesStore interface {
	FindByReference(ctx context.Context, reference string) (sales.TicketSale, error)
	ListCompleted(ctx context.Context) ([]sales.TicketSale, error)
	List(ctx context.Context, filter sales.Filter) (sales.Page, error)
}

type EventLog interface {
	ListByReference(ctx context.Context, reference string) ([]entities.SaleEvent, error)
}

type DashboardUsecase struct {
	store    SalesStore
	events   EventLog
	location *time.Location
}

// NewDashboardUsecase builds the admin read models. Day boundaries ("today",
// the daily trend) are taken in location.
func NewDashboardUsecase(store SalesStore, events EventLog, location *time.Location) *DashboardUsecase {
	if store == nil {
		panic("missing store")
	}
	if events == nil {
		panic("missing event log")
	}
	if location == nil {
		location = time.UTC
	}

	return &DashboardUsecase{store: store, events: events, location: location}
}

type Totals struct {
	Sales   int   `json:"sales"`
	Revenue int64 `json:"revenue"`
	Tickets int   `json:"tickets"`
}

func (t *Totals) add(sale sales.TicketSale) {
	t.Sales++
	t.Revenue += sale.PaymentInfo.Amount
	t.Tickets += sale.TicketInfo.Quantity
}

type TypeBreakdown struct {
	TicketType sales.TicketType `json:"ticketType"`
	Name       string           `json:"name"`
	Totals
}

type DailySales struct {
	Date    string `json:"date"`
	Sales   int    `json:"sales"`
	Revenue int64  `json:"revenue"`
}

type MethodBreakdown struct {
	Method  sales.Method `json:"method"`
	Sales   int          `json:"sales"`
	Revenue int64        `json:"revenue"`
}

type Stats struct {
	Overview       Totals            `json:"overview"`
	Today          Totals            `json:"today"`
	TicketTypes    []TypeBreakdown   `json:"ticketTypes"`
	SalesTrend     []DailySales      `json:"salesTrend"`
	PaymentMethods []MethodBreakdown `json:"paymentMethods"`
}

// Stats aggregates completed sales. The trend covers the last seven days
// including today, oldest first, with empty days present.
func (u *DashboardUsecase) Stats(ctx context.Context, now time.Time) (Stats, error) {
	completed, err := u.store.ListCompleted(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to list completed sales: %w", err)
	}

	now = now.In(u.location)
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, u.location)
	trendStart := startOfToday.AddDate(0, 0, -(trendDays - 1))

	var stats Stats
	byType := map[sales.TicketType]*TypeBreakdown{}
	byMethod := map[sales.Method]*MethodBreakdown{}
	byDay := map[string]*DailySales{}

	trend := make([]DailySales, 0, trendDays)
	for i := 0; i < trendDays; i++ {
		trend = append(trend, DailySales{Date: trendStart.AddDate(0, 0, i).Format(time.DateOnly)})
	}
	for i := range trend {
		byDay[trend[i].Date] = &trend[i]
	}

	for _, sale := range completed {
		stats.Overview.add(sale)

		paidAt := sale.CreatedAt
		if sale.PaymentInfo.PaidAt != nil {
			paidAt = *sale.PaymentInfo.PaidAt
		}
		paidAt = paidAt.In(u.location)

		if !paidAt.Before(startOfToday) {
			stats.Today.add(sale)
		}
		if day, ok := byDay[paidAt.Format(time.DateOnly)]; ok {
			day.Sales++
			day.Revenue += sale.PaymentInfo.Amount
		}

		breakdown, ok := byType[sale.TicketInfo.Type]
		if !ok {
			breakdown = &TypeBreakdown{TicketType: sale.TicketInfo.Type, Name: sale.TicketInfo.TypeName}
			byType[sale.TicketInfo.Type] = breakdown
		}
		breakdown.add(sale)

		method, ok := byMethod[sale.PaymentInfo.Method]
		if !ok {
			method = &MethodBreakdown{Method: sale.PaymentInfo.Method}
			byMethod[sale.PaymentInfo.Method] = method
		}
		method.Sales++
		method.Revenue += sale.PaymentInfo.Amount
	}

	stats.TicketTypes = make([]TypeBreakdown, 0, len(byType))
	for _, tier := range sales.Catalog() {
		if breakdown, ok := byType[tier.Type]; ok {
			stats.TicketTypes = append(stats.TicketTypes, *breakdown)
		}
	}

	stats.PaymentMethods = make([]MethodBreakdown, 0, len(byMethod))
	for _, method := range byMethod {
		stats.PaymentMethods = append(stats.PaymentMethods, *method)
	}
	sort.Slice(stats.PaymentMethods, func(i, j int) bool {
		return stats.PaymentMethods[i].Method < stats.PaymentMethods[j].Method
	})

	stats.SalesTrend = trend
	return stats, nil
}

type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalCount  int  `json:"totalCount"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

type SalesPage struct {
	Sales      []sales.TicketSale `json:"sales"`
	Pagination Pagination         `json:"pagination"`
}

func (u *DashboardUsecase) Sales(ctx context.Context, filter sales.Filter) (SalesPage, error) {
	filter = filter.Normalized()

	page, err := u.store.List(ctx, filter)
	if err != nil {
		return SalesPage{}, fmt.Errorf("failed to list sales: %w", err)
	}

	totalPages := (page.TotalCount + filter.Limit - 1) / filter.Limit
	return SalesPage{
		Sales: page.Sales,
		Pagination: Pagination{
			CurrentPage: filter.Page,
			TotalPages:  totalPages,
			TotalCount:  page.TotalCount,
			HasNext:     filter.Page < totalPages,
			HasPrev:     filter.Page > 1,
		},
	}, nil
}

type SaleDetails struct {
	Sale    sales.TicketSale     `json:"sale"`
	History []entities.SaleEvent `json:"history"`
}

func (u *DashboardUsecase) Sale(ctx context.Context, reference string) (SaleDetails, error) {
	sale, err := u.store.FindByReference(ctx, reference)
	if err != nil {
		return SaleDetails{}, err
	}

	history, err := u.events.ListByReference(ctx, reference)
	if err != nil {
		return SaleDetails{}, fmt.Errorf("failed to load history of %s: %w", reference, err)
	}
	if history == nil {
		history = []entities.SaleEvent{}
	}

	return SaleDetails{Sale: sale, History: history}, nil
}
