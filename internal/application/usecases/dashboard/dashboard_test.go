package dashboard_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketsale/internal/application/usecases/dashboard"
	"ticketsale/internal/domain/sales"
	"ticketsale/internal/entities"
	"ticketsale/internal/repository"
)

var lagos = time.FixedZone("WAT", 60*60)

// 2025-09-10 00:30 in Lagos, still 2025-09-09 in UTC
var now = time.Date(2025, 9, 9, 23, 30, 0, 0, time.UTC)

type seedSale struct {
	Ref      string
	Type     string
	Quantity int
	Method   sales.Method
	PaidAt   *time.Time
}

func seed(t *testing.T, store *repository.MemorySalesRepo, s seedSale) {
	t.Helper()
	ctx := context.Background()

	sale, err := sales.NewSale(sales.NewSaleParams{
		Customer:   sales.CustomerInfo{FirstName: "Ada", LastName: "Obi", Email: "ada@example.com", Phone: "1"},
		TicketType: s.Type,
		Quantity:   s.Quantity,
		Method:     s.Method,
		Reference:  s.Ref,
		Now:        now.Add(-30 * 24 * time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, store.Create(ctx, sale))

	if s.PaidAt == nil {
		return
	}
	_, err = store.UpdateByReference(ctx, s.Ref, func(_ context.Context, sale *sales.TicketSale) error {
		return sale.Approve(sales.Approval{ApprovedBy: "DNCV-0001", Legacy: true}, *s.PaidAt)
	})
	require.NoError(t, err)
}

func at(t time.Time) *time.Time { return &t }

func TestStats(t *testing.T) {
	store := repository.NewMemorySalesRepo()
	seed(t, store, seedSale{Ref: "ADA1111", Type: "regular", Quantity: 2, Method: sales.MethodBankTransfer, PaidAt: at(now.Add(-10 * time.Minute))})
	seed(t, store, seedSale{Ref: "ADA2222", Type: "vip-single", Quantity: 1, Method: sales.MethodPaystack, PaidAt: at(now.Add(-24 * time.Hour))})
	seed(t, store, seedSale{Ref: "ADA3333", Type: "regular", Quantity: 1, Method: sales.MethodBankTransfer, PaidAt: at(now.Add(-20 * 24 * time.Hour))})
	seed(t, store, seedSale{Ref: "ADA4444", Type: "table", Quantity: 1, Method: sales.MethodBankTransfer})

	usecase := dashboard.NewDashboardUsecase(store, repository.NewMemorySaleEventsRepo(), lagos)

	stats, err := usecase.Stats(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, dashboard.Totals{Sales: 3, Revenue: 40000, Tickets: 4}, stats.Overview)
	assert.Equal(t, dashboard.Totals{Sales: 1, Revenue: 10000, Tickets: 2}, stats.Today)

	require.Len(t, stats.TicketTypes, 2)
	assert.Equal(t, sales.TicketRegular, stats.TicketTypes[0].TicketType)
	assert.Equal(t, 3, stats.TicketTypes[0].Tickets)
	assert.Equal(t, sales.TicketVIPSingle, stats.TicketTypes[1].TicketType)

	require.Len(t, stats.SalesTrend, 7)
	assert.Equal(t, "2025-09-04", stats.SalesTrend[0].Date)
	assert.Equal(t, "2025-09-10", stats.SalesTrend[6].Date)
	assert.Equal(t, dashboard.DailySales{Date: "2025-09-10", Sales: 1, Revenue: 10000}, stats.SalesTrend[6])
	assert.Equal(t, dashboard.DailySales{Date: "2025-09-09", Sales: 1, Revenue: 25000}, stats.SalesTrend[5])
	assert.Zero(t, stats.SalesTrend[0].Sales)

	assert.Equal(t, []dashboard.MethodBreakdown{
		{Method: sales.MethodBankTransfer, Sales: 2, Revenue: 15000},
		{Method: sales.MethodPaystack, Sales: 1, Revenue: 25000},
	}, stats.PaymentMethods)
}

func TestSales(t *testing.T) {
	store := repository.NewMemorySalesRepo()
	for _, ref := range []string{"ADA1111", "ADA2222", "ADA3333", "ADA4444", "ADA5555"} {
		seed(t, store, seedSale{Ref: ref, Type: "regular", Quantity: 1, Method: sales.MethodBankTransfer})
	}
	usecase := dashboard.NewDashboardUsecase(store, repository.NewMemorySaleEventsRepo(), nil)

	page, err := usecase.Sales(context.Background(), sales.Filter{Page: 2, Limit: 2, SortBy: "reference", SortOrder: sales.SortAsc})
	require.NoError(t, err)

	require.Len(t, page.Sales, 2)
	assert.Equal(t, "ADA3333", page.Sales[0].Reference())
	assert.Equal(t, dashboard.Pagination{CurrentPage: 2, TotalPages: 3, TotalCount: 5, HasNext: true, HasPrev: true}, page.Pagination)
}

func TestSale(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemorySalesRepo()
	events := repository.NewMemorySaleEventsRepo()
	seed(t, store, seedSale{Ref: "ADA1111", Type: "regular", Quantity: 1, Method: sales.MethodBankTransfer})

	require.NoError(t, events.SaveEvent(ctx, entities.SaleEvent{
		Id:          uuid.New(),
		PublishedAt: now,
		EventName:   "TransferMarked_v1",
		Reference:   "ADA1111",
		Payload:     json.RawMessage(`{}`),
	}))

	usecase := dashboard.NewDashboardUsecase(store, events, nil)

	details, err := usecase.Sale(ctx, "ADA1111")
	require.NoError(t, err)
	assert.Equal(t, "ADA1111", details.Sale.Reference())
	require.Len(t, details.History, 1)
	assert.Equal(t, "TransferMarked_v1", details.History[0].EventName)

	_, err = usecase.Sale(ctx, "NOPE1111")
	assert.ErrorIs(t, err, sales.ErrNotFound)
}
