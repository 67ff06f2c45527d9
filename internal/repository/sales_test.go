package repository_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	trmsqlx "github.com/avito-tech/go-transaction-manager/drivers/sqlx/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"ticketsale/internal/domain/sales"
	"ticketsale/internal/repository"
)

type salesStore interface {
	Create(ctx context.Context, sale sales.TicketSale) error
	FindByReference(ctx context.Context, reference string) (sales.TicketSale, error)
	FindByTicketID(ctx context.Context, ticketID string) (sales.TicketSale, error)
	ReferenceExists(ctx context.Context, reference string) (bool, error)
	TicketIDExists(ctx context.Context, ticketID string) (bool, error)
	UpdateByReference(ctx context.Context, reference string, updateFn func(ctx context.Context, sale *sales.TicketSale) error) (sales.TicketSale, error)
	FindRecentTransferClick(ctx context.Context, clientIP string, ticketType sales.TicketType, since time.Time, excludeReference string) (*time.Time, error)
	FindPendingApproval(ctx context.Context, markedBefore, remindedBefore time.Time) ([]sales.TicketSale, error)
	ListPendingTransfers(ctx context.Context) ([]sales.TicketSale, error)
	ListCompleted(ctx context.Context) ([]sales.TicketSale, error)
	SoldByType(ctx context.Context) (map[sales.TicketType]int, error)
	List(ctx context.Context, filter sales.Filter) (sales.Page, error)
}

type SalesRepoSuite struct {
	suite.Suite
	newStore func() salesStore
	repo     salesStore
	ctx      context.Context
	now      time.Time
	seq      int
}

func (s *SalesRepoSuite) SetupTest() {
	s.repo = s.newStore()
	s.ctx = context.Background()
	s.now = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
}

// reference returns a fresh reference; postgres tables are shared between tests.
func (s *SalesRepoSuite) reference(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s%d%04d", prefix, time.Now().UnixNano()%100000, s.seq)
}

func (s *SalesRepoSuite) createSale(ref string, ticketType string, quantity int, createdAt time.Time) sales.TicketSale {
	sale, err := sales.NewSale(sales.NewSaleParams{
		Customer: sales.CustomerInfo{
			FirstName: "Ada",
			LastName:  "Obi",
			Email:     "ada@example.com",
			Phone:     "+2348000000000",
		},
		TicketType: ticketType,
		Quantity:   quantity,
		Method:     sales.MethodBankTransfer,
		Reference:  ref,
		Now:        createdAt,
	})
	s.Require().NoError(err)
	s.Require().NoError(s.repo.Create(s.ctx, sale))
	return sale
}

func (s *SalesRepoSuite) markTransfer(ref, ip string, at time.Time) sales.TicketSale {
	sale, err := s.repo.UpdateByReference(s.ctx, ref, func(_ context.Context, sale *sales.TicketSale) error {
		return sale.MarkTransferCompleted(ip, at)
	})
	s.Require().NoError(err)
	return sale
}

func (s *SalesRepoSuite) TestCreateAndFind() {
	ref := s.reference("CREATE")
	created := s.createSale(ref, "regular", 2, s.now)

	found, err := s.repo.FindByReference(s.ctx, ref)
	s.Require().NoError(err)
	s.Equal(created.ID, found.ID)
	s.Equal(int64(10000), found.TicketInfo.TotalAmount)
	s.Equal(sales.PaymentPendingTransfer, found.PaymentInfo.Status)

	byTicket, err := s.repo.FindByTicketID(s.ctx, ref)
	s.Require().NoError(err)
	s.Equal(ref, byTicket.Reference())

	exists, err := s.repo.ReferenceExists(s.ctx, ref)
	s.Require().NoError(err)
	s.True(exists)

	_, err = s.repo.FindByReference(s.ctx, "MISSING9999")
	s.ErrorIs(err, sales.ErrNotFound)
}

func (s *SalesRepoSuite) TestCreate_duplicateReference() {
	ref := s.reference("DUP")
	s.createSale(ref, "regular", 1, s.now)

	sale, err := sales.NewSale(sales.NewSaleParams{
		Customer:   sales.CustomerInfo{FirstName: "Bola", Email: "bola@example.com", Phone: "1"},
		TicketType: "student",
		Quantity:   1,
		Method:     sales.MethodBankTransfer,
		Reference:  ref,
		Now:        s.now,
	})
	s.Require().NoError(err)

	s.ErrorIs(s.repo.Create(s.ctx, sale), sales.ErrDuplicateReference)
}

func (s *SalesRepoSuite) TestFindByTicketID_perTicket() {
	ref := s.reference("MULTI")
	s.createSale(ref, "regular", 2, s.now)
	first, second := ref+"A", ref+"B"

	_, err := s.repo.UpdateByReference(s.ctx, ref, func(_ context.Context, sale *sales.TicketSale) error {
		return sale.Approve(sales.Approval{
			ApprovedBy: "DNCV-1001",
			Legacy:     true,
			Tickets:    []sales.Ticket{{TicketID: first}, {TicketID: second}},
		}, s.now)
	})
	s.Require().NoError(err)

	found, err := s.repo.FindByTicketID(s.ctx, second)
	s.Require().NoError(err)
	s.Equal(ref, found.Reference())

	exists, err := s.repo.TicketIDExists(s.ctx, first)
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.repo.TicketIDExists(s.ctx, ref+"C")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *SalesRepoSuite) TestUpdateByReference_errorLeavesSaleUntouched() {
	ref := s.reference("ROLLBACK")
	s.createSale(ref, "regular", 1, s.now)
	s.markTransfer(ref, "10.0.0.1", s.now)

	_, err := s.repo.UpdateByReference(s.ctx, ref, func(_ context.Context, sale *sales.TicketSale) error {
		if err := sale.Approve(sales.Approval{ApprovedBy: "DNCV-1001"}, s.now); err != nil {
			return err
		}
		return sales.ErrEmailDeliveryFailed
	})
	s.ErrorIs(err, sales.ErrEmailDeliveryFailed)

	found, err := s.repo.FindByReference(s.ctx, ref)
	s.Require().NoError(err)
	s.Equal(sales.PaymentPendingApproval, found.PaymentInfo.Status)
	s.Empty(found.PaymentInfo.ApprovedBy)
}

func (s *SalesRepoSuite) TestUpdateByReference_concurrentMarkTransfer() {
	ref := s.reference("RACE")
	s.createSale(ref, "regular", 1, s.now)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.repo.UpdateByReference(s.ctx, ref, func(_ context.Context, sale *sales.TicketSale) error {
				return sale.MarkTransferCompleted("10.0.0.1", s.now)
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(1, succeeded)

	found, err := s.repo.FindByReference(s.ctx, ref)
	s.Require().NoError(err)
	s.Equal(1, found.PaymentInfo.TransferClickCount)
}

func (s *SalesRepoSuite) TestFindRecentTransferClick() {
	ip := fmt.Sprintf("10.1.%d.%d", time.Now().Nanosecond()%250, s.seq%250)
	first := s.reference("CLICKA")
	second := s.reference("CLICKB")
	s.createSale(first, "vip-couple", 1, s.now)
	s.createSale(second, "vip-couple", 1, s.now)

	s.markTransfer(first, ip, s.now.Add(-30*time.Second))

	clickedAt, err := s.repo.FindRecentTransferClick(s.ctx, ip, sales.TicketVIPCouple, s.now.Add(-90*time.Second), second)
	s.Require().NoError(err)
	s.Require().NotNil(clickedAt)
	s.True(clickedAt.Equal(s.now.Add(-30*time.Second)))

	clickedAt, err = s.repo.FindRecentTransferClick(s.ctx, ip, sales.TicketVIPCouple, s.now.Add(-90*time.Second), first)
	s.Require().NoError(err)
	s.Nil(clickedAt, "own click is excluded")

	clickedAt, err = s.repo.FindRecentTransferClick(s.ctx, ip, sales.TicketStudent, s.now.Add(-90*time.Second), second)
	s.Require().NoError(err)
	s.Nil(clickedAt, "other ticket type")

	clickedAt, err = s.repo.FindRecentTransferClick(s.ctx, ip, sales.TicketVIPCouple, s.now.Add(-10*time.Second), second)
	s.Require().NoError(err)
	s.Nil(clickedAt, "outside window")
}

func (s *SalesRepoSuite) TestFindPendingApproval() {
	stale := s.reference("STALE")
	reminded := s.reference("REMINDED")
	fresh := s.reference("FRESH")
	for _, ref := range []string{stale, reminded, fresh} {
		s.createSale(ref, "regular", 1, s.now.Add(-100*time.Hour))
	}
	s.markTransfer(stale, "ip", s.now.Add(-30*time.Hour))
	s.markTransfer(reminded, "ip", s.now.Add(-30*time.Hour))
	s.markTransfer(fresh, "ip", s.now.Add(-time.Hour))

	_, err := s.repo.UpdateByReference(s.ctx, reminded, func(_ context.Context, sale *sales.TicketSale) error {
		sale.PaymentInfo.LastReminderSent = &s.now
		return nil
	})
	s.Require().NoError(err)

	dayAgo := s.now.Add(-24 * time.Hour)
	candidates, err := s.repo.FindPendingApproval(s.ctx, dayAgo, dayAgo)
	s.Require().NoError(err)

	refs := map[string]bool{}
	for _, c := range candidates {
		refs[c.Reference()] = true
	}
	s.True(refs[stale])
	s.False(refs[reminded])
	s.False(refs[fresh])
}

func (s *SalesRepoSuite) TestSoldByTypeAndList() {
	search := s.reference("LISTING")
	s.createSale(search, "table", 2, s.now)
	s.markTransfer(search, "ip", s.now)
	_, err := s.repo.UpdateByReference(s.ctx, search, func(_ context.Context, sale *sales.TicketSale) error {
		return sale.Approve(sales.Approval{ApprovedBy: "DNCV-1001"}, s.now)
	})
	s.Require().NoError(err)

	sold, err := s.repo.SoldByType(s.ctx)
	s.Require().NoError(err)
	s.GreaterOrEqual(sold[sales.TicketTable], 2)

	page, err := s.repo.List(s.ctx, sales.Filter{
		Status:     sales.PaymentCompleted,
		TicketType: sales.TicketTable,
		Search:     search,
	})
	s.Require().NoError(err)
	s.Equal(1, page.TotalCount)
	s.Require().Len(page.Sales, 1)
	s.Equal(search, page.Sales[0].Reference())

	completed, err := s.repo.ListCompleted(s.ctx)
	s.Require().NoError(err)
	s.NotEmpty(completed)
}

func (s *SalesRepoSuite) TestList_pagination() {
	prefix := s.reference("PAGE")
	for i := 0; i < 5; i++ {
		s.createSale(fmt.Sprintf("%sX%d", prefix, i), "student", 1, s.now.Add(time.Duration(i)*time.Minute))
	}

	page, err := s.repo.List(s.ctx, sales.Filter{
		Search:    prefix,
		Page:      2,
		Limit:     2,
		SortBy:    "createdAt",
		SortOrder: sales.SortAsc,
	})
	s.Require().NoError(err)
	s.Equal(5, page.TotalCount)
	s.Require().Len(page.Sales, 2)
	s.Equal(prefix+"X2", page.Sales[0].Reference())
	s.Equal(prefix+"X3", page.Sales[1].Reference())
}

func TestMemorySalesRepo(t *testing.T) {
	suite.Run(t, &SalesRepoSuite{
		newStore: func() salesStore { return repository.NewMemorySalesRepo() },
	})
}

func TestPostgresSalesRepo(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	db := startPostgres(t)
	require.NoError(t, repository.InitializeDBSchema(db))

	trManager := manager.Must(trmsqlx.NewDefaultFactory(db))
	suite.Run(t, &SalesRepoSuite{
		newStore: func() salesStore {
			return repository.NewSalesRepo(db, trmsqlx.DefaultCtxGetter, trManager)
		},
	})
}

func startPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "ticketsale",
				"POSTGRES_PASSWORD": "ticketsale",
				"POSTGRES_DB":       "ticketsale",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	db, err := sqlx.Open("postgres", fmt.Sprintf(
		"postgres://ticketsale:ticketsale@%s:%s/ticketsale?sslmode=disable", host, port.Port(),
	))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.Eventually(t, func() bool { return db.PingContext(ctx) == nil }, 30*time.Second, 200*time.Millisecond)
	return db
}
