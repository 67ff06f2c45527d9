package app

import (
	"context"
	"fmt"
	trmsqlx "github.com/avito-tech/go-transaction-manager/drivers/sqlx/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/jmoiron/sqlx"
	"ticketsale/internal/application/usecases/admins"
	"ticketsale/internal/domain/sales"
	"ticketsale/internal/entities"
	"ticketsale/internal/repository"
	"time"

	_ "github.com/lib/pq"
)

const serializationAttempts = 3

// SalesRepository is what the use cases need from the sale store, satisfied by
// both the Postgres and the in-memory implementation.
type SalesRepository interface {
	Create(ctx context.Context, sale sales.TicketSale) error
	FindByReference(ctx context.Context, reference string) (sales.TicketSale, error)
	FindByTicketID(ctx context.Context, ticketID string) (sales.TicketSale, error)
	ReferenceExists(ctx context.Context, reference string) (bool, error)
	TicketIDExists(ctx context.Context, ticketID string) (bool, error)
	UpdateByReference(
		ctx context.Context,
		reference string,
		updateFn func(ctx context.Context, sale *sales.TicketSale) error,
	) (sales.TicketSale, error)
	FindRecentTransferClick(
		ctx context.Context,
		clientIP string,
		ticketType sales.TicketType,
		since time.Time,
		excludeReference string,
	) (*time.Time, error)
	FindPendingApproval(ctx context.Context, markedBefore, remindedBefore time.Time) ([]sales.TicketSale, error)
	ListPendingTransfers(ctx context.Context) ([]sales.TicketSale, error)
	ListCompleted(ctx context.Context) ([]sales.TicketSale, error)
	SoldByType(ctx context.Context) (map[sales.TicketType]int, error)
	List(ctx context.Context, filter sales.Filter) (sales.Page, error)
}

type EventLog interface {
	SaveEvent(ctx context.Context, event entities.SaleEvent) error
	ListByReference(ctx context.Context, reference string) ([]entities.SaleEvent, error)
}

type Transactor interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type storage struct {
	sales  SalesRepository
	admins admins.AdminsStore
	events EventLog
	tx     Transactor

	db *sqlx.DB
}

func newMemoryStorage() *storage {
	return &storage{
		sales:  repository.NewMemorySalesRepo(),
		admins: repository.NewMemoryAdminsRepo(),
		events: repository.NewMemorySaleEventsRepo(),
		tx:     repository.NewMemoryTx(),
	}
}

// newPostgresStorage connects to databaseURL and makes sure the schema exists.
func newPostgresStorage(databaseURL string) (*storage, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := repository.InitializeDBSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	trManager := manager.Must(trmsqlx.NewDefaultFactory(db))

	return &storage{
		sales:  repository.NewSalesRepo(db, trmsqlx.DefaultCtxGetter, trManager),
		admins: repository.NewAdminsRepo(db, trmsqlx.DefaultCtxGetter, trManager),
		events: repository.NewSaleEventsRepo(db),
		tx:     repository.NewSerializableTx(trManager, serializationAttempts),
		db:     db,
	}, nil
}

func (s *storage) ping(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.PingContext(ctx)
}

func (s *storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
