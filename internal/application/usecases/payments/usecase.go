package payments

import (
	"context"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"ticketsale/internal/domain/sales"
	"ticketsale/internal/entities"
	"ticketsale/internal/infrastructure/clients"
	"ticketsale/internal/notification"
	"time"
)

//go:generate mockgen -destination=mocks/sales_store_mock.go -package=mocks . SalesStore
type SalesStore interface {
	Create(ctx context.Context, sale sales.TicketSale) error
	FindByReference(ctx context.Context, reference string) (sales.TicketSale, error)
	ReferenceExists(ctx context.Context, reference string) (bool, error)
	TicketIDExists(ctx context.Context, ticketID string) (bool, error)
	UpdateByReference(
		ctx context.Context,
		reference string,
		updateFn func(ctx context.Context, sale *sales.TicketSale) error,
	) (sales.TicketSale, error)
	ListPendingTransfers(ctx context.Context) ([]sales.TicketSale, error)
	SoldByType(ctx context.Context) (map[sales.TicketType]int, error)
}

//go:generate mockgen -destination=mocks/transactor_mock.go -package=mocks . Transactor
type Transactor interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

//go:generate mockgen -destination=mocks/limiter_mock.go -package=mocks . Limiter
type Limiter interface {
	Check(ctx context.Context, sale sales.TicketSale, clientIP string, now time.Time) error
}

//go:generate mockgen -destination=mocks/notifier_mock.go -package=mocks . Notifier
type Notifier interface {
	DeliverOrFail(ctx context.Context, job notification.Job) error
	NotifyBestEffort(ctx context.Context, job notification.Job)
}

//go:generate mockgen -destination=mocks/qr_renderer_mock.go -package=mocks . QRRenderer
type QRRenderer interface {
	Render(payload string) (string, error)
}

//go:generate mockgen -destination=mocks/event_publisher_mock.go -package=mocks . EventPublisher
type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

//go:generate mockgen -destination=mocks/gateway_mock.go -package=mocks . Gateway
type Gateway interface {
	Initialize(ctx context.Context, req clients.PaystackInitializeRequest) (clients.PaystackAuthorization, error)
	Verify(ctx context.Context, reference string) (clients.PaystackTransaction, error)
}

type Deps struct {
	Store      SalesStore
	Tx         Transactor
	Limiter    Limiter
	Notifier   Notifier
	QR         QRRenderer
	Events     EventPublisher
	Gateway    Gateway
	References *sales.ReferenceGenerator
}

type Config struct {
	Event          sales.EventDetails
	PaystackSecret string
	OpaySecret     string
	FrontendURL    string
	Now            func() time.Time
}

type Usecase struct {
	store      SalesStore
	tx         Transactor
	limiter    Limiter
	notifier   Notifier
	qr         QRRenderer
	events     EventPublisher
	gateway    Gateway
	references *sales.ReferenceGenerator

	event          sales.EventDetails
	paystackSecret string
	opaySecret     string
	frontendURL    string
	now            func() time.Time
}

func NewUsecase(deps Deps, cfg Config) *Usecase {
	if deps.Store == nil {
		panic("missing store")
	}
	if deps.Tx == nil {
		panic("missing tx")
	}
	if deps.Limiter == nil {
		panic("missing limiter")
	}
	if deps.Notifier == nil {
		panic("missing notifier")
	}
	if deps.QR == nil {
		panic("missing qr renderer")
	}
	if deps.Events == nil {
		panic("missing event publisher")
	}
	if deps.Gateway == nil {
		panic("missing gateway")
	}
	if deps.References == nil {
		deps.References = sales.NewReferenceGenerator()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Usecase{
		store:          deps.Store,
		tx:             deps.Tx,
		limiter:        deps.Limiter,
		notifier:       deps.Notifier,
		qr:             deps.QR,
		events:         deps.Events,
		gateway:        deps.Gateway,
		references:     deps.References,
		event:          cfg.Event,
		paystackSecret: cfg.PaystackSecret,
		opaySecret:     cfg.OpaySecret,
		frontendURL:    cfg.FrontendURL,
		now:            cfg.Now,
	}
}

// publish never fails the caller: the state change it reports is already committed.
func (u *Usecase) publish(ctx context.Context, event entities.Event) {
	if err := u.events.Publish(ctx, event); err != nil {
		log.FromContext(ctx).
			WithError(err).
			WithField("reference", event.SaleReference()).
			Warn("Failed to publish event")
	}
}
