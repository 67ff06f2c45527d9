package app

import (
	"context"
	"errors"
	"fmt"
	commonHTTP "github.com/ThreeDotsLabs/go-event-driven/common/http"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"
	"os"
	adminsusecase "ticketsale/internal/application/usecases/admins"
	"ticketsale/internal/application/usecases/dashboard"
	"ticketsale/internal/application/usecases/payments"
	"ticketsale/internal/application/usecases/reminders"
	"ticketsale/internal/application/usecases/tickets"
	"ticketsale/internal/auth"
	"ticketsale/internal/config"
	"ticketsale/internal/domain/admins"
	"ticketsale/internal/infrastructure/clients"
	"ticketsale/internal/interfaces/events"
	"ticketsale/internal/interfaces/http"
	"ticketsale/internal/notification"
	"ticketsale/internal/observability"
	"ticketsale/internal/ratelimit"
	"ticketsale/internal/scheduler"
	"time"
)

const (
	shutdownTimeout  = 10 * time.Second
	keepAliveTimeout = 10 * time.Second
)

type App struct {
	cfg    config.Config
	logger zerolog.Logger

	storage *storage
	rdb     *redis.Client
	pubSub  *events.PubSub
	router  *message.Router
	srv     *http.Server
	tp      *tracesdk.TracerProvider

	mailer    notification.Mailer
	queue     *notification.Queue
	buffer    *notification.FileBuffer
	scheduler *scheduler.Scheduler

	reminders *reminders.RemindersUsecase
	// inlineReminders publishes straight to the handlers, for sweeps run
	// while the router is down.
	inlineReminders *reminders.RemindersUsecase
	admins          *adminsusecase.AdminsUsecase
}

func NewApp(ctx context.Context, cfg config.Config, watermillLogger watermill.LoggerAdapter) (*App, error) {
	a := &App{
		cfg:    cfg,
		logger: zerolog.New(os.Stdout).With().Timestamp().Str("service", "ticketsale").Logger(),
	}
	if err := a.build(ctx, watermillLogger); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context, watermillLogger watermill.LoggerAdapter) error {
	cfg := a.cfg

	tp, err := observability.ConfigureTraceProvider(ctx, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	a.tp = tp

	if cfg.Memory() {
		a.logger.Warn().Msg("DATABASE_URL not set, sales are kept in memory")
		a.storage = newMemoryStorage()
	} else {
		a.storage, err = newPostgresStorage(cfg.DatabaseURL)
		if err != nil {
			return err
		}
	}

	if cfg.RedisAddr != "" {
		a.rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}
	a.pubSub, err = events.NewPubSub(a.rdb, watermillLogger)
	if err != nil {
		return err
	}
	eventBus, err := events.NewEventBus(a.pubSub.Publisher, watermillLogger)
	if err != nil {
		return err
	}

	whatsApp := clients.NewWhatsApp(cfg.WhatsApp)
	handler := events.NewHandler(whatsApp, cfg.AdminPhones, a.storage.events)
	a.router, err = events.NewRouter(watermillLogger, a.pubSub.NewSubscriber, handler)
	if err != nil {
		return err
	}

	a.mailer = a.newMailer(ctx)
	renderer, err := notification.NewRenderer(cfg.Event)
	if err != nil {
		return err
	}
	dispatcher := notification.NewDispatcher(renderer, a.mailer, cfg.EmailTimeout)

	a.buffer, err = notification.NewFileBuffer(cfg.BufferDir, dispatcher)
	if err != nil {
		return err
	}
	a.queue = notification.NewQueue(dispatcher, a.buffer, notification.QueueConfig{
		MaxRetries: cfg.EmailMaxRetries,
	})
	notifier := notification.NewNotifier(dispatcher, a.queue)

	paymentsUsecase := payments.NewUsecase(
		payments.Deps{
			Store:    a.storage.sales,
			Tx:       a.storage.tx,
			Limiter:  ratelimit.NewTransferLimiter(a.storage.sales, cfg.TransferReferenceWindow, cfg.TransferTypeWindow),
			Notifier: notifier,
			QR:       clients.NewQRRenderer(),
			Events:   eventBus,
			Gateway:  clients.NewPaystack(cfg.PaystackBaseURL, cfg.PaystackSecret),
		},
		payments.Config{
			Event:          cfg.Event,
			PaystackSecret: cfg.PaystackSecret,
			OpaySecret:     cfg.OpaySecret,
			FrontendURL:    cfg.FrontendURL,
		},
	)

	remindersCfg := reminders.Config{
		ReminderAfter: cfg.ReminderAfter,
		MaxWait:       cfg.MaxWait,
	}
	a.reminders = reminders.NewRemindersUsecase(a.storage.sales, notifier, eventBus, remindersCfg)
	a.inlineReminders = reminders.NewRemindersUsecase(
		a.storage.sales,
		notifier,
		events.NewInlineBus(handler.Handlers()),
		remindersCfg,
	)

	secret := cfg.JWTSecret
	if secret == "" {
		a.logger.Warn().Msg("JWT_SECRET not set, admin tokens will not survive a restart")
		secret = uuid.NewString()
	}
	tokens := auth.NewTokenManager(secret, cfg.JWTTTL)
	a.admins = adminsusecase.NewAdminsUsecase(a.storage.admins, tokens, adminsusecase.Config{})

	a.srv = http.NewServer(
		commonHTTP.NewEcho(),
		http.Services{
			Payments:  paymentsUsecase,
			Tickets:   tickets.NewTicketsUsecase(a.storage.sales, eventBus, nil),
			Dashboard: dashboard.NewDashboardUsecase(a.storage.sales, a.storage.events, cfg.ReminderLocation),
			Admins:    a.admins,
			Tokens:    tokens,
			Buffer:    a.buffer,
			Mailer:    a.mailer,
		},
		http.Config{
			Addr:            cfg.HTTPAddr,
			Production:      cfg.Production(),
			TrustProxy:      cfg.TrustProxy,
			AdminEmail:      cfg.AdminEmail,
			Health:          a.health,
			RouterIsRunning: a.router.IsRunning,
		},
	)

	return a.schedule()
}

func (a *App) newMailer(ctx context.Context) notification.Mailer {
	if a.cfg.Mail.Host == "" {
		a.logger.Warn().Msg("EMAIL_HOST not set, emails are logged instead of sent")
		return clients.LogMailer{}
	}

	mailer := clients.NewMailer(a.cfg.Mail)
	if err := mailer.Verify(ctx); err != nil {
		// sends still go through the queue and the buffer until the server is back
		a.logger.Err(err).Msg("SMTP server not reachable")
	}
	return mailer
}

func (a *App) schedule() error {
	a.scheduler = scheduler.New(a.cfg.ReminderLocation)

	err := a.scheduler.Add("payment_reminders", a.cfg.ReminderSpec, func(ctx context.Context) error {
		_, err := a.reminders.Sweep(ctx)
		return err
	})
	if err != nil {
		return err
	}

	err = a.scheduler.Add("email_buffer", scheduler.BufferSweepSpec, func(ctx context.Context) error {
		_, err := a.buffer.Sweep(ctx)
		return err
	})
	if err != nil {
		return err
	}

	if a.cfg.KeepAliveEnabled {
		keepAlive := clients.NewKeepAlive(a.cfg.KeepAliveURL, keepAliveTimeout)
		if err := a.scheduler.Add("keep_alive", scheduler.KeepAliveSpec, keepAlive.Ping); err != nil {
			return err
		}
	}

	return nil
}

func (a *App) health(ctx context.Context) error {
	if err := a.storage.ping(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if a.rdb != nil {
		if err := a.rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info().Msg("starting router")

		return a.router.Run(ctx)
	})

	g.Go(func() error {
		select {
		case <-a.router.Running():
		case <-ctx.Done():
			return nil
		}
		a.logger.Info().Msg("router is running")

		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("starting server")
		return a.srv.Start()
	})

	g.Go(func() error {
		a.logger.Info().Msg("starting email queue")
		return a.queue.Run(ctx)
	})

	g.Go(func() error {
		a.logger.Info().
			Str("reminder_spec", a.cfg.ReminderSpec).
			Str("timezone", a.cfg.ReminderLocation.String()).
			Msg("starting scheduler")
		return a.scheduler.Run(ctx)
	})

	g.Go(func() error {
		a.logResults(ctx)
		return nil
	})

	g.Go(func() error {
		// Shut down
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := a.srv.Stop(shutdownCtx)
		if err != nil {
			a.logger.Err(err).Msg("error stopping server")
		}

		return err
	})

	// Will block until all goroutines finish
	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	a.logger.Info().Msg("stopped")
	return nil
}

func (a *App) logResults(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case res := <-a.queue.Results():
			logger := log.FromContext(ctx).
				WithField("job_id", res.Job.ID).
				WithField("type", res.Job.Type).
				WithField("reference", res.Job.Sale.Reference())
			switch {
			case res.Buffered:
				logger.WithField("file", res.BufferFile).WithError(res.Err).Warn("Email moved to buffer")
			case res.Err != nil:
				logger.WithError(res.Err).Error("Email dropped")
			default:
				logger.Debug("Email delivered")
			}
		}
	}
}

// Remind runs one reminder sweep outside the schedule. Without a running router
// the admin alerts are handled in place, so they are not lost on the transport.
func (a *App) Remind(ctx context.Context) (reminders.SweepReport, error) {
	if a.router.IsRunning() {
		return a.reminders.Sweep(ctx)
	}
	return a.inlineReminders.Sweep(ctx)
}

func (a *App) Buffer() *notification.FileBuffer {
	return a.buffer
}

func (a *App) SeedAdmins(ctx context.Context) ([]admins.Admin, error) {
	return a.admins.Seed(ctx)
}

// Close releases the connections. It is safe to call on a partly built App.
func (a *App) Close() error {
	var errs []error

	if closer, ok := a.mailer.(interface{ Close() error }); ok {
		errs = append(errs, closer.Close())
	}
	if a.router != nil {
		errs = append(errs, a.router.Close())
	}
	if a.pubSub != nil {
		errs = append(errs, a.pubSub.Close())
	}
	if a.rdb != nil {
		errs = append(errs, a.rdb.Close())
	}
	if a.storage != nil {
		errs = append(errs, a.storage.Close())
	}
	if a.tp != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		errs = append(errs, a.tp.Shutdown(shutdownCtx))
	}

	return errors.Join(errs...)
}
