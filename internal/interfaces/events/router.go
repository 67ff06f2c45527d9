package events

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// NewRouter builds the message router with the middleware stack and registers
// every event handler of h.
func NewRouter(
	logger watermill.LoggerAdapter,
	newSubscriber SubscriberFactory,
	h *Handler,
) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, logger)
	if err != nil {
		return nil, err
	}

	router.AddMiddleware(TracingMiddleware)
	router.AddMiddleware(middleware.Recoverer)
	router.AddMiddleware(CorrelationIDMiddleware)
	router.AddMiddleware(LoggingMiddleware)

	router.AddMiddleware(middleware.Retry{
		MaxRetries:      10,
		InitialInterval: time.Millisecond * 100,
		MaxInterval:     time.Second,
		Multiplier:      2,
		Logger:          logger,
	}.Middleware)

	// skip marshalling errors before retrying
	router.AddMiddleware(SkipMarshallingErrorsMiddleware)
	router.AddMiddleware(MetricsMiddleware)

	processor, err := NewEventProcessor(router, newSubscriber, logger)
	if err != nil {
		return nil, err
	}

	if err := processor.AddHandlers(h.Handlers()...); err != nil {
		return nil, err
	}

	return router, nil
}
