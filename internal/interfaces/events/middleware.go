package events

import (
	"errors"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"time"
)

func TracingMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		ctx := otel.GetTextMapPropagator().Extract(msg.Context(), propagation.MapCarrier(msg.Metadata))

		ctx, span := otel.Tracer("").Start(
			ctx,
			"handle "+message.HandlerNameFromCtx(msg.Context()),
			trace.WithAttributes(
				attribute.String("message_uuid", msg.UUID),
				attribute.String("topic", message.SubscribeTopicFromCtx(msg.Context())),
			),
		)
		defer span.End()

		msg.SetContext(ctx)

		msgs, err := next(msg)
		if err != nil {
			span.RecordError(err)
		}
		return msgs, err
	}
}

// CorrelationIDMiddleware continues the correlation ID of the publisher, or starts
// a new one, and puts a logger carrying it into the message context.
func CorrelationIDMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		correlationID := msg.Metadata.Get("correlation_id")
		if correlationID == "" {
			correlationID = uuid.NewString()
		}

		ctx := log.ContextWithCorrelationID(msg.Context(), correlationID)
		ctx = log.ToContext(ctx, logrus.WithFields(logrus.Fields{
			"correlation_id": correlationID,
			"message_uuid":   msg.UUID,
			"handler":        message.HandlerNameFromCtx(msg.Context()),
		}))
		msg.SetContext(ctx)

		return next(msg)
	}
}

// LoggingMiddleware logs the event name on Info. Payloads carry customer
// contact details and are only logged on Debug.
func LoggingMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		logger := log.FromContext(msg.Context()).
			WithField("event_name", msg.Metadata.Get("name")).
			WithField("source", msg.Metadata.Get("source"))

		logger.Info("Handling a message")
		logger.WithField("payload", string(msg.Payload)).Debug("Message payload")

		messages, err := next(msg)
		if err != nil {
			logger.WithError(err).Error("Message handling error")
		}

		return messages, err
	}
}

var ErrJsonUnmarshal = errors.New("json unmarshal error")

// SkipMarshallingErrorsMiddleware acks messages that can never be decoded so
// the retry middleware does not spin on them.
func SkipMarshallingErrorsMiddleware(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		msgs, err := h(msg)
		if err != nil && errors.Is(err, ErrJsonUnmarshal) {
			log.FromContext(msg.Context()).
				WithError(err).
				Warn("Dropping malformed message")
			return nil, nil
		}

		return msgs, err
	}
}

var (
	eventsHandledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sale_events_handled_total",
		Help: "Sale events handled by handler and outcome",
	}, []string{"topic", "handler", "outcome"})

	eventHandlingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sale_event_handling_duration_seconds",
		Help:    "Duration of sale event handling in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"topic", "handler"})
)

func MetricsMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		topic := message.SubscribeTopicFromCtx(msg.Context())
		handler := message.HandlerNameFromCtx(msg.Context())
		start := time.Now()

		msgs, err := next(msg)

		eventHandlingDuration.WithLabelValues(topic, handler).Observe(time.Since(start).Seconds())
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		eventsHandledTotal.WithLabelValues(topic, handler, outcome).Inc()

		return msgs, err
	}
}
