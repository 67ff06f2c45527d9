package observability

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// PublisherWithTracing records a span per publish and injects the trace context
// into the message metadata.
type PublisherWithTracing struct {
	message.Publisher
}

func (p PublisherWithTracing) Publish(topic string, messages ...*message.Message) error {
	for i := range messages {
		ctx, span := otel.Tracer("").Start(
			messages[i].Context(),
			"publish "+topic,
			trace.WithSpanKind(trace.SpanKindProducer),
			trace.WithAttributes(attribute.String("message_uuid", messages[i].UUID)),
		)
		otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(messages[i].Metadata))
		span.End()
	}
	return p.Publisher.Publish(topic, messages...)
}
