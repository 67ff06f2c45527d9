package event_publisher

import (
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"
)

const sourceService = "svc-ticketsale"

func NewRedisPublisher(
	wlogger watermill.LoggerAdapter,
	redisClient *redis.Client,
) (message.Publisher, error) {
	return redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: redisClient,
	}, wlogger)
}

// CorrelationPublisherDecorator stamps every message with the correlation ID
// of the publishing context and the name of this service.
type CorrelationPublisherDecorator struct {
	message.Publisher
}

func (c CorrelationPublisherDecorator) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		msg.Metadata.Set("correlation_id", log.CorrelationIDFromContext(msg.Context()))
		if msg.Metadata.Get("source") == "" {
			msg.Metadata.Set("source", sourceService)
		}
	}
	return c.Publisher.Publish(topic, messages...)
}
