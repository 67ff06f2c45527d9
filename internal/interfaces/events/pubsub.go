package events

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"ticketsale/internal/infrastructure/event_publisher"
	"ticketsale/internal/observability"
)

const consumerGroupPrefix = "svc-ticketsale."

// SubscriberFactory builds the subscriber of one event handler.
type SubscriberFactory func(handlerName string) (message.Subscriber, error)

// PubSub is the transport of the event bus: Redis streams when a client is given,
// otherwise an in-process go channel.
type PubSub struct {
	Publisher     message.Publisher
	NewSubscriber SubscriberFactory
	close         func() error
}

func NewPubSub(rdb *redis.Client, logger watermill.LoggerAdapter) (*PubSub, error) {
	if rdb == nil {
		ch := gochannel.NewGoChannel(gochannel.Config{}, logger)
		return &PubSub{
			Publisher: decorate(ch),
			NewSubscriber: func(string) (message.Subscriber, error) {
				return ch, nil
			},
			close: ch.Close,
		}, nil
	}

	pub, err := event_publisher.NewRedisPublisher(logger, rdb)
	if err != nil {
		return nil, err
	}

	return &PubSub{
		Publisher: decorate(pub),
		NewSubscriber: func(handlerName string) (message.Subscriber, error) {
			return redisstream.NewSubscriber(redisstream.SubscriberConfig{
				Client:        rdb,
				ConsumerGroup: consumerGroupPrefix + handlerName,
			}, logger)
		},
		close: pub.Close,
	}, nil
}

func (p *PubSub) Close() error {
	return p.close()
}

func decorate(pub message.Publisher) message.Publisher {
	return observability.PublisherWithTracing{
		Publisher: event_publisher.CorrelationPublisherDecorator{
			Publisher: pub,
		},
	}
}
