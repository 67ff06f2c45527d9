package entities

import (
	"github.com/google/uuid"
	"time"
)

type EventHeader struct {
	Id             string    `json:"id"`
	PublishedAt    time.Time `json:"publishedAt"`
	IdempotencyKey string    `json:"idempotencyKey"`
}

func NewEventHeader() EventHeader {
	return EventHeader{
		Id:             uuid.NewString(),
		PublishedAt:    time.Now().UTC(),
		IdempotencyKey: uuid.NewString(),
	}
}

// NewEventHeaderWithIdempotencyKey is used when the event is keyed by a sale
// reference, so a redelivered webhook produces the same key.
func NewEventHeaderWithIdempotencyKey(idempotencyKey string) EventHeader {
	return EventHeader{
		Id:             uuid.NewString(),
		PublishedAt:    time.Now().UTC(),
		IdempotencyKey: idempotencyKey,
	}
}
