package entities

import (
	"encoding/json"
	"github.com/google/uuid"
	"time"
)

// SaleEvent is one row of the sale audit log.
type SaleEvent struct {
	Id          uuid.UUID       `db:"event_id" json:"id"`
	PublishedAt time.Time       `db:"published_at" json:"publishedAt"`
	EventName   string          `db:"event_name" json:"eventName"`
	Reference   string          `db:"reference" json:"reference"`
	Payload     json.RawMessage `db:"event_payload" json:"payload"`
}
