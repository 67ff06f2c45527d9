package repository

import (
	"context"
	"fmt"
	"github.com/jmoiron/sqlx"
	"sort"
	"sync"
	"ticketsale/internal/entities"
)

// SaleEventsRepo is an append-only audit log of everything published on the event bus.
type SaleEventsRepo struct {
	db *sqlx.DB
}

func NewSaleEventsRepo(db *sqlx.DB) *SaleEventsRepo {
	return &SaleEventsRepo{db: db}
}

func (r *SaleEventsRepo) SaveEvent(ctx context.Context, event entities.SaleEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sale_events (event_id, published_at, event_name, reference, event_payload)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT DO NOTHING
	`, event.Id, event.PublishedAt, event.EventName, event.Reference, []byte(event.Payload))
	if err != nil {
		return fmt.Errorf("failed to save event %s: %w", event.EventName, err)
	}

	return nil
}

func (r *SaleEventsRepo) ListByReference(ctx context.Context, reference string) ([]entities.SaleEvent, error) {
	var events []entities.SaleEvent
	err := r.db.SelectContext(ctx, &events, `
		SELECT event_id, published_at, event_name, reference, event_payload
		FROM sale_events
		WHERE reference = $1
		ORDER BY published_at ASC`, reference)
	if err != nil {
		return nil, fmt.Errorf("failed to list events of %s: %w", reference, err)
	}
	return events, nil
}

type MemorySaleEventsRepo struct {
	mu     sync.Mutex
	events []entities.SaleEvent
}

func NewMemorySaleEventsRepo() *MemorySaleEventsRepo {
	return &MemorySaleEventsRepo{}
}

func (r *MemorySaleEventsRepo) SaveEvent(_ context.Context, event entities.SaleEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.events {
		if e.Id == event.Id {
			return nil
		}
	}
	r.events = append(r.events, event)
	return nil
}

func (r *MemorySaleEventsRepo) ListByReference(_ context.Context, reference string) ([]entities.SaleEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var events []entities.SaleEvent
	for _, e := range r.events {
		if e.Reference == reference {
			events = append(events, e)
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].PublishedAt.Before(events[j].PublishedAt)
	})
	return events, nil
}
