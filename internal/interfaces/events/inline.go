package events

import (
	"context"
	"errors"
	"fmt"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
)

// InlineBus hands each published event to the matching handlers in the calling
// goroutine. One-off commands publish through it because no router is running
// to consume the transport.
type InlineBus struct {
	handlers []cqrs.EventHandler
}

func NewInlineBus(handlers []cqrs.EventHandler) *InlineBus {
	return &InlineBus{handlers: handlers}
}

func (b *InlineBus) Publish(ctx context.Context, event any) error {
	name := Marshaler.Name(event)
	msg, err := Marshaler.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	var errs []error
	for _, h := range b.handlers {
		target := h.NewEvent()
		if Marshaler.Name(target) != name {
			continue
		}
		if err := Marshaler.Unmarshal(msg, target); err != nil {
			return fmt.Errorf("failed to unmarshal %s: %w", name, err)
		}
		if err := h.Handle(ctx, target); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", h.HandlerName(), err))
		}
	}
	return errors.Join(errs...)
}
