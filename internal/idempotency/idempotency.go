package idempotency

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Header carries a client supplied key that makes a retried request publish
// events with the same idempotency key.
const Header = "Idempotency-Key"

type ctxKey struct{}

func WithKey(ctx context.Context, key string) context.Context {
	key = strings.TrimSpace(key)
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, key)
}

// GetKey returns the request's key, or a fresh one when the client sent none.
func GetKey(ctx context.Context) string {
	key, ok := ctx.Value(ctxKey{}).(string)
	if !ok {
		return uuid.NewString()
	}

	return key
}

// KeyFor scopes the request's key to one entity, e.g. one ticket of a sale.
func KeyFor(ctx context.Context, parts ...string) string {
	return strings.Join(append([]string{GetKey(ctx)}, parts...), "-")
}
