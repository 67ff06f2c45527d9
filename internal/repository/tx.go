package repository

import (
	"context"
	"database/sql"
	"errors"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	trmanager "github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/avito-tech/go-transaction-manager/trm/v2/settings"
	"github.com/lib/pq"
	"sync"
)

const serializationFailure = "40001"

// SerializableTx runs a function in a serializable transaction and repeats it
// when Postgres aborts the transaction on a serialization conflict.
type SerializableTx struct {
	trManager *trmanager.Manager
	attempts  int
}

func NewSerializableTx(trManager *trmanager.Manager, attempts int) *SerializableTx {
	if trManager == nil {
		panic("missing trManager")
	}
	if attempts < 1 {
		attempts = 3
	}
	return &SerializableTx{trManager: trManager, attempts: attempts}
}

func (t *SerializableTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return WithRetry(t.attempts, func(ctx context.Context) error {
		return t.trManager.DoWithSettings(
			ctx,
			trmsql.MustSettings(
				settings.Must(settings.WithCancelable(true)),
				trmsql.WithTxOptions(&sql.TxOptions{Isolation: sql.LevelSerializable}),
			),
			fn,
		)
	})(ctx)
}

func WithRetry(attempts int, f func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		var lastErr error
		for i := 0; i < attempts; i++ {
			err := f(ctx)
			if err == nil {
				return nil
			}

			var pgErr *pq.Error
			if errors.As(err, &pgErr) && pgErr.Code == serializationFailure {
				log.FromContext(ctx).WithField("attempt", i+1).Info("Serialization conflict, retrying transaction")
				lastErr = err
				continue
			}

			return err
		}
		return lastErr
	}
}

// MemoryTx serialises callers. It stands in for SerializableTx over the memory store.
type MemoryTx struct {
	mu sync.Mutex
}

func NewMemoryTx() *MemoryTx {
	return &MemoryTx{}
}

func (t *MemoryTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return fn(ctx)
}
