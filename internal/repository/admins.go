package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	trmsqlx "github.com/avito-tech/go-transaction-manager/drivers/sqlx/v2"
	trmanager "github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"sort"
	"sync"
	"ticketsale/internal/domain/admins"
)

type AdminsRepo struct {
	db        *sqlx.DB
	getter    *trmsqlx.CtxGetter
	trManager *trmanager.Manager
}

func NewAdminsRepo(db *sqlx.DB, getter *trmsqlx.CtxGetter, trManager *trmanager.Manager) *AdminsRepo {
	return &AdminsRepo{db: db, getter: getter, trManager: trManager}
}

func (r *AdminsRepo) Create(ctx context.Context, admin admins.Admin) error {
	payload, err := json.Marshal(admin)
	if err != nil {
		return fmt.Errorf("failed to marshal admin: %w", err)
	}

	_, err = r.getter.DefaultTrOrDB(ctx, r.db).ExecContext(ctx, `
		INSERT INTO admins (admin_id, name, role, is_active, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		admin.AdminID, admin.Name, string(admin.Role), admin.IsActive, payload, admin.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return admins.ErrDuplicateID
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

func (r *AdminsRepo) FindByID(ctx context.Context, adminID string) (admins.Admin, error) {
	return r.findByID(ctx, "SELECT payload FROM admins WHERE admin_id = $1", adminID)
}

func (r *AdminsRepo) findByID(ctx context.Context, query, adminID string) (admins.Admin, error) {
	var payload []byte
	err := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowxContext(ctx, query, adminID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return admins.Admin{}, admins.ErrNotFound
	}
	if err != nil {
		return admins.Admin{}, fmt.Errorf("failed to find admin: %w", err)
	}

	var admin admins.Admin
	if err := json.Unmarshal(payload, &admin); err != nil {
		return admins.Admin{}, fmt.Errorf("failed to unmarshal admin: %w", err)
	}
	return admin, nil
}

func (r *AdminsRepo) List(ctx context.Context) ([]admins.Admin, error) {
	var payloads [][]byte
	err := sqlx.SelectContext(ctx, r.getter.DefaultTrOrDB(ctx, r.db), &payloads,
		"SELECT payload FROM admins ORDER BY created_at ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}

	list := make([]admins.Admin, 0, len(payloads))
	for _, payload := range payloads {
		var admin admins.Admin
		if err := json.Unmarshal(payload, &admin); err != nil {
			return nil, fmt.Errorf("failed to unmarshal admin: %w", err)
		}
		list = append(list, admin)
	}
	return list, nil
}

func (r *AdminsRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := sqlx.GetContext(ctx, r.getter.DefaultTrOrDB(ctx, r.db), &count, "SELECT COUNT(*) FROM admins"); err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return count, nil
}

func (r *AdminsRepo) UpdateByID(
	ctx context.Context,
	adminID string,
	updateFn func(admin *admins.Admin) error,
) (admins.Admin, error) {
	var updated admins.Admin

	err := r.trManager.Do(ctx, func(ctx context.Context) error {
		admin, err := r.findByID(ctx, "SELECT payload FROM admins WHERE admin_id = $1 FOR UPDATE", adminID)
		if err != nil {
			return err
		}
		if err := updateFn(&admin); err != nil {
			return err
		}

		payload, err := json.Marshal(admin)
		if err != nil {
			return fmt.Errorf("failed to marshal admin: %w", err)
		}
		_, err = r.getter.DefaultTrOrDB(ctx, r.db).ExecContext(ctx,
			"UPDATE admins SET name = $1, role = $2, is_active = $3, payload = $4 WHERE admin_id = $5",
			admin.Name, string(admin.Role), admin.IsActive, payload, admin.AdminID,
		)
		if err != nil {
			return fmt.Errorf("failed to update admin: %w", err)
		}

		updated = admin
		return nil
	})
	if err != nil {
		return admins.Admin{}, err
	}
	return updated, nil
}

type MemoryAdminsRepo struct {
	mu     sync.Mutex
	admins map[string]admins.Admin
}

func NewMemoryAdminsRepo() *MemoryAdminsRepo {
	return &MemoryAdminsRepo{admins: map[string]admins.Admin{}}
}

func (r *MemoryAdminsRepo) Create(_ context.Context, admin admins.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.admins[admin.AdminID]; ok {
		return admins.ErrDuplicateID
	}
	r.admins[admin.AdminID] = admin
	return nil
}

func (r *MemoryAdminsRepo) FindByID(_ context.Context, adminID string) (admins.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	admin, ok := r.admins[adminID]
	if !ok {
		return admins.Admin{}, admins.ErrNotFound
	}
	return admin, nil
}

func (r *MemoryAdminsRepo) List(_ context.Context) ([]admins.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := make([]admins.Admin, 0, len(r.admins))
	for _, admin := range r.admins {
		list = append(list, admin)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

func (r *MemoryAdminsRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.admins), nil
}

func (r *MemoryAdminsRepo) UpdateByID(
	_ context.Context,
	adminID string,
	updateFn func(admin *admins.Admin) error,
) (admins.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	admin, ok := r.admins[adminID]
	if !ok {
		return admins.Admin{}, admins.ErrNotFound
	}
	if err := updateFn(&admin); err != nil {
		return admins.Admin{}, err
	}
	r.admins[adminID] = admin
	return admin, nil
}
