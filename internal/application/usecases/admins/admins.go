package admins

import (
	"context"
	"errors"
	"fmt"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"strings"
	"ticketsale/internal/domain/admins"
	"ticketsale/internal/domain/sales"
	"time"
)

const idAttempts = 10

//go:generate mockgen -destination=mocks/admins_store_mock.go -package=mocks . AdminsStore
type AdminsStore interface {
	Create(ctx context.Context, admin admins.Admin) error
	FindByID(ctx context.Context, adminID string) (admins.Admin, error)
	List(ctx context.Context) ([]admins.Admin, error)
	Count(ctx context.Context) (int, error)
	UpdateByID(ctx context.Context, adminID string, updateFn func(admin *admins.Admin) error) (admins.Admin, error)
}

type TokenIssuer interface {
	Issue(adminID, role string) (string, time.Time, error)
}

type Config struct {
	Now   func() time.Time
	NewID func() string
}

type AdminsUsecase struct {
	store  AdminsStore
	tokens TokenIssuer
	now    func() time.Time
	newID  func() string
}

func NewAdminsUsecase(store AdminsStore, tokens TokenIssuer, cfg Config) *AdminsUsecase {
	if store == nil {
		panic("missing admins store")
	}
	if tokens == nil {
		panic("missing token issuer")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = admins.GenerateID
	}

	return &AdminsUsecase{store: store, tokens: tokens, now: cfg.Now, newID: cfg.NewID}
}

type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	Admin     admins.Admin `json:"admin"`
}

// Login opens a session for an active admin. Unknown and inactive IDs are
// indistinguishable to the caller.
func (u *AdminsUsecase) Login(ctx context.Context, adminID string) (Session, error) {
	adminID = strings.ToUpper(strings.TrimSpace(adminID))
	if !admins.IsValidID(adminID) {
		return Session{}, sales.NewValidationError("adminId", "must look like DNCV-1234")
	}

	admin, err := u.store.UpdateByID(ctx, adminID, func(admin *admins.Admin) error {
		if !admin.IsActive {
			return admins.ErrInactive
		}
		admin.RecordLogin(u.now().UTC())
		return nil
	})
	if errors.Is(err, admins.ErrNotFound) || errors.Is(err, admins.ErrInactive) {
		log.FromContext(ctx).WithField("admin_id", adminID).WithError(err).Warn("Admin login refused")
		return Session{}, admins.ErrUnauthorized
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to record login: %w", err)
	}

	token, expiresAt, err := u.tokens.Issue(admin.AdminID, string(admin.Role))
	if err != nil {
		return Session{}, err
	}

	log.FromContext(ctx).
		WithField("admin_id", admin.AdminID).
		WithField("login_count", admin.LoginCount).
		Info("Admin logged in")

	return Session{Token: token, ExpiresAt: expiresAt, Admin: admin}, nil
}

// Authenticate resolves the admin behind a verified token. The admin is read
// on every request so a deactivation takes effect before the token expires.
func (u *AdminsUsecase) Authenticate(ctx context.Context, adminID string) (admins.Admin, error) {
	admin, err := u.store.FindByID(ctx, adminID)
	if errors.Is(err, admins.ErrNotFound) {
		return admins.Admin{}, admins.ErrUnauthorized
	}
	if err != nil {
		return admins.Admin{}, err
	}
	if !admin.IsActive {
		return admins.Admin{}, admins.ErrUnauthorized
	}
	return admin, nil
}

func (u *AdminsUsecase) List(ctx context.Context) ([]admins.Admin, error) {
	list, err := u.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	return list, nil
}

type CreateRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
	Role string `json:"role" validate:"omitempty,oneof=super-admin admin manager"`
}

func (u *AdminsUsecase) Create(ctx context.Context, actor admins.Admin, req CreateRequest) (admins.Admin, error) {
	if !actor.HasRole(admins.RoleSuperAdmin) {
		return admins.Admin{}, admins.ErrForbidden
	}

	role, err := admins.ParseRole(req.Role)
	if err != nil {
		return admins.Admin{}, sales.NewValidationError("role", err.Error())
	}

	admin, err := u.create(ctx, strings.TrimSpace(req.Name), role, actor.AdminID)
	if err != nil {
		return admins.Admin{}, err
	}

	log.FromContext(ctx).
		WithField("admin_id", admin.AdminID).
		WithField("role", admin.Role).
		WithField("created_by", actor.AdminID).
		Info("Admin created")
	return admin, nil
}

func (u *AdminsUsecase) create(ctx context.Context, name string, role admins.Role, createdBy string) (admins.Admin, error) {
	for i := 0; i < idAttempts; i++ {
		admin, err := admins.NewAdmin(u.newID(), name, role, createdBy, u.now().UTC())
		if err != nil {
			return admins.Admin{}, sales.NewValidationError("name", err.Error())
		}

		err = u.store.Create(ctx, admin)
		if errors.Is(err, admins.ErrDuplicateID) {
			continue
		}
		if err != nil {
			return admins.Admin{}, fmt.Errorf("failed to create admin: %w", err)
		}
		return admin, nil
	}
	return admins.Admin{}, fmt.Errorf("no free admin id after %d attempts: %w", idAttempts, sales.ErrGenerationExhausted)
}

func (u *AdminsUsecase) Deactivate(ctx context.Context, actor admins.Admin, adminID string) (admins.Admin, error) {
	if !actor.HasRole(admins.RoleSuperAdmin) {
		return admins.Admin{}, admins.ErrForbidden
	}
	if adminID == actor.AdminID {
		return admins.Admin{}, sales.NewValidationError("adminId", "cannot deactivate yourself")
	}

	admin, err := u.store.UpdateByID(ctx, adminID, func(admin *admins.Admin) error {
		admin.IsActive = false
		return nil
	})
	if err != nil {
		return admins.Admin{}, err
	}

	log.FromContext(ctx).
		WithField("admin_id", adminID).
		WithField("deactivated_by", actor.AdminID).
		Info("Admin deactivated")
	return admin, nil
}

// Seed creates the first super-admin and admin of an empty store.
// Nothing is created when any admin exists.
func (u *AdminsUsecase) Seed(ctx context.Context) ([]admins.Admin, error) {
	count, err := u.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count admins: %w", err)
	}
	if count > 0 {
		return nil, nil
	}

	seeds := []struct {
		name string
		role admins.Role
	}{
		{"Super Admin", admins.RoleSuperAdmin},
		{"Payment Admin", admins.RoleAdmin},
	}

	created := make([]admins.Admin, 0, len(seeds))
	for _, seed := range seeds {
		admin, err := u.create(ctx, seed.name, seed.role, "system")
		if err != nil {
			return created, err
		}
		created = append(created, admin)
	}
	return created, nil
}
