package admins

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"time"
)

var (
	ErrNotFound     = errors.New("admin not found")
	ErrInactive     = errors.New("admin is inactive")
	ErrInvalidID    = errors.New("admin id must look like DNCV-1234")
	ErrDuplicateID  = errors.New("admin id already exists")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("insufficient permissions")
)

var adminIDPattern = regexp.MustCompile(`^DNCV-\d{4}$`)

type Role string

const (
	RoleSuperAdmin Role = "super-admin"
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleSuperAdmin, RoleAdmin, RoleManager:
		return Role(s), nil
	case "":
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

type Permission string

const (
	PermApprovePayments Permission = "approvePayments"
	PermRejectPayments  Permission = "rejectPayments"
	PermViewAnalytics   Permission = "viewAnalytics"
	PermVerifyTickets   Permission = "verifyTickets"
	PermManageAdmins    Permission = "manageAdmins"
	PermSystemSettings  Permission = "systemSettings"
)

type Permissions struct {
	ApprovePayments bool `json:"approvePayments"`
	RejectPayments  bool `json:"rejectPayments"`
	ViewAnalytics   bool `json:"viewAnalytics"`
	VerifyTickets   bool `json:"verifyTickets"`
	ManageAdmins    bool `json:"manageAdmins"`
	SystemSettings  bool `json:"systemSettings"`
}

func DefaultPermissions(role Role) Permissions {
	p := Permissions{
		ApprovePayments: true,
		RejectPayments:  true,
		ViewAnalytics:   true,
		VerifyTickets:   true,
	}
	if role == RoleSuperAdmin {
		p.ManageAdmins = true
		p.SystemSettings = true
	}
	return p
}

func (p Permissions) Has(perm Permission) bool {
	switch perm {
	case PermApprovePayments:
		return p.ApprovePayments
	case PermRejectPayments:
		return p.RejectPayments
	case PermViewAnalytics:
		return p.ViewAnalytics
	case PermVerifyTickets:
		return p.VerifyTickets
	case PermManageAdmins:
		return p.ManageAdmins
	case PermSystemSettings:
		return p.SystemSettings
	}
	return false
}

type Admin struct {
	AdminID     string      `json:"adminId"`
	Name        string      `json:"name"`
	Role        Role        `json:"role"`
	Permissions Permissions `json:"permissions"`
	IsActive    bool        `json:"isActive"`
	LastLogin   *time.Time  `json:"lastLogin,omitempty"`
	LoginCount  int         `json:"loginCount"`
	CreatedAt   time.Time   `json:"createdAt"`
	CreatedBy   string      `json:"createdBy"`
}

func NewAdmin(adminID, name string, role Role, createdBy string, now time.Time) (Admin, error) {
	if !IsValidID(adminID) {
		return Admin{}, ErrInvalidID
	}
	if name == "" {
		return Admin{}, errors.New("admin name is required")
	}
	if createdBy == "" {
		createdBy = "system"
	}
	return Admin{
		AdminID:     adminID,
		Name:        name,
		Role:        role,
		Permissions: DefaultPermissions(role),
		IsActive:    true,
		CreatedAt:   now,
		CreatedBy:   createdBy,
	}, nil
}

func (a Admin) HasPermission(perm Permission) bool {
	return a.IsActive && a.Permissions.Has(perm)
}

func (a Admin) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

func (a *Admin) RecordLogin(now time.Time) {
	a.LastLogin = &now
	a.LoginCount++
}

func IsValidID(id string) bool {
	return adminIDPattern.MatchString(id)
}

func GenerateID() string {
	return fmt.Sprintf("DNCV-%04d", 1000+rand.Intn(9000))
}
