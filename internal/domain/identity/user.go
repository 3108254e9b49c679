package identity

import (
	"context"

	"github.com/casaverde/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// RoleCode classifies back-office users
type RoleCode string

const (
	RoleTreasury RoleCode = "TESORERIA"
	RoleAdvisor  RoleCode = "ASESOR"
	RoleManager  RoleCode = "GERENTE"
	RoleAdmin    RoleCode = "ADMIN"
)

// User is a back-office operator. Authentication lives in the identity
// provider; this service only needs the acting user for attribution.
type User struct {
	shared.BaseEntity
	Username    string
	FullName    string
	Email       string
	Role        RoleCode
	IsSuperuser bool
	IsActive    bool
}

// UserRepository resolves acting users. The fallback chain for
// system-triggered operations is treasury role, then superuser, then
// any active user.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FirstActiveByRole(ctx context.Context, role RoleCode) (*User, error)
	FirstSuperuser(ctx context.Context) (*User, error)
	FirstActive(ctx context.Context) (*User, error)
}
