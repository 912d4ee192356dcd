// Package store defines the persistence boundary of the identity core.
// The directory lives on the master store; everything else is scoped to a
// single tenant's isolated store, resolved by tenant id through Provider.
package store

import (
	"context"
	"errors"

	"identity-service/internal/model"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert hits a uniqueness constraint.
// Seeding treats it as a retryable race, not a failure.
var ErrDuplicate = errors.New("duplicate record")

// Directory is the tenant directory on the master store.
type Directory interface {
	GetTenant(ctx context.Context, id string) (*model.Tenant, error)
	ListTenants(ctx context.Context) ([]model.Tenant, error)
	CreateTenant(ctx context.Context, tenant *model.Tenant) error
}

// Store is one tenant's isolated persistence scope.
type Store interface {
	// CanConnect reports whether the tenant's store is reachable.
	CanConnect(ctx context.Context) error
	// Migrate applies any pending schema changes for the tenant scope.
	Migrate(ctx context.Context) error

	FindUserByUsername(ctx context.Context, username string) (*model.User, error)
	FindUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
	SaveUser(ctx context.Context, user *model.User) error

	// FindRoleByName matches the role name case-insensitively.
	FindRoleByName(ctx context.Context, name string) (*model.Role, error)
	CreateRole(ctx context.Context, role *model.Role) error

	RoleClaims(ctx context.Context, roleID uint) ([]model.RoleClaim, error)
	AddRoleClaim(ctx context.Context, claim *model.RoleClaim) error

	UserRoles(ctx context.Context, userID uint) ([]model.Role, error)
	UserHasRole(ctx context.Context, userID, roleID uint) (bool, error)
	AddUserRole(ctx context.Context, userID, roleID uint) error

	UserClaims(ctx context.Context, userID uint) ([]model.UserClaim, error)
}

// Provider resolves tenant-scoped stores. Scope must hand out stores that
// cannot see any other tenant's rows.
type Provider interface {
	Directory() Directory
	Scope(ctx context.Context, tenantID string) (Store, error)
}
