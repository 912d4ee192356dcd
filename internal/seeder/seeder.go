// Package seeder brings a fresh or partially-initialized deployment into
// a fully provisioned state: the root tenant exists, every tenant has
// the default roles with their permission tiers attached, and every
// tenant with a contact email has an administrator account. Every step
// is guarded by an existence check, so the whole run is safe to repeat
// on each process start and tolerates concurrent seeders racing on the
// same store.
package seeder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"identity-service/internal/model"
	"identity-service/internal/permission"
	"identity-service/internal/store"
	"identity-service/pkg/config"
	"identity-service/prometheus"
)

// rootValidityYears is the validity window given to a freshly created
// root tenant. Expiry is never enforced for root anyway.
const rootValidityYears = 2

// Seeder provisions tenants and their role/permission/admin state.
type Seeder struct {
	provider store.Provider
	cfg      config.SeedConfig
	log      *zap.Logger

	now func() time.Time
}

func New(provider store.Provider, cfg config.SeedConfig, log *zap.Logger) *Seeder {
	return &Seeder{
		provider: provider,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// RunForAllTenants ensures the root tenant, then seeds every tenant in
// the directory against its own isolated store. A tenant whose seeding
// fails is logged and skipped; the run continues with the next tenant.
func (s *Seeder) RunForAllTenants(ctx context.Context) error {
	if err := s.EnsureRootTenant(ctx); err != nil {
		return fmt.Errorf("ensure root tenant: %w", err)
	}

	tenants, err := s.provider.Directory().ListTenants(ctx)
	if err != nil {
		return fmt.Errorf("list tenants: %w", err)
	}

	for i := range tenants {
		tenant := &tenants[i]
		if err := s.seedTenant(ctx, tenant); err != nil {
			prometheus.RecordSeedError(tenant.ID)
			s.log.Error("tenant seeding failed",
				zap.String("tenant", tenant.ID),
				zap.Error(err))
			continue
		}
		prometheus.RecordSeededTenant()
		s.log.Info("tenant seeded", zap.String("tenant", tenant.ID))
	}

	return nil
}

// EnsureRootTenant creates the reserved root tenant record if the
// directory does not hold one yet.
func (s *Seeder) EnsureRootTenant(ctx context.Context) error {
	dir := s.provider.Directory()

	_, err := dir.GetTenant(ctx, model.RootTenantID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	root := &model.Tenant{
		ID:        model.RootTenantID,
		Name:      s.cfg.RootTenantName,
		Email:     s.cfg.RootTenantEmail,
		FirstName: "Platform",
		LastName:  "Administrator",
		Active:    true,
		ValidUpTo: s.now().AddDate(rootValidityYears, 0, 0),
	}

	if err := dir.CreateTenant(ctx, root); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// Lost the creation race to another seeder. The record exists,
			// which is all this step guarantees.
			s.log.Warn("root tenant created concurrently")
			return nil
		}
		return err
	}

	s.log.Info("root tenant created", zap.String("email", root.Email))
	return nil
}

// seedTenant runs the role/permission/admin sequence against one
// tenant's store, gated on connectivity and schema migration.
func (s *Seeder) seedTenant(ctx context.Context, tenant *model.Tenant) error {
	scope, err := s.provider.Scope(ctx, tenant.ID)
	if err != nil {
		return fmt.Errorf("resolve scope: %w", err)
	}

	if err := scope.CanConnect(ctx); err != nil {
		return fmt.Errorf("store unreachable: %w", err)
	}
	if err := scope.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	if err := s.EnsureDefaultRoles(ctx, tenant); err != nil {
		return err
	}
	return s.EnsureTenantAdministrator(ctx, tenant)
}

// EnsureDefaultRoles creates any missing default role and attaches its
// permission tier: Basic tier to the Basic role, Admin tier to the Admin
// role, plus the Root tier when the tenant is root.
func (s *Seeder) EnsureDefaultRoles(ctx context.Context, tenant *model.Tenant) error {
	scope, err := s.provider.Scope(ctx, tenant.ID)
	if err != nil {
		return fmt.Errorf("resolve scope: %w", err)
	}

	for _, roleName := range model.DefaultRoles {
		role, err := s.ensureRole(ctx, scope, roleName)
		if err != nil {
			return fmt.Errorf("ensure role %q: %w", roleName, err)
		}

		switch roleName {
		case model.RoleBasic:
			err = s.attachPermissions(ctx, scope, role, permission.Basic())
		case model.RoleAdmin:
			err = s.attachPermissions(ctx, scope, role, permission.Admin())
			if err == nil && tenant.IsRoot() {
				err = s.attachPermissions(ctx, scope, role, permission.Root())
			}
		}
		if err != nil {
			return fmt.Errorf("attach permissions to role %q: %w", roleName, err)
		}
	}

	return nil
}

func (s *Seeder) ensureRole(ctx context.Context, scope store.Store, name string) (*model.Role, error) {
	role, err := scope.FindRoleByName(ctx, name)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	role = &model.Role{Name: name, Description: name + " role"}
	if err := scope.CreateRole(ctx, role); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// Concurrent seeder won the insert; read its row back.
			return scope.FindRoleByName(ctx, name)
		}
		return nil, err
	}
	return role, nil
}

// attachPermissions inserts one claim row per missing (role, permission)
// pair. Each insert commits on its own: a mid-loop failure leaves the
// earlier grants in place and the next run completes the remainder.
func (s *Seeder) attachPermissions(ctx context.Context, scope store.Store, role *model.Role, perms []permission.Permission) error {
	current, err := scope.RoleClaims(ctx, role.ID)
	if err != nil {
		return err
	}

	existing := make(map[string]struct{}, len(current))
	for _, claim := range current {
		if claim.ClaimType == model.ClaimTypePermission {
			existing[claim.ClaimValue] = struct{}{}
		}
	}

	for _, perm := range perms {
		if _, ok := existing[perm.Name]; ok {
			continue
		}
		claim := &model.RoleClaim{
			RoleID:      role.ID,
			ClaimType:   model.ClaimTypePermission,
			ClaimValue:  perm.Name,
			Description: perm.Description,
			Group:       perm.Group,
		}
		if err := scope.AddRoleClaim(ctx, claim); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				s.log.Warn("permission claim created concurrently",
					zap.String("role", role.Name),
					zap.String("permission", perm.Name))
				continue
			}
			return err
		}
	}

	return nil
}

// EnsureTenantAdministrator creates the tenant's administrator account
// from the tenant's contact email and grants it the Admin role. Tenants
// without a contact email are left alone.
func (s *Seeder) EnsureTenantAdministrator(ctx context.Context, tenant *model.Tenant) error {
	if tenant.Email == "" {
		return nil
	}

	scope, err := s.provider.Scope(ctx, tenant.ID)
	if err != nil {
		return fmt.Errorf("resolve scope: %w", err)
	}

	user, err := scope.FindUserByEmail(ctx, tenant.Email)
	if errors.Is(err, store.ErrNotFound) {
		user, err = s.createAdminUser(ctx, scope, tenant)
	}
	if err != nil {
		return fmt.Errorf("ensure admin user: %w", err)
	}

	adminRole, err := scope.FindRoleByName(ctx, model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("find admin role: %w", err)
	}

	has, err := scope.UserHasRole(ctx, user.ID, adminRole.ID)
	if err != nil {
		return err
	}
	if has {
		return nil
	}

	if err := scope.AddUserRole(ctx, user.ID, adminRole.ID); err != nil && !errors.Is(err, store.ErrDuplicate) {
		return fmt.Errorf("grant admin role: %w", err)
	}
	return nil
}

func (s *Seeder) createAdminUser(ctx context.Context, scope store.Store, tenant *model.Tenant) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.DefaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	firstName := tenant.FirstName
	if firstName == "" {
		firstName = "Tenant"
	}
	lastName := tenant.LastName
	if lastName == "" {
		lastName = "Administrator"
	}

	user := &model.User{
		Username:       tenant.Email,
		Email:          tenant.Email,
		FirstName:      firstName,
		LastName:       lastName,
		PasswordHash:   string(hash),
		Active:         true,
		EmailConfirmed: true,
		PhoneConfirmed: true,
	}

	if err := scope.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// Concurrent seeder created the account first.
			return scope.FindUserByEmail(ctx, tenant.Email)
		}
		return nil, err
	}

	s.log.Info("tenant administrator created",
		zap.String("tenant", tenant.ID),
		zap.String("email", user.Email))
	return user, nil
}
