package seeder

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"identity-service/internal/model"
	"identity-service/internal/permission"
	"identity-service/internal/store"
	"identity-service/internal/store/memstore"
	"identity-service/pkg/config"
)

const (
	testRootEmail = "admin@school.test"
	testPassword  = "Secur3P@ssword!"
)

func testSeeder() (*Seeder, *memstore.Provider) {
	provider := memstore.NewProvider()
	cfg := config.SeedConfig{
		DefaultAdminPassword: testPassword,
		RootTenantName:       "Platform Root",
		RootTenantEmail:      testRootEmail,
	}
	return New(provider, cfg, zap.NewNop()), provider
}

func addTenant(t *testing.T, provider *memstore.Provider, tenant model.Tenant) {
	t.Helper()
	if err := provider.Directory().CreateTenant(context.Background(), &tenant); err != nil {
		t.Fatalf("CreateTenant(%s): %v", tenant.ID, err)
	}
}

func permissionValues(t *testing.T, scope store.Store, roleName string) map[string]bool {
	t.Helper()
	ctx := context.Background()

	role, err := scope.FindRoleByName(ctx, roleName)
	if err != nil {
		t.Fatalf("FindRoleByName(%s): %v", roleName, err)
	}
	claims, err := scope.RoleClaims(ctx, role.ID)
	if err != nil {
		t.Fatalf("RoleClaims: %v", err)
	}

	values := make(map[string]bool)
	for _, claim := range claims {
		if claim.ClaimType != model.ClaimTypePermission {
			t.Errorf("unexpected claim type %q on role %s", claim.ClaimType, roleName)
		}
		if values[claim.ClaimValue] {
			t.Errorf("duplicate permission claim %q on role %s", claim.ClaimValue, roleName)
		}
		values[claim.ClaimValue] = true
	}
	return values
}

func TestEnsureRootTenant(t *testing.T) {
	seed, provider := testSeeder()
	ctx := context.Background()

	if err := seed.EnsureRootTenant(ctx); err != nil {
		t.Fatalf("EnsureRootTenant: %v", err)
	}

	root, err := provider.Directory().GetTenant(ctx, model.RootTenantID)
	if err != nil {
		t.Fatalf("GetTenant(root): %v", err)
	}
	if !root.Active {
		t.Error("root tenant must be created active")
	}
	if root.Email != testRootEmail {
		t.Errorf("root email = %q, want %q", root.Email, testRootEmail)
	}
	if !root.ValidUpTo.After(time.Now().AddDate(1, 0, 0)) {
		t.Errorf("root validity window too short: %v", root.ValidUpTo)
	}

	// Re-running must not fail on the existing record.
	if err := seed.EnsureRootTenant(ctx); err != nil {
		t.Fatalf("EnsureRootTenant second run: %v", err)
	}
}

func TestRootAdminRoleCarriesAllTiers(t *testing.T) {
	seed, provider := testSeeder()
	ctx := context.Background()

	if err := seed.RunForAllTenants(ctx); err != nil {
		t.Fatalf("RunForAllTenants: %v", err)
	}

	scope, _ := provider.Scope(ctx, model.RootTenantID)
	adminPerms := permissionValues(t, scope, model.RoleAdmin)

	for _, p := range permission.All() {
		if !adminPerms[p.Name] {
			t.Errorf("root Admin role missing permission %q", p.Name)
		}
	}

	basicPerms := permissionValues(t, scope, model.RoleBasic)
	for _, p := range permission.Basic() {
		if !basicPerms[p.Name] {
			t.Errorf("Basic role missing permission %q", p.Name)
		}
	}
	if len(basicPerms) != len(permission.Basic()) {
		t.Errorf("Basic role carries %d permissions, want %d", len(basicPerms), len(permission.Basic()))
	}
}

func TestNonRootAdminRoleHasNoRootTier(t *testing.T) {
	seed, provider := testSeeder()
	ctx := context.Background()

	addTenant(t, provider, model.Tenant{
		ID: "greenfield", Name: "Greenfield High", Email: "admin@greenfield.test",
		Active: true, ValidUpTo: time.Now().AddDate(1, 0, 0),
	})

	if err := seed.RunForAllTenants(ctx); err != nil {
		t.Fatalf("RunForAllTenants: %v", err)
	}

	scope, _ := provider.Scope(ctx, "greenfield")
	adminPerms := permissionValues(t, scope, model.RoleAdmin)

	for _, p := range permission.Root() {
		if adminPerms[p.Name] {
			t.Errorf("non-root Admin role carries root permission %q", p.Name)
		}
	}
	if len(adminPerms) != len(permission.Admin()) {
		t.Errorf("Admin role carries %d permissions, want %d", len(adminPerms), len(permission.Admin()))
	}
}

func TestSeedingIsIdempotent(t *testing.T) {
	seed, provider := testSeeder()
	ctx := context.Background()

	if err := seed.RunForAllTenants(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}

	scope, _ := provider.Scope(ctx, model.RootTenantID)
	firstAdmin := permissionValues(t, scope, model.RoleAdmin)
	admin, err := scope.FindUserByEmail(ctx, testRootEmail)
	if err != nil {
		t.Fatalf("admin user missing after first run: %v", err)
	}

	if err := seed.RunForAllTenants(ctx); err != nil {
		t.Fatalf("second run: %v", err)
	}

	secondAdmin := permissionValues(t, scope, model.RoleAdmin)
	if len(firstAdmin) != len(secondAdmin) {
		t.Errorf("admin claim count changed across runs: %d -> %d", len(firstAdmin), len(secondAdmin))
	}

	again, err := scope.FindUserByEmail(ctx, testRootEmail)
	if err != nil {
		t.Fatalf("admin user missing after second run: %v", err)
	}
	if again.ID != admin.ID {
		t.Errorf("second run created a new admin user: id %d -> %d", admin.ID, again.ID)
	}

	roles, err := scope.UserRoles(ctx, admin.ID)
	if err != nil {
		t.Fatalf("UserRoles: %v", err)
	}
	if len(roles) != 1 || roles[0].Name != model.RoleAdmin {
		t.Errorf("admin user roles = %v, want exactly [Admin]", roles)
	}
}

func TestAdministratorCreation(t *testing.T) {
	seed, provider := testSeeder()
	ctx := context.Background()

	if err := seed.RunForAllTenants(ctx); err != nil {
		t.Fatalf("RunForAllTenants: %v", err)
	}

	scope, _ := provider.Scope(ctx, model.RootTenantID)
	admin, err := scope.FindUserByEmail(ctx, testRootEmail)
	if err != nil {
		t.Fatalf("FindUserByEmail: %v", err)
	}

	if !admin.Active {
		t.Error("administrator must be created active")
	}
	if !admin.EmailConfirmed || !admin.PhoneConfirmed {
		t.Error("administrator must be created with confirmed email and phone")
	}
	if admin.Username != testRootEmail {
		t.Errorf("administrator username = %q, want contact email", admin.Username)
	}
	if admin.PasswordHash == "" || admin.PasswordHash == testPassword {
		t.Error("administrator password must be stored hashed")
	}
}

func TestTenantWithoutContactEmailGetsNoAdministrator(t *testing.T) {
	seed, provider := testSeeder()
	ctx := context.Background()

	tenant := &model.Tenant{
		ID: "silent", Name: "No Contact", Active: true,
		ValidUpTo: time.Now().AddDate(1, 0, 0),
	}
	addTenant(t, provider, *tenant)

	// No roles are seeded here on purpose: anything other than a no-op
	// would fail looking up the Admin role.
	if err := seed.EnsureTenantAdministrator(ctx, tenant); err != nil {
		t.Fatalf("EnsureTenantAdministrator: %v", err)
	}
}

func TestSeedingContinuesPastFailingTenant(t *testing.T) {
	seed, provider := testSeeder()
	ctx := context.Background()

	addTenant(t, provider, model.Tenant{
		ID: "broken", Name: "Broken", Email: "admin@broken.test",
		Active: true, ValidUpTo: time.Now().AddDate(1, 0, 0),
	})
	addTenant(t, provider, model.Tenant{
		ID: "working", Name: "Working", Email: "admin@working.test",
		Active: true, ValidUpTo: time.Now().AddDate(1, 0, 0),
	})

	brokenScope, _ := provider.Scope(ctx, "broken")
	brokenScope.(*memstore.Scope).FailConnect = true

	if err := seed.RunForAllTenants(ctx); err != nil {
		t.Fatalf("RunForAllTenants must not fail the whole run: %v", err)
	}

	workingScope, _ := provider.Scope(ctx, "working")
	if _, err := workingScope.FindRoleByName(ctx, model.RoleAdmin); err != nil {
		t.Errorf("working tenant was not seeded: %v", err)
	}
	if _, err := brokenScope.FindRoleByName(ctx, model.RoleAdmin); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("broken tenant unexpectedly seeded, err = %v", err)
	}
}
