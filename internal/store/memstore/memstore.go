// Package memstore is an in-memory implementation of the store
// interfaces. It backs the test suites and the development mode where no
// postgres server is available; semantics (uniqueness, case-insensitive
// role lookup, per-tenant isolation) mirror the gorm implementation.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"identity-service/internal/model"
	"identity-service/internal/store"
)

// Provider keeps one isolated scope per tenant id.
type Provider struct {
	mu        sync.Mutex
	directory *Directory
	scopes    map[string]*Scope
}

func NewProvider() *Provider {
	return &Provider{
		directory: &Directory{tenants: make(map[string]model.Tenant)},
		scopes:    make(map[string]*Scope),
	}
}

func (p *Provider) Directory() store.Directory {
	return p.directory
}

func (p *Provider) Scope(ctx context.Context, tenantID string) (store.Store, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	scope, ok := p.scopes[tenantID]
	if !ok {
		scope = newScope()
		p.scopes[tenantID] = scope
	}
	return scope, nil
}

// Directory is the in-memory tenant directory.
type Directory struct {
	mu      sync.Mutex
	tenants map[string]model.Tenant
}

func (d *Directory) GetTenant(ctx context.Context, id string) (*model.Tenant, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	tenant, ok := d.tenants[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &tenant, nil
}

func (d *Directory) ListTenants(ctx context.Context) ([]model.Tenant, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]model.Tenant, 0, len(d.tenants))
	for _, tenant := range d.tenants {
		out = append(out, tenant)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (d *Directory) CreateTenant(ctx context.Context, tenant *model.Tenant) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.tenants[tenant.ID]; ok {
		return store.ErrDuplicate
	}
	tenant.CreatedAt = time.Now()
	tenant.UpdatedAt = tenant.CreatedAt
	d.tenants[tenant.ID] = *tenant
	return nil
}

// Scope is one tenant's isolated in-memory store.
type Scope struct {
	mu         sync.Mutex
	nextID     uint
	users      map[uint]model.User
	roles      map[uint]model.Role
	roleClaims []model.RoleClaim
	userRoles  []model.UserRole
	userClaims []model.UserClaim

	// FailConnect makes CanConnect fail, for provisioning-isolation tests.
	FailConnect bool
}

func newScope() *Scope {
	return &Scope{
		nextID: 1,
		users:  make(map[uint]model.User),
		roles:  make(map[uint]model.Role),
	}
}

func (s *Scope) id() uint {
	id := s.nextID
	s.nextID++
	return id
}

func (s *Scope) CanConnect(ctx context.Context) error {
	if s.FailConnect {
		return context.DeadlineExceeded
	}
	return nil
}

func (s *Scope) Migrate(ctx context.Context) error {
	return nil
}

func (s *Scope) FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Scope) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Scope) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return store.ErrDuplicate
		}
	}
	user.ID = s.id()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = *user
	return nil
}

func (s *Scope) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return store.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	s.users[user.ID] = *user
	return nil
}

func (s *Scope) FindRoleByName(ctx context.Context, name string) (*model.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, role := range s.roles {
		if strings.EqualFold(role.Name, name) {
			r := role
			return &r, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Scope) CreateRole(ctx context.Context, role *model.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.roles {
		if strings.EqualFold(existing.Name, role.Name) {
			return store.ErrDuplicate
		}
	}
	role.ID = s.id()
	role.CreatedAt = time.Now()
	role.UpdatedAt = role.CreatedAt
	s.roles[role.ID] = *role
	return nil
}

func (s *Scope) RoleClaims(ctx context.Context, roleID uint) ([]model.RoleClaim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.RoleClaim
	for _, claim := range s.roleClaims {
		if claim.RoleID == roleID {
			out = append(out, claim)
		}
	}
	return out, nil
}

func (s *Scope) AddRoleClaim(ctx context.Context, claim *model.RoleClaim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.roleClaims {
		if existing.RoleID == claim.RoleID && existing.ClaimType == claim.ClaimType && existing.ClaimValue == claim.ClaimValue {
			return store.ErrDuplicate
		}
	}
	claim.ID = s.id()
	claim.CreatedAt = time.Now()
	s.roleClaims = append(s.roleClaims, *claim)
	return nil
}

func (s *Scope) UserRoles(ctx context.Context, userID uint) ([]model.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Role
	for _, ur := range s.userRoles {
		if ur.UserID == userID {
			if role, ok := s.roles[ur.RoleID]; ok {
				out = append(out, role)
			}
		}
	}
	return out, nil
}

func (s *Scope) UserHasRole(ctx context.Context, userID, roleID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ur := range s.userRoles {
		if ur.UserID == userID && ur.RoleID == roleID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Scope) AddUserRole(ctx context.Context, userID, roleID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ur := range s.userRoles {
		if ur.UserID == userID && ur.RoleID == roleID {
			return store.ErrDuplicate
		}
	}
	s.userRoles = append(s.userRoles, model.UserRole{ID: s.id(), UserID: userID, RoleID: roleID, CreatedAt: time.Now()})
	return nil
}

func (s *Scope) UserClaims(ctx context.Context, userID uint) ([]model.UserClaim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.UserClaim
	for _, claim := range s.userClaims {
		if claim.UserID == userID {
			out = append(out, claim)
		}
	}
	return out, nil
}

// AddUserClaim attaches a direct claim to a user. Only tests and future
// management surfaces need it, so it is not part of store.Store.
func (s *Scope) AddUserClaim(ctx context.Context, claim *model.UserClaim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	claim.ID = s.id()
	claim.CreatedAt = time.Now()
	s.userClaims = append(s.userClaims, *claim)
	return nil
}
