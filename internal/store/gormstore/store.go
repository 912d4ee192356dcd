// Package gormstore implements the store interfaces over the per-tenant
// gorm connections handed out by pkg/database.
package gormstore

import (
	"context"
	"errors"

	"identity-service/internal/model"
	"identity-service/internal/store"
	"identity-service/pkg/database"

	"gorm.io/gorm"
)

// Provider resolves tenant scopes through the connection manager.
type Provider struct {
	mgr *database.Manager
}

func NewProvider(mgr *database.Manager) *Provider {
	return &Provider{mgr: mgr}
}

func (p *Provider) Directory() store.Directory {
	return &directory{db: p.mgr.Master()}
}

func (p *Provider) Scope(ctx context.Context, tenantID string) (store.Store, error) {
	db, err := p.mgr.Tenant(tenantID)
	if err != nil {
		return nil, err
	}
	return &tenantStore{db: db}, nil
}

type directory struct {
	db *gorm.DB
}

func (d *directory) GetTenant(ctx context.Context, id string) (*model.Tenant, error) {
	var tenant model.Tenant
	if err := d.db.WithContext(ctx).First(&tenant, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &tenant, nil
}

func (d *directory) ListTenants(ctx context.Context) ([]model.Tenant, error) {
	var tenants []model.Tenant
	if err := d.db.WithContext(ctx).Order("id").Find(&tenants).Error; err != nil {
		return nil, translate(err)
	}
	return tenants, nil
}

func (d *directory) CreateTenant(ctx context.Context, tenant *model.Tenant) error {
	return translate(d.db.WithContext(ctx).Create(tenant).Error)
}

type tenantStore struct {
	db *gorm.DB
}

func (s *tenantStore) CanConnect(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *tenantStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&model.User{},
		&model.Role{},
		&model.RoleClaim{},
		&model.UserRole{},
		&model.UserClaim{},
	)
}

func (s *tenantStore) FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *tenantStore) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *tenantStore) CreateUser(ctx context.Context, user *model.User) error {
	return translate(s.db.WithContext(ctx).Create(user).Error)
}

func (s *tenantStore) SaveUser(ctx context.Context, user *model.User) error {
	return translate(s.db.WithContext(ctx).Save(user).Error)
}

func (s *tenantStore) FindRoleByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	if err := s.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&role).Error; err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

func (s *tenantStore) CreateRole(ctx context.Context, role *model.Role) error {
	return translate(s.db.WithContext(ctx).Create(role).Error)
}

func (s *tenantStore) RoleClaims(ctx context.Context, roleID uint) ([]model.RoleClaim, error) {
	var claims []model.RoleClaim
	if err := s.db.WithContext(ctx).Where("role_id = ?", roleID).Find(&claims).Error; err != nil {
		return nil, translate(err)
	}
	return claims, nil
}

func (s *tenantStore) AddRoleClaim(ctx context.Context, claim *model.RoleClaim) error {
	return translate(s.db.WithContext(ctx).Create(claim).Error)
}

func (s *tenantStore) UserRoles(ctx context.Context, userID uint) ([]model.Role, error) {
	var roles []model.Role
	err := s.db.WithContext(ctx).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Find(&roles).Error
	if err != nil {
		return nil, translate(err)
	}
	return roles, nil
}

func (s *tenantStore) UserHasRole(ctx context.Context, userID, roleID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.UserRole{}).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (s *tenantStore) AddUserRole(ctx context.Context, userID, roleID uint) error {
	return translate(s.db.WithContext(ctx).Create(&model.UserRole{UserID: userID, RoleID: roleID}).Error)
}

func (s *tenantStore) UserClaims(ctx context.Context, userID uint) ([]model.UserClaim, error) {
	var claims []model.UserClaim
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&claims).Error; err != nil {
		return nil, translate(err)
	}
	return claims, nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return store.ErrDuplicate
	default:
		return err
	}
}
