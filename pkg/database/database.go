package database

import (
	"fmt"
	"strings"
	"sync"

	"identity-service/internal/model"
	"identity-service/pkg/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Manager hands out gorm connections: one master connection owning the
// tenant directory, plus one connection per tenant pinned to that
// tenant's schema. Handles are cached per tenant id.
type Manager struct {
	cfg    config.DBConfig
	master *gorm.DB

	mu      sync.Mutex
	tenants map[string]*gorm.DB
}

// NewManager connects to the master database and migrates the tenant
// directory table.
func NewManager(cfg *config.Config) (*Manager, error) {
	db, err := open(cfg.DB, cfg.DB.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("connect master database: %w", err)
	}

	if err := db.AutoMigrate(&model.Tenant{}); err != nil {
		return nil, fmt.Errorf("migrate tenant directory: %w", err)
	}

	return &Manager{
		cfg:     cfg.DB,
		master:  db,
		tenants: make(map[string]*gorm.DB),
	}, nil
}

// Master returns the directory connection.
func (m *Manager) Master() *gorm.DB {
	return m.master
}

// Tenant returns a connection whose search_path is pinned to the
// tenant's schema, creating the schema on first use.
func (m *Manager) Tenant(tenantID string) (*gorm.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if db, ok := m.tenants[tenantID]; ok {
		return db, nil
	}

	schema := SchemaName(tenantID)
	if err := m.master.Exec("CREATE SCHEMA IF NOT EXISTS " + schema).Error; err != nil {
		return nil, fmt.Errorf("create schema for tenant %q: %w", tenantID, err)
	}

	dsn := m.cfg.GetDSN() + " search_path=" + schema
	db, err := open(m.cfg, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect tenant %q: %w", tenantID, err)
	}

	m.tenants[tenantID] = db
	return db, nil
}

func open(cfg config.DBConfig, dsn string) (*gorm.DB, error) {
	// Set default log level if not specified
	logLevel := cfg.LogLevel
	if logLevel == 0 {
		logLevel = logger.Warn
	}

	// DisableAutoPrepare prevents "prepared statement already exists" errors
	pgConfig := postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // Disables implicit prepared statement usage
	}

	db, err := gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return db, nil
}

// SchemaName maps a tenant id to its postgres schema name. Anything
// outside [a-z0-9_] is folded to underscore so the id is safe to splice
// into DDL.
func SchemaName(tenantID string) string {
	var b strings.Builder
	b.WriteString("tenant_")
	for _, r := range strings.ToLower(tenantID) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
