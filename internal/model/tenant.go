package model

import (
	"time"

	"gorm.io/gorm"
)

// RootTenantID is the reserved identifier of the platform tenant. The
// subscription-expiry check is skipped for it and its Admin role carries
// the Root permission tier.
const RootTenantID = "root"

// Tenant represents a tenant record in the directory. The ID doubles as
// the namespace key selecting the tenant's isolated store.
type Tenant struct {
	ID        string         `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Name      string         `json:"name" gorm:"type:varchar(100)"`
	Email     string         `json:"email" gorm:"type:varchar(100)"`
	FirstName string         `json:"first_name" gorm:"type:varchar(100)"`
	LastName  string         `json:"last_name" gorm:"type:varchar(100)"`
	Active    bool           `json:"active" gorm:"default:true"`
	ValidUpTo time.Time      `json:"valid_up_to"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// IsRoot reports whether this is the reserved root tenant.
func (t *Tenant) IsRoot() bool {
	return t.ID == RootTenantID
}

// Expired reports whether the tenant's validity window has passed.
// The root tenant never expires by policy.
func (t *Tenant) Expired(now time.Time) bool {
	if t.IsRoot() {
		return false
	}
	return t.ValidUpTo.Before(now)
}
