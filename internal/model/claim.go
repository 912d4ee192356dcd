package model

import "time"

// ClaimTypePermission is the claim type under which permission grants are
// materialized, on roles and in issued access tokens alike.
const ClaimTypePermission = "Permission"

// RoleClaim materializes a permission grant on a role. Uniqueness over
// (role, type, value) keeps seeding idempotent.
type RoleClaim struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	RoleID      uint      `json:"role_id" gorm:"index;not null;uniqueIndex:idx_role_claim"`
	ClaimType   string    `json:"claim_type" gorm:"type:varchar(50);not null;uniqueIndex:idx_role_claim"`
	ClaimValue  string    `json:"claim_value" gorm:"type:varchar(200);not null;uniqueIndex:idx_role_claim"`
	Description string    `json:"description" gorm:"type:text"`
	Group       string    `json:"group" gorm:"column:claim_group;type:varchar(100)"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserClaim is a claim attached directly to a user, unioned into the
// token's claim set alongside role-derived permission claims.
type UserClaim struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"index;not null"`
	ClaimType  string    `json:"claim_type" gorm:"type:varchar(50);not null"`
	ClaimValue string    `json:"claim_value" gorm:"type:varchar(200);not null"`
	CreatedAt  time.Time `json:"created_at"`
}
