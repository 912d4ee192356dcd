package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents a user stored in a tenant's isolated store. The
// refresh token fields are the sole server-side revocation handle:
// rotating them invalidates every previously issued refresh token.
type User struct {
	ID                 uint           `json:"id" gorm:"primaryKey"`
	Username           string         `json:"username" gorm:"type:varchar(100);uniqueIndex"`
	Email              string         `json:"email" gorm:"type:varchar(100);uniqueIndex"`
	FirstName          string         `json:"first_name" gorm:"type:varchar(100)"`
	LastName           string         `json:"last_name" gorm:"type:varchar(100)"`
	PhoneNumber        string         `json:"phone_number" gorm:"type:varchar(30)"`
	PasswordHash       string         `json:"-" gorm:"type:varchar(255)"`
	Active             bool           `json:"active" gorm:"default:true"`
	EmailConfirmed     bool           `json:"email_confirmed" gorm:"default:false"`
	PhoneConfirmed     bool           `json:"phone_confirmed" gorm:"default:false"`
	RefreshToken       string         `json:"-" gorm:"type:varchar(255)"`
	RefreshTokenExpiry time.Time      `json:"-"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `json:"-" gorm:"index"`
}
