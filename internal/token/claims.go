package token

import (
	"github.com/golang-jwt/jwt/v4"

	"identity-service/internal/model"
)

// Claim is one typed key-value fact attached to an identity. Permission
// grants travel as {Type: "Permission", Value: <permission name>}.
type Claim struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Claims is the access token payload: identity fields plus the union of
// the user's roles, direct claims, and every permission claim attached
// to those roles. The claim set is the sole input to authorization.
type Claims struct {
	UserID  uint     `json:"user_id"`
	Email   string   `json:"email"`
	Name    string   `json:"name"`
	Surname string   `json:"surname"`
	Tenant  string   `json:"tenant"`
	Phone   string   `json:"phone,omitempty"`
	Roles   []string `json:"roles,omitempty"`
	Claims  []Claim  `json:"claims,omitempty"`
	jwt.RegisteredClaims
}

// HasClaim reports whether the set contains a claim of the given type
// and exact value.
func (c *Claims) HasClaim(claimType, value string) bool {
	for _, claim := range c.Claims {
		if claim.Type == claimType && claim.Value == value {
			return true
		}
	}
	return false
}

// HasPermission reports whether the set carries the named permission.
func (c *Claims) HasPermission(name string) bool {
	return c.HasClaim(model.ClaimTypePermission, name)
}
