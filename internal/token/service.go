// Package token issues and refreshes the bearer tokens of the identity
// core. Access tokens are HS256-signed and short-lived; refresh tokens
// are opaque random values persisted per user and rotated on every
// successful login or refresh, which makes rotation the only server-side
// revocation mechanism.
package token

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"identity-service/internal/autherr"
	"identity-service/internal/model"
	"identity-service/internal/store"
	"identity-service/pkg/config"
)

// LoginRequest carries the credentials presented at login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest carries the expiring access token and the refresh token
// issued alongside it.
type RefreshRequest struct {
	CurrentToken        string `json:"current_token"`
	CurrentRefreshToken string `json:"current_refresh_token"`
}

// Response is the token pair returned by Login and Refresh.
type Response struct {
	Token              string    `json:"token"`
	RefreshToken       string    `json:"refresh_token"`
	RefreshTokenExpiry time.Time `json:"refresh_token_expiry"`
}

// Service authenticates credentials against a tenant's store and mints
// token pairs from the user's role and permission state.
type Service struct {
	provider store.Provider
	cfg      config.JWTConfig
	log      *zap.Logger

	// now is a test seam; time.Now outside tests.
	now func() time.Time
}

func NewService(provider store.Provider, cfg config.JWTConfig, log *zap.Logger) *Service {
	return &Service{
		provider: provider,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// Login authenticates username/password within the given tenant context
// and issues a fresh token pair. Every rejection is Unauthorized with a
// human-readable message; user lookup failures stay generic so usernames
// cannot be enumerated.
func (s *Service) Login(ctx context.Context, tenant *model.Tenant, req LoginRequest) (*Response, error) {
	if tenant == nil || !tenant.Active {
		return nil, autherr.Unauthorized("Tenant subscription is not active. Contact support.")
	}
	if req.Username == "" {
		return nil, autherr.Unauthorized("Username must be provided.")
	}
	if req.Password == "" {
		return nil, autherr.Unauthorized("Password must be provided.")
	}

	scope, err := s.provider.Scope(ctx, tenant.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve tenant scope: %w", err)
	}

	user, err := scope.FindUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, autherr.Unauthorized("Authentication failed.")
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, autherr.Unauthorized("Incorrect username or password.")
	}

	if !user.Active {
		return nil, autherr.Unauthorized("User is not active. Contact administrator.")
	}

	if tenant.Expired(s.now()) {
		return nil, autherr.Unauthorized("Subscription has expired. Contact support.")
	}

	s.log.Info("user authenticated",
		zap.String("tenant", tenant.ID),
		zap.String("username", user.Username))

	return s.issue(ctx, scope, tenant, user)
}

// Refresh exchanges an expired access token plus its refresh token for a
// new pair. The access token's signature and algorithm are verified with
// expiry ignored; the stored refresh token must match and be unexpired.
// The old refresh token is unusable afterwards.
func (s *Service) Refresh(ctx context.Context, tenant *model.Tenant, req RefreshRequest) (*Response, error) {
	if req.CurrentToken == "" {
		return nil, autherr.Unauthorized("Invalid refresh token request.")
	}

	claims, err := s.ParseExpired(req.CurrentToken)
	if err != nil {
		return nil, autherr.Unauthorized("Invalid token provided. Failed to generate new token.")
	}

	if tenant == nil {
		return nil, autherr.Unauthorized("Tenant subscription is not active. Contact support.")
	}

	scope, err := s.provider.Scope(ctx, tenant.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve tenant scope: %w", err)
	}

	user, err := scope.FindUserByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, autherr.Unauthorized("User not found.")
		}
		return nil, err
	}

	if user.RefreshToken != req.CurrentRefreshToken || !user.RefreshTokenExpiry.After(s.now()) {
		return nil, autherr.Unauthorized("Invalid refresh token request.")
	}

	return s.issue(ctx, scope, tenant, user)
}

// Parse validates a live access token: signature, HS256 algorithm, and
// standard claim validation including expiry.
func (s *Service) Parse(tokenString string) (*Claims, error) {
	return s.parse(tokenString)
}

// ParseExpired validates signature and algorithm but ignores expiry,
// which is how the expiring token is inspected during Refresh.
func (s *Service) ParseExpired(tokenString string) (*Claims, error) {
	return s.parse(tokenString, jwt.WithoutClaimsValidation())
}

func (s *Service) parse(tokenString string, opts ...jwt.ParserOption) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Any algorithm other than HMAC-SHA-256 is treated as tampering.
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return claims, nil
}

// issue assembles the claim set, signs a new access token, and rotates
// the user's stored refresh token.
func (s *Service) issue(ctx context.Context, scope store.Store, tenant *model.Tenant, user *model.User) (*Response, error) {
	claims, err := s.assembleClaims(ctx, scope, tenant, user)
	if err != nil {
		return nil, fmt.Errorf("assemble claims: %w", err)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	refresh, err := generateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	user.RefreshToken = refresh
	user.RefreshTokenExpiry = s.now().Add(time.Duration(s.cfg.RefreshTokenExpiryDays) * 24 * time.Hour)

	if err := scope.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("persist refresh token: %w", err)
	}

	s.log.Debug("token pair issued",
		zap.String("tenant", tenant.ID),
		zap.Uint("user_id", user.ID))

	return &Response{
		Token:              signed,
		RefreshToken:       user.RefreshToken,
		RefreshTokenExpiry: user.RefreshTokenExpiry,
	}, nil
}

// assembleClaims unions identity claims with the user's direct claims,
// the names of all roles held, and every permission claim attached to
// those roles, deduplicated by type+value.
func (s *Service) assembleClaims(ctx context.Context, scope store.Store, tenant *model.Tenant, user *model.User) (*Claims, error) {
	roles, err := scope.UserRoles(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	seen := make(map[Claim]struct{})
	var extra []Claim
	add := func(c Claim) {
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		extra = append(extra, c)
	}

	roleNames := make([]string, 0, len(roles))
	for _, role := range roles {
		roleNames = append(roleNames, role.Name)
		roleClaims, err := scope.RoleClaims(ctx, role.ID)
		if err != nil {
			return nil, err
		}
		for _, claim := range roleClaims {
			if claim.ClaimType == model.ClaimTypePermission {
				add(Claim{Type: claim.ClaimType, Value: claim.ClaimValue})
			}
		}
	}

	userClaims, err := scope.UserClaims(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	for _, claim := range userClaims {
		add(Claim{Type: claim.ClaimType, Value: claim.ClaimValue})
	}

	now := s.now()
	return &Claims{
		UserID:  user.ID,
		Email:   user.Email,
		Name:    user.FirstName,
		Surname: user.LastName,
		Tenant:  tenant.ID,
		Phone:   user.PhoneNumber,
		Roles:   roleNames,
		Claims:  extra,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.cfg.TokenExpiryMinutes) * time.Minute)),
		},
	}, nil
}

// generateRefreshToken returns 256 bits of cryptographically secure
// random data, base64-encoded.
func generateRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}
