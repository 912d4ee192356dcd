package authz

import (
	"testing"

	"identity-service/internal/model"
	"identity-service/internal/permission"
	"identity-service/internal/token"
)

func claimSet(values ...string) *token.Claims {
	claims := &token.Claims{}
	for _, v := range values {
		claims.Claims = append(claims.Claims, token.Claim{Type: model.ClaimTypePermission, Value: v})
	}
	return claims
}

func TestRegistryCoversCatalog(t *testing.T) {
	registry := NewRegistry()

	if got, want := registry.Len(), len(permission.All()); got != want {
		t.Fatalf("registry has %d policies, catalog has %d permissions", got, want)
	}
	for _, p := range permission.All() {
		if _, ok := registry.Policy(p.Name); !ok {
			t.Errorf("no policy registered for %q", p.Name)
		}
	}
}

func TestEvaluate(t *testing.T) {
	registry := NewRegistry()
	read := permission.Name(permission.FeatureSchools, permission.ActionRead)
	update := permission.Name(permission.FeatureSchools, permission.ActionUpdate)

	tests := []struct {
		name       string
		claims     *token.Claims
		permission string
		want       bool
	}{
		{"matching claim", claimSet(read), read, true},
		{"different value", claimSet(update), read, false},
		{"required among others", claimSet(update, read, "Permission.Users.Read"), read, true},
		{"empty claim set", claimSet(), read, false},
		{"nil claims", nil, read, false},
		{"unknown policy never fails open", claimSet("Permission.Made.Up"), "Permission.Made.Up", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := registry.Evaluate(tt.claims, tt.permission); got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.permission, got, tt.want)
			}
		})
	}
}

func TestEvaluateIgnoresOtherClaimTypes(t *testing.T) {
	registry := NewRegistry()
	read := permission.Name(permission.FeatureSchools, permission.ActionRead)

	claims := &token.Claims{
		Claims: []token.Claim{{Type: "Scope", Value: read}},
	}

	if registry.Evaluate(claims, read) {
		t.Error("claim of a different type must not satisfy a permission policy")
	}
}
