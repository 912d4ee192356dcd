// Package authz turns catalog permissions into authorization decisions.
// One named policy exists per catalog entry, registered once at startup
// from the static permission list. Evaluation is a pure predicate over
// the claim set embedded in an already-validated token: revoking a
// permission from a role does not affect unexpired tokens, and an
// unknown policy never fails open.
package authz

import (
	"identity-service/internal/permission"
	"identity-service/internal/token"
)

// Policy requires the caller to hold a "Permission" claim whose value
// equals the named permission.
type Policy struct {
	Permission string
}

// Evaluate reports whether the claim set satisfies the policy.
func (p Policy) Evaluate(claims *token.Claims) bool {
	return claims != nil && claims.HasPermission(p.Permission)
}

// Registry holds the named policies, one per catalog permission.
type Registry struct {
	policies map[string]Policy
}

// NewRegistry enumerates the permission catalog and registers a policy
// per entry. Registration is order-independent and happens once.
func NewRegistry() *Registry {
	catalog := permission.All()
	policies := make(map[string]Policy, len(catalog))
	for _, perm := range catalog {
		policies[perm.Name] = Policy{Permission: perm.Name}
	}
	return &Registry{policies: policies}
}

// Policy looks up a registered policy by permission name.
func (r *Registry) Policy(name string) (Policy, bool) {
	p, ok := r.policies[name]
	return p, ok
}

// Evaluate succeeds iff a policy is registered for the permission and
// the claim set satisfies it.
func (r *Registry) Evaluate(claims *token.Claims, permissionName string) bool {
	p, ok := r.policies[permissionName]
	if !ok {
		return false
	}
	return p.Evaluate(claims)
}

// Len returns the number of registered policies.
func (r *Registry) Len() int {
	return len(r.policies)
}
