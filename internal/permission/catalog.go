// Package permission holds the closed catalog of named permissions and
// their role tiers. The catalog is static data: the seeder reads it to
// attach grants to roles and the authorization registry reads it to
// declare one policy per permission.
package permission

import "fmt"

// Feature groups.
const (
	FeatureTenants    = "Tenants"
	FeatureUsers      = "Users"
	FeatureUserRoles  = "UserRoles"
	FeatureRoles      = "Roles"
	FeatureRoleClaims = "RoleClaims"
	FeatureSchools    = "Schools"
)

// Actions a permission can grant on a feature.
const (
	ActionCreate              = "Create"
	ActionRead                = "Read"
	ActionUpdate              = "Update"
	ActionDelete              = "Delete"
	ActionUpgradeSubscription = "UpgradeSubscription"
)

// Permission is one catalog entry. IsBasic marks membership in the Basic
// tier, IsRoot restricts the entry to the root tenant's Admin role;
// everything else belongs to the Admin tier.
type Permission struct {
	Name        string
	Description string
	Group       string
	IsBasic     bool
	IsRoot      bool
}

// Name builds the canonical permission name for a feature/action pair,
// e.g. "Permission.Schools.Read".
func Name(feature, action string) string {
	return fmt.Sprintf("Permission.%s.%s", feature, action)
}

func describe(feature, action string) Permission {
	return Permission{
		Name:        Name(feature, action),
		Description: fmt.Sprintf("%s %s", action, feature),
		Group:       feature,
	}
}

func basic(feature, action string) Permission {
	p := describe(feature, action)
	p.IsBasic = true
	return p
}

func root(feature, action string) Permission {
	p := describe(feature, action)
	p.IsRoot = true
	return p
}

var catalog = []Permission{
	describe(FeatureUsers, ActionCreate),
	describe(FeatureUsers, ActionRead),
	describe(FeatureUsers, ActionUpdate),
	describe(FeatureUsers, ActionDelete),

	describe(FeatureUserRoles, ActionRead),
	describe(FeatureUserRoles, ActionUpdate),

	describe(FeatureRoles, ActionCreate),
	describe(FeatureRoles, ActionRead),
	describe(FeatureRoles, ActionUpdate),
	describe(FeatureRoles, ActionDelete),

	describe(FeatureRoleClaims, ActionRead),
	describe(FeatureRoleClaims, ActionUpdate),

	describe(FeatureSchools, ActionCreate),
	basic(FeatureSchools, ActionRead),
	describe(FeatureSchools, ActionUpdate),
	describe(FeatureSchools, ActionDelete),

	root(FeatureTenants, ActionCreate),
	root(FeatureTenants, ActionRead),
	root(FeatureTenants, ActionUpdate),
	root(FeatureTenants, ActionUpgradeSubscription),
}

// All returns every permission in the catalog.
func All() []Permission {
	out := make([]Permission, len(catalog))
	copy(out, catalog)
	return out
}

// Basic returns the Basic tier: entries flagged basic.
func Basic() []Permission {
	return filter(func(p Permission) bool { return p.IsBasic })
}

// Admin returns the Admin tier: everything except root-only entries.
// Basic is a subset of Admin by construction.
func Admin() []Permission {
	return filter(func(p Permission) bool { return !p.IsRoot })
}

// Root returns the entries reserved for the root tenant's Admin role.
func Root() []Permission {
	return filter(func(p Permission) bool { return p.IsRoot })
}

func filter(keep func(Permission) bool) []Permission {
	var out []Permission
	for _, p := range catalog {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
