package policy

import (
	"sort"

	"github.com/diewo77/vae-dossiers/internal/models"
)

// Profile is the permission set attached to a role.
type Profile struct {
	name        string
	permissions map[Permission]bool
}

func NewProfile(name string, perms ...Permission) *Profile {
	p := &Profile{name: name, permissions: make(map[Permission]bool, len(perms))}
	for _, perm := range perms {
		p.permissions[perm] = true
	}
	return p
}

func (p *Profile) Name() string { return p.name }

// Permissions returns the granted permissions sorted.
func (p *Profile) Permissions() []Permission {
	out := make([]Permission, 0, len(p.permissions))
	for perm := range p.permissions {
		out = append(out, perm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (p *Profile) HasPermission(requested Permission) bool {
	for perm := range p.permissions {
		if perm.Matches(requested) {
			return true
		}
	}
	return false
}

var roleProfiles = map[models.Role]*Profile{
	models.RoleAdmin: NewProfile("admin", PermissionSuperAdmin),
	models.RoleAAP: NewProfile("aap",
		NewPermission(ResourceCandidacy, ActionView),
		NewPermission(ResourceCandidacy, ActionUpdate),
		NewPermission(ResourceFeasibility, ActionView),
	),
	models.RoleCandidate: NewProfile("candidate",
		NewPermission(ResourceCandidacy, ActionView),
		NewPermission(ResourceCandidacy, ActionSwitchAutonome),
		NewPermission(ResourceFeasibility, ActionView),
	),
}

// ProfileForRole returns the profile of a role, or nil for unknown roles.
func ProfileForRole(r models.Role) *Profile { return roleProfiles[r] }
