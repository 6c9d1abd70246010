package policy

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Policy is a resource-level rule checked after the profile permission.
type Policy interface {
	Can(ctx context.Context, s *Subject, action Action, resource any) bool
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(ctx context.Context, s *Subject, action Action, resource any) bool

func (f PolicyFunc) Can(ctx context.Context, s *Subject, action Action, resource any) bool {
	return f(ctx, s, action, resource)
}

// Gate combines role profiles with resource policies.
type Gate struct {
	resolver Resolver
	policies map[string]Policy
}

func NewGate(resolver Resolver) *Gate {
	return &Gate{resolver: resolver, policies: make(map[string]Policy)}
}

// NewAccountGate wires the database resolver behind a cache and registers the
// candidacy and feasibility ownership policies.
func NewAccountGate(db *gorm.DB, cacheTTL time.Duration) (*Gate, *CachedResolver) {
	cached := NewCachedResolver(NewAccountResolver(db), cacheTTL)
	g := NewGate(cached)
	own := AdminBypass(CandidacyOwnership{})
	g.Register(ResourceCandidacy, own)
	g.Register(ResourceFeasibility, own)
	return g, cached
}

func (g *Gate) Register(resource string, p Policy) { g.policies[resource] = p }

func (g *Gate) subject(ctx context.Context, accountID uint) (*Subject, error) {
	if accountID == 0 {
		return nil, ErrUnauthorized
	}
	s, err := g.resolver.Resolve(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrUnauthorized
	}
	return s, nil
}

// Authorize returns nil when the account may perform action on resource. A nil
// resource only checks the profile.
func (g *Gate) Authorize(ctx context.Context, accountID uint, action Action, resourceType string, resource any) error {
	s, err := g.subject(ctx, accountID)
	if err != nil {
		return err
	}
	if !s.Profile.HasPermission(NewPermission(resourceType, action)) {
		return ErrForbidden
	}
	if resource != nil {
		if p, ok := g.policies[resourceType]; ok && !p.Can(ctx, s, action, resource) {
			return ErrForbidden
		}
	}
	return nil
}
