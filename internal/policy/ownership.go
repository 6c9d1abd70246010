package policy

import (
	"context"

	"github.com/diewo77/vae-dossiers/internal/models"
)

// CandidacyOwnership lets candidates reach their own candidacies and aap
// accounts the candidacies of their organism. Resources other than
// *models.Candidacy are denied.
type CandidacyOwnership struct{}

func (CandidacyOwnership) Can(_ context.Context, s *Subject, _ Action, resource any) bool {
	c, ok := resource.(*models.Candidacy)
	if !ok || c == nil || s == nil {
		return false
	}
	switch s.Role {
	case models.RoleCandidate:
		return s.CandidateID != "" && c.CandidateID == s.CandidateID
	case models.RoleAAP:
		return s.OrganismID != nil && c.OrganismID != nil && *s.OrganismID == *c.OrganismID
	}
	return false
}

// AdminBypass allows admins everything and defers to inner for others.
func AdminBypass(inner Policy) Policy {
	return PolicyFunc(func(ctx context.Context, s *Subject, action Action, resource any) bool {
		if s.IsAdmin() {
			return true
		}
		return inner.Can(ctx, s, action, resource)
	})
}
