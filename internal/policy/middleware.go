package policy

import (
	"errors"
	"net/http"

	"github.com/diewo77/vae-dossiers/auth"
	"github.com/diewo77/vae-dossiers/httpx"
)

// WriteError maps an authorization error to a JSON response.
func WriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
	case errors.Is(err, ErrForbidden):
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// RequirePermission blocks requests whose account profile lacks
// resource:action. Ownership is checked later by handlers once the resource is
// loaded.
func (g *Gate) RequirePermission(resourceType string, action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := auth.UserIDFromContext(r.Context())
			if !ok {
				WriteError(w, ErrUnauthorized)
				return
			}
			if err := g.Authorize(r.Context(), uid, action, resourceType, nil); err != nil {
				WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
