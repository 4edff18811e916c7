// internal/api/authz.go
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Roles asserted by the upstream authentication layer. Token verification
// happens there; this service only enforces which role may hit which route.
const (
	RoleAdmin      = "admin"
	RoleTeamLeader = "team_leader"
	RoleLecturer   = "lecturer"
	RoleMember     = "member"

	roleHeader = "X-User-Role"
)

// routePolicies is the central (method, route pattern) -> allowed roles
// table. Routes under the authorize middleware that are absent from the
// table accept any authenticated role.
var routePolicies = map[string]map[string][]string{
	http.MethodPost: {
		"/sync/commits/{groupID}": {RoleAdmin, RoleTeamLeader},
		"/sync/issues/{groupID}":  {RoleAdmin, RoleTeamLeader},
	},
	http.MethodGet: {
		"/settings/integration": {RoleAdmin},
	},
	http.MethodPut: {
		"/settings/integration": {RoleAdmin},
	},
}

// authorize checks the asserted role against the policy table for the
// matched route.
func (h *Handler) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role := r.Header.Get(roleHeader)
		if role == "" {
			respondWithError(w, http.StatusUnauthorized, "Missing role")
			return
		}

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		allowed, restricted := routePolicies[r.Method][pattern]
		if !restricted {
			next.ServeHTTP(w, r)
			return
		}

		for _, a := range allowed {
			if role == a {
				next.ServeHTTP(w, r)
				return
			}
		}
		respondWithError(w, http.StatusForbidden, "Insufficient role")
	})
}
