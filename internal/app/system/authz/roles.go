// internal/app/system/authz/roles.go
package authz

import (
	"net/http"

	"github.com/dalemusser/communityhub/internal/domain/models"
)

// Role returns the operator's role and whether an operator is signed in.
// Unknown role strings from an old cookie are reported as member.
func Role(r *http.Request) (models.Role, bool) {
	role, _, _, ok := UserCtx(r)
	if !ok {
		return "", false
	}
	if rr := models.Role(role); rr.Valid() {
		return rr, true
	}
	return models.RoleMember, true
}

// HasAnyRole reports whether the operator holds one of roles.
// Returns false if no operator is signed in.
func HasAnyRole(r *http.Request, roles ...models.Role) bool {
	cur, ok := Role(r)
	if !ok {
		return false
	}
	for _, want := range roles {
		if cur == want {
			return true
		}
	}
	return false
}

// HasRole is a convenience wrapper for a single role.
func HasRole(r *http.Request, role models.Role) bool {
	return HasAnyRole(r, role)
}
