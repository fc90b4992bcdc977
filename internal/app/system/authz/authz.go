// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/communityhub/internal/app/system/auth"
	"github.com/dalemusser/communityhub/internal/domain/models"
)

// UserCtx returns the operator's role (lowercased), name, login email and a
// found flag. Without a signed-in operator it returns "visitor", "", "", false.
func UserCtx(r *http.Request) (role string, name string, email string, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok || strings.TrimSpace(user.LoginID) == "" {
		return "visitor", "", "", false
	}
	return strings.ToLower(user.Role), user.Name, user.LoginID, true
}

// IsAdmin reports whether the operator is an administrator.
func IsAdmin(r *http.Request) bool {
	return HasRole(r, models.RoleAdministrator)
}

// CanModerate reports whether the operator may edit or delete posts,
// comments and tags.
func CanModerate(r *http.Request) bool {
	return HasAnyRole(r, models.RoleAdministrator, models.RoleModerator)
}

// CanManageUsers reports whether the operator may create, edit or delete
// community members.
func CanManageUsers(r *http.Request) bool {
	return IsAdmin(r)
}
