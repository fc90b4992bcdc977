package ingest

import (
	"github.com/dalemusser/communityhub/internal/app/system/normalize"
	"github.com/dalemusser/communityhub/internal/domain/models"
)

// The community API and older exports mix English and French values.
var (
	moderationAliases = map[string]models.ModerationStatus{
		"approved": models.StatusApproved,
		"approuvé": models.StatusApproved,
		"approuve": models.StatusApproved,
		"flagged":  models.StatusFlagged,
		"signalé":  models.StatusFlagged,
		"signale":  models.StatusFlagged,
		"reported": models.StatusFlagged,
		"rejected": models.StatusRejected,
		"rejeté":   models.StatusRejected,
		"rejete":   models.StatusRejected,
	}
	userStatusAliases = map[string]models.UserStatus{
		"active":    models.UserActive,
		"actif":     models.UserActive,
		"inactive":  models.UserInactive,
		"inactif":   models.UserInactive,
		"suspended": models.UserSuspended,
		"suspendu":  models.UserSuspended,
	}
	roleAliases = map[string]models.Role{
		"administrator":  models.RoleAdministrator,
		"administrateur": models.RoleAdministrator,
		"admin":          models.RoleAdministrator,
		"moderator":      models.RoleModerator,
		"modérateur":     models.RoleModerator,
		"moderateur":     models.RoleModerator,
		"member":         models.RoleMember,
		"membre":         models.RoleMember,
		"user":           models.RoleMember,
		"utilisateur":    models.RoleMember,
	}
)

// ParseModerationStatus maps a raw status to its canonical value.
func ParseModerationStatus(s string) (models.ModerationStatus, bool) {
	v, ok := moderationAliases[normalize.Status(s)]
	return v, ok
}

// ParseUserStatus maps a raw user status to its canonical value.
func ParseUserStatus(s string) (models.UserStatus, bool) {
	v, ok := userStatusAliases[normalize.Status(s)]
	return v, ok
}

// ParseRole maps a raw role to its canonical value.
func ParseRole(s string) (models.Role, bool) {
	v, ok := roleAliases[normalize.Role(s)]
	return v, ok
}
