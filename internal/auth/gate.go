package auth

import (
	"github.com/rs/zerolog/log"
)

// Gate is the per-request authorization gate the settings core consults.
// Capability checks hit the database on every call rather than caching,
// so permission changes take effect on the next request. Check failures
// deny: an unreachable RBAC store never grants access.
type Gate struct {
	auth   *Service
	userID uint64
}

// NewGate creates an authorization gate bound to one user.
func NewGate(auth *Service, userID uint64) *Gate {
	return &Gate{auth: auth, userID: userID}
}

// CanView reports whether the user may view settings pages.
func (g *Gate) CanView() bool {
	return g.allowed(PermSettingsView)
}

// CanUpdate reports whether the user may update settings values.
func (g *Gate) CanUpdate() bool {
	return g.allowed(PermSettingsUpdate)
}

func (g *Gate) allowed(permission string) bool {
	if g.auth == nil || g.userID == 0 {
		return false
	}

	has, err := g.auth.HasPermission(g.userID, permission)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", g.userID).Str("permission", permission).
			Msg("failed to check permission")

		return false
	}

	return has
}
