package leveling

import (
	"fmt"

	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
)

// RoleManager performs role lookups and changes on the chat platform
type RoleManager interface {
	HasRole(guildID, userID, roleID string) (bool, error)
	GrantRole(guildID, userID, roleID string) error
	RevokeRole(guildID, userID, roleID string) error
}

// EvaluateRoleGrants returns every role whose level or message threshold the
// record meets. Thresholds are cumulative. Order follows the configuration,
// level roles first, without duplicates.
func EvaluateRoleGrants(record *models.UserLevel, cfg *models.GuildConfig) []string {
	if record == nil || cfg == nil {
		return nil
	}

	seen := make(map[string]bool)
	var roles []string
	add := func(roleID string) {
		if roleID == "" || seen[roleID] {
			return
		}
		seen[roleID] = true
		roles = append(roles, roleID)
	}

	for _, r := range cfg.LevelRoles {
		if record.Level >= r.Level {
			add(r.RoleID)
		}
	}
	for _, r := range cfg.MessageRoles {
		if record.TotalMessages >= r.Messages {
			add(r.RoleID)
		}
	}
	return roles
}

// ApplyRoleGrants grants the roles the member does not hold yet and returns
// the ones granted. A failed lookup or grant is logged and skipped.
func ApplyRoleGrants(rm RoleManager, guildID, userID string, roles []string) []string {
	var granted []string
	for _, roleID := range roles {
		has, err := rm.HasRole(guildID, userID, roleID)
		if err != nil {
			logger.Warn(fmt.Sprintf("No se pudo comprobar el rol %s de %s: %v", roleID, userID, err), "Leveling")
			continue
		}
		if has {
			continue
		}
		if err := rm.GrantRole(guildID, userID, roleID); err != nil {
			logger.Warn(fmt.Sprintf("No se pudo otorgar el rol %s a %s: %v", roleID, userID, err), "Leveling")
			continue
		}
		granted = append(granted, roleID)
	}
	return granted
}
