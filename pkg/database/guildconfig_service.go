package database

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
)

// ErrGuildConfigManagerNotInitialized is returned before InitGlobalDataManagers runs
var ErrGuildConfigManagerNotInitialized = errors.New("guild config data manager not initialized")

// GuildConfigService reads and edits guild configuration through the cached DataManager
type GuildConfigService struct{}

// NewGuildConfigService creates a GuildConfigService over GlobalGuildConfigDM
func NewGuildConfigService() *GuildConfigService {
	return &GuildConfigService{}
}

func guildQuery(guildID string) bson.M {
	return bson.M{"guildId": guildID}
}

func getGuildConfigManager() (*DataManager[models.GuildConfig], error) {
	if GlobalGuildConfigDM == nil {
		return nil, ErrGuildConfigManagerNotInitialized
	}
	return GlobalGuildConfigDM, nil
}

// GetGuildConfig returns the configuration of a guild. Unconfigured guilds
// get an empty configuration.
func (s *GuildConfigService) GetGuildConfig(ctx context.Context, guildID string) (*models.GuildConfig, error) {
	dm, err := getGuildConfigManager()
	if err != nil {
		return nil, err
	}

	cfg, err := dm.Get(ctx, guildQuery(guildID))
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return &models.GuildConfig{GuildID: guildID}, nil
	}
	return cfg, nil
}

func (s *GuildConfigService) update(ctx context.Context, guildID string, fields bson.M) (*models.GuildConfig, error) {
	dm, err := getGuildConfigManager()
	if err != nil {
		return nil, err
	}
	fields["guildId"] = guildID
	fields["updatedAt"] = time.Now()
	return dm.Set(ctx, guildQuery(guildID), fields)
}

// SetBoostChannel sets the channel where boosts are announced
func (s *GuildConfigService) SetBoostChannel(ctx context.Context, guildID, channelID string) (*models.GuildConfig, error) {
	return s.update(ctx, guildID, bson.M{"boostChannelId": channelID})
}

// SetBoostMessage sets the boost announcement template
func (s *GuildConfigService) SetBoostMessage(ctx context.Context, guildID, message string) (*models.GuildConfig, error) {
	return s.update(ctx, guildID, bson.M{"boostMessage": message})
}

// SetBoosterRole sets the role granted while boosting
func (s *GuildConfigService) SetBoosterRole(ctx context.Context, guildID, roleID string) (*models.GuildConfig, error) {
	return s.update(ctx, guildID, bson.M{"boosterRoleId": roleID})
}

// SetGiveawayRequirements sets the minimum level and messages to enter giveaways. Zero disables a requirement.
func (s *GuildConfigService) SetGiveawayRequirements(ctx context.Context, guildID string, level, messages int) (*models.GuildConfig, error) {
	return s.update(ctx, guildID, bson.M{"levelRequirement": level, "messageRequirement": messages})
}

// SetLevelRole binds a role to a level, replacing any role already bound to it
func (s *GuildConfigService) SetLevelRole(ctx context.Context, guildID string, level int, roleID string) (*models.GuildConfig, error) {
	cfg, err := s.GetGuildConfig(ctx, guildID)
	if err != nil {
		return nil, err
	}

	roles := make([]models.LevelRole, 0, len(cfg.LevelRoles)+1)
	for _, r := range cfg.LevelRoles {
		if r.Level != level {
			roles = append(roles, r)
		}
	}
	roles = append(roles, models.LevelRole{Level: level, RoleID: roleID})
	sort.Slice(roles, func(i, j int) bool { return roles[i].Level < roles[j].Level })

	return s.update(ctx, guildID, bson.M{"levelRoles": roles})
}

// SetMessageRole binds a role to a message count, replacing any role already bound to it
func (s *GuildConfigService) SetMessageRole(ctx context.Context, guildID string, messages int, roleID string) (*models.GuildConfig, error) {
	cfg, err := s.GetGuildConfig(ctx, guildID)
	if err != nil {
		return nil, err
	}

	roles := make([]models.MessageRole, 0, len(cfg.MessageRoles)+1)
	for _, r := range cfg.MessageRoles {
		if r.Messages != messages {
			roles = append(roles, r)
		}
	}
	roles = append(roles, models.MessageRole{Messages: messages, RoleID: roleID})
	sort.Slice(roles, func(i, j int) bool { return roles[i].Messages < roles[j].Messages })

	return s.update(ctx, guildID, bson.M{"messageRoles": roles})
}
