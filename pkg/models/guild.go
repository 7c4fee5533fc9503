package models

import "time"

// LevelRole grants RoleID once a member reaches Level
type LevelRole struct {
	Level  int    `bson:"level" json:"level"`
	RoleID string `bson:"roleId" json:"roleId"`
}

// MessageRole grants RoleID once a member sends Messages messages
type MessageRole struct {
	Messages int    `bson:"messages" json:"messages"`
	RoleID   string `bson:"roleId" json:"roleId"`
}

// GuildConfig holds the per-guild settings managed with /config
type GuildConfig struct {
	GuildID            string        `bson:"guildId" json:"guildId"`
	LevelRoles         []LevelRole   `bson:"levelRoles" json:"levelRoles"`
	MessageRoles       []MessageRole `bson:"messageRoles" json:"messageRoles"`
	BoostChannelID     string        `bson:"boostChannelId,omitempty" json:"boostChannelId,omitempty"`
	BoostMessage       string        `bson:"boostMessage,omitempty" json:"boostMessage,omitempty"`
	BoosterRoleID      string        `bson:"boosterRoleId,omitempty" json:"boosterRoleId,omitempty"`
	LevelRequirement   int           `bson:"levelRequirement,omitempty" json:"levelRequirement,omitempty"`
	MessageRequirement int           `bson:"messageRequirement,omitempty" json:"messageRequirement,omitempty"`
	UpdatedAt          time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// HasGiveawayRequirements reports whether entering giveaways needs a minimum level or message count
func (c *GuildConfig) HasGiveawayRequirements() bool {
	return c != nil && (c.LevelRequirement > 0 || c.MessageRequirement > 0)
}
