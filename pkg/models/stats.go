package models

import "time"

// CommandStat records one slash command invocation
type CommandStat struct {
	GuildID string    `bson:"guildId" json:"guildId"`
	UserID  string    `bson:"userId" json:"userId"`
	Command string    `bson:"command" json:"command"`
	UsedAt  time.Time `bson:"usedAt" json:"usedAt"`
}

// CommandUsage is the aggregated usage of a command
type CommandUsage struct {
	Command string `bson:"_id" json:"command"`
	Count   int    `bson:"count" json:"count"`
}

// BotStats is the global summary served by the dashboard
type BotStats struct {
	Guilds          int   `json:"guilds"`
	TrackedUsers    int64 `json:"trackedUsers"`
	TotalGiveaways  int64 `json:"totalGiveaways"`
	ActiveGiveaways int64 `json:"activeGiveaways"`
	CommandsUsed    int64 `json:"commandsUsed"`
	ModerationLogs  int64 `json:"moderationLogs"`
}

// GuildStats is the per-guild summary served by the dashboard
type GuildStats struct {
	Config          *GuildConfig `json:"config"`
	TrackedUsers    int64        `json:"trackedUsers"`
	ActiveGiveaways int64        `json:"activeGiveaways"`
	TotalGiveaways  int64        `json:"totalGiveaways"`
	ActiveBoosts    int64        `json:"activeBoosts"`
}
