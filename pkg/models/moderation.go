package models

import "time"

// ModerationAction identifies the kind of moderation log
type ModerationAction string

const (
	ActionKick  ModerationAction = "kick"
	ActionBan   ModerationAction = "ban"
	ActionUnban ModerationAction = "unban"
	ActionMute  ModerationAction = "mute"
	ActionWarn  ModerationAction = "warn"
)

// ModerationLog records a moderation action taken through the bot
type ModerationLog struct {
	ID          string           `bson:"_id" json:"id"`
	GuildID     string           `bson:"guildId" json:"guildId"`
	Action      ModerationAction `bson:"action" json:"action"`
	UserID      string           `bson:"userId" json:"userId"`
	ModeratorID string           `bson:"moderatorId" json:"moderatorId"`
	Reason      string           `bson:"reason" json:"reason"`
	// Duration in minutes, mute only
	Duration  int       `bson:"duration,omitempty" json:"duration,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
