package models

import "time"

// ServerBoost tracks a member boosting a guild
type ServerBoost struct {
	GuildID   string     `bson:"guildId" json:"guildId"`
	UserID    string     `bson:"userId" json:"userId"`
	BoostedAt time.Time  `bson:"boostedAt" json:"boostedAt"`
	Active    bool       `bson:"active" json:"active"`
	EndedAt   *time.Time `bson:"endedAt,omitempty" json:"endedAt,omitempty"`
}
