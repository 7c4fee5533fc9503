package models

import "time"

// UserLevel is the leveling record of a member in a guild.
// Level is always derived from Experience.
type UserLevel struct {
	UserID          string    `bson:"userId" json:"userId"`
	GuildID         string    `bson:"guildId" json:"guildId"`
	Level           int       `bson:"level" json:"level"`
	Experience      int       `bson:"experience" json:"experience"`
	TotalMessages   int       `bson:"totalMessages" json:"totalMessages"`
	LastMessageTime time.Time `bson:"lastMessageTime" json:"lastMessageTime"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt" json:"updatedAt"`
}

// MessageStat counts the messages of a member on a single UTC day ("2006-01-02")
type MessageStat struct {
	UserID       string `bson:"userId" json:"userId"`
	GuildID      string `bson:"guildId" json:"guildId"`
	Date         string `bson:"date" json:"date"`
	MessageCount int    `bson:"messageCount" json:"messageCount"`
}

// MessageCount is an aggregated message total for leaderboards
type MessageCount struct {
	UserID string `bson:"_id" json:"userId"`
	Count  int    `bson:"count" json:"count"`
}
