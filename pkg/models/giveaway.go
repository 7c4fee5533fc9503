package models

import "time"

// Giveaway is a giveaway posted in a guild channel.
// IsActive only ever goes from true to false. DrawPendingSince is set when
// the giveaway is deactivated and cleared once every winner is stored, so an
// end interrupted between the two can be resumed.
type Giveaway struct {
	ID            int64     `bson:"_id" json:"id"`
	GuildID       string    `bson:"guildId" json:"guildId"`
	ChannelID     string    `bson:"channelId" json:"channelId"`
	MessageID     string    `bson:"messageId" json:"messageId"`
	HostID        string    `bson:"hostId" json:"hostId"`
	Prize         string    `bson:"prize" json:"prize"`
	Title         string    `bson:"title" json:"title"`
	Description   string    `bson:"description,omitempty" json:"description,omitempty"`
	Color         int       `bson:"color" json:"color"`
	Emoji         string    `bson:"emoji" json:"emoji"`
	ButtonText    string    `bson:"buttonText" json:"buttonText"`
	WinnerCount   int       `bson:"winnerCount" json:"winnerCount"`
	EndTime       time.Time `bson:"endTime" json:"endTime"`
	IsActive      bool      `bson:"isActive" json:"isActive"`
	RequiredRoles []string  `bson:"requiredRoles" json:"requiredRoles"`
	BonusRoles    []string  `bson:"bonusRoles" json:"bonusRoles"`
	BonusEntries  int       `bson:"bonusEntries" json:"bonusEntries"`
	WinnerMessage string    `bson:"winnerMessage" json:"winnerMessage"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`

	DrawPendingSince *time.Time `bson:"drawPendingSince,omitempty" json:"-"`
}

// GiveawayEntry is the single entry of a user in a giveaway. Entries is the draw weight.
type GiveawayEntry struct {
	GiveawayID int64     `bson:"giveawayId" json:"giveawayId"`
	UserID     string    `bson:"userId" json:"userId"`
	Entries    int       `bson:"entries" json:"entries"`
	EnteredAt  time.Time `bson:"enteredAt" json:"enteredAt"`
}

// GiveawayWinner is an append-only winner record. A reroll marks the old
// record as rerolled and inserts a new one at the same position.
type GiveawayWinner struct {
	ID         string    `bson:"_id" json:"id"`
	GiveawayID int64     `bson:"giveawayId" json:"giveawayId"`
	UserID     string    `bson:"userId" json:"userId"`
	Position   int       `bson:"position" json:"position"`
	Rerolled   bool      `bson:"rerolled" json:"rerolled"`
	SelectedAt time.Time `bson:"selectedAt" json:"selectedAt"`
}
