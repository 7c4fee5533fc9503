package models

// Warn representa una advertencia individual
type Warn struct {
	Reason    string `bson:"reason" json:"reason"`
	Moderator string `bson:"moderator" json:"moderator"`
	ID        string `bson:"id" json:"id"`
	Timestamp int64  `bson:"timestamp" json:"timestamp"`
}

// WarnsDocument agrupa las advertencias de un usuario en un servidor
type WarnsDocument struct {
	GuildID string `bson:"guildId" json:"guildId"`
	UserID  string `bson:"userId" json:"userId"`
	Warns   []Warn `bson:"warns" json:"warns"`
}

// FindWarn returns the index of the warn with the given id, or -1
func (d *WarnsDocument) FindWarn(id string) int {
	for i, w := range d.Warns {
		if w.ID == id {
			return i
		}
	}
	return -1
}
