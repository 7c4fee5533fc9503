package discord

import (
	"slices"

	"github.com/bwmarrin/discordgo"
)

// Platform performs guild side effects (messages and role changes) through the session.
// It serves the leveling role grants and the boost tracker.
type Platform struct {
	Session *discordgo.Session
}

// NewPlatform wraps a session
func NewPlatform(s *discordgo.Session) *Platform {
	return &Platform{Session: s}
}

func (p *Platform) member(guildID, userID string) (*discordgo.Member, error) {
	if p.Session.StateEnabled && p.Session.State != nil {
		if m, err := p.Session.State.Member(guildID, userID); err == nil {
			return m, nil
		}
	}
	return p.Session.GuildMember(guildID, userID)
}

// HasRole reports whether the member holds roleID
func (p *Platform) HasRole(guildID, userID, roleID string) (bool, error) {
	m, err := p.member(guildID, userID)
	if err != nil {
		return false, err
	}
	return slices.Contains(m.Roles, roleID), nil
}

// GrantRole adds roleID to the member
func (p *Platform) GrantRole(guildID, userID, roleID string) error {
	return p.Session.GuildMemberRoleAdd(guildID, userID, roleID)
}

// RevokeRole removes roleID from the member
func (p *Platform) RevokeRole(guildID, userID, roleID string) error {
	return p.Session.GuildMemberRoleRemove(guildID, userID, roleID)
}

// SendMessage posts content in channelID
func (p *Platform) SendMessage(channelID, content string) error {
	_, err := p.Session.ChannelMessageSend(channelID, content)
	return err
}
