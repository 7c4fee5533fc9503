// Package mod provides moderation commands organized as subcommands under /mod.
// Every successful action is written to the moderation log and published as a live event.
package mod

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"github.com/PancyStudios/PancyCommunityBot/pkg/notify"
	"github.com/bwmarrin/discordgo"
)

const (
	defaultReason  = "Sin razón especificada"
	storageTimeout = 5 * time.Second
	footerText     = "💫 - Developed by PancyStudios"
)

// Repository persists moderation logs and warnings
type Repository interface {
	LogAction(ctx context.Context, entry *models.ModerationLog) error
	GetWarns(ctx context.Context, guildID, userID string) (*models.WarnsDocument, error)
	AddWarn(ctx context.Context, guildID, userID string, warn models.Warn) (*models.WarnsDocument, error)
	RemoveWarn(ctx context.Context, guildID, userID, warnID string) (*models.WarnsDocument, error)
	ClearWarns(ctx context.Context, guildID, userID string) error
}

type moderation struct {
	repo     Repository
	notifier notify.Notifier
	now      func() time.Time
}

func newModeration(repo Repository, notifier notify.Notifier) *moderation {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &moderation{repo: repo, notifier: notifier, now: time.Now}
}

func storageContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storageTimeout)
}

// record logs a completed action. A failed log write never undoes the action.
func (m *moderation) record(guildID string, action models.ModerationAction, userID, moderatorID, reason string, minutes int) *models.ModerationLog {
	entry := &models.ModerationLog{
		GuildID:     guildID,
		Action:      action,
		UserID:      userID,
		ModeratorID: moderatorID,
		Reason:      reason,
		Duration:    minutes,
		CreatedAt:   m.now(),
	}

	ctx, cancel := storageContext()
	defer cancel()
	if err := m.repo.LogAction(ctx, entry); err != nil {
		logger.Warn(fmt.Sprintf("No se pudo guardar el log de %s: %v", action, err), "Mod")
	}

	m.notifier.Notify(notify.NewEvent(notify.EventModeration, guildID, entry))
	return entry
}

func reasonOrDefault(reason string) string {
	if reason == "" {
		return defaultReason
	}
	return reason
}

// truncate shortens s to max runes, marking the cut with "..."
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// warnChoices builds autocomplete choices for a member's warnings
func warnChoices(doc *models.WarnsDocument) []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, 25)
	for i, warn := range doc.Warns {
		if i >= 25 {
			break
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  truncate(fmt.Sprintf("ID: %s - Razón: %s", warn.ID, warn.Reason), 100),
			Value: warn.ID,
		})
	}
	return choices
}

// dmUser sends embed to the user, reporting failure in the channel for a few seconds
func dmUser(s *discordgo.Session, channelID string, user *discordgo.User, embed *discordgo.MessageEmbed) {
	userChannel, err := s.UserChannelCreate(user.ID)
	if err == nil {
		if _, err = s.ChannelMessageSendEmbed(userChannel.ID, embed); err == nil {
			return
		}
	}

	msg, err := s.ChannelMessageSend(channelID, fmt.Sprintf("ℹ️ No se pudo enviar un mensaje directo a **%s**.", user.String()))
	if err != nil {
		return
	}
	time.AfterFunc(5*time.Second, func() {
		_ = s.ChannelMessageDelete(channelID, msg.ID)
	})
}

func guildName(s *discordgo.Session, guildID string) string {
	if g, err := s.State.Guild(guildID); err == nil {
		return g.Name
	}
	return guildID
}
