package mod

import (
	"fmt"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/errors"
	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"github.com/bwmarrin/discordgo"
)

func (m *moderation) warnCommand() *discord.Command {
	return discord.NewCommand(
		"warn",
		"Advierte a un usuario",
		"mod",
		m.warnHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a advertir",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "razon",
			Description: "Razón de la advertencia",
			Required:    true,
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers).RequiresDatabase()
}

// addWarn stores the warning and logs the action
func (m *moderation) addWarn(guildID, userID, moderatorID, reason string) (*models.Warn, int, error) {
	ctx, cancel := storageContext()
	defer cancel()

	doc, err := m.repo.AddWarn(ctx, guildID, userID, models.Warn{
		Reason:    reason,
		Moderator: moderatorID,
		Timestamp: m.now().Unix(),
	})
	if err != nil {
		return nil, 0, err
	}

	warn := doc.Warns[len(doc.Warns)-1]
	m.record(guildID, models.ActionWarn, userID, moderatorID, reason, 0)
	return &warn, len(doc.Warns), nil
}

func (m *moderation) warnHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("usuario")
	if user == nil {
		return ctx.ReplyEphemeral("❌ Debes especificar un usuario.")
	}
	if user.Bot {
		return ctx.ReplyEphemeral("❌ No puedes advertir a un bot.")
	}

	reason := ctx.GetStringOption("razon")
	if reason == "" {
		return ctx.ReplyEphemeral("❌ Debes especificar una razón.")
	}

	if err := ctx.Defer(); err != nil {
		return err
	}

	go func() {
		defer errors.RecoverMiddleware()()

		warn, total, err := m.addWarn(ctx.Interaction.GuildID, user.ID, ctx.User().ID, reason)
		if err != nil {
			logger.Error(fmt.Sprintf("Error guardando advertencia: %v", err), "CMD-Warn")
			ctx.EditReply("❌ No se pudo guardar la advertencia.")
			return
		}

		ctx.EditReplyEmbed(&discordgo.MessageEmbed{
			Title: "⚠️ Usuario advertido",
			Color: 0xFFA500,
			Description: fmt.Sprintf(
				"> **Usuario:** %s\n> **Razón:** %s\n> **Moderador:** %s\n> **ID:** `%s`\n> **Total de advertencias:** %d",
				user.Mention(), reason, ctx.User().Mention(), warn.ID, total,
			),
			Footer:    &discordgo.MessageEmbedFooter{Text: footerText},
			Timestamp: time.Now().Format(time.RFC3339),
		})

		dmUser(ctx.Session, ctx.Interaction.ChannelID, user, &discordgo.MessageEmbed{
			Title: "⚠ - Has recibido una advertencia",
			Color: 0xFFA500,
			Description: fmt.Sprintf(
				"⚒ - **Servidor:** %s\n📝 - **Razón:** %s\n🆔 - **ID:** `%s`\n\n🕒 - **Fecha:** <t:%d:F>",
				guildName(ctx.Session, ctx.Interaction.GuildID), reason, warn.ID, warn.Timestamp,
			),
			Footer: &discordgo.MessageEmbedFooter{Text: footerText},
		})
	}()

	return nil
}
