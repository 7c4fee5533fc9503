package mod

import (
	"fmt"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/errors"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// maxMuteMinutes is Discord's 28 day timeout ceiling
const maxMuteMinutes = 40320

func (m *moderation) muteCommand() *discord.Command {
	return discord.NewCommand(
		"mute",
		"Silencia a un usuario temporalmente",
		"mod",
		m.muteHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a silenciar",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "duracion",
			Description: "Duración en minutos",
			Required:    true,
			MinValue:    func() *float64 { v := 1.0; return &v }(),
			MaxValue:    maxMuteMinutes,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "razon",
			Description: "Razón del silencio",
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers).
		WithBotPermissions(discordgo.PermissionModerateMembers)
}

func (m *moderation) muteHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("usuario")
	if user == nil {
		return ctx.ReplyEphemeral("❌ Debes especificar un usuario.")
	}

	minutes := int(ctx.GetIntOption("duracion"))
	if minutes < 1 || minutes > maxMuteMinutes {
		return ctx.ReplyEphemeral("❌ La duración debe estar entre 1 minuto y 28 días.")
	}

	reason := reasonOrDefault(ctx.GetStringOption("razon"))
	until := m.now().Add(time.Duration(minutes) * time.Minute)

	if err := ctx.Session.GuildMemberTimeout(ctx.Interaction.GuildID, user.ID, &until); err != nil {
		return ctx.ReplyEphemeral(fmt.Sprintf("❌ Error al silenciar: %v", err))
	}

	go func() {
		defer errors.RecoverMiddleware()()
		m.record(ctx.Interaction.GuildID, models.ActionMute, user.ID, ctx.User().ID, reason, minutes)
	}()

	return ctx.Reply(fmt.Sprintf("🔇 **%s** ha sido silenciado hasta <t:%d:f>.\n**Razón:** %s",
		user.Username,
		until.Unix(),
		reason,
	))
}
