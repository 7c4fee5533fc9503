package mod

import (
	"fmt"

	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/errors"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"github.com/PancyStudios/PancyCommunityBot/pkg/ratelimit"
	"github.com/bwmarrin/discordgo"
)

func (m *moderation) kickCommand() *discord.Command {
	return discord.NewCommand(
		"kick",
		"Expulsa a un usuario del servidor",
		"mod",
		m.kickHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a expulsar",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "razon",
			Description: "Razón de la expulsión",
		},
	).WithUserPermissions(discordgo.PermissionKickMembers).
		WithBotPermissions(discordgo.PermissionKickMembers).
		WithRateLimit(ratelimit.PerMinute(3))
}

func (m *moderation) kickHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("usuario")
	if user == nil {
		return ctx.ReplyEphemeral("❌ Debes especificar un usuario.")
	}
	if user.ID == ctx.User().ID {
		return ctx.ReplyEphemeral("❌ No puedes expulsarte a ti mismo.")
	}

	reason := reasonOrDefault(ctx.GetStringOption("razon"))

	if err := ctx.Session.GuildMemberDeleteWithReason(ctx.Interaction.GuildID, user.ID, reason); err != nil {
		return ctx.ReplyEphemeral(fmt.Sprintf("❌ Error al expulsar: %v", err))
	}

	go func() {
		defer errors.RecoverMiddleware()()
		m.record(ctx.Interaction.GuildID, models.ActionKick, user.ID, ctx.User().ID, reason, 0)
	}()

	return ctx.Reply(fmt.Sprintf("👢 **%s** ha sido expulsado.\n**Razón:** %s", user.Username, reason))
}
