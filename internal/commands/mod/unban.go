package mod

import (
	"fmt"

	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/errors"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
)

func (m *moderation) unbanCommand() *discord.Command {
	return discord.NewCommand(
		"unban",
		"Retira el ban de un usuario",
		"mod",
		m.unbanHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "usuario_id",
			Description: "ID del usuario baneado",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "razon",
			Description: "Razón del desbaneo",
		},
	).WithUserPermissions(discordgo.PermissionBanMembers).
		WithBotPermissions(discordgo.PermissionBanMembers)
}

func (m *moderation) unbanHandler(ctx *discord.CommandContext) error {
	id, err := snowflake.Parse(ctx.GetStringOption("usuario_id"))
	if err != nil {
		return ctx.ReplyEphemeral("❌ El ID de usuario no es válido.")
	}
	userID := id.String()
	reason := reasonOrDefault(ctx.GetStringOption("razon"))

	if err := ctx.Session.GuildBanDelete(ctx.Interaction.GuildID, userID); err != nil {
		return ctx.ReplyEphemeral(fmt.Sprintf("❌ Error al desbanear: %v", err))
	}

	go func() {
		defer errors.RecoverMiddleware()()
		m.record(ctx.Interaction.GuildID, models.ActionUnban, userID, ctx.User().ID, reason, 0)
	}()

	return ctx.Reply(fmt.Sprintf("✅ <@%s> ha sido desbaneado.\n**Razón:** %s", userID, reason))
}
