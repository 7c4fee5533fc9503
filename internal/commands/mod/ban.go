package mod

import (
	"fmt"

	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/errors"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"github.com/PancyStudios/PancyCommunityBot/pkg/ratelimit"
	"github.com/bwmarrin/discordgo"
)

func (m *moderation) banCommand() *discord.Command {
	return discord.NewCommand(
		"ban",
		"Banea a un usuario del servidor",
		"mod",
		m.banHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a banear",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "razon",
			Description: "Razón del ban",
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "dias",
			Description: "Días de mensajes a eliminar (0-7)",
			MinValue:    func() *float64 { v := 0.0; return &v }(),
			MaxValue:    7,
		},
	).WithUserPermissions(discordgo.PermissionBanMembers).
		WithBotPermissions(discordgo.PermissionBanMembers).
		WithRateLimit(ratelimit.PerMinute(2))
}

func (m *moderation) banHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("usuario")
	if user == nil {
		return ctx.ReplyEphemeral("❌ Debes especificar un usuario.")
	}
	if user.ID == ctx.User().ID {
		return ctx.ReplyEphemeral("❌ No puedes banearte a ti mismo.")
	}

	reason := reasonOrDefault(ctx.GetStringOption("razon"))
	days := int(ctx.GetIntOption("dias"))

	if err := ctx.Session.GuildBanCreateWithReason(ctx.Interaction.GuildID, user.ID, reason, days); err != nil {
		return ctx.ReplyEphemeral(fmt.Sprintf("❌ Error al banear: %v", err))
	}

	go func() {
		defer errors.RecoverMiddleware()()
		m.record(ctx.Interaction.GuildID, models.ActionBan, user.ID, ctx.User().ID, reason, 0)
	}()

	return ctx.Reply(fmt.Sprintf("🔨 **%s** ha sido baneado.\n**Razón:** %s", user.Username, reason))
}
