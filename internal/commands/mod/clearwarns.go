package mod

import (
	"fmt"

	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/errors"
	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

func (m *moderation) clearWarnsCommand() *discord.Command {
	return discord.NewCommand(
		"clearwarns",
		"Elimina todas las advertencias de un usuario",
		"mod",
		m.clearWarnsHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a limpiar",
			Required:    true,
		},
	).WithUserPermissions(discordgo.PermissionManageGuild).RequiresDatabase()
}

func (m *moderation) clearWarnsHandler(ctx *discord.CommandContext) error {
	target := ctx.GetUserOption("usuario")
	if target == nil {
		return ctx.ReplyEphemeral("❌ Debes especificar un usuario válido.")
	}

	if err := ctx.Defer(); err != nil {
		return err
	}

	go func() {
		defer errors.RecoverMiddleware()()

		sctx, cancel := storageContext()
		defer cancel()
		if err := m.repo.ClearWarns(sctx, ctx.Interaction.GuildID, target.ID); err != nil {
			logger.Error(fmt.Sprintf("Error limpiando advertencias: %v", err), "CMD-ClearWarns")
			ctx.EditReply("❌ No se pudieron eliminar las advertencias.")
			return
		}
		ctx.EditReply(fmt.Sprintf("🧹 Se eliminaron todas las advertencias de **%s**.", target.String()))
	}()

	return nil
}
