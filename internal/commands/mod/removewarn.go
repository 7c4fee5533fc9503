package mod

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/database"
	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/errors"
	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

func (m *moderation) removeWarnCommand() *discord.Command {
	return discord.NewCommand(
		"removewarn",
		"Elimina una advertencia específica de un usuario",
		"mod",
		m.removeWarnHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario del cual eliminar la advertencia",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:         discordgo.ApplicationCommandOptionString,
			Name:         "id",
			Description:  "ID de la advertencia a eliminar",
			Required:     true,
			Autocomplete: true,
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers).
		WithAutoComplete(m.removeWarnAutoComplete).
		RequiresDatabase()
}

func (m *moderation) removeWarnHandler(ctx *discord.CommandContext) error {
	target := ctx.GetUserOption("usuario")
	warnID := ctx.GetStringOption("id")
	if target == nil {
		return ctx.ReplyEphemeral("❌ Debes especificar un usuario válido.")
	}
	if warnID == "" {
		return ctx.ReplyEphemeral("❌ Debes especificar el ID de la advertencia.")
	}

	if err := ctx.Defer(); err != nil {
		return err
	}

	go func() {
		defer errors.RecoverMiddleware()()

		sctx, cancel := storageContext()
		defer cancel()

		before, err := m.repo.GetWarns(sctx, ctx.Interaction.GuildID, target.ID)
		if err != nil {
			logger.Error(fmt.Sprintf("Error DB RemoveWarn: %v", err), "CMD-RemoveWarn")
			ctx.EditReply("❌ Error al consultar la base de datos.")
			return
		}
		i := before.FindWarn(warnID)
		if i < 0 {
			ctx.EditReply("❌ No se encontró una advertencia con ese ID.")
			return
		}
		removed := before.Warns[i]

		_, err = m.repo.RemoveWarn(sctx, ctx.Interaction.GuildID, target.ID, warnID)
		if stderrors.Is(err, database.ErrNotFound) {
			ctx.EditReply("❌ No se encontró una advertencia con ese ID.")
			return
		}
		if err != nil {
			logger.Error(fmt.Sprintf("Error guardando RemoveWarn: %v", err), "CMD-RemoveWarn")
			ctx.EditReply("❌ No se pudo eliminar la advertencia.")
			return
		}

		ctx.EditReplyEmbed(&discordgo.MessageEmbed{
			Title:       "✅ Advertencia eliminada con éxito",
			Description: fmt.Sprintf("La advertencia de **%s** ha sido eliminada.\n\n**Razón original:** %s\n**ID:** `%s`", target.String(), removed.Reason, warnID),
			Color:       0x00FF00,
			Footer: &discordgo.MessageEmbedFooter{
				Text:    fmt.Sprintf("Solicitado por %s", ctx.User().String()),
				IconURL: ctx.User().AvatarURL(""),
			},
			Timestamp: time.Now().Format(time.RFC3339),
		})

		dmUser(ctx.Session, ctx.Interaction.ChannelID, target, &discordgo.MessageEmbed{
			Title: "ℹ - Advertencia eliminada",
			Color: 0x00FF00,
			Description: fmt.Sprintf(
				"⚒ - **Servidor:** %s\n🗑 - **Advertencia eliminada:** %s\n\n🕒 - **Fecha:** <t:%d:F>",
				guildName(ctx.Session, ctx.Interaction.GuildID), removed.Reason, time.Now().Unix(),
			),
			Footer: &discordgo.MessageEmbedFooter{Text: footerText},
		})
	}()

	return nil
}

func (m *moderation) removeWarnAutoComplete(ctx *discord.CommandContext) {
	go func() {
		defer errors.RecoverMiddleware()()

		opt := ctx.GetOption("usuario")
		if opt == nil {
			ctx.RespondChoices(nil)
			return
		}

		sctx, cancel := storageContext()
		defer cancel()
		doc, err := m.repo.GetWarns(sctx, ctx.Interaction.GuildID, opt.StringValue())
		if err != nil {
			ctx.RespondChoices(nil)
			return
		}
		ctx.RespondChoices(warnChoices(doc))
	}()
}
