package mod

import (
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/errors"
	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"github.com/bwmarrin/discordgo"
)

func (m *moderation) warnsCommand() *discord.Command {
	return discord.NewCommand(
		"warns",
		"Lista de advertencias de un usuario",
		"mod",
		m.warnsHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "[STAFF] Usuario a buscar (opcional)",
		},
	).RequiresDatabase()
}

// warnListDescription renders the warnings; moderator names are hidden from non-staff
func warnListDescription(doc *models.WarnsDocument, showModerator bool, now time.Time) string {
	var b strings.Builder
	for _, warn := range doc.Warns {
		mod := "Oculto"
		if showModerator {
			mod = "<@" + warn.Moderator + ">"
		}
		fmt.Fprintf(&b, "> **Advertencia:** %s \n> **Moderador:** %s \n> **ID:** %s \n\n", warn.Reason, mod, warn.ID)
	}
	fmt.Fprintf(&b, "> 💫 - **Cantidad de advertencias:** %d \n> 🕒 - **Fecha de consulta:** <t:%d>", len(doc.Warns), now.Unix())
	return truncate(b.String(), 4096)
}

func (m *moderation) warnsHandler(ctx *discord.CommandContext) error {
	target := ctx.GetUserOption("usuario")
	isModerator := ctx.HasPermission(discordgo.PermissionManageMessages)

	if target == nil {
		target = ctx.User()
	} else if target.ID != ctx.User().ID && !isModerator {
		return ctx.ReplyEphemeral("❌ No tienes permisos para ver la lista de advertencias de otro usuario.")
	}

	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	go func() {
		defer errors.RecoverMiddleware()()

		sctx, cancel := storageContext()
		defer cancel()
		doc, err := m.repo.GetWarns(sctx, ctx.Interaction.GuildID, target.ID)
		if err != nil {
			logger.Error(fmt.Sprintf("Error DB Warnings: %v", err), "CMD-Warnings")
			ctx.EditReply("❌ Error al consultar la base de datos.")
			return
		}

		embed := &discordgo.MessageEmbed{
			Title:  fmt.Sprintf("🔖 - Lista de advertencias de %s", target.Username),
			Footer: &discordgo.MessageEmbedFooter{Text: footerText},
		}
		if len(doc.Warns) == 0 {
			embed.Color = 0x00FF00
			embed.Description = fmt.Sprintf("No se han encontrado advertencias del usuario en este servidor\n\n> 💫 - **Cantidad de advertencias:** 0\n> 🕒 - **Fecha de consulta:** <t:%d>", m.now().Unix())
		} else {
			embed.Color = 0xFFA500
			embed.Description = warnListDescription(doc, isModerator, m.now())
		}
		ctx.EditReplyEmbed(embed)
	}()

	return nil
}
