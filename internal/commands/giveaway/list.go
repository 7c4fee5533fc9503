package giveaway

import (
	"fmt"

	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/errors"
	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"github.com/bwmarrin/discordgo"
)

const listLimit = 10

func (c *commands) listCommand() *discord.Command {
	return discord.NewCommand(
		"list",
		"Lista los sorteos del servidor",
		"giveaway",
		c.listHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "solo_activos",
			Description: "Muestra solo los sorteos activos",
		},
	).RequiresDatabase()
}

func listEmbed(list []models.Giveaway, activeOnly bool) *discordgo.MessageEmbed {
	title := "🎉 Sorteos"
	if activeOnly {
		title = "🎉 Sorteos activos"
	}
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Color:       defaultColor,
		Description: fmt.Sprintf("Se encontraron %d sorteos", len(list)),
	}
	for _, g := range list {
		state := "🔴 Finalizado"
		if g.IsActive {
			state = "🟢 Activo"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: fmt.Sprintf("#%d · %s", g.ID, g.Title),
			Value: fmt.Sprintf("🎁 %s\n🏆 %d ganadores · ⏰ <t:%d:R>\n%s",
				g.Prize, g.WinnerCount, g.EndTime.Unix(), state),
		})
	}
	return embed
}

func (c *commands) listHandler(ctx *discord.CommandContext) error {
	if ctx.Interaction.GuildID == "" {
		return ctx.ReplyEphemeral("❌ Este comando solo puede usarse en un servidor.")
	}
	activeOnly := ctx.GetBoolOption("solo_activos")

	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	go func() {
		defer errors.RecoverMiddleware()()

		sctx, cancel := storageContext()
		defer cancel()
		list, err := c.service.List(sctx, ctx.Interaction.GuildID, activeOnly, listLimit)
		if err != nil {
			logger.Error(fmt.Sprintf("Error listando sorteos: %v", err), "CMD-Giveaway")
			ctx.EditReply(userMessage(err))
			return
		}
		if len(list) == 0 {
			if activeOnly {
				ctx.EditReply("No hay sorteos activos.")
			} else {
				ctx.EditReply("No hay sorteos en este servidor.")
			}
			return
		}
		ctx.EditReplyEmbed(listEmbed(list, activeOnly))
	}()

	return nil
}
