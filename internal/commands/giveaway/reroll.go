package giveaway

import (
	"fmt"

	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/errors"
	"github.com/PancyStudios/PancyCommunityBot/pkg/giveaway"
	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"github.com/PancyStudios/PancyCommunityBot/pkg/ratelimit"
	"github.com/bwmarrin/discordgo"
)

const (
	rerollAll      = "all"
	rerollPosition = "position"
)

func (c *commands) rerollCommand() *discord.Command {
	return discord.NewCommand(
		"reroll",
		"Vuelve a sortear los ganadores de un sorteo finalizado",
		"giveaway",
		c.rerollHandler,
	).WithOptions(
		idOption("ID del sorteo"),
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "tipo",
			Description: "Todos los ganadores o una posición concreta",
			Required:    true,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "Todos los ganadores", Value: rerollAll},
				{Name: "Posición concreta", Value: rerollPosition},
			},
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "posicion",
			Description: "Posición a volver a sortear (1, 2, ...)",
			MinValue:    floatPtr(1),
			MaxValue:    giveaway.MaxWinners,
		},
	).WithUserPermissions(discordgo.PermissionManageEvents).
		WithAutoComplete(c.autocompleteID(false)).
		WithRateLimit(ratelimit.PerMinute(5)).
		RequiresDatabase()
}

func (c *commands) rerollHandler(ctx *discord.CommandContext) error {
	id := ctx.GetIntOption("id")
	kind := ctx.GetStringOption("tipo")
	if kind == rerollPosition && !ctx.HasOption("posicion") {
		return ctx.ReplyEphemeral("❌ Indica la posición a volver a sortear cuando eliges \"Posición concreta\".")
	}
	position := int(ctx.GetIntOption("posicion"))

	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	go func() {
		defer errors.RecoverMiddleware()()

		sctx, cancel := storageContext()
		defer cancel()

		g, err := c.service.Get(sctx, id)
		if err != nil {
			ctx.EditReply(userMessage(err))
			return
		}
		if g.GuildID != ctx.Interaction.GuildID {
			ctx.EditReply("❌ Este sorteo no pertenece a este servidor.")
			return
		}

		var winners []models.GiveawayWinner
		if kind == rerollPosition {
			var w *models.GiveawayWinner
			w, err = c.service.RerollPosition(sctx, id, position)
			if w != nil {
				winners = []models.GiveawayWinner{*w}
			}
		} else {
			winners, err = c.service.RerollAll(sctx, id)
		}
		if err != nil {
			logger.Warn(fmt.Sprintf("Reroll del sorteo #%d rechazado: %v", id, err), "CMD-Giveaway")
			ctx.EditReply(userMessage(err))
			return
		}
		if len(winners) == 0 {
			ctx.EditReply("❌ No hay participantes en este sorteo.")
			return
		}

		if err := c.announcer.AnnounceReroll(sctx, g, winners); err != nil {
			logger.Error(fmt.Sprintf("Error anunciando el reroll del sorteo #%d: %v", id, err), "CMD-Giveaway")
		}
		ctx.EditReply(fmt.Sprintf("✅ Reroll del sorteo **#%d** completado. Nuevos ganadores: %s", id, winnerMentions(winners)))
	}()

	return nil
}
