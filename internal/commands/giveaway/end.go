package giveaway

import (
	"fmt"

	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/errors"
	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

func (c *commands) endCommand() *discord.Command {
	return discord.NewCommand(
		"end",
		"Finaliza un sorteo antes de tiempo",
		"giveaway",
		c.endHandler,
	).WithOptions(
		idOption("ID del sorteo"),
	).WithUserPermissions(discordgo.PermissionManageEvents).
		WithAutoComplete(c.autocompleteID(true)).
		RequiresDatabase()
}

func (c *commands) endHandler(ctx *discord.CommandContext) error {
	id := ctx.GetIntOption("id")

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

		result, err := c.service.End(sctx, id)
		if err != nil {
			logger.Warn(fmt.Sprintf("No se pudo finalizar el sorteo #%d: %v", id, err), "CMD-Giveaway")
			ctx.EditReply(userMessage(err))
			return
		}
		if err := c.announcer.AnnounceEnd(sctx, result); err != nil {
			logger.Error(fmt.Sprintf("Error anunciando el sorteo #%d: %v", id, err), "CMD-Giveaway")
		}

		if len(result.Winners) == 0 {
			ctx.EditReply(fmt.Sprintf("✅ Sorteo **#%d** finalizado sin participantes.", id))
			return
		}
		ctx.EditReply(fmt.Sprintf("✅ Sorteo **#%d** finalizado. Ganadores: %s", id, winnerMentions(result.Winners)))
	}()

	return nil
}
