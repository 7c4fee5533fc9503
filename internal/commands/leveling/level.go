package leveling

import (
	"fmt"

	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/errors"
	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

func (c *commands) levelCommand() *discord.Command {
	return discord.NewCommand(
		"level",
		"Muestra tu nivel o el de otro usuario",
		"leveling",
		c.levelHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a consultar",
		},
	).RequiresDatabase()
}

func (c *commands) levelHandler(ctx *discord.CommandContext) error {
	if ctx.Interaction.GuildID == "" {
		return ctx.ReplyEphemeral("❌ Este comando solo puede usarse en un servidor.")
	}

	user := ctx.GetUserOption("usuario")
	if user == nil {
		user = ctx.User()
	}
	if user.Bot {
		return ctx.ReplyEphemeral("❌ Los bots no tienen nivel.")
	}

	if err := ctx.Defer(); err != nil {
		return err
	}

	go func() {
		defer errors.RecoverMiddleware()()

		sctx, cancel := storageContext()
		defer cancel()
		record, err := c.levels.UserLevel(sctx, user.ID, ctx.Interaction.GuildID)
		if err != nil {
			logger.Error(fmt.Sprintf("Error obteniendo nivel de %s: %v", user.ID, err), "CMD-Level")
			ctx.EditReply("❌ No se pudo obtener el nivel. Inténtalo más tarde.")
			return
		}
		ctx.EditReplyEmbed(levelEmbed(user, record))
	}()

	return nil
}
