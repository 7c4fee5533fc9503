package leveling

import (
	"fmt"

	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/errors"
	"github.com/PancyStudios/PancyCommunityBot/pkg/leveling"
	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

func (c *commands) messagesCommand() *discord.Command {
	return discord.NewCommand(
		"messages",
		"Muestra cuántos mensajes ha enviado un usuario",
		"leveling",
		c.messagesHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a consultar",
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "periodo",
			Description: "Periodo a consultar",
			Choices:     periodChoices,
		},
	).RequiresDatabase()
}

func (c *commands) messagesHandler(ctx *discord.CommandContext) error {
	if ctx.Interaction.GuildID == "" {
		return ctx.ReplyEphemeral("❌ Este comando solo puede usarse en un servidor.")
	}

	user := ctx.GetUserOption("usuario")
	if user == nil {
		user = ctx.User()
	}
	period, err := leveling.ParsePeriod(ctx.GetStringOption("periodo"))
	if err != nil {
		return ctx.ReplyEphemeral("❌ Periodo inválido.")
	}

	if err := ctx.Defer(); err != nil {
		return err
	}

	go func() {
		defer errors.RecoverMiddleware()()

		sctx, cancel := storageContext()
		defer cancel()
		count, err := c.rankings.MessageCount(sctx, ctx.Interaction.GuildID, user.ID, period)
		if err != nil {
			logger.Error(fmt.Sprintf("Error contando mensajes de %s: %v", user.ID, err), "CMD-Messages")
			ctx.EditReply("❌ No se pudieron contar los mensajes.")
			return
		}

		ctx.EditReplyEmbed(&discordgo.MessageEmbed{
			Title:       fmt.Sprintf("💬 Mensajes de %s", user.Username),
			Description: fmt.Sprintf("**%d** mensajes · %s", count, period.Label()),
			Color:       0x5865F2,
		})
	}()

	return nil
}
