package leveling

import (
	"fmt"

	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/errors"
	"github.com/PancyStudios/PancyCommunityBot/pkg/leveling"
	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

func (c *commands) leaderboardCommand() *discord.Command {
	return discord.NewCommand(
		"leaderboard",
		"Muestra el ranking del servidor",
		"leveling",
		c.leaderboardHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "tipo",
			Description: "Tipo de ranking",
			Required:    true,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "Mensajes", Value: "mensajes"},
				{Name: "Niveles", Value: "niveles"},
			},
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "periodo",
			Description: "Periodo del ranking",
			Choices:     periodChoices,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "limite",
			Description: "Cantidad de usuarios (1-25)",
			MinValue:    func() *float64 { v := 1.0; return &v }(),
			MaxValue:    leveling.MaxLeaderboardSize,
		},
	).RequiresDatabase()
}

func (c *commands) leaderboardHandler(ctx *discord.CommandContext) error {
	if ctx.Interaction.GuildID == "" {
		return ctx.ReplyEphemeral("❌ Este comando solo puede usarse en un servidor.")
	}

	period, err := leveling.ParsePeriod(ctx.GetStringOption("periodo"))
	if err != nil {
		return ctx.ReplyEphemeral("❌ Periodo inválido.")
	}
	kind := ctx.GetStringOption("tipo")
	limit := int(ctx.GetIntOption("limite"))

	if err := ctx.Defer(); err != nil {
		return err
	}

	go func() {
		defer errors.RecoverMiddleware()()

		sctx, cancel := storageContext()
		defer cancel()

		embed := &discordgo.MessageEmbed{Color: 0xF1C40F}
		guildID := ctx.Interaction.GuildID

		if kind == "niveles" {
			entries, err := c.rankings.Levels(sctx, guildID, period, limit)
			if err != nil {
				logger.Error(fmt.Sprintf("Error en ranking de niveles: %v", err), "CMD-Leaderboard")
				ctx.EditReply("❌ No se pudo obtener el ranking.")
				return
			}
			embed.Title = "🏆 Ranking de niveles · " + period.Label()
			embed.Description = levelLines(entries)
		} else {
			entries, err := c.rankings.Messages(sctx, guildID, period, limit)
			if err != nil {
				logger.Error(fmt.Sprintf("Error en ranking de mensajes: %v", err), "CMD-Leaderboard")
				ctx.EditReply("❌ No se pudo obtener el ranking.")
				return
			}
			embed.Title = "💬 Ranking de mensajes · " + period.Label()
			embed.Description = messageLines(entries)
		}

		if embed.Description == "" {
			embed.Description = "Todavía no hay actividad registrada en este periodo."
		}
		ctx.EditReplyEmbed(embed)
	}()

	return nil
}
