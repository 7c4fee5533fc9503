package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/PancyStudios/PancyCommunityBot/pkg/boost"
	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/errors"
	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"github.com/bwmarrin/discordgo"
)

const notSet = "No configurado"

func (c *commands) viewCommand() *discord.Command {
	return discord.NewCommand("view", "Muestra la configuración actual del servidor", "config", c.viewHandler).
		WithUserPermissions(discordgo.PermissionManageGuild).
		RequiresDatabase()
}

func orNotSet(value, format string) string {
	if value == "" {
		return notSet
	}
	return fmt.Sprintf(format, value)
}

func viewEmbed(cfg *models.GuildConfig) *discordgo.MessageEmbed {
	var levelRoles, messageRoles strings.Builder
	for _, r := range cfg.LevelRoles {
		fmt.Fprintf(&levelRoles, "Nivel **%d** → <@&%s>\n", r.Level, r.RoleID)
	}
	for _, r := range cfg.MessageRoles {
		fmt.Fprintf(&messageRoles, "**%d** mensajes → <@&%s>\n", r.Messages, r.RoleID)
	}

	boostMessage := cfg.BoostMessage
	if boostMessage == "" {
		boostMessage = boost.DefaultMessage + " *(por defecto)*"
	}

	field := func(name, value string) *discordgo.MessageEmbedField {
		if value == "" {
			value = notSet
		}
		return &discordgo.MessageEmbedField{Name: name, Value: value}
	}

	return &discordgo.MessageEmbed{
		Title: "⚙️ Configuración del servidor",
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🚀 Canal de boosts", Value: orNotSet(cfg.BoostChannelID, "<#%s>"), Inline: true},
			{Name: "💎 Rol de booster", Value: orNotSet(cfg.BoosterRoleID, "<@&%s>"), Inline: true},
			field("💬 Mensaje de boost", boostMessage),
			field("📈 Roles por nivel", levelRoles.String()),
			field("✉️ Roles por mensajes", messageRoles.String()),
			field("🎉 Requisitos de sorteos", requirementsSummary(cfg.LevelRequirement, cfg.MessageRequirement)),
		},
	}
}

func (c *commands) viewHandler(ctx *discord.CommandContext) error {
	if ctx.Interaction.GuildID == "" {
		return ctx.ReplyEphemeral("❌ Este comando solo puede usarse en un servidor.")
	}
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	go func() {
		defer errors.RecoverMiddleware()()

		sctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		defer cancel()

		cfg, err := c.store.GetGuildConfig(sctx, ctx.Interaction.GuildID)
		if err != nil {
			logger.Error(fmt.Sprintf("Error leyendo la configuración de %s: %v", ctx.Interaction.GuildID, err), "CMD-Config")
			ctx.EditReply("❌ No se pudo leer la configuración.")
			return
		}
		ctx.EditReplyEmbed(viewEmbed(cfg))
	}()

	return nil
}
