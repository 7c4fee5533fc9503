package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/PancyStudios/PancyCommunityBot/pkg/boost"
	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"github.com/bwmarrin/discordgo"
)

func floatPtr(v float64) *float64 { return &v }

func roleOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionRole,
		Name:        "rol",
		Description: description,
		Required:    true,
	}
}

func (c *commands) boostChannelCommand() *discord.Command {
	return discord.NewCommand("boost-channel", "Canal donde se anuncian los boosts", "config", c.boostChannelHandler).
		WithOptions(&discordgo.ApplicationCommandOption{
			Type:         discordgo.ApplicationCommandOptionChannel,
			Name:         "canal",
			Description:  "Canal de anuncios de boosts",
			Required:     true,
			ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews},
		}).
		WithUserPermissions(discordgo.PermissionManageGuild).
		RequiresDatabase()
}

func (c *commands) boostChannelHandler(ctx *discord.CommandContext) error {
	channel := ctx.GetChannelOption("canal")
	if channel == nil {
		return ctx.ReplyEphemeral("❌ Canal inválido.")
	}
	return c.update(ctx, "boost-channel", func(sctx context.Context, guildID string) (*models.GuildConfig, error) {
		return c.store.SetBoostChannel(sctx, guildID, channel.ID)
	}, fmt.Sprintf("✅ Los boosts se anunciarán en <#%s>.", channel.ID))
}

func (c *commands) boostMessageCommand() *discord.Command {
	return discord.NewCommand("boost-message", "Mensaje de agradecimiento por boost", "config", c.boostMessageHandler).
		WithOptions(&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "mensaje",
			Description: "Mensaje ({user} se reemplaza por la mención del usuario)",
			Required:    true,
			MaxLength:   1000,
		}).
		WithUserPermissions(discordgo.PermissionManageGuild).
		RequiresDatabase()
}

func (c *commands) boostMessageHandler(ctx *discord.CommandContext) error {
	message := strings.TrimSpace(ctx.GetStringOption("mensaje"))
	if message == "" {
		return ctx.ReplyEphemeral("❌ El mensaje no puede estar vacío.")
	}
	preview := boost.FormatMessage(message, ctx.User().ID)
	return c.update(ctx, "boost-message", func(sctx context.Context, guildID string) (*models.GuildConfig, error) {
		return c.store.SetBoostMessage(sctx, guildID, message)
	}, "✅ Mensaje de boost actualizado. Vista previa:\n"+preview)
}

func (c *commands) boosterRoleCommand() *discord.Command {
	return discord.NewCommand("booster-role", "Rol que reciben los miembros mientras mejoran el servidor", "config", c.boosterRoleHandler).
		WithOptions(roleOption("Rol para boosters")).
		WithUserPermissions(discordgo.PermissionManageGuild).
		WithBotPermissions(discordgo.PermissionManageRoles).
		RequiresDatabase()
}

func (c *commands) boosterRoleHandler(ctx *discord.CommandContext) error {
	role := ctx.GetRoleOption("rol")
	if msg := assignableRole(role); msg != "" {
		return ctx.ReplyEphemeral(msg)
	}
	return c.update(ctx, "booster-role", func(sctx context.Context, guildID string) (*models.GuildConfig, error) {
		return c.store.SetBoosterRole(sctx, guildID, role.ID)
	}, fmt.Sprintf("✅ Los boosters recibirán el rol <@&%s>.", role.ID))
}

func (c *commands) levelRoleCommand() *discord.Command {
	return discord.NewCommand("level-role", "Asigna un rol al alcanzar un nivel", "config", c.levelRoleHandler).
		WithOptions(
			&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "nivel",
				Description: "Nivel requerido",
				Required:    true,
				MinValue:    floatPtr(1),
				MaxValue:    1000,
			},
			roleOption("Rol a asignar"),
		).
		WithUserPermissions(discordgo.PermissionManageGuild).
		WithBotPermissions(discordgo.PermissionManageRoles).
		RequiresDatabase()
}

func (c *commands) levelRoleHandler(ctx *discord.CommandContext) error {
	level := int(ctx.GetIntOption("nivel"))
	role := ctx.GetRoleOption("rol")
	if msg := assignableRole(role); msg != "" {
		return ctx.ReplyEphemeral(msg)
	}
	return c.update(ctx, "level-role", func(sctx context.Context, guildID string) (*models.GuildConfig, error) {
		return c.store.SetLevelRole(sctx, guildID, level, role.ID)
	}, fmt.Sprintf("✅ Los miembros que alcancen el nivel **%d** recibirán <@&%s>.", level, role.ID))
}

func (c *commands) messageRoleCommand() *discord.Command {
	return discord.NewCommand("message-role", "Asigna un rol al enviar cierta cantidad de mensajes", "config", c.messageRoleHandler).
		WithOptions(
			&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "mensajes",
				Description: "Mensajes requeridos",
				Required:    true,
				MinValue:    floatPtr(1),
			},
			roleOption("Rol a asignar"),
		).
		WithUserPermissions(discordgo.PermissionManageGuild).
		WithBotPermissions(discordgo.PermissionManageRoles).
		RequiresDatabase()
}

func (c *commands) messageRoleHandler(ctx *discord.CommandContext) error {
	messages := int(ctx.GetIntOption("mensajes"))
	role := ctx.GetRoleOption("rol")
	if msg := assignableRole(role); msg != "" {
		return ctx.ReplyEphemeral(msg)
	}
	return c.update(ctx, "message-role", func(sctx context.Context, guildID string) (*models.GuildConfig, error) {
		return c.store.SetMessageRole(sctx, guildID, messages, role.ID)
	}, fmt.Sprintf("✅ Los miembros que envíen **%d** mensajes recibirán <@&%s>.", messages, role.ID))
}

func (c *commands) giveawayRequirementsCommand() *discord.Command {
	return discord.NewCommand("giveaway-requirements", "Requisitos mínimos para participar en sorteos", "config", c.giveawayRequirementsHandler).
		WithOptions(
			&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "nivel",
				Description: "Nivel mínimo (0 para desactivar)",
				MinValue:    floatPtr(0),
			},
			&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "mensajes",
				Description: "Mensajes mínimos (0 para desactivar)",
				MinValue:    floatPtr(0),
			},
		).
		WithUserPermissions(discordgo.PermissionManageGuild).
		RequiresDatabase()
}

func (c *commands) giveawayRequirementsHandler(ctx *discord.CommandContext) error {
	level := int(ctx.GetIntOption("nivel"))
	messages := int(ctx.GetIntOption("mensajes"))
	return c.update(ctx, "giveaway-requirements", func(sctx context.Context, guildID string) (*models.GuildConfig, error) {
		return c.store.SetGiveawayRequirements(sctx, guildID, level, messages)
	}, "✅ Requisitos de sorteos actualizados: "+requirementsSummary(level, messages))
}

func requirementsSummary(level, messages int) string {
	if level <= 0 && messages <= 0 {
		return "sin requisitos"
	}
	var parts []string
	if level > 0 {
		parts = append(parts, fmt.Sprintf("nivel %d", level))
	}
	if messages > 0 {
		parts = append(parts, fmt.Sprintf("%d mensajes", messages))
	}
	return strings.Join(parts, " y ")
}

// assignableRole rejects roles the bot can never grant
func assignableRole(role *discordgo.Role) string {
	switch {
	case role == nil:
		return "❌ Rol inválido."
	case role.Managed:
		return "❌ Ese rol lo gestiona una integración y no se puede asignar."
	}
	return ""
}
