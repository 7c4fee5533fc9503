// Package config provides the /config command group for per-guild settings.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/errors"
	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"github.com/bwmarrin/discordgo"
)

const storageTimeout = 5 * time.Second

// Store edits guild configuration
type Store interface {
	GetGuildConfig(ctx context.Context, guildID string) (*models.GuildConfig, error)
	SetBoostChannel(ctx context.Context, guildID, channelID string) (*models.GuildConfig, error)
	SetBoostMessage(ctx context.Context, guildID, message string) (*models.GuildConfig, error)
	SetBoosterRole(ctx context.Context, guildID, roleID string) (*models.GuildConfig, error)
	SetGiveawayRequirements(ctx context.Context, guildID string, level, messages int) (*models.GuildConfig, error)
	SetLevelRole(ctx context.Context, guildID string, level int, roleID string) (*models.GuildConfig, error)
	SetMessageRole(ctx context.Context, guildID string, messages int, roleID string) (*models.GuildConfig, error)
}

type commands struct {
	store Store
}

// RegisterConfigCommands registers /config. Every subcommand needs Manage Guild.
func RegisterConfigCommands(client *discord.ExtendedClient, store Store) {
	c := &commands{store: store}

	client.CommandHandler.AddGroup("config", "Configuración del servidor", discordgo.PermissionManageGuild,
		c.boostChannelCommand(),
		c.boostMessageCommand(),
		c.boosterRoleCommand(),
		c.levelRoleCommand(),
		c.messageRoleCommand(),
		c.giveawayRequirementsCommand(),
		c.viewCommand(),
	)
}

// update runs fn in the background and reports the outcome by editing the deferred reply
func (c *commands) update(ctx *discord.CommandContext, name string, fn func(ctx context.Context, guildID string) (*models.GuildConfig, error), success string) error {
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

		cfg, err := fn(sctx, ctx.Interaction.GuildID)
		if err != nil {
			logger.Error(fmt.Sprintf("Error guardando %s en %s: %v", name, ctx.Interaction.GuildID, err), "CMD-Config")
			ctx.EditReply("❌ No se pudo guardar la configuración. Inténtalo más tarde.")
			return
		}
		ctx.EditReply(savedMessage(cfg, success))
	}()

	return nil
}

// savedMessage confirms a change. A nil config means the write was queued while the database is offline.
func savedMessage(cfg *models.GuildConfig, success string) string {
	if cfg == nil {
		return success + "\n⚠️ La base de datos no está disponible; el cambio se aplicará cuando vuelva a estar en línea."
	}
	return success
}
