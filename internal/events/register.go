// Package events wires the Discord gateway events to the leveling, boost and
// guild handlers.
package events

import (
	"context"

	"github.com/PancyStudios/PancyCommunityBot/pkg/boost"
	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/leveling"
	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"github.com/PancyStudios/PancyCommunityBot/pkg/notify"
)

// MessageRecorder accrues experience for a message
type MessageRecorder interface {
	RecordMessage(ctx context.Context, userID, guildID string) (*leveling.MessageResult, error)
}

// ConfigReader returns the configuration of a guild
type ConfigReader interface {
	GetGuildConfig(ctx context.Context, guildID string) (*models.GuildConfig, error)
}

// BoostHandler reacts to boost transitions
type BoostHandler interface {
	HandleUpdate(ctx context.Context, guildID, userID string, wasBoosting, isBoosting bool) (boost.Change, error)
}

// Handlers holds the services driven by gateway events. Nil fields disable
// the matching handlers.
type Handlers struct {
	Levels        MessageRecorder
	Configs       ConfigReader
	Roles         leveling.RoleManager
	Boosts        BoostHandler
	Notifier      notify.Notifier
	GuildsWebhook string
}

// RegisterAll registers all events with the Discord client
func RegisterAll(client *discord.ExtendedClient, h *Handlers) {
	logger.System("📋 Registrando eventos del bot...", "Events")
	if h == nil {
		h = &Handlers{}
	}
	if h.Notifier == nil {
		h.Notifier = notify.Nop{}
	}

	RegisterReadyEvent(client, h.Notifier)
	RegisterGuildEvents(client, h.GuildsWebhook)

	if h.Levels != nil {
		RegisterMessageEvents(client, newMessageHandler(h.Levels, h.Configs, h.Roles, h.Notifier))
	}
	if h.Boosts != nil {
		RegisterMemberEvents(client, h.Boosts)
	}

	logger.Success("✅ Todos los eventos registrados correctamente", "Events")
}
