// Package commands wires every command category into the Discord client.
// Commands live in subdirectories by category (utils, leveling, giveaway, config, mod).
package commands

import (
	cmdconfig "github.com/PancyStudios/PancyCommunityBot/internal/commands/config"
	cmdgiveaway "github.com/PancyStudios/PancyCommunityBot/internal/commands/giveaway"
	cmdleveling "github.com/PancyStudios/PancyCommunityBot/internal/commands/leveling"
	"github.com/PancyStudios/PancyCommunityBot/internal/commands/mod"
	"github.com/PancyStudios/PancyCommunityBot/internal/commands/utils"
	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/giveaway"
	"github.com/PancyStudios/PancyCommunityBot/pkg/leveling"
	"github.com/PancyStudios/PancyCommunityBot/pkg/notify"
)

// Services are the dependencies of the command handlers. The zero value is
// enough to build the command definitions, as cmd/sync-commands does.
type Services struct {
	Levels       *leveling.Engine
	Leaderboards *leveling.Leaderboards
	Giveaways    *giveaway.Service
	Previews     giveaway.PreviewStore
	Configs      cmdconfig.Store
	Moderation   mod.Repository
	Usage        utils.UsageStats
	Status       []utils.Component
	Notifier     notify.Notifier
}

// RegisterAll registers all commands with the Discord client and returns the
// giveaway announcer shared with the expiry worker.
func RegisterAll(client *discord.ExtendedClient, s *Services) *cmdgiveaway.Announcer {
	if s == nil {
		s = &Services{}
	}
	if s.Notifier == nil {
		s.Notifier = notify.Nop{}
	}

	// /utils ping, status, help, stats
	utils.RegisterUtilsCommands(client, s.Usage, s.Status...)

	// /level, /leaderboard, /messages
	cmdleveling.RegisterLevelingCommands(client, s.Levels, s.Leaderboards)

	// /giveaway create, list, end, reroll
	announcer := cmdgiveaway.RegisterGiveawayCommands(client, s.Giveaways, s.Previews)

	// /config
	cmdconfig.RegisterConfigCommands(client, s.Configs)

	// /mod ban, unban, kick, mute, warn, warns, removewarn, clearwarns
	mod.RegisterModCommands(client, s.Moderation, s.Notifier)

	return announcer
}
