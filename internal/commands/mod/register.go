package mod

import (
	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/notify"
)

// RegisterModCommands registers all moderation commands as /mod subcommands
func RegisterModCommands(client *discord.ExtendedClient, repo Repository, notifier notify.Notifier) {
	m := newModeration(repo, notifier)

	client.CommandHandler.AddGroup(
		"mod",
		"Comandos de moderación",
		0,
		m.banCommand(),
		m.unbanCommand(),
		m.kickCommand(),
		m.muteCommand(),
		m.warnCommand(),
		m.warnsCommand(),
		m.removeWarnCommand(),
		m.clearWarnsCommand(),
	)
}
