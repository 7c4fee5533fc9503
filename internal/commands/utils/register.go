// Package utils provides the /utils command group.
package utils

import (
	"context"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
)

const storageTimeout = 5 * time.Second

// UsageStats reports slash command usage
type UsageStats interface {
	TopCommands(ctx context.Context, limit int) ([]models.CommandUsage, error)
	CountCommands(ctx context.Context) (int64, error)
}

// Component is a dependency listed by /utils status
type Component struct {
	Name  string
	Check func() (status string, online bool)
}

type commands struct {
	usage      UsageStats
	components []Component
}

// RegisterUtilsCommands registers the /utils group. usage may be nil.
func RegisterUtilsCommands(client *discord.ExtendedClient, usage UsageStats, components ...Component) {
	c := &commands{usage: usage, components: components}

	client.CommandHandler.AddGroup("utils", "Comandos de utilidad", 0,
		c.pingCommand(),
		c.statusCommand(),
		c.helpCommand(),
		c.statsCommand(),
	)
}
