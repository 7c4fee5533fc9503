// Package leveling provides the /level, /leaderboard and /messages commands.
package leveling

import (
	"context"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/leveling"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
)

const storageTimeout = 5 * time.Second

// LevelReader reads one member's leveling record
type LevelReader interface {
	UserLevel(ctx context.Context, userID, guildID string) (*models.UserLevel, error)
}

// Rankings answers period leaderboards and message counts
type Rankings interface {
	Levels(ctx context.Context, guildID string, period leveling.Period, limit int) ([]models.UserLevel, error)
	Messages(ctx context.Context, guildID string, period leveling.Period, limit int) ([]models.MessageCount, error)
	MessageCount(ctx context.Context, guildID, userID string, period leveling.Period) (int, error)
}

type commands struct {
	levels   LevelReader
	rankings Rankings
}

// RegisterLevelingCommands registers the leveling commands as top level commands
func RegisterLevelingCommands(client *discord.ExtendedClient, levels LevelReader, rankings Rankings) {
	c := &commands{levels: levels, rankings: rankings}

	client.CommandHandler.RegisterCommand(c.levelCommand())
	client.CommandHandler.RegisterCommand(c.leaderboardCommand())
	client.CommandHandler.RegisterCommand(c.messagesCommand())
}

func storageContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storageTimeout)
}
