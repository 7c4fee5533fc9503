package web

import (
	"context"

	"github.com/PancyStudios/PancyCommunityBot/pkg/database"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
)

// DatabaseStore serves the dashboard from MongoDB
type DatabaseStore struct {
	db         *database.Database
	stats      *database.StatsRepository
	moderation *database.ModerationRepository
	giveaways  *database.GiveawayRepository
}

// NewDatabaseStore creates a Store over db
func NewDatabaseStore(db *database.Database) *DatabaseStore {
	return &DatabaseStore{
		db:         db,
		stats:      database.NewStatsRepository(db),
		moderation: database.NewModerationRepository(db),
		giveaways:  database.NewGiveawayRepository(db),
	}
}

func (s *DatabaseStore) Status() (string, bool) {
	return s.db.GetStatus()
}

func (s *DatabaseStore) BotStats(ctx context.Context, guilds int) (*models.BotStats, error) {
	return s.stats.BotStats(ctx, guilds)
}

func (s *DatabaseStore) GuildStats(ctx context.Context, guildID string) (*models.GuildStats, error) {
	return s.stats.GuildStats(ctx, guildID)
}

func (s *DatabaseStore) ModerationLogs(ctx context.Context, guildID string, limit int) ([]models.ModerationLog, error) {
	return s.moderation.ListLogs(ctx, guildID, limit)
}

func (s *DatabaseStore) Giveaways(ctx context.Context, guildID string, activeOnly bool, limit int) ([]models.Giveaway, error) {
	return s.giveaways.ListGiveaways(ctx, guildID, activeOnly, limit)
}

func (s *DatabaseStore) TopCommands(ctx context.Context, limit int) ([]models.CommandUsage, error) {
	return s.stats.TopCommands(ctx, limit)
}
