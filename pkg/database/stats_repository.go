package database

import (
	"context"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
)

// StatsRepository records command usage and builds dashboard summaries
type StatsRepository struct {
	db        *Database
	levels    *LevelRepository
	giveaways *GiveawayRepository
	boosts    *BoostRepository
	modlogs   *ModerationRepository
	configs   *GuildConfigService
}

// NewStatsRepository creates a StatsRepository over the other repositories
func NewStatsRepository(db *Database) *StatsRepository {
	return &StatsRepository{
		db:        db,
		levels:    NewLevelRepository(db),
		giveaways: NewGiveawayRepository(db),
		boosts:    NewBoostRepository(db),
		modlogs:   NewModerationRepository(db),
		configs:   NewGuildConfigService(),
	}
}

// RecordCommand stores one slash command invocation
func (r *StatsRepository) RecordCommand(ctx context.Context, guildID, userID, command string) error {
	col := r.db.GetCollection(CollectionCommandStats)
	if col == nil {
		return ErrStorageUnavailable
	}
	_, err := col.InsertOne(ctx, models.CommandStat{
		GuildID: guildID,
		UserID:  userID,
		Command: command,
		UsedAt:  time.Now(),
	})
	return wrapStorageError(err)
}

// TopCommands returns the most used commands
func (r *StatsRepository) TopCommands(ctx context.Context, limit int) ([]models.CommandUsage, error) {
	col := r.db.GetCollection(CollectionCommandStats)
	if col == nil {
		return nil, ErrStorageUnavailable
	}

	pipeline := mongoPipeline(
		bson.M{"$group": bson.M{"_id": "$command", "count": bson.M{"$sum": 1}}},
		bson.M{"$sort": bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}},
		bson.M{"$limit": int64(limit)},
	)
	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, wrapStorageError(err)
	}
	var usage []models.CommandUsage
	if err := cursor.All(ctx, &usage); err != nil {
		return nil, wrapStorageError(err)
	}
	return usage, nil
}

// CountCommands counts every recorded command invocation
func (r *StatsRepository) CountCommands(ctx context.Context) (int64, error) {
	col := r.db.GetCollection(CollectionCommandStats)
	if col == nil {
		return 0, ErrStorageUnavailable
	}
	n, err := col.EstimatedDocumentCount(ctx)
	return n, wrapStorageError(err)
}

// BotStats summarizes the stored data. guilds is supplied by the gateway.
func (r *StatsRepository) BotStats(ctx context.Context, guilds int) (*models.BotStats, error) {
	stats := &models.BotStats{Guilds: guilds}

	var err error
	if stats.TrackedUsers, err = r.levels.CountTrackedUsers(ctx, ""); err != nil {
		return nil, err
	}
	if stats.TotalGiveaways, err = r.giveaways.CountGiveaways(ctx, "", false); err != nil {
		return nil, err
	}
	if stats.ActiveGiveaways, err = r.giveaways.CountGiveaways(ctx, "", true); err != nil {
		return nil, err
	}
	if stats.CommandsUsed, err = r.CountCommands(ctx); err != nil {
		return nil, err
	}
	if stats.ModerationLogs, err = r.modlogs.CountLogs(ctx); err != nil {
		return nil, err
	}
	return stats, nil
}

// GuildStats summarizes a single guild
func (r *StatsRepository) GuildStats(ctx context.Context, guildID string) (*models.GuildStats, error) {
	cfg, err := r.configs.GetGuildConfig(ctx, guildID)
	if err != nil {
		return nil, err
	}
	stats := &models.GuildStats{Config: cfg}

	if stats.TrackedUsers, err = r.levels.CountTrackedUsers(ctx, guildID); err != nil {
		return nil, err
	}
	if stats.ActiveGiveaways, err = r.giveaways.CountGiveaways(ctx, guildID, true); err != nil {
		return nil, err
	}
	if stats.TotalGiveaways, err = r.giveaways.CountGiveaways(ctx, guildID, false); err != nil {
		return nil, err
	}
	if stats.ActiveBoosts, err = r.boosts.CountActiveBoosts(ctx, guildID); err != nil {
		return nil, err
	}
	return stats, nil
}
