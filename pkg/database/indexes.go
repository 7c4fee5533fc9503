package database

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	CollectionUserLevels     = "user_levels"
	CollectionMessageStats   = "message_stats"
	CollectionGuildConfigs   = "guild_configs"
	CollectionGiveaways      = "giveaways"
	CollectionEntries        = "giveaway_entries"
	CollectionWinners        = "giveaway_winners"
	CollectionServerBoosts   = "server_boosts"
	CollectionModerationLogs = "moderation_logs"
	CollectionCommandStats   = "command_stats"
	CollectionWarns          = "warns"
	CollectionCounters       = "counters"
)

var indexModels = map[string][]mongo.IndexModel{
	CollectionUserLevels: {
		{Keys: bson.D{{Key: "guildId", Value: 1}, {Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "guildId", Value: 1}, {Key: "level", Value: -1}, {Key: "experience", Value: -1}}},
	},
	CollectionMessageStats: {
		{Keys: bson.D{{Key: "guildId", Value: 1}, {Key: "userId", Value: 1}, {Key: "date", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "guildId", Value: 1}, {Key: "date", Value: 1}}},
	},
	CollectionGuildConfigs: {
		{Keys: bson.D{{Key: "guildId", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	CollectionGiveaways: {
		{Keys: bson.D{{Key: "messageId", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "guildId", Value: 1}, {Key: "isActive", Value: 1}}},
		{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "endTime", Value: 1}}},
		{Keys: bson.D{{Key: "drawPendingSince", Value: 1}}, Options: options.Index().SetSparse(true)},
	},
	CollectionEntries: {
		{Keys: bson.D{{Key: "giveawayId", Value: 1}, {Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	CollectionWinners: {
		{Keys: bson.D{{Key: "giveawayId", Value: 1}, {Key: "position", Value: 1}}},
		{
			Keys:    bson.D{{Key: "giveawayId", Value: 1}, {Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"rerolled": false}),
		},
	},
	CollectionServerBoosts: {
		{Keys: bson.D{{Key: "guildId", Value: 1}, {Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	CollectionModerationLogs: {
		{Keys: bson.D{{Key: "guildId", Value: 1}, {Key: "createdAt", Value: -1}}},
	},
	CollectionCommandStats: {
		{Keys: bson.D{{Key: "command", Value: 1}}},
		{Keys: bson.D{{Key: "guildId", Value: 1}, {Key: "usedAt", Value: -1}}},
	},
	CollectionWarns: {
		{Keys: bson.D{{Key: "guildId", Value: 1}, {Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
}

// EnsureIndexes creates the indexes every repository relies on.
// The (giveawayId, userId) unique indexes serialize concurrent entries and
// keep a user from holding two standing winner positions.
func (d *Database) EnsureIndexes(ctx context.Context) error {
	if !d.Connected() {
		return ErrStorageUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for name, models := range indexModels {
		col := d.GetCollection(name)
		if col == nil {
			return ErrStorageUnavailable
		}
		if _, err := col.Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("creating indexes for %s: %w", name, wrapStorageError(err))
		}
	}

	logger.System(fmt.Sprintf("Índices verificados en %d colecciones", len(indexModels)), "DB")
	return nil
}

// nextSequence atomically increments and returns the named counter
func (d *Database) nextSequence(ctx context.Context, name string) (int64, error) {
	col := d.GetCollection(CollectionCounters)
	if col == nil {
		return 0, ErrStorageUnavailable
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := col.FindOneAndUpdate(ctx, bson.M{"_id": name}, bson.M{"$inc": bson.M{"seq": int64(1)}}, opts).Decode(&counter)
	if err != nil {
		return 0, wrapStorageError(err)
	}
	return counter.Seq, nil
}
