package database

import (
	"context"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DateLayout is the layout of MessageStat.Date
const DateLayout = "2006-01-02"

// LevelRepository persists user levels and daily message counters
type LevelRepository struct {
	db *Database
}

// NewLevelRepository creates a LevelRepository
func NewLevelRepository(db *Database) *LevelRepository {
	return &LevelRepository{db: db}
}

// WithTransaction runs fn atomically when the deployment allows it
func (r *LevelRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.WithTransaction(ctx, fn)
}

// AddExperience applies one message worth of experience in a single write.
// The pipeline derives the level from the new experience server-side so
// concurrent messages never lose XP.
func (r *LevelRepository) AddExperience(ctx context.Context, guildID, userID string, delta int, at time.Time) (*models.UserLevel, error) {
	col := r.db.GetCollection(CollectionUserLevels)
	if col == nil {
		return nil, ErrStorageUnavailable
	}

	newExperience := bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$experience", 0}}, delta}}
	pipeline := mongoPipeline(
		bson.M{"$set": bson.M{
			"experience":      newExperience,
			"totalMessages":   bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$totalMessages", 0}}, 1}},
			"lastMessageTime": at,
			"updatedAt":       at,
			"createdAt":       bson.M{"$ifNull": bson.A{"$createdAt", at}},
		}},
		bson.M{"$set": bson.M{
			"level": bson.M{"$add": bson.A{
				bson.M{"$floor": bson.M{"$sqrt": bson.M{"$divide": bson.A{"$experience", 100}}}},
				1,
			}},
		}},
	)

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var record models.UserLevel
	err := col.FindOneAndUpdate(ctx, bson.M{"guildId": guildID, "userId": userID}, pipeline, opts).Decode(&record)
	if err != nil {
		return nil, wrapStorageError(err)
	}
	return &record, nil
}

// IncrementDailyMessages bumps the message counter of the given UTC day
func (r *LevelRepository) IncrementDailyMessages(ctx context.Context, guildID, userID string, day time.Time) error {
	col := r.db.GetCollection(CollectionMessageStats)
	if col == nil {
		return ErrStorageUnavailable
	}

	filter := bson.M{"guildId": guildID, "userId": userID, "date": day.UTC().Format(DateLayout)}
	_, err := col.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"messageCount": 1}}, options.Update().SetUpsert(true))
	return wrapStorageError(err)
}

// DecrementDailyMessages takes back one message counted by IncrementDailyMessages
func (r *LevelRepository) DecrementDailyMessages(ctx context.Context, guildID, userID string, day time.Time) error {
	col := r.db.GetCollection(CollectionMessageStats)
	if col == nil {
		return ErrStorageUnavailable
	}

	filter := bson.M{"guildId": guildID, "userId": userID, "date": day.UTC().Format(DateLayout), "messageCount": bson.M{"$gt": 0}}
	_, err := col.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"messageCount": -1}})
	return wrapStorageError(err)
}

// GetUserLevel returns the record of a member, or ErrNotFound
func (r *LevelRepository) GetUserLevel(ctx context.Context, guildID, userID string) (*models.UserLevel, error) {
	col := r.db.GetCollection(CollectionUserLevels)
	if col == nil {
		return nil, ErrStorageUnavailable
	}

	var record models.UserLevel
	if err := col.FindOne(ctx, bson.M{"guildId": guildID, "userId": userID}).Decode(&record); err != nil {
		return nil, wrapStorageError(err)
	}
	return &record, nil
}

// LevelLeaderboard orders members by level and experience. A non-zero since
// keeps only members active after it.
func (r *LevelRepository) LevelLeaderboard(ctx context.Context, guildID string, since time.Time, limit int) ([]models.UserLevel, error) {
	filter := bson.M{"guildId": guildID}
	if !since.IsZero() {
		filter["updatedAt"] = bson.M{"$gte": since}
	}
	sort := bson.D{{Key: "level", Value: -1}, {Key: "experience", Value: -1}}
	return r.findLevels(ctx, filter, sort, limit)
}

// MessageLeaderboard sums daily counters since the given time. A zero since
// ranks by the lifetime message total.
func (r *LevelRepository) MessageLeaderboard(ctx context.Context, guildID string, since time.Time, limit int) ([]models.MessageCount, error) {
	if since.IsZero() {
		levels, err := r.findLevels(ctx, bson.M{"guildId": guildID}, bson.D{{Key: "totalMessages", Value: -1}}, limit)
		if err != nil {
			return nil, err
		}
		counts := make([]models.MessageCount, 0, len(levels))
		for _, l := range levels {
			counts = append(counts, models.MessageCount{UserID: l.UserID, Count: l.TotalMessages})
		}
		return counts, nil
	}

	col := r.db.GetCollection(CollectionMessageStats)
	if col == nil {
		return nil, ErrStorageUnavailable
	}

	pipeline := mongoPipeline(
		bson.M{"$match": bson.M{"guildId": guildID, "date": bson.M{"$gte": since.UTC().Format(DateLayout)}}},
		bson.M{"$group": bson.M{"_id": "$userId", "count": bson.M{"$sum": "$messageCount"}}},
		bson.M{"$sort": bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}},
		bson.M{"$limit": int64(limit)},
	)

	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, wrapStorageError(err)
	}
	var counts []models.MessageCount
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, wrapStorageError(err)
	}
	return counts, nil
}

// CountMessages sums the messages of a member since the given day. A zero
// since returns the lifetime total.
func (r *LevelRepository) CountMessages(ctx context.Context, guildID, userID string, since time.Time) (int, error) {
	if since.IsZero() {
		record, err := r.GetUserLevel(ctx, guildID, userID)
		if err != nil {
			return 0, err
		}
		return record.TotalMessages, nil
	}

	col := r.db.GetCollection(CollectionMessageStats)
	if col == nil {
		return 0, ErrStorageUnavailable
	}

	pipeline := mongoPipeline(
		bson.M{"$match": bson.M{"guildId": guildID, "userId": userID, "date": bson.M{"$gte": since.UTC().Format(DateLayout)}}},
		bson.M{"$group": bson.M{"_id": "$userId", "count": bson.M{"$sum": "$messageCount"}}},
	)

	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, wrapStorageError(err)
	}
	var counts []models.MessageCount
	if err := cursor.All(ctx, &counts); err != nil {
		return 0, wrapStorageError(err)
	}
	if len(counts) == 0 {
		return 0, nil
	}
	return counts[0].Count, nil
}

// CountTrackedUsers counts leveling records, optionally per guild
func (r *LevelRepository) CountTrackedUsers(ctx context.Context, guildID string) (int64, error) {
	col := r.db.GetCollection(CollectionUserLevels)
	if col == nil {
		return 0, ErrStorageUnavailable
	}
	filter := bson.M{}
	if guildID != "" {
		filter["guildId"] = guildID
	}
	n, err := col.CountDocuments(ctx, filter)
	return n, wrapStorageError(err)
}

func (r *LevelRepository) findLevels(ctx context.Context, filter bson.M, sort bson.D, limit int) ([]models.UserLevel, error) {
	col := r.db.GetCollection(CollectionUserLevels)
	if col == nil {
		return nil, ErrStorageUnavailable
	}

	opts := options.Find().SetSort(sort).SetLimit(int64(limit))
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapStorageError(err)
	}
	var levels []models.UserLevel
	if err := cursor.All(ctx, &levels); err != nil {
		return nil, wrapStorageError(err)
	}
	return levels, nil
}

func mongoPipeline(stages ...bson.M) []bson.M {
	return stages
}
