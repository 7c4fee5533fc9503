package database

import (
	"context"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BoostRepository tracks members boosting a guild
type BoostRepository struct {
	db *Database
}

// NewBoostRepository creates a BoostRepository
func NewBoostRepository(db *Database) *BoostRepository {
	return &BoostRepository{db: db}
}

// RecordBoost marks a member as boosting since at
func (r *BoostRepository) RecordBoost(ctx context.Context, guildID, userID string, at time.Time) error {
	col := r.db.GetCollection(CollectionServerBoosts)
	if col == nil {
		return ErrStorageUnavailable
	}

	update := bson.M{
		"$set":   bson.M{"boostedAt": at, "active": true},
		"$unset": bson.M{"endedAt": ""},
	}
	_, err := col.UpdateOne(ctx, bson.M{"guildId": guildID, "userId": userID}, update, options.Update().SetUpsert(true))
	return wrapStorageError(err)
}

// EndBoost marks the boost of a member as ended. Unknown boosts are ignored.
func (r *BoostRepository) EndBoost(ctx context.Context, guildID, userID string, at time.Time) error {
	col := r.db.GetCollection(CollectionServerBoosts)
	if col == nil {
		return ErrStorageUnavailable
	}

	_, err := col.UpdateOne(ctx,
		bson.M{"guildId": guildID, "userId": userID, "active": true},
		bson.M{"$set": bson.M{"active": false, "endedAt": at}},
	)
	return wrapStorageError(err)
}

// ListActiveBoosts returns the members currently boosting a guild
func (r *BoostRepository) ListActiveBoosts(ctx context.Context, guildID string) ([]models.ServerBoost, error) {
	col := r.db.GetCollection(CollectionServerBoosts)
	if col == nil {
		return nil, ErrStorageUnavailable
	}

	opts := options.Find().SetSort(bson.D{{Key: "boostedAt", Value: 1}})
	cursor, err := col.Find(ctx, bson.M{"guildId": guildID, "active": true}, opts)
	if err != nil {
		return nil, wrapStorageError(err)
	}
	var boosts []models.ServerBoost
	if err := cursor.All(ctx, &boosts); err != nil {
		return nil, wrapStorageError(err)
	}
	return boosts, nil
}

// CountActiveBoosts counts the members currently boosting a guild
func (r *BoostRepository) CountActiveBoosts(ctx context.Context, guildID string) (int64, error) {
	col := r.db.GetCollection(CollectionServerBoosts)
	if col == nil {
		return 0, ErrStorageUnavailable
	}
	n, err := col.CountDocuments(ctx, bson.M{"guildId": guildID, "active": true})
	return n, wrapStorageError(err)
}
