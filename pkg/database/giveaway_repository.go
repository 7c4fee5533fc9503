package database

import (
	"context"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const giveawaySequence = "giveaways"

// GiveawayRepository persists giveaways, their entries and winner history
type GiveawayRepository struct {
	db *Database
}

// NewGiveawayRepository creates a GiveawayRepository
func NewGiveawayRepository(db *Database) *GiveawayRepository {
	return &GiveawayRepository{db: db}
}

func (r *GiveawayRepository) collection(name string) (*mongo.Collection, error) {
	col := r.db.GetCollection(name)
	if col == nil {
		return nil, ErrStorageUnavailable
	}
	return col, nil
}

// NextGiveawayID reserves the id of the next giveaway
func (r *GiveawayRepository) NextGiveawayID(ctx context.Context) (int64, error) {
	return r.db.nextSequence(ctx, giveawaySequence)
}

// CreateGiveaway inserts g, reserving an id first when g.ID is zero
func (r *GiveawayRepository) CreateGiveaway(ctx context.Context, g *models.Giveaway) (int64, error) {
	col, err := r.collection(CollectionGiveaways)
	if err != nil {
		return 0, err
	}

	if g.ID == 0 {
		id, err := r.NextGiveawayID(ctx)
		if err != nil {
			return 0, err
		}
		g.ID = id
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}

	if _, err := col.InsertOne(ctx, g); err != nil {
		return 0, wrapStorageError(err)
	}
	return g.ID, nil
}

// GetGiveaway returns the giveaway with the given id, or ErrNotFound
func (r *GiveawayRepository) GetGiveaway(ctx context.Context, id int64) (*models.Giveaway, error) {
	return r.findGiveaway(ctx, bson.M{"_id": id})
}

// GetGiveawayByMessage returns the giveaway announced in messageID, or ErrNotFound
func (r *GiveawayRepository) GetGiveawayByMessage(ctx context.Context, messageID string) (*models.Giveaway, error) {
	return r.findGiveaway(ctx, bson.M{"messageId": messageID})
}

func (r *GiveawayRepository) findGiveaway(ctx context.Context, filter bson.M) (*models.Giveaway, error) {
	col, err := r.collection(CollectionGiveaways)
	if err != nil {
		return nil, err
	}

	var g models.Giveaway
	if err := col.FindOne(ctx, filter).Decode(&g); err != nil {
		return nil, wrapStorageError(err)
	}
	return &g, nil
}

// DeactivateGiveaway flips isActive from true to false and opens the draw. It
// reports false when the giveaway was already inactive, so only one caller
// ever ends a giveaway.
func (r *GiveawayRepository) DeactivateGiveaway(ctx context.Context, id int64, now time.Time) (bool, error) {
	col, err := r.collection(CollectionGiveaways)
	if err != nil {
		return false, err
	}

	res, err := col.UpdateOne(ctx,
		bson.M{"_id": id, "isActive": true},
		bson.M{"$set": bson.M{"isActive": false, "drawPendingSince": now}},
	)
	if err != nil {
		return false, wrapStorageError(err)
	}
	return res.ModifiedCount == 1, nil
}

// ClaimPendingDraw takes over an interrupted draw whose lease started at or
// before staleBefore
func (r *GiveawayRepository) ClaimPendingDraw(ctx context.Context, id int64, staleBefore, now time.Time) (bool, error) {
	col, err := r.collection(CollectionGiveaways)
	if err != nil {
		return false, err
	}

	res, err := col.UpdateOne(ctx,
		bson.M{"_id": id, "isActive": false, "drawPendingSince": bson.M{"$lte": staleBefore}},
		bson.M{"$set": bson.M{"drawPendingSince": now}},
	)
	if err != nil {
		return false, wrapStorageError(err)
	}
	return res.ModifiedCount == 1, nil
}

// CompleteDraw closes the draw opened by DeactivateGiveaway
func (r *GiveawayRepository) CompleteDraw(ctx context.Context, id int64) error {
	col, err := r.collection(CollectionGiveaways)
	if err != nil {
		return err
	}
	_, err = col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$unset": bson.M{"drawPendingSince": ""}})
	return wrapStorageError(err)
}

// ListGiveaways returns the newest giveaways of a guild
func (r *GiveawayRepository) ListGiveaways(ctx context.Context, guildID string, activeOnly bool, limit int) ([]models.Giveaway, error) {
	filter := bson.M{"guildId": guildID}
	if activeOnly {
		filter["isActive"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.findGiveaways(ctx, filter, opts)
}

// ListExpiredGiveaways returns active giveaways whose end time has passed
func (r *GiveawayRepository) ListExpiredGiveaways(ctx context.Context, now time.Time) ([]models.Giveaway, error) {
	filter := bson.M{"isActive": true, "endTime": bson.M{"$lte": now}}
	opts := options.Find().SetSort(bson.D{{Key: "endTime", Value: 1}})
	return r.findGiveaways(ctx, filter, opts)
}

// ListPendingDraws returns ended giveaways whose draw was interrupted before
// staleBefore
func (r *GiveawayRepository) ListPendingDraws(ctx context.Context, staleBefore time.Time) ([]models.Giveaway, error) {
	filter := bson.M{"isActive": false, "drawPendingSince": bson.M{"$lte": staleBefore}}
	return r.findGiveaways(ctx, filter, options.Find())
}

func (r *GiveawayRepository) findGiveaways(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Giveaway, error) {
	col, err := r.collection(CollectionGiveaways)
	if err != nil {
		return nil, err
	}

	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapStorageError(err)
	}
	var giveaways []models.Giveaway
	if err := cursor.All(ctx, &giveaways); err != nil {
		return nil, wrapStorageError(err)
	}
	return giveaways, nil
}

// CountGiveaways counts giveaways, optionally per guild and only active ones
func (r *GiveawayRepository) CountGiveaways(ctx context.Context, guildID string, activeOnly bool) (int64, error) {
	col, err := r.collection(CollectionGiveaways)
	if err != nil {
		return 0, err
	}
	filter := bson.M{}
	if guildID != "" {
		filter["guildId"] = guildID
	}
	if activeOnly {
		filter["isActive"] = true
	}
	n, err := col.CountDocuments(ctx, filter)
	return n, wrapStorageError(err)
}

// CreateEntry inserts an entry. The unique (giveawayId, userId) index turns a
// concurrent duplicate into ErrAlreadyExists.
func (r *GiveawayRepository) CreateEntry(ctx context.Context, entry *models.GiveawayEntry) error {
	col, err := r.collection(CollectionEntries)
	if err != nil {
		return err
	}
	if entry.EnteredAt.IsZero() {
		entry.EnteredAt = time.Now()
	}
	_, err = col.InsertOne(ctx, entry)
	return wrapStorageError(err)
}

// HasEntry reports whether userID already entered the giveaway
func (r *GiveawayRepository) HasEntry(ctx context.Context, giveawayID int64, userID string) (bool, error) {
	col, err := r.collection(CollectionEntries)
	if err != nil {
		return false, err
	}
	n, err := col.CountDocuments(ctx, bson.M{"giveawayId": giveawayID, "userId": userID}, options.Count().SetLimit(1))
	if err != nil {
		return false, wrapStorageError(err)
	}
	return n > 0, nil
}

// ListEntries returns the entries of a giveaway in entry order
func (r *GiveawayRepository) ListEntries(ctx context.Context, giveawayID int64) ([]models.GiveawayEntry, error) {
	col, err := r.collection(CollectionEntries)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "enteredAt", Value: 1}})
	cursor, err := col.Find(ctx, bson.M{"giveawayId": giveawayID}, opts)
	if err != nil {
		return nil, wrapStorageError(err)
	}
	var entries []models.GiveawayEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, wrapStorageError(err)
	}
	return entries, nil
}

// CountEntries returns the number of entrants of a giveaway
func (r *GiveawayRepository) CountEntries(ctx context.Context, giveawayID int64) (int64, error) {
	col, err := r.collection(CollectionEntries)
	if err != nil {
		return 0, err
	}
	n, err := col.CountDocuments(ctx, bson.M{"giveawayId": giveawayID})
	return n, wrapStorageError(err)
}

// ListWinners returns every winner record of a giveaway ordered by position,
// oldest first within a position
func (r *GiveawayRepository) ListWinners(ctx context.Context, giveawayID int64) ([]models.GiveawayWinner, error) {
	col, err := r.collection(CollectionWinners)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}, {Key: "selectedAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := col.Find(ctx, bson.M{"giveawayId": giveawayID}, opts)
	if err != nil {
		return nil, wrapStorageError(err)
	}
	var winners []models.GiveawayWinner
	if err := cursor.All(ctx, &winners); err != nil {
		return nil, wrapStorageError(err)
	}
	return winners, nil
}

// InsertWinner appends a winner record, assigning its id. A user already
// standing in the giveaway yields ErrAlreadyExists.
func (r *GiveawayRepository) InsertWinner(ctx context.Context, winner *models.GiveawayWinner) error {
	col, err := r.collection(CollectionWinners)
	if err != nil {
		return err
	}
	if winner.ID == "" {
		winner.ID = primitive.NewObjectID().Hex()
	}
	if winner.SelectedAt.IsZero() {
		winner.SelectedAt = time.Now()
	}
	_, err = col.InsertOne(ctx, winner)
	return wrapStorageError(err)
}

// MarkWinnerRerolled flags a winner record as superseded
func (r *GiveawayRepository) MarkWinnerRerolled(ctx context.Context, winnerID string) error {
	col, err := r.collection(CollectionWinners)
	if err != nil {
		return err
	}
	res, err := col.UpdateOne(ctx, bson.M{"_id": winnerID}, bson.M{"$set": bson.M{"rerolled": true}})
	if err != nil {
		return wrapStorageError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// WithTransaction runs fn atomically when the deployment allows it
func (r *GiveawayRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.WithTransaction(ctx, fn)
}
