package database

import (
	"context"
	"errors"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrWarnManagerNotInitialized is returned before InitGlobalDataManagers runs
var ErrWarnManagerNotInitialized = errors.New("warn data manager not initialized")

// ModerationRepository stores moderation logs and member warnings
type ModerationRepository struct {
	db *Database
}

// NewModerationRepository creates a ModerationRepository
func NewModerationRepository(db *Database) *ModerationRepository {
	return &ModerationRepository{db: db}
}

// LogAction records a moderation action
func (r *ModerationRepository) LogAction(ctx context.Context, entry *models.ModerationLog) error {
	col := r.db.GetCollection(CollectionModerationLogs)
	if col == nil {
		return ErrStorageUnavailable
	}
	if entry.ID == "" {
		entry.ID = primitive.NewObjectID().Hex()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err := col.InsertOne(ctx, entry)
	return wrapStorageError(err)
}

// ListLogs returns the newest moderation logs of a guild
func (r *ModerationRepository) ListLogs(ctx context.Context, guildID string, limit int) ([]models.ModerationLog, error) {
	col := r.db.GetCollection(CollectionModerationLogs)
	if col == nil {
		return nil, ErrStorageUnavailable
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(int64(limit))
	cursor, err := col.Find(ctx, bson.M{"guildId": guildID}, opts)
	if err != nil {
		return nil, wrapStorageError(err)
	}
	var logs []models.ModerationLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, wrapStorageError(err)
	}
	return logs, nil
}

// CountLogs counts every moderation log
func (r *ModerationRepository) CountLogs(ctx context.Context) (int64, error) {
	col := r.db.GetCollection(CollectionModerationLogs)
	if col == nil {
		return 0, ErrStorageUnavailable
	}
	n, err := col.EstimatedDocumentCount(ctx)
	return n, wrapStorageError(err)
}

func warnQuery(guildID, userID string) bson.M {
	return bson.M{"guildId": guildID, "userId": userID}
}

// GetWarns returns the warnings of a member. A member without warnings gets an empty document.
func (r *ModerationRepository) GetWarns(ctx context.Context, guildID, userID string) (*models.WarnsDocument, error) {
	if GlobalWarnDM == nil {
		return nil, ErrWarnManagerNotInitialized
	}
	doc, err := GlobalWarnDM.Get(ctx, warnQuery(guildID, userID))
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return &models.WarnsDocument{GuildID: guildID, UserID: userID}, nil
	}
	return doc, nil
}

// AddWarn appends a warning and returns the stored document
func (r *ModerationRepository) AddWarn(ctx context.Context, guildID, userID string, warn models.Warn) (*models.WarnsDocument, error) {
	doc, err := r.GetWarns(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}
	if warn.ID == "" {
		warn.ID = primitive.NewObjectID().Hex()[18:]
	}
	if warn.Timestamp == 0 {
		warn.Timestamp = time.Now().Unix()
	}
	doc.Warns = append(doc.Warns, warn)

	if _, err := GlobalWarnDM.Set(ctx, warnQuery(guildID, userID), doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// RemoveWarn deletes one warning by id, or returns ErrNotFound
func (r *ModerationRepository) RemoveWarn(ctx context.Context, guildID, userID, warnID string) (*models.WarnsDocument, error) {
	doc, err := r.GetWarns(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}
	i := doc.FindWarn(warnID)
	if i < 0 {
		return nil, ErrNotFound
	}
	doc.Warns = append(doc.Warns[:i], doc.Warns[i+1:]...)

	if _, err := GlobalWarnDM.Set(ctx, warnQuery(guildID, userID), doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ClearWarns deletes every warning of a member
func (r *ModerationRepository) ClearWarns(ctx context.Context, guildID, userID string) error {
	if GlobalWarnDM == nil {
		return ErrWarnManagerNotInitialized
	}
	return GlobalWarnDM.Delete(ctx, warnQuery(guildID, userID))
}
