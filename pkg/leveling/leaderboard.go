package leveling

import (
	"context"
	"errors"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/database"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
)

// MaxLeaderboardSize caps leaderboard queries
const MaxLeaderboardSize = 25

// LeaderboardRepository answers ranking queries
type LeaderboardRepository interface {
	LevelLeaderboard(ctx context.Context, guildID string, since time.Time, limit int) ([]models.UserLevel, error)
	MessageLeaderboard(ctx context.Context, guildID string, since time.Time, limit int) ([]models.MessageCount, error)
	CountMessages(ctx context.Context, guildID, userID string, since time.Time) (int, error)
}

// Leaderboards serves period rankings
type Leaderboards struct {
	repo LeaderboardRepository
	now  func() time.Time
}

// NewLeaderboards creates a Leaderboards service
func NewLeaderboards(repo LeaderboardRepository) *Leaderboards {
	return &Leaderboards{repo: repo, now: time.Now}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	if limit > MaxLeaderboardSize {
		return MaxLeaderboardSize
	}
	return limit
}

// Levels ranks members by level then experience, limited to members active in the period
func (l *Leaderboards) Levels(ctx context.Context, guildID string, period Period, limit int) ([]models.UserLevel, error) {
	return l.repo.LevelLeaderboard(ctx, guildID, period.Since(l.now()), clampLimit(limit))
}

// Messages ranks members by messages sent in the period
func (l *Leaderboards) Messages(ctx context.Context, guildID string, period Period, limit int) ([]models.MessageCount, error) {
	return l.repo.MessageLeaderboard(ctx, guildID, period.Since(l.now()), clampLimit(limit))
}

// MessageCount returns the messages of one member in the period
func (l *Leaderboards) MessageCount(ctx context.Context, guildID, userID string, period Period) (int, error) {
	n, err := l.repo.CountMessages(ctx, guildID, userID, period.Since(l.now()))
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	return n, err
}
