package leveling

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/database"
	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
)

// Source supplies random integers in [0, n). *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// DefaultSource is safe for concurrent use
var DefaultSource Source = globalSource{}

// Repository is the persistence the Engine needs
type Repository interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	// AddExperience must add delta and one message in a single atomic write,
	// creating the record when missing, and return the stored record.
	AddExperience(ctx context.Context, guildID, userID string, delta int, at time.Time) (*models.UserLevel, error)
	IncrementDailyMessages(ctx context.Context, guildID, userID string, day time.Time) error
	DecrementDailyMessages(ctx context.Context, guildID, userID string, day time.Time) error
	GetUserLevel(ctx context.Context, guildID, userID string) (*models.UserLevel, error)
}

// MessageResult describes the effect of one counted message
type MessageResult struct {
	Record        *models.UserLevel
	Delta         int
	PreviousLevel int
}

// LeveledUp reports whether the message crossed a level boundary
func (r *MessageResult) LeveledUp() bool {
	return r.Record != nil && r.Record.Level > r.PreviousLevel
}

// Engine awards experience for messages
type Engine struct {
	repo Repository
	src  Source
	now  func() time.Time
}

// NewEngine creates an Engine. A nil src uses DefaultSource.
func NewEngine(repo Repository, src Source) *Engine {
	if src == nil {
		src = DefaultSource
	}
	return &Engine{repo: repo, src: src, now: time.Now}
}

// ExperienceDelta draws the experience for one message, uniform in [10, 25]
func (e *Engine) ExperienceDelta() int {
	return MinExperienceDelta + e.src.IntN(MaxExperienceDelta-MinExperienceDelta+1)
}

// RecordMessage counts one message of userID in guildID. Every call counts.
// On a storage error nothing is counted. The daily counter is written first
// and taken back when the experience write fails.
func (e *Engine) RecordMessage(ctx context.Context, userID, guildID string) (*MessageResult, error) {
	delta := e.ExperienceDelta()
	now := e.now()

	var record *models.UserLevel
	err := e.repo.WithTransaction(ctx, func(ctx context.Context) error {
		if err := e.repo.IncrementDailyMessages(ctx, guildID, userID, now); err != nil {
			return err
		}

		var err error
		record, err = e.repo.AddExperience(ctx, guildID, userID, delta, now)
		if err != nil {
			if undoErr := e.repo.DecrementDailyMessages(ctx, guildID, userID, now); undoErr != nil {
				logger.Warn(fmt.Sprintf("No se pudo revertir el contador diario de %s en %s: %v", userID, guildID, undoErr), "Leveling")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &MessageResult{
		Record:        record,
		Delta:         delta,
		PreviousLevel: LevelForExperience(record.Experience - delta),
	}, nil
}

// UserLevel returns the stored record of a member. Members that never spoke
// get a zero record at level 1.
func (e *Engine) UserLevel(ctx context.Context, userID, guildID string) (*models.UserLevel, error) {
	record, err := e.repo.GetUserLevel(ctx, guildID, userID)
	if errors.Is(err, database.ErrNotFound) {
		return &models.UserLevel{UserID: userID, GuildID: guildID, Level: 1}, nil
	}
	return record, err
}
