package giveaway

import (
	"context"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"github.com/PancyStudios/PancyCommunityBot/pkg/notify"
)

// Repository is the persistence the giveaway Service needs
type Repository interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	NextGiveawayID(ctx context.Context) (int64, error)
	CreateGiveaway(ctx context.Context, g *models.Giveaway) (int64, error)
	GetGiveaway(ctx context.Context, id int64) (*models.Giveaway, error)
	GetGiveawayByMessage(ctx context.Context, messageID string) (*models.Giveaway, error)
	// DeactivateGiveaway must flip isActive true to false atomically, set
	// drawPendingSince to now and report whether this call did it.
	DeactivateGiveaway(ctx context.Context, id int64, now time.Time) (bool, error)
	// ClaimPendingDraw must move drawPendingSince to now only when it is set
	// and not after staleBefore, and report whether this call did it.
	ClaimPendingDraw(ctx context.Context, id int64, staleBefore, now time.Time) (bool, error)
	CompleteDraw(ctx context.Context, id int64) error
	ListGiveaways(ctx context.Context, guildID string, activeOnly bool, limit int) ([]models.Giveaway, error)
	ListExpiredGiveaways(ctx context.Context, now time.Time) ([]models.Giveaway, error)
	ListPendingDraws(ctx context.Context, staleBefore time.Time) ([]models.Giveaway, error)

	// CreateEntry must reject a second entry of the same user with database.ErrAlreadyExists
	CreateEntry(ctx context.Context, entry *models.GiveawayEntry) error
	HasEntry(ctx context.Context, giveawayID int64, userID string) (bool, error)
	ListEntries(ctx context.Context, giveawayID int64) ([]models.GiveawayEntry, error)
	CountEntries(ctx context.Context, giveawayID int64) (int64, error)

	ListWinners(ctx context.Context, giveawayID int64) ([]models.GiveawayWinner, error)
	// InsertWinner must reject a user who already holds a standing position
	// in the giveaway with database.ErrAlreadyExists.
	InsertWinner(ctx context.Context, winner *models.GiveawayWinner) error
	MarkWinnerRerolled(ctx context.Context, winnerID string) error
}

// ConfigReader returns the configuration of a guild
type ConfigReader interface {
	GetGuildConfig(ctx context.Context, guildID string) (*models.GuildConfig, error)
}

// LevelReader returns the leveling record of a member
type LevelReader interface {
	UserLevel(ctx context.Context, userID, guildID string) (*models.UserLevel, error)
}

// Service runs the giveaway lifecycle
type Service struct {
	repo     Repository
	configs  ConfigReader
	levels   LevelReader
	notifier notify.Notifier
	src      Source
	now      func() time.Time
}

// NewService creates a Service. configs and levels may be nil when guild
// requirements are not used.
func NewService(repo Repository, configs ConfigReader, levels LevelReader, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{
		repo:     repo,
		configs:  configs,
		levels:   levels,
		notifier: notifier,
		src:      DefaultSource,
		now:      time.Now,
	}
}

// WithSource replaces the randomness used for draws
func (s *Service) WithSource(src Source) *Service {
	s.src = src
	return s
}

// NextID reserves the id of a giveaway about to be announced
func (s *Service) NextID(ctx context.Context) (int64, error) {
	return s.repo.NextGiveawayID(ctx)
}

// Create stores an announced giveaway
func (s *Service) Create(ctx context.Context, g *models.Giveaway) (*models.Giveaway, error) {
	g.IsActive = true
	if g.WinnerCount < 1 {
		g.WinnerCount = 1
	}
	if g.BonusEntries < 1 {
		g.BonusEntries = 1
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = s.now()
	}
	if _, err := s.repo.CreateGiveaway(ctx, g); err != nil {
		return nil, err
	}

	s.notifier.Notify(notify.NewEvent(notify.EventGiveawayCreated, g.GuildID, g))
	return g, nil
}

// Get returns a giveaway by id
func (s *Service) Get(ctx context.Context, id int64) (*models.Giveaway, error) {
	return s.repo.GetGiveaway(ctx, id)
}

// GetByMessage returns the giveaway announced in a message
func (s *Service) GetByMessage(ctx context.Context, messageID string) (*models.Giveaway, error) {
	return s.repo.GetGiveawayByMessage(ctx, messageID)
}

// List returns the newest giveaways of a guild
func (s *Service) List(ctx context.Context, guildID string, activeOnly bool, limit int) ([]models.Giveaway, error) {
	return s.repo.ListGiveaways(ctx, guildID, activeOnly, limit)
}

// Participants returns the entries of a giveaway in entry order
func (s *Service) Participants(ctx context.Context, giveawayID int64) ([]models.GiveawayEntry, error) {
	return s.repo.ListEntries(ctx, giveawayID)
}

// CurrentWinners returns the standing winner of every position, ordered by position
func (s *Service) CurrentWinners(ctx context.Context, giveawayID int64) ([]models.GiveawayWinner, error) {
	winners, err := s.repo.ListWinners(ctx, giveawayID)
	if err != nil {
		return nil, err
	}
	return currentWinners(winners), nil
}

// currentWinners keeps the latest non-rerolled record per position.
// Input must be ordered by position then selection time.
func currentWinners(records []models.GiveawayWinner) []models.GiveawayWinner {
	var out []models.GiveawayWinner
	for _, w := range records {
		if w.Rerolled {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Position == w.Position {
			out[n-1] = w
			continue
		}
		out = append(out, w)
	}
	return out
}

func candidatesFrom(entries []models.GiveawayEntry, exclude map[string]bool) []Candidate {
	candidates := make([]Candidate, 0, len(entries))
	for _, e := range entries {
		if exclude[e.UserID] {
			continue
		}
		candidates = append(candidates, Candidate{UserID: e.UserID, Weight: e.Entries})
	}
	return candidates
}
