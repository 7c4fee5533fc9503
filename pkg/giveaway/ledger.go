package giveaway

import (
	"context"
	"errors"
	"fmt"

	"github.com/PancyStudios/PancyCommunityBot/pkg/database"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"github.com/PancyStudios/PancyCommunityBot/pkg/notify"
)

// EntryResult confirms an accepted entry
type EntryResult struct {
	Giveaway *models.Giveaway
	// Entries is the draw weight of the new entry
	Entries      int
	Participants int64
}

// Enter records the entry of userID. Checks run in order and the first
// failure wins: existence, active, required roles, guild requirements,
// duplicate entry.
func (s *Service) Enter(ctx context.Context, giveawayID int64, userID string, memberRoles []string) (*EntryResult, error) {
	g, err := s.repo.GetGiveaway(ctx, giveawayID)
	if err != nil {
		return nil, err
	}
	return s.enter(ctx, g, userID, memberRoles)
}

// EnterByMessage is Enter for the giveaway announced in messageID
func (s *Service) EnterByMessage(ctx context.Context, messageID, userID string, memberRoles []string) (*EntryResult, error) {
	g, err := s.repo.GetGiveawayByMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	return s.enter(ctx, g, userID, memberRoles)
}

func (s *Service) enter(ctx context.Context, g *models.Giveaway, userID string, memberRoles []string) (*EntryResult, error) {
	if !g.IsActive || !g.EndTime.After(s.now()) {
		return nil, ErrGiveawayEnded
	}

	roles := make(map[string]bool, len(memberRoles))
	for _, r := range memberRoles {
		roles[r] = true
	}

	if len(g.RequiredRoles) > 0 && !holdsAny(roles, g.RequiredRoles) {
		return nil, ErrMissingRequiredRole
	}

	if err := s.checkGuildRequirements(ctx, g.GuildID, userID); err != nil {
		return nil, err
	}

	entered, err := s.repo.HasEntry(ctx, g.ID, userID)
	if err != nil {
		return nil, err
	}
	if entered {
		return nil, ErrAlreadyEntered
	}

	weight := EntryWeight(g, roles)
	err = s.repo.CreateEntry(ctx, &models.GiveawayEntry{
		GiveawayID: g.ID,
		UserID:     userID,
		Entries:    weight,
		EnteredAt:  s.now(),
	})
	if errors.Is(err, database.ErrAlreadyExists) {
		return nil, ErrAlreadyEntered
	}
	if err != nil {
		return nil, err
	}

	participants, err := s.repo.CountEntries(ctx, g.ID)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(notify.NewEvent(notify.EventGiveawayEntered, g.GuildID, map[string]interface{}{
		"giveawayId":   g.ID,
		"userId":       userID,
		"entries":      weight,
		"participants": participants,
	}))

	return &EntryResult{Giveaway: g, Entries: weight, Participants: participants}, nil
}

// EntryWeight is 1, plus the giveaway bonus when the member holds a bonus role
func EntryWeight(g *models.Giveaway, roles map[string]bool) int {
	if len(g.BonusRoles) > 0 && holdsAny(roles, g.BonusRoles) {
		return 1 + g.BonusEntries
	}
	return 1
}

func holdsAny(roles map[string]bool, wanted []string) bool {
	for _, r := range wanted {
		if roles[r] {
			return true
		}
	}
	return false
}

func (s *Service) checkGuildRequirements(ctx context.Context, guildID, userID string) error {
	if s.configs == nil || s.levels == nil {
		return nil
	}

	cfg, err := s.configs.GetGuildConfig(ctx, guildID)
	if err != nil {
		return err
	}
	if !cfg.HasGiveawayRequirements() {
		return nil
	}

	record, err := s.levels.UserLevel(ctx, userID, guildID)
	if err != nil {
		return err
	}
	if record.Level < cfg.LevelRequirement {
		return fmt.Errorf("%w: level %d of %d", ErrRequirementNotMet, record.Level, cfg.LevelRequirement)
	}
	if record.TotalMessages < cfg.MessageRequirement {
		return fmt.Errorf("%w: %d of %d messages", ErrRequirementNotMet, record.TotalMessages, cfg.MessageRequirement)
	}
	return nil
}
