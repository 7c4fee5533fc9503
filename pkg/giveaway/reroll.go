package giveaway

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/database"
	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"github.com/PancyStudios/PancyCommunityBot/pkg/notify"
)

const (
	// drawLease is how long an open draw belongs to the End that opened it
	drawLease = time.Minute

	maxRerollAttempts = 3
)

// EndResult describes a finished giveaway
type EndResult struct {
	Giveaway *models.Giveaway
	Winners  []models.GiveawayWinner
	Entrants int
}

// End closes an active giveaway and draws its winners. Only the caller that
// flips isActive gets a result; everyone else gets ErrGiveawayEnded. A
// giveaway without entries ends with no winners.
//
// The draw is taken before the giveaway is deactivated. When the deployment
// has no transactions and a write fails after deactivation, the draw stays
// open and a later End (or the expiry worker) finishes it once drawLease has
// passed.
func (s *Service) End(ctx context.Context, giveawayID int64) (*EndResult, error) {
	g, err := s.repo.GetGiveaway(ctx, giveawayID)
	if err != nil {
		return nil, err
	}
	if !g.IsActive {
		if g.DrawPendingSince == nil {
			return nil, ErrGiveawayEnded
		}
		return s.resumeEnd(ctx, g)
	}

	entries, err := s.repo.ListEntries(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	drawn := SelectWinners(candidatesFrom(entries, nil), g.WinnerCount, s.src)

	result := &EndResult{Giveaway: g, Entrants: len(entries)}
	err = s.repo.WithTransaction(ctx, func(ctx context.Context) error {
		result.Winners = nil

		won, err := s.repo.DeactivateGiveaway(ctx, g.ID, s.now())
		if err != nil {
			return err
		}
		if !won {
			return ErrGiveawayEnded
		}

		result.Winners, err = s.insertWinners(ctx, g.ID, drawn)
		if err != nil {
			return err
		}
		return s.repo.CompleteDraw(ctx, g.ID)
	})
	if err != nil {
		return nil, err
	}

	g.IsActive = false
	s.notifyEnd(result)
	return result, nil
}

// resumeEnd finishes a draw left open by an interrupted End. Stored winners
// keep their positions and the free ones are drawn from the other entrants.
func (s *Service) resumeEnd(ctx context.Context, g *models.Giveaway) (*EndResult, error) {
	now := s.now()
	claimed, err := s.repo.ClaimPendingDraw(ctx, g.ID, now.Add(-drawLease), now)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrGiveawayEnded
	}

	result := &EndResult{Giveaway: g}
	err = s.repo.WithTransaction(ctx, func(ctx context.Context) error {
		records, err := s.repo.ListWinners(ctx, g.ID)
		if err != nil {
			return err
		}
		entries, err := s.repo.ListEntries(ctx, g.ID)
		if err != nil {
			return err
		}
		result.Entrants = len(entries)

		standing := currentWinners(records)
		exclude := make(map[string]bool, len(standing))
		taken := make(map[int]bool, len(standing))
		for _, w := range standing {
			exclude[w.UserID] = true
			taken[w.Position] = true
		}
		var free []int
		for p := 1; p <= g.WinnerCount; p++ {
			if !taken[p] {
				free = append(free, p)
			}
		}

		winners := append([]models.GiveawayWinner(nil), standing...)
		for i, userID := range SelectWinners(candidatesFrom(entries, exclude), len(free), s.src) {
			w := models.GiveawayWinner{
				GiveawayID: g.ID,
				UserID:     userID,
				Position:   free[i],
				SelectedAt: now,
			}
			if err := s.repo.InsertWinner(ctx, &w); err != nil {
				return err
			}
			winners = append(winners, w)
		}
		sort.Slice(winners, func(i, j int) bool { return winners[i].Position < winners[j].Position })
		result.Winners = winners

		return s.repo.CompleteDraw(ctx, g.ID)
	})
	if err != nil {
		return nil, err
	}

	g.DrawPendingSince = nil
	logger.Warn(fmt.Sprintf("Sorteo #%d: sorteo interrumpido completado con %d ganador(es)", g.ID, len(result.Winners)), "Giveaway")
	s.notifyEnd(result)
	return result, nil
}

func (s *Service) notifyEnd(result *EndResult) {
	g := result.Giveaway
	s.notifier.Notify(notify.NewEvent(notify.EventGiveawayEnded, g.GuildID, map[string]interface{}{
		"giveawayId": g.ID,
		"prize":      g.Prize,
		"winners":    winnerIDs(result.Winners),
		"entrants":   result.Entrants,
	}))
}

// RerollAll redraws every position over the full entry pool. Previous winners
// may win again. Standing records are marked rerolled and new ones take
// positions 1..n.
func (s *Service) RerollAll(ctx context.Context, giveawayID int64) ([]models.GiveawayWinner, error) {
	g, err := s.repo.GetGiveaway(ctx, giveawayID)
	if err != nil {
		return nil, err
	}
	if g.IsActive {
		return nil, ErrGiveawayActive
	}

	entries, err := s.repo.ListEntries(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNoEligibleCandidates
	}

	drawn := SelectWinners(candidatesFrom(entries, nil), g.WinnerCount, s.src)

	var winners []models.GiveawayWinner
	err = s.repo.WithTransaction(ctx, func(ctx context.Context) error {
		records, err := s.repo.ListWinners(ctx, g.ID)
		if err != nil {
			return err
		}
		for _, w := range records {
			if w.Rerolled {
				continue
			}
			if err := s.repo.MarkWinnerRerolled(ctx, w.ID); err != nil {
				return err
			}
		}
		winners, err = s.insertWinners(ctx, g.ID, drawn)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifyReroll(g, winners)
	return winners, nil
}

// RerollPosition redraws a single position. Every standing winner, the
// incumbent of the position included, is excluded, so the position always
// changes hands. An empty position (fewer entrants than winners) is filled.
//
// Standing winners are read and the draw is taken inside the transaction. A
// concurrent reroll that seats the drawn user first makes InsertWinner fail
// with database.ErrAlreadyExists, and the reroll starts over.
func (s *Service) RerollPosition(ctx context.Context, giveawayID int64, position int) (*models.GiveawayWinner, error) {
	g, err := s.repo.GetGiveaway(ctx, giveawayID)
	if err != nil {
		return nil, err
	}
	if g.IsActive {
		return nil, ErrGiveawayActive
	}
	if position < 1 || position > g.WinnerCount {
		return nil, ErrPositionOutOfRange
	}

	var winner *models.GiveawayWinner
	for attempt := 1; ; attempt++ {
		winner, err = s.rerollPosition(ctx, g, position)
		if err == nil || !errors.Is(err, database.ErrAlreadyExists) || attempt == maxRerollAttempts {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	s.notifyReroll(g, []models.GiveawayWinner{*winner})
	return winner, nil
}

func (s *Service) rerollPosition(ctx context.Context, g *models.Giveaway, position int) (*models.GiveawayWinner, error) {
	var winner *models.GiveawayWinner
	err := s.repo.WithTransaction(ctx, func(ctx context.Context) error {
		winner = nil

		records, err := s.repo.ListWinners(ctx, g.ID)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return ErrNoWinners
		}

		standing := currentWinners(records)
		exclude := make(map[string]bool, len(standing))
		var incumbent *models.GiveawayWinner
		for i := range standing {
			exclude[standing[i].UserID] = true
			if standing[i].Position == position {
				incumbent = &standing[i]
			}
		}

		entries, err := s.repo.ListEntries(ctx, g.ID)
		if err != nil {
			return err
		}
		drawn := SelectWinners(candidatesFrom(entries, exclude), 1, s.src)
		if len(drawn) == 0 {
			return ErrNoEligibleCandidates
		}

		if incumbent != nil {
			if err := s.repo.MarkWinnerRerolled(ctx, incumbent.ID); err != nil {
				return err
			}
		}
		w := &models.GiveawayWinner{
			GiveawayID: g.ID,
			UserID:     drawn[0],
			Position:   position,
			SelectedAt: s.now(),
		}
		if err := s.repo.InsertWinner(ctx, w); err != nil {
			return err
		}
		winner = w
		return nil
	})
	return winner, err
}

func (s *Service) insertWinners(ctx context.Context, giveawayID int64, userIDs []string) ([]models.GiveawayWinner, error) {
	winners := make([]models.GiveawayWinner, 0, len(userIDs))
	now := s.now()
	for i, userID := range userIDs {
		w := models.GiveawayWinner{
			GiveawayID: giveawayID,
			UserID:     userID,
			Position:   i + 1,
			SelectedAt: now,
		}
		if err := s.repo.InsertWinner(ctx, &w); err != nil {
			return nil, err
		}
		winners = append(winners, w)
	}
	return winners, nil
}

func (s *Service) notifyReroll(g *models.Giveaway, winners []models.GiveawayWinner) {
	s.notifier.Notify(notify.NewEvent(notify.EventGiveawayRerolled, g.GuildID, map[string]interface{}{
		"giveawayId": g.ID,
		"prize":      g.Prize,
		"winners":    winnerIDs(winners),
	}))
}

func winnerIDs(winners []models.GiveawayWinner) []string {
	ids := make([]string, len(winners))
	for i, w := range winners {
		ids[i] = w.UserID
	}
	return ids
}
