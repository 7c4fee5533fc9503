package giveaway

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/database"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"github.com/PancyStudios/PancyCommunityBot/pkg/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Notify(e notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func newTestService(repo *memRepo, cfg *models.GuildConfig, levels staticLevels) (*Service, *recorder) {
	rec := &recorder{}
	s := NewService(repo, staticConfigs{cfg: cfg}, levels, rec).WithSource(rand.New(rand.NewPCG(11, 13)))
	s.now = func() time.Time { return testNow }
	return s, rec
}

func createGiveaway(t *testing.T, s *Service, mutate func(g *models.Giveaway)) *models.Giveaway {
	t.Helper()
	g := &models.Giveaway{
		GuildID:     "g1",
		ChannelID:   "c1",
		MessageID:   fmt.Sprintf("m%d", time.Now().UnixNano()),
		HostID:      "host",
		Prize:       "Nitro",
		WinnerCount: 1,
		EndTime:     testNow.Add(time.Hour),
	}
	if mutate != nil {
		mutate(g)
	}
	created, err := s.Create(context.Background(), g)
	require.NoError(t, err)
	return created
}

func TestEnterTwiceFailsAlreadyExists(t *testing.T) {
	repo := newMemRepo()
	s, _ := newTestService(repo, nil, nil)
	g := createGiveaway(t, s, nil)

	res, err := s.Enter(context.Background(), g.ID, "u1", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Entries)
	assert.EqualValues(t, 1, res.Participants)

	_, err = s.Enter(context.Background(), g.ID, "u1", nil)
	assert.ErrorIs(t, err, ErrAlreadyEntered)
	assert.ErrorIs(t, err, database.ErrAlreadyExists)

	entries, _ := repo.ListEntries(context.Background(), g.ID)
	assert.Len(t, entries, 1)
}

func TestEnterBonusWeight(t *testing.T) {
	repo := newMemRepo()
	s, _ := newTestService(repo, nil, nil)
	g := createGiveaway(t, s, func(g *models.Giveaway) {
		g.BonusRoles = []string{"booster", "vip"}
		g.BonusEntries = 3
	})

	res, err := s.Enter(context.Background(), g.ID, "u1", []string{"member", "vip"})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Entries)

	res, err = s.Enter(context.Background(), g.ID, "u2", []string{"member"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Entries)
}

func TestEnterPreconditionOrder(t *testing.T) {
	repo := newMemRepo()
	cfg := &models.GuildConfig{GuildID: "g1", LevelRequirement: 5}
	levels := staticLevels{"veteran": {Level: 10, TotalMessages: 500}}
	s, _ := newTestService(repo, cfg, levels)

	_, err := s.Enter(context.Background(), 999, "u1", nil)
	assert.ErrorIs(t, err, database.ErrNotFound)

	expired := createGiveaway(t, s, func(g *models.Giveaway) { g.EndTime = testNow.Add(-time.Minute) })
	_, err = s.Enter(context.Background(), expired.ID, "u1", nil)
	assert.ErrorIs(t, err, ErrGiveawayEnded)
	assert.ErrorIs(t, err, ErrPreconditionFailed)

	gated := createGiveaway(t, s, func(g *models.Giveaway) { g.RequiredRoles = []string{"a", "b"} })

	// role check runs before the guild requirement
	_, err = s.Enter(context.Background(), gated.ID, "newbie", []string{"c"})
	assert.ErrorIs(t, err, ErrMissingRequiredRole)

	// holding any one required role is enough
	_, err = s.Enter(context.Background(), gated.ID, "newbie", []string{"b"})
	assert.ErrorIs(t, err, ErrRequirementNotMet)

	_, err = s.Enter(context.Background(), gated.ID, "veteran", []string{"b"})
	require.NoError(t, err)

	_, err = s.Enter(context.Background(), gated.ID, "veteran", []string{"b"})
	assert.ErrorIs(t, err, ErrAlreadyEntered)
}

func TestEnterByMessage(t *testing.T) {
	repo := newMemRepo()
	s, rec := newTestService(repo, nil, nil)
	g := createGiveaway(t, s, func(g *models.Giveaway) { g.MessageID = "announce" })

	res, err := s.EnterByMessage(context.Background(), "announce", "u1", nil)
	require.NoError(t, err)
	assert.Equal(t, g.ID, res.Giveaway.ID)
	assert.Contains(t, rec.types(), notify.EventGiveawayEntered)
}

func TestConcurrentEnterKeepsOneEntry(t *testing.T) {
	repo := newMemRepo()
	s, _ := newTestService(repo, nil, nil)
	g := createGiveaway(t, s, nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var ok, dup int
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Enter(context.Background(), g.ID, "u1", nil)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrAlreadyEntered):
				dup++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 19, dup)
	n, _ := repo.CountEntries(context.Background(), g.ID)
	assert.EqualValues(t, 1, n)
}

func TestEndDrawsAndIsSingleShot(t *testing.T) {
	repo := newMemRepo()
	s, rec := newTestService(repo, nil, nil)
	g := createGiveaway(t, s, func(g *models.Giveaway) { g.WinnerCount = 2 })
	for _, u := range []string{"a", "b", "c"} {
		_, err := s.Enter(context.Background(), g.ID, u, nil)
		require.NoError(t, err)
	}

	res, err := s.End(context.Background(), g.ID)
	require.NoError(t, err)
	require.Len(t, res.Winners, 2)
	assert.Equal(t, 1, res.Winners[0].Position)
	assert.Equal(t, 2, res.Winners[1].Position)
	assert.NotEqual(t, res.Winners[0].UserID, res.Winners[1].UserID)
	assert.Equal(t, 3, res.Entrants)

	_, err = s.End(context.Background(), g.ID)
	assert.ErrorIs(t, err, ErrGiveawayEnded)

	stored, _ := repo.GetGiveaway(context.Background(), g.ID)
	assert.False(t, stored.IsActive)
	assert.Contains(t, rec.types(), notify.EventGiveawayEnded)
}

func TestEndConcurrentOnlyOneWinner(t *testing.T) {
	repo := newMemRepo()
	s, _ := newTestService(repo, nil, nil)
	s.src = DefaultSource
	g := createGiveaway(t, s, nil)
	_, err := s.Enter(context.Background(), g.ID, "a", nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.End(context.Background(), g.ID); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	winners, _ := repo.ListWinners(context.Background(), g.ID)
	assert.Len(t, winners, 1)
}

func TestEndWithoutEntries(t *testing.T) {
	repo := newMemRepo()
	s, _ := newTestService(repo, nil, nil)
	g := createGiveaway(t, s, nil)

	res, err := s.End(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Empty(t, res.Winners)
	assert.Zero(t, res.Entrants)
}

func TestEndEntriesFailureKeepsGiveawayOpen(t *testing.T) {
	repo := newMemRepo()
	s, rec := newTestService(repo, nil, nil)
	g := createGiveaway(t, s, nil)
	_, err := s.Enter(context.Background(), g.ID, "a", nil)
	require.NoError(t, err)

	repo.failNext("ListEntries", database.ErrStorageUnavailable)
	_, err = s.End(context.Background(), g.ID)
	require.ErrorIs(t, err, database.ErrStorageUnavailable)

	stored, _ := repo.GetGiveaway(context.Background(), g.ID)
	assert.True(t, stored.IsActive)
	assert.Nil(t, stored.DrawPendingSince)
	assert.Empty(t, repo.standing(g.ID))
	assert.NotContains(t, rec.types(), notify.EventGiveawayEnded)

	res, err := s.End(context.Background(), g.ID)
	require.NoError(t, err)
	require.Len(t, res.Winners, 1)
	assert.Equal(t, "a", res.Winners[0].UserID)
}

// Without transactions a failed winner write leaves the giveaway inactive
// with part of its winners. A later End fills the free positions.
func TestEndInterruptedAfterDeactivationIsResumed(t *testing.T) {
	repo := newMemRepo()
	s, rec := newTestService(repo, nil, nil)
	g := createGiveaway(t, s, func(g *models.Giveaway) { g.WinnerCount = 3 })
	for _, u := range []string{"a", "b", "c", "d"} {
		_, err := s.Enter(context.Background(), g.ID, u, nil)
		require.NoError(t, err)
	}

	repo.failNext("InsertWinner", nil, database.ErrStorageUnavailable)
	_, err := s.End(context.Background(), g.ID)
	require.ErrorIs(t, err, database.ErrStorageUnavailable)

	stored, _ := repo.GetGiveaway(context.Background(), g.ID)
	assert.False(t, stored.IsActive)
	require.NotNil(t, stored.DrawPendingSince)
	partial := repo.standing(g.ID)
	require.Len(t, partial, 1)
	assert.NotContains(t, rec.types(), notify.EventGiveawayEnded)

	// the lease still belongs to the interrupted end
	_, err = s.End(context.Background(), g.ID)
	assert.ErrorIs(t, err, ErrGiveawayEnded)

	s.now = func() time.Time { return testNow.Add(2 * drawLease) }
	res, err := s.End(context.Background(), g.ID)
	require.NoError(t, err)
	require.Len(t, res.Winners, 3)
	assert.Equal(t, 4, res.Entrants)
	assert.Equal(t, partial[1], res.Winners[0].UserID)
	seen := map[string]bool{}
	for i, w := range res.Winners {
		assert.Equal(t, i+1, w.Position)
		assert.False(t, seen[w.UserID], "user %s drawn twice", w.UserID)
		seen[w.UserID] = true
	}
	assert.Len(t, repo.standing(g.ID), 3)
	assert.Contains(t, rec.types(), notify.EventGiveawayEnded)

	stored, _ = repo.GetGiveaway(context.Background(), g.ID)
	assert.Nil(t, stored.DrawPendingSince)
	_, err = s.End(context.Background(), g.ID)
	assert.ErrorIs(t, err, ErrGiveawayEnded)
}

func TestRerollAllMarksPreviousWinners(t *testing.T) {
	repo := newMemRepo()
	s, _ := newTestService(repo, nil, nil)
	g := createGiveaway(t, s, func(g *models.Giveaway) { g.WinnerCount = 2 })
	for _, u := range []string{"a", "b", "c", "d"} {
		_, err := s.Enter(context.Background(), g.ID, u, nil)
		require.NoError(t, err)
	}

	_, err := s.RerollAll(context.Background(), g.ID)
	assert.ErrorIs(t, err, ErrGiveawayActive)

	_, err = s.End(context.Background(), g.ID)
	require.NoError(t, err)

	winners, err := s.RerollAll(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Len(t, winners, 2)

	all, _ := repo.ListWinners(context.Background(), g.ID)
	var rerolled, standing int
	for _, w := range all {
		if w.Rerolled {
			rerolled++
		} else {
			standing++
		}
	}
	assert.Equal(t, 2, rerolled)
	assert.Equal(t, 2, standing)
}

func TestRerollAllWithoutEntries(t *testing.T) {
	repo := newMemRepo()
	s, _ := newTestService(repo, nil, nil)
	g := createGiveaway(t, s, nil)
	_, err := s.End(context.Background(), g.ID)
	require.NoError(t, err)

	_, err = s.RerollAll(context.Background(), g.ID)
	assert.ErrorIs(t, err, ErrNoEligibleCandidates)
}

func TestRerollPositionExcludesOtherWinners(t *testing.T) {
	repo := newMemRepo()
	s, _ := newTestService(repo, nil, nil)
	g := createGiveaway(t, s, func(g *models.Giveaway) { g.WinnerCount = 2 })
	for _, u := range []string{"a", "b", "c"} {
		_, err := s.Enter(context.Background(), g.ID, u, nil)
		require.NoError(t, err)
	}
	_, err := s.End(context.Background(), g.ID)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		before := repo.standing(g.ID)
		w, err := s.RerollPosition(context.Background(), g.ID, 1)
		require.NoError(t, err)
		assert.NotEqual(t, before[2], w.UserID, "position 2 winner redrawn at position 1")
		assert.NotEqual(t, before[1], w.UserID, "incumbent redrawn")
		assert.Equal(t, 1, w.Position)
	}
}

// Three equal entrants and one winner: the reroll draws only from the other two.
func TestEndThenRerollPositionScenario(t *testing.T) {
	repo := newMemRepo()
	s, _ := newTestService(repo, nil, nil)
	g := createGiveaway(t, s, nil)
	for _, u := range []string{"a", "b", "c"} {
		_, err := s.Enter(context.Background(), g.ID, u, nil)
		require.NoError(t, err)
	}

	res, err := s.End(context.Background(), g.ID)
	require.NoError(t, err)
	require.Len(t, res.Winners, 1)
	incumbent := res.Winners[0]

	w, err := s.RerollPosition(context.Background(), g.ID, 1)
	require.NoError(t, err)
	assert.NotEqual(t, incumbent.UserID, w.UserID)
	assert.Contains(t, []string{"a", "b", "c"}, w.UserID)

	all, _ := repo.ListWinners(context.Background(), g.ID)
	require.Len(t, all, 2)
	assert.True(t, all[0].Rerolled)
	assert.Equal(t, incumbent.ID, all[0].ID)
	assert.False(t, all[1].Rerolled)
	assert.Equal(t, 1, all[1].Position)
}

func TestRerollPositionPreconditions(t *testing.T) {
	repo := newMemRepo()
	s, _ := newTestService(repo, nil, nil)
	g := createGiveaway(t, s, func(g *models.Giveaway) { g.WinnerCount = 2 })

	_, err := s.RerollPosition(context.Background(), g.ID, 1)
	assert.ErrorIs(t, err, ErrGiveawayActive)

	_, err = s.End(context.Background(), g.ID)
	require.NoError(t, err)

	_, err = s.RerollPosition(context.Background(), g.ID, 3)
	assert.ErrorIs(t, err, ErrPositionOutOfRange)
	_, err = s.RerollPosition(context.Background(), g.ID, 0)
	assert.ErrorIs(t, err, ErrPositionOutOfRange)

	_, err = s.RerollPosition(context.Background(), g.ID, 1)
	assert.ErrorIs(t, err, ErrNoWinners)
}

func TestRerollPositionNoCandidatesWritesNothing(t *testing.T) {
	repo := newMemRepo()
	s, _ := newTestService(repo, nil, nil)
	g := createGiveaway(t, s, nil)
	_, err := s.Enter(context.Background(), g.ID, "solo", nil)
	require.NoError(t, err)
	_, err = s.End(context.Background(), g.ID)
	require.NoError(t, err)

	_, err = s.RerollPosition(context.Background(), g.ID, 1)
	assert.ErrorIs(t, err, ErrNoEligibleCandidates)

	all, _ := repo.ListWinners(context.Background(), g.ID)
	require.Len(t, all, 1)
	assert.False(t, all[0].Rerolled)
}

func TestRerollPositionFillsEmptyPosition(t *testing.T) {
	repo := newMemRepo()
	s, _ := newTestService(repo, nil, nil)
	g := createGiveaway(t, s, func(g *models.Giveaway) { g.WinnerCount = 3 })
	_, err := s.Enter(context.Background(), g.ID, "a", nil)
	require.NoError(t, err)
	_, err = s.End(context.Background(), g.ID)
	require.NoError(t, err)

	// a late entrant cannot join an ended giveaway, so seed one directly
	require.NoError(t, repo.CreateEntry(context.Background(), &models.GiveawayEntry{GiveawayID: g.ID, UserID: "b", Entries: 1}))

	w, err := s.RerollPosition(context.Background(), g.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, "b", w.UserID)
	assert.Equal(t, map[int]string{1: "a", 3: "b"}, repo.standing(g.ID))
}

func TestConcurrentRerollPositionsKeepWinnersDistinct(t *testing.T) {
	repo := newMemRepo()
	s, _ := newTestService(repo, nil, nil)
	s.src = DefaultSource
	g := createGiveaway(t, s, func(g *models.Giveaway) { g.WinnerCount = 2 })
	for _, u := range []string{"a", "b", "c", "d"} {
		_, err := s.Enter(context.Background(), g.ID, u, nil)
		require.NoError(t, err)
	}
	_, err := s.End(context.Background(), g.ID)
	require.NoError(t, err)

	for round := 0; round < 50; round++ {
		var wg sync.WaitGroup
		for _, pos := range []int{1, 2} {
			wg.Add(1)
			go func(pos int) {
				defer wg.Done()
				_, err := s.RerollPosition(context.Background(), g.ID, pos)
				if err != nil && !errors.Is(err, database.ErrAlreadyExists) {
					t.Errorf("reroll position %d: %v", pos, err)
				}
			}(pos)
		}
		wg.Wait()

		standing := repo.standing(g.ID)
		users := map[string]int{}
		for pos, u := range standing {
			if prev, dup := users[u]; dup {
				t.Fatalf("round %d: %s holds positions %d and %d", round, u, prev, pos)
			}
			users[u] = pos
		}
	}
}

func TestRerollPositionRetriesWhenUserTakenConcurrently(t *testing.T) {
	repo := newMemRepo()
	s, _ := newTestService(repo, nil, nil)
	g := createGiveaway(t, s, func(g *models.Giveaway) { g.WinnerCount = 2 })
	for _, u := range []string{"a", "b", "c"} {
		_, err := s.Enter(context.Background(), g.ID, u, nil)
		require.NoError(t, err)
	}
	_, err := s.End(context.Background(), g.ID)
	require.NoError(t, err)

	repo.failNext("InsertWinner", fmt.Errorf("%w: duplicate key", database.ErrAlreadyExists))
	w, err := s.RerollPosition(context.Background(), g.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, w.Position)
	assert.Len(t, repo.standing(g.ID), 2)
}

func TestCurrentWinnersKeepsLatestPerPosition(t *testing.T) {
	records := []models.GiveawayWinner{
		{ID: "1", Position: 1, UserID: "a", Rerolled: true},
		{ID: "2", Position: 1, UserID: "b"},
		{ID: "3", Position: 2, UserID: "c"},
	}
	got := currentWinners(records)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].UserID)
	assert.Equal(t, "c", got[1].UserID)
}
