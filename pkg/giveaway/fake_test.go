package giveaway

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/database"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
)

// memRepo is an in-memory Repository with the same uniqueness guarantees as
// Mongo. Like a standalone server it has no transactions: writes made before
// a failure inside WithTransaction stay.
type memRepo struct {
	mu        sync.Mutex
	seq       int64
	winnerSeq int
	giveaways map[int64]*models.Giveaway
	entries   []models.GiveawayEntry
	winners   []models.GiveawayWinner
	// failures maps an operation name to the errors its next calls return
	failures map[string][]error
}

func newMemRepo() *memRepo {
	return &memRepo{giveaways: map[int64]*models.Giveaway{}, failures: map[string][]error{}}
}

// failNext queues the results of the next calls of op; a nil entry lets the
// call through
func (r *memRepo) failNext(op string, errs ...error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[op] = append(r.failures[op], errs...)
}

// injected pops the pending failure of op. r.mu must be held.
func (r *memRepo) injected(op string) error {
	queue := r.failures[op]
	if len(queue) == 0 {
		return nil
	}
	r.failures[op] = queue[1:]
	return queue[0]
}

func (r *memRepo) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (r *memRepo) NextGiveawayID(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return r.seq, nil
}

func (r *memRepo) CreateGiveaway(ctx context.Context, g *models.Giveaway) (int64, error) {
	if g.ID == 0 {
		id, _ := r.NextGiveawayID(ctx)
		g.ID = id
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *g
	r.giveaways[g.ID] = &cp
	return g.ID, nil
}

func (r *memRepo) GetGiveaway(ctx context.Context, id int64) (*models.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.giveaways[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (r *memRepo) GetGiveawayByMessage(ctx context.Context, messageID string) (*models.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.giveaways {
		if g.MessageID == messageID {
			cp := *g
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (r *memRepo) DeactivateGiveaway(ctx context.Context, id int64, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.injected("DeactivateGiveaway"); err != nil {
		return false, err
	}
	g, ok := r.giveaways[id]
	if !ok || !g.IsActive {
		return false, nil
	}
	g.IsActive = false
	g.DrawPendingSince = &now
	return true, nil
}

func (r *memRepo) ClaimPendingDraw(ctx context.Context, id int64, staleBefore, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.giveaways[id]
	if !ok || g.IsActive || g.DrawPendingSince == nil || g.DrawPendingSince.After(staleBefore) {
		return false, nil
	}
	g.DrawPendingSince = &now
	return true, nil
}

func (r *memRepo) CompleteDraw(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.injected("CompleteDraw"); err != nil {
		return err
	}
	if g, ok := r.giveaways[id]; ok {
		g.DrawPendingSince = nil
	}
	return nil
}

func (r *memRepo) ListGiveaways(ctx context.Context, guildID string, activeOnly bool, limit int) ([]models.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Giveaway
	for _, g := range r.giveaways {
		if g.GuildID == guildID && (!activeOnly || g.IsActive) {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepo) ListExpiredGiveaways(ctx context.Context, now time.Time) ([]models.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Giveaway
	for _, g := range r.giveaways {
		if g.IsActive && !g.EndTime.After(now) {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *memRepo) ListPendingDraws(ctx context.Context, staleBefore time.Time) ([]models.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Giveaway
	for _, g := range r.giveaways {
		if !g.IsActive && g.DrawPendingSince != nil && !g.DrawPendingSince.After(staleBefore) {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *memRepo) CreateEntry(ctx context.Context, entry *models.GiveawayEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.GiveawayID == entry.GiveawayID && e.UserID == entry.UserID {
			return fmt.Errorf("%w: duplicate key", database.ErrAlreadyExists)
		}
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memRepo) HasEntry(ctx context.Context, giveawayID int64, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.GiveawayID == giveawayID && e.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) ListEntries(ctx context.Context, giveawayID int64) ([]models.GiveawayEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.injected("ListEntries"); err != nil {
		return nil, err
	}
	var out []models.GiveawayEntry
	for _, e := range r.entries {
		if e.GiveawayID == giveawayID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memRepo) CountEntries(ctx context.Context, giveawayID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.entries {
		if e.GiveawayID == giveawayID {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) ListWinners(ctx context.Context, giveawayID int64) ([]models.GiveawayWinner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.GiveawayWinner
	for _, w := range r.winners {
		if w.GiveawayID == giveawayID {
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *memRepo) InsertWinner(ctx context.Context, winner *models.GiveawayWinner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.injected("InsertWinner"); err != nil {
		return err
	}
	for _, w := range r.winners {
		if w.GiveawayID == winner.GiveawayID && w.UserID == winner.UserID && !w.Rerolled {
			return fmt.Errorf("%w: duplicate key", database.ErrAlreadyExists)
		}
	}
	r.winnerSeq++
	winner.ID = fmt.Sprintf("w%d", r.winnerSeq)
	r.winners = append(r.winners, *winner)
	return nil
}

func (r *memRepo) MarkWinnerRerolled(ctx context.Context, winnerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.injected("MarkWinnerRerolled"); err != nil {
		return err
	}
	for i := range r.winners {
		if r.winners[i].ID == winnerID {
			r.winners[i].Rerolled = true
			return nil
		}
	}
	return database.ErrNotFound
}

func (r *memRepo) standing(giveawayID int64) map[int]string {
	winners, _ := r.ListWinners(context.Background(), giveawayID)
	out := map[int]string{}
	for _, w := range currentWinners(winners) {
		out[w.Position] = w.UserID
	}
	return out
}

type staticConfigs struct{ cfg *models.GuildConfig }

func (s staticConfigs) GetGuildConfig(ctx context.Context, guildID string) (*models.GuildConfig, error) {
	if s.cfg == nil {
		return &models.GuildConfig{GuildID: guildID}, nil
	}
	return s.cfg, nil
}

type staticLevels map[string]*models.UserLevel

func (s staticLevels) UserLevel(ctx context.Context, userID, guildID string) (*models.UserLevel, error) {
	if rec, ok := s[userID]; ok {
		return rec, nil
	}
	return &models.UserLevel{UserID: userID, GuildID: guildID, Level: 1}, nil
}

// seqSource replays fixed draws, each reduced modulo n
type seqSource struct {
	values []int
	i      int
}

func (s *seqSource) IntN(n int) int {
	v := s.values[s.i%len(s.values)]
	s.i++
	return v % n
}
