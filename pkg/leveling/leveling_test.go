package leveling

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/database"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo has no transactions, like a standalone Mongo: writes made before a
// failure inside WithTransaction stay.
type fakeRepo struct {
	mu        sync.Mutex
	levels    map[string]*models.UserLevel
	daily     map[string]int
	failDaily error
	failAdd   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{levels: map[string]*models.UserLevel{}, daily: map[string]int{}}
}

func (f *fakeRepo) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeRepo) AddExperience(ctx context.Context, guildID, userID string, delta int, at time.Time) (*models.UserLevel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAdd != nil {
		return nil, f.failAdd
	}

	key := guildID + ":" + userID
	rec, ok := f.levels[key]
	if !ok {
		rec = &models.UserLevel{GuildID: guildID, UserID: userID, CreatedAt: at}
		f.levels[key] = rec
	}
	rec.Experience += delta
	rec.TotalMessages++
	rec.Level = LevelForExperience(rec.Experience)
	rec.LastMessageTime = at
	rec.UpdatedAt = at
	out := *rec
	return &out, nil
}

func (f *fakeRepo) IncrementDailyMessages(ctx context.Context, guildID, userID string, day time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDaily != nil {
		return f.failDaily
	}
	f.daily[guildID+":"+userID+":"+day.UTC().Format(database.DateLayout)]++
	return nil
}

func (f *fakeRepo) DecrementDailyMessages(ctx context.Context, guildID, userID string, day time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if key := guildID + ":" + userID + ":" + day.UTC().Format(database.DateLayout); f.daily[key] > 0 {
		f.daily[key]--
	}
	return nil
}

// dailyTotal sums the daily counters of a member over every day
func (f *fakeRepo) dailyTotal(guildID, userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := guildID + ":" + userID + ":"
	total := 0
	for k, v := range f.daily {
		if strings.HasPrefix(k, prefix) {
			total += v
		}
	}
	return total
}

func (f *fakeRepo) GetUserLevel(ctx context.Context, guildID, userID string) (*models.UserLevel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.levels[guildID+":"+userID]
	if !ok {
		return nil, database.ErrNotFound
	}
	out := *rec
	return &out, nil
}

type fixedSource struct{ v int }

func (s fixedSource) IntN(n int) int { return s.v % n }

func TestLevelForExperience(t *testing.T) {
	tests := []struct {
		exp  int
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{399, 2},
		{400, 3},
		{899, 3},
		{900, 4},
		{10000, 11},
		{9999, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelForExperience(tt.exp), "LevelForExperience(%d)", tt.exp)
	}
}

func TestLevelBoundsHoldForAllExperience(t *testing.T) {
	for e := 0; e <= 250000; e += 7 {
		level := LevelForExperience(e)
		require.LessOrEqual(t, ExperienceForLevel(level), e, "lower bound at e=%d", e)
		require.Less(t, e, ExperienceForLevel(level+1), "upper bound at e=%d", e)
	}
}

func TestExperienceToNextLevel(t *testing.T) {
	assert.Equal(t, 100, ExperienceToNextLevel(0))
	assert.Equal(t, 1, ExperienceToNextLevel(99))
	assert.Equal(t, 300, ExperienceToNextLevel(100))
	assert.InDelta(t, 0.5, Progress(250), 0.0001)
}

func TestRecordMessageFreshUser(t *testing.T) {
	repo := newFakeRepo()
	engine := NewEngine(repo, rand.New(rand.NewPCG(1, 2)))

	res, err := engine.RecordMessage(context.Background(), "u1", "g1")
	require.NoError(t, err)

	assert.Equal(t, 1, res.Record.TotalMessages)
	assert.GreaterOrEqual(t, res.Record.Experience, MinExperienceDelta)
	assert.LessOrEqual(t, res.Record.Experience, MaxExperienceDelta)
	assert.Equal(t, LevelForExperience(res.Record.Experience), res.Record.Level)
	assert.Equal(t, 1, res.PreviousLevel)
	assert.False(t, res.LeveledUp())
}

func TestExperienceDeltaRange(t *testing.T) {
	engine := NewEngine(newFakeRepo(), rand.New(rand.NewPCG(3, 4)))
	seen := map[int]bool{}
	for i := 0; i < 5000; i++ {
		d := engine.ExperienceDelta()
		require.GreaterOrEqual(t, d, 10)
		require.LessOrEqual(t, d, 25)
		seen[d] = true
	}
	assert.Len(t, seen, 16)
}

func TestRecordMessageLevelsUp(t *testing.T) {
	repo := newFakeRepo()
	engine := NewEngine(repo, fixedSource{v: 15}) // always 25 XP

	var last *MessageResult
	for i := 0; i < 4; i++ {
		var err error
		last, err = engine.RecordMessage(context.Background(), "u1", "g1")
		require.NoError(t, err)
	}

	assert.Equal(t, 100, last.Record.Experience)
	assert.Equal(t, 2, last.Record.Level)
	assert.Equal(t, 1, last.PreviousLevel)
	assert.True(t, last.LeveledUp())
	assert.Equal(t, 4, repo.dailyTotal("g1", "u1"))
}

func TestRecordMessageStorageFailureCountsNothing(t *testing.T) {
	repo := newFakeRepo()
	repo.failDaily = database.ErrStorageUnavailable
	engine := NewEngine(repo, nil)

	_, err := engine.RecordMessage(context.Background(), "u1", "g1")
	assert.True(t, errors.Is(err, database.ErrStorageUnavailable))

	_, err = repo.GetUserLevel(context.Background(), "g1", "u1")
	assert.ErrorIs(t, err, database.ErrNotFound)
	assert.Zero(t, repo.dailyTotal("g1", "u1"))
}

func TestRecordMessageExperienceFailureTakesBackCounter(t *testing.T) {
	repo := newFakeRepo()
	engine := NewEngine(repo, fixedSource{v: 0})

	_, err := engine.RecordMessage(context.Background(), "u1", "g1")
	require.NoError(t, err)

	repo.failAdd = database.ErrStorageUnavailable
	_, err = engine.RecordMessage(context.Background(), "u1", "g1")
	assert.ErrorIs(t, err, database.ErrStorageUnavailable)

	rec, err := repo.GetUserLevel(context.Background(), "g1", "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.TotalMessages)
	assert.Equal(t, MinExperienceDelta, rec.Experience)
	assert.Equal(t, 1, repo.dailyTotal("g1", "u1"))
}

func TestRecordMessageConcurrent(t *testing.T) {
	repo := newFakeRepo()
	engine := NewEngine(repo, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = engine.RecordMessage(context.Background(), "u1", "g1")
		}()
	}
	wg.Wait()

	rec, err := repo.GetUserLevel(context.Background(), "g1", "u1")
	require.NoError(t, err)
	assert.Equal(t, 50, rec.TotalMessages)
	assert.Equal(t, LevelForExperience(rec.Experience), rec.Level)
}

func TestUserLevelUnknownMember(t *testing.T) {
	engine := NewEngine(newFakeRepo(), nil)
	rec, err := engine.UserLevel(context.Background(), "u1", "g1")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Level)
	assert.Zero(t, rec.Experience)
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("semana")
	require.NoError(t, err)
	assert.Equal(t, PeriodWeek, p)

	_, err = ParsePeriod("siglo")
	assert.Error(t, err)

	now := time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), PeriodToday.Since(now))
	assert.Equal(t, time.Date(2024, 5, 3, 15, 30, 0, 0, time.UTC), PeriodWeek.Since(now))
	assert.True(t, PeriodAll.Since(now).IsZero())
}
