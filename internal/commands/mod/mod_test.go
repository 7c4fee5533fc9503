package mod

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"github.com/PancyStudios/PancyCommunityBot/pkg/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu     sync.Mutex
	logs   []models.ModerationLog
	warns  map[string]*models.WarnsDocument
	logErr error
	nextID int
}

func newMemRepo() *memRepo {
	return &memRepo{warns: map[string]*models.WarnsDocument{}}
}

func (r *memRepo) LogAction(ctx context.Context, entry *models.ModerationLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.logErr != nil {
		return r.logErr
	}
	r.logs = append(r.logs, *entry)
	return nil
}

func (r *memRepo) GetWarns(ctx context.Context, guildID, userID string) (*models.WarnsDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc, ok := r.warns[guildID+userID]; ok {
		return doc, nil
	}
	return &models.WarnsDocument{GuildID: guildID, UserID: userID}, nil
}

func (r *memRepo) AddWarn(ctx context.Context, guildID, userID string, warn models.Warn) (*models.WarnsDocument, error) {
	doc, _ := r.GetWarns(ctx, guildID, userID)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	warn.ID = strings.Repeat("a", r.nextID)
	doc.Warns = append(doc.Warns, warn)
	r.warns[guildID+userID] = doc
	return doc, nil
}

func (r *memRepo) RemoveWarn(ctx context.Context, guildID, userID, warnID string) (*models.WarnsDocument, error) {
	return nil, errors.New("not used")
}

func (r *memRepo) ClearWarns(ctx context.Context, guildID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.warns, guildID+userID)
	return nil
}

func TestAddWarnRecordsLogAndEvent(t *testing.T) {
	repo := newMemRepo()
	var events []notify.Event
	m := newModeration(repo, notify.Func(func(e notify.Event) { events = append(events, e) }))
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	warn, total, err := m.addWarn("g1", "u1", "mod1", "spam")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "spam", warn.Reason)
	assert.Equal(t, fixed.Unix(), warn.Timestamp)

	_, total, err = m.addWarn("g1", "u1", "mod1", "flood")
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	require.Len(t, repo.logs, 2)
	assert.Equal(t, models.ActionWarn, repo.logs[0].Action)
	assert.Equal(t, "mod1", repo.logs[0].ModeratorID)
	assert.Equal(t, fixed, repo.logs[0].CreatedAt)

	require.Len(t, events, 2)
	assert.Equal(t, notify.EventModeration, events[0].Type)
	assert.Equal(t, "g1", events[0].GuildID)
}

func TestRecordSurvivesLogFailure(t *testing.T) {
	repo := newMemRepo()
	repo.logErr = errors.New("offline")
	var got int
	m := newModeration(repo, notify.Func(func(e notify.Event) { got++ }))

	entry := m.record("g1", models.ActionMute, "u1", "mod1", "ruido", 30)
	assert.Equal(t, 30, entry.Duration)
	assert.Equal(t, 1, got, "event is still published")
}

func TestWarnListDescription(t *testing.T) {
	doc := &models.WarnsDocument{Warns: []models.Warn{
		{ID: "abc123", Reason: "spam", Moderator: "42"},
		{ID: "def456", Reason: "flood", Moderator: "43"},
	}}
	now := time.Unix(1700000000, 0)

	staff := warnListDescription(doc, true, now)
	assert.Contains(t, staff, "<@42>")
	assert.Contains(t, staff, "**Cantidad de advertencias:** 2")
	assert.Contains(t, staff, "<t:1700000000>")

	member := warnListDescription(doc, false, now)
	assert.NotContains(t, member, "<@42>")
	assert.Contains(t, member, "Oculto")
}

func TestWarnChoicesAndTruncate(t *testing.T) {
	doc := &models.WarnsDocument{}
	for i := 0; i < 30; i++ {
		doc.Warns = append(doc.Warns, models.Warn{ID: "id", Reason: strings.Repeat("x", 200)})
	}

	choices := warnChoices(doc)
	require.Len(t, choices, 25)
	assert.LessOrEqual(t, len([]rune(choices[0].Name)), 100)
	assert.True(t, strings.HasSuffix(choices[0].Name, "..."))

	assert.Equal(t, "corto", truncate("corto", 10))
	assert.Equal(t, "ñañ...", truncate("ñañañaña", 6))
	assert.Equal(t, defaultReason, reasonOrDefault(""))
}
