package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/database"
	"github.com/PancyStudios/PancyCommunityBot/pkg/leveling"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"github.com/PancyStudios/PancyCommunityBot/pkg/notify"
	"github.com/bwmarrin/discordgo"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const guildID = "123456789012345678"

type fakeStore struct {
	offline bool
	limit   int
}

func (f *fakeStore) Status() (string, bool) {
	if f.offline {
		return "disconnected", false
	}
	return "connected", true
}

func (f *fakeStore) err() error {
	if f.offline {
		return database.ErrStorageUnavailable
	}
	return nil
}

func (f *fakeStore) BotStats(ctx context.Context, guilds int) (*models.BotStats, error) {
	return &models.BotStats{Guilds: guilds, TrackedUsers: 7}, f.err()
}

func (f *fakeStore) GuildStats(ctx context.Context, id string) (*models.GuildStats, error) {
	return &models.GuildStats{Config: &models.GuildConfig{GuildID: id}, ActiveGiveaways: 2}, f.err()
}

func (f *fakeStore) ModerationLogs(ctx context.Context, id string, limit int) ([]models.ModerationLog, error) {
	f.limit = limit
	return []models.ModerationLog{{GuildID: id, Action: models.ActionBan}}, f.err()
}

func (f *fakeStore) Giveaways(ctx context.Context, id string, activeOnly bool, limit int) ([]models.Giveaway, error) {
	return []models.Giveaway{{ID: 1, GuildID: id, IsActive: activeOnly}}, f.err()
}

func (f *fakeStore) TopCommands(ctx context.Context, limit int) ([]models.CommandUsage, error) {
	return []models.CommandUsage{{Command: "level", Count: 3}}, f.err()
}

type fakeBoards struct {
	period leveling.Period
	limit  int
}

func (f *fakeBoards) Levels(ctx context.Context, id string, p leveling.Period, limit int) ([]models.UserLevel, error) {
	f.period, f.limit = p, limit
	return []models.UserLevel{{UserID: "u1", Level: 4}}, nil
}

func (f *fakeBoards) Messages(ctx context.Context, id string, p leveling.Period, limit int) ([]models.MessageCount, error) {
	f.period, f.limit = p, limit
	return []models.MessageCount{{UserID: "u1", Count: 40}}, nil
}

type fakeBot struct{ ready bool }

func (b fakeBot) IsReady() bool            { return b.ready }
func (b fakeBot) GuildCount() int          { return 3 }
func (b fakeBot) Latency() time.Duration   { return 42 * time.Millisecond }
func (b fakeBot) BotUser() *discordgo.User { return &discordgo.User{ID: "1", Username: "Pancy"} }

type fixture struct {
	server *Server
	store  *fakeStore
	boards *fakeBoards
	hub    *Hub
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	s, err := NewServer(opts)
	require.NoError(t, err)
	f := &fixture{server: s, store: &fakeStore{}, boards: &fakeBoards{}, hub: NewHub()}
	SetupAPIRoutes(s, &API{Store: f.store, Leaderboard: f.boards, Bot: fakeBot{ready: true}, Hub: f.hub})
	return f
}

func (f *fixture) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	f.server.Engine().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthAndStatus(t *testing.T) {
	f := newFixture(t, Options{RequestsPerMinute: 100})

	w := f.get("/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])

	w = f.get("/api/status")
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["bot"].(map[string]interface{})["isOnline"])
	assert.Equal(t, "connected", body["database"].(map[string]interface{})["status"])
}

func TestBotAndStats(t *testing.T) {
	f := newFixture(t, Options{RequestsPerMinute: 100})

	body := decode(t, f.get("/api/bot"))
	assert.Equal(t, "Pancy", body["username"])
	assert.EqualValues(t, 42, body["latencyMs"])

	w := f.get("/api/stats")
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.EqualValues(t, 3, body["stats"].(map[string]interface{})["guilds"])
	assert.Len(t, body["topCommands"], 1)
}

func TestGuildRoutesValidateSnowflake(t *testing.T) {
	f := newFixture(t, Options{RequestsPerMinute: 100})

	assert.Equal(t, http.StatusBadRequest, f.get("/api/guilds/not-an-id").Code)
	assert.Equal(t, http.StatusBadRequest, f.get("/api/guilds/abc/giveaways").Code)

	w := f.get("/api/guilds/" + guildID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode(t, w)["activeGiveaways"])
}

func TestModerationLogsLimit(t *testing.T) {
	f := newFixture(t, Options{RequestsPerMinute: 100})

	w := f.get("/api/guilds/" + guildID + "/moderation-logs?limit=500")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 100, f.store.limit)

	f.get("/api/guilds/" + guildID + "/moderation-logs")
	assert.Equal(t, 50, f.store.limit)
}

func TestLeaderboardQuery(t *testing.T) {
	f := newFixture(t, Options{RequestsPerMinute: 100})

	w := f.get("/api/guilds/" + guildID + "/leaderboard?type=messages&period=week&limit=5")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, leveling.PeriodWeek, f.boards.period)
	assert.Equal(t, 5, f.boards.limit)
	assert.Equal(t, "messages", decode(t, w)["type"])

	w = f.get("/api/guilds/" + guildID + "/leaderboard?limit=99")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, leveling.PeriodAll, f.boards.period)
	assert.Equal(t, leveling.MaxLeaderboardSize, f.boards.limit)

	assert.Equal(t, http.StatusBadRequest, f.get("/api/guilds/"+guildID+"/leaderboard?period=year").Code)
	assert.Equal(t, http.StatusBadRequest, f.get("/api/guilds/"+guildID+"/leaderboard?type=xp").Code)
}

func TestStorageUnavailable(t *testing.T) {
	f := newFixture(t, Options{RequestsPerMinute: 100})
	f.store.offline = true

	assert.Equal(t, http.StatusServiceUnavailable, f.get("/api/stats").Code)
	assert.Equal(t, http.StatusServiceUnavailable, f.get("/api/guilds/"+guildID+"/giveaways").Code)
}

func TestHostAllowList(t *testing.T) {
	f := newFixture(t, Options{AllowedHosts: `^(.+\.)?example\.com`, RequestsPerMinute: 100})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Host = "evil.test"
	f.server.Engine().ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Host = "dash.example.com"
	f.server.Engine().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	_, err := NewServer(Options{AllowedHosts: "("})
	assert.Error(t, err)
}

func TestRateLimitAndErrors(t *testing.T) {
	f := newFixture(t, Options{RequestsPerMinute: 2})

	assert.Equal(t, http.StatusOK, f.get("/health").Code)
	assert.Equal(t, http.StatusOK, f.get("/health").Code)
	w := f.get("/health")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	f = newFixture(t, Options{RequestsPerMinute: 100})
	assert.Equal(t, http.StatusNotFound, f.get("/nope").Code)

	w = httptest.NewRecorder()
	f.server.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t, Options{CORSOrigins: []string{"https://dash.example.com"}, RequestsPerMinute: 100})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/stats", nil)
	req.Header.Set("Origin", "https://dash.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	f.server.Engine().ServeHTTP(w, req)

	assert.Equal(t, "https://dash.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestWebsocketReceivesGuildEvents(t *testing.T) {
	f := newFixture(t, Options{RequestsPerMinute: 100})
	ts := httptest.NewServer(f.server.Engine())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/events?guild=" + guildID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return f.hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	f.hub.Notify(notify.NewEvent(notify.EventLevelUp, "other-guild", nil))
	f.hub.Notify(notify.NewEvent(notify.EventGiveawayEnded, guildID, map[string]int{"winners": 1}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var e notify.Event
	require.NoError(t, json.Unmarshal(msg, &e))
	assert.Equal(t, notify.EventGiveawayEnded, e.Type)
	assert.Equal(t, guildID, e.GuildID)
}
