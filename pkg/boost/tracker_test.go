package boost

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	active map[string]bool
	err    error
}

func (f *fakeRepo) RecordBoost(ctx context.Context, guildID, userID string, at time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.active[userID] = true
	return nil
}

func (f *fakeRepo) EndBoost(ctx context.Context, guildID, userID string, at time.Time) error {
	f.active[userID] = false
	return nil
}

type fakeConfigs struct{ cfg *models.GuildConfig }

func (f fakeConfigs) GetGuildConfig(ctx context.Context, guildID string) (*models.GuildConfig, error) {
	return f.cfg, nil
}

type fakePlatform struct {
	sent    map[string]string
	roles   map[string]bool
	sendErr error
}

func (f *fakePlatform) SendMessage(channelID, content string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent[channelID] = content
	return nil
}

func (f *fakePlatform) HasRole(guildID, userID, roleID string) (bool, error) {
	return f.roles[roleID], nil
}

func (f *fakePlatform) GrantRole(guildID, userID, roleID string) error {
	f.roles[roleID] = true
	return nil
}

func (f *fakePlatform) RevokeRole(guildID, userID, roleID string) error {
	delete(f.roles, roleID)
	return nil
}

func newFixture(cfg *models.GuildConfig) (*Tracker, *fakeRepo, *fakePlatform) {
	repo := &fakeRepo{active: map[string]bool{}}
	platform := &fakePlatform{sent: map[string]string{}, roles: map[string]bool{}}
	return NewTracker(repo, fakeConfigs{cfg: cfg}, platform, nil), repo, platform
}

func TestDetect(t *testing.T) {
	assert.Equal(t, Started, Detect(false, true))
	assert.Equal(t, Ended, Detect(true, false))
	assert.Equal(t, NoChange, Detect(true, true))
	assert.Equal(t, NoChange, Detect(false, false))
}

func TestBoostStartedAnnouncesAndGrantsRole(t *testing.T) {
	tracker, repo, platform := newFixture(&models.GuildConfig{
		BoostChannelID: "chan",
		BoostMessage:   "Gracias {user}!",
		BoosterRoleID:  "booster",
	})

	change, err := tracker.HandleUpdate(context.Background(), "g1", "u1", false, true)
	require.NoError(t, err)

	assert.Equal(t, Started, change)
	assert.True(t, repo.active["u1"])
	assert.Equal(t, "Gracias <@u1>!", platform.sent["chan"])
	assert.True(t, platform.roles["booster"])
}

func TestBoostEndedRevokesRole(t *testing.T) {
	tracker, repo, platform := newFixture(&models.GuildConfig{BoosterRoleID: "booster"})
	platform.roles["booster"] = true

	change, err := tracker.HandleUpdate(context.Background(), "g1", "u1", true, false)
	require.NoError(t, err)

	assert.Equal(t, Ended, change)
	assert.False(t, repo.active["u1"])
	assert.False(t, platform.roles["booster"])
	assert.Empty(t, platform.sent)
}

func TestBoostDefaultMessageAndSendFailure(t *testing.T) {
	assert.Contains(t, FormatMessage("", "u1"), "<@u1>")

	tracker, _, platform := newFixture(&models.GuildConfig{BoostChannelID: "chan", BoosterRoleID: "booster"})
	platform.sendErr = errors.New("missing access")

	_, err := tracker.HandleUpdate(context.Background(), "g1", "u1", false, true)
	require.NoError(t, err)
	assert.True(t, platform.roles["booster"], "role grant should still run")
}

func TestBoostStorageErrorIsReturned(t *testing.T) {
	tracker, repo, platform := newFixture(&models.GuildConfig{BoostChannelID: "chan"})
	repo.err = errors.New("offline")

	_, err := tracker.HandleUpdate(context.Background(), "g1", "u1", false, true)
	assert.Error(t, err)
	assert.Empty(t, platform.sent)
}
