package giveaway

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/database"
	"github.com/PancyStudios/PancyCommunityBot/pkg/giveaway"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestBuildGiveaway(t *testing.T) {
	g, d, err := buildGiveaway(createOptions{
		Prize:         "  Nitro  ",
		Duration:      "1d 12h",
		Winners:       2,
		Color:         "#00ff00",
		RequiredRoles: "<@&111111111111111111>, 222222222222222222",
		BonusRoles:    "333333333333333333",
		BonusEntries:  3,
	}, "host", "guild", "chan", now)
	require.NoError(t, err)

	assert.Equal(t, 36*time.Hour, d)
	assert.Equal(t, "Nitro", g.Prize)
	assert.Equal(t, 0x00FF00, g.Color)
	assert.Equal(t, now.Add(d), g.EndTime)
	assert.Equal(t, []string{"111111111111111111", "222222222222222222"}, g.RequiredRoles)
	assert.Equal(t, []string{"333333333333333333"}, g.BonusRoles)
	assert.Equal(t, 3, g.BonusEntries)
	assert.Equal(t, defaultEmoji, g.Emoji)
	assert.Equal(t, defaultButtonText, g.ButtonText)
	assert.Equal(t, "chan", g.ChannelID)
}

func TestBuildGiveawayRejects(t *testing.T) {
	base := createOptions{Prize: "Nitro", Duration: "1h", Winners: 1}

	tests := []struct {
		name   string
		mutate func(o *createOptions)
		want   string
	}{
		{"empty prize", func(o *createOptions) { o.Prize = "  " }, "premio"},
		{"short duration", func(o *createOptions) { o.Duration = "30s" }, "Duración inválida"},
		{"long duration", func(o *createOptions) { o.Duration = "31d" }, "Duración inválida"},
		{"too many winners", func(o *createOptions) { o.Winners = 21 }, "ganadores"},
		{"bad color", func(o *createOptions) { o.Color = "verde" }, "Color inválido"},
		{"bonus out of range", func(o *createOptions) { o.BonusEntries = 11 }, "entradas bonus"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := base
			tt.mutate(&opts)
			_, _, err := buildGiveaway(opts, "host", "guild", "chan", now)
			require.Error(t, err)
			assert.Contains(t, createError(err), tt.want)
		})
	}
}

func TestUserMessage(t *testing.T) {
	assert.Contains(t, userMessage(giveaway.ErrAlreadyEntered), "Ya estás participando")
	assert.Contains(t, userMessage(database.ErrNotFound), "no encontrado")
	assert.Contains(t, userMessage(fmt.Errorf("%w: level 1 of 5", giveaway.ErrRequirementNotMet)), "requisitos")
	assert.Contains(t, userMessage(giveaway.ErrGiveawayActive), "activo")
	assert.Contains(t, userMessage(giveaway.ErrPreviewForbidden), "anfitrión")
	assert.Contains(t, userMessage(fmt.Errorf("boom")), "error inesperado")
}

func TestActiveEmbed(t *testing.T) {
	g := &models.Giveaway{
		ID: 7, HostID: "h", Prize: "Nitro", Title: "Sorteo", WinnerCount: 2, EndTime: now,
		RequiredRoles: []string{"1"}, BonusRoles: []string{"2"}, BonusEntries: 3,
	}
	embed := activeEmbed(g, 12)

	require.Len(t, embed.Fields, 6)
	assert.Equal(t, "12", embed.Fields[4].Value)
	assert.Contains(t, embed.Fields[5].Value, "<@&1>")
	assert.Contains(t, embed.Fields[5].Value, "+3 entradas")
	assert.Equal(t, "ID del sorteo: 7", embed.Footer.Text)

	g.RequiredRoles, g.BonusRoles = nil, nil
	assert.Len(t, activeEmbed(g, 0).Fields, 5)
}

func TestButtons(t *testing.T) {
	g := &models.Giveaway{Emoji: "<a:party:123456789012345678>"}
	row := entryButtons(g, false)[0].(discordgo.ActionsRow)
	enter := row.Components[0].(discordgo.Button)

	assert.Equal(t, enterPrefix, enter.CustomID)
	assert.True(t, enter.Disabled)
	assert.Equal(t, defaultButtonText, enter.Label)
	assert.Equal(t, "party", enter.Emoji.Name)
	assert.True(t, enter.Emoji.Animated)

	preview := previewButtons("tok")[0].(discordgo.ActionsRow)
	assert.Equal(t, "giveaway_confirm:tok", preview.Components[0].(discordgo.Button).CustomID)
	assert.Equal(t, "giveaway_cancel:tok", preview.Components[1].(discordgo.Button).CustomID)

	assert.Equal(t, "🎁", componentEmoji("🎁").Name)
}

func TestParticipantList(t *testing.T) {
	assert.Equal(t, "Todavía no hay participantes.", participantList(nil))

	var entries []models.GiveawayEntry
	for i := 0; i < 25; i++ {
		entries = append(entries, models.GiveawayEntry{UserID: fmt.Sprint(i), Entries: 1})
	}
	entries[0].Entries = 4

	list := participantList(entries)
	assert.Contains(t, list, "1. <@0> (4 entradas)")
	assert.Contains(t, list, "20. <@19>")
	assert.NotContains(t, list, "<@20>")
	assert.True(t, strings.HasSuffix(list, "... y 5 más"))
}

func TestWinnerMentions(t *testing.T) {
	assert.Equal(t, "Nadie", winnerMentions(nil))
	winners := []models.GiveawayWinner{{UserID: "a", Position: 1}, {UserID: "b", Position: 2}}
	assert.Equal(t, "<@a>, <@b>", winnerMentions(winners))
	assert.Equal(t, []string{"a", "b"}, winnerUserIDs(winners))
}

func TestGiveawayChoices(t *testing.T) {
	list := []models.Giveaway{
		{ID: 1, Prize: "Discord Nitro", IsActive: true},
		{ID: 2, Prize: "Steam Gift Card"},
		{ID: 13, Prize: "Camiseta"},
	}

	all := giveawayChoices(list, "")
	require.Len(t, all, 3)
	assert.Equal(t, "#1 · Discord Nitro (activo)", all[0].Name)
	assert.Equal(t, int64(1), all[0].Value)

	steam := giveawayChoices(list, "steam")
	require.Len(t, steam, 1)
	assert.Equal(t, int64(2), steam[0].Value)

	byID := giveawayChoices(list, "13")
	require.NotEmpty(t, byID)
	assert.Equal(t, int64(13), byID[0].Value)

	var many []models.Giveaway
	for i := 0; i < 40; i++ {
		many = append(many, models.Giveaway{ID: int64(i + 1), Prize: strings.Repeat("x", 120)})
	}
	capped := giveawayChoices(many, "")
	require.Len(t, capped, maxChoices)
	assert.LessOrEqual(t, len([]rune(capped[0].Name)), maxChoiceNameRunes)
}
