package config

import (
	"testing"

	"github.com/PancyStudios/PancyCommunityBot/pkg/boost"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewEmbed(t *testing.T) {
	embed := viewEmbed(&models.GuildConfig{
		BoostChannelID:   "10",
		LevelRoles:       []models.LevelRole{{Level: 5, RoleID: "50"}},
		LevelRequirement: 3,
	})
	require.Len(t, embed.Fields, 6)

	assert.Equal(t, "<#10>", embed.Fields[0].Value)
	assert.Equal(t, notSet, embed.Fields[1].Value)
	assert.Contains(t, embed.Fields[2].Value, boost.DefaultMessage)
	assert.Contains(t, embed.Fields[3].Value, "Nivel **5** → <@&50>")
	assert.Equal(t, notSet, embed.Fields[4].Value)
	assert.Equal(t, "nivel 3", embed.Fields[5].Value)
}

func TestRequirementsSummary(t *testing.T) {
	assert.Equal(t, "sin requisitos", requirementsSummary(0, 0))
	assert.Equal(t, "100 mensajes", requirementsSummary(0, 100))
	assert.Equal(t, "nivel 2 y 50 mensajes", requirementsSummary(2, 50))
}

func TestSavedMessageWhileOffline(t *testing.T) {
	assert.Equal(t, "ok", savedMessage(&models.GuildConfig{}, "ok"))
	assert.Contains(t, savedMessage(nil, "ok"), "base de datos no está disponible")
}

func TestAssignableRole(t *testing.T) {
	assert.NotEmpty(t, assignableRole(nil))
	assert.NotEmpty(t, assignableRole(&discordgo.Role{ID: "1", Managed: true}))
	assert.Empty(t, assignableRole(&discordgo.Role{ID: "1"}))
}
