package leveling

import (
	"fmt"
	"strings"

	"github.com/PancyStudios/PancyCommunityBot/pkg/leveling"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"github.com/bwmarrin/discordgo"
)

const progressBarWidth = 20

var periodChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "Hoy", Value: "hoy"},
	{Name: "Esta semana", Value: "semana"},
	{Name: "Este mes", Value: "mes"},
	{Name: "Todo el tiempo", Value: "todo"},
}

// progressBar draws fraction in [0,1] as a fixed width bar
func progressBar(fraction float64) string {
	filled := int(fraction * progressBarWidth)
	filled = max(0, min(filled, progressBarWidth))
	return strings.Repeat("█", filled) + strings.Repeat("░", progressBarWidth-filled)
}

func rankPrefix(i int) string {
	switch i {
	case 0:
		return "🥇"
	case 1:
		return "🥈"
	case 2:
		return "🥉"
	}
	return fmt.Sprintf("**%d.**", i+1)
}

func levelLines(entries []models.UserLevel) string {
	var b strings.Builder
	for i, e := range entries {
		fmt.Fprintf(&b, "%s <@%s> · Nivel **%d** (%d XP)\n", rankPrefix(i), e.UserID, e.Level, e.Experience)
	}
	return b.String()
}

func messageLines(entries []models.MessageCount) string {
	var b strings.Builder
	for i, e := range entries {
		fmt.Fprintf(&b, "%s <@%s> · **%d** mensajes\n", rankPrefix(i), e.UserID, e.Count)
	}
	return b.String()
}

// levelEmbed renders a member's leveling card
func levelEmbed(user *discordgo.User, record *models.UserLevel) *discordgo.MessageEmbed {
	progress := leveling.Progress(record.Experience)
	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("📈 Nivel de %s", user.Username),
		Color: 0x5865F2,
		Thumbnail: &discordgo.MessageEmbedThumbnail{
			URL: user.AvatarURL(""),
		},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "⭐ Nivel", Value: fmt.Sprintf("%d", record.Level), Inline: true},
			{Name: "✨ Experiencia", Value: fmt.Sprintf("%d XP", record.Experience), Inline: true},
			{Name: "💬 Mensajes", Value: fmt.Sprintf("%d", record.TotalMessages), Inline: true},
			{
				Name: "📊 Progreso",
				Value: fmt.Sprintf("`%s` %.0f%%\nFaltan **%d XP** para el nivel %d",
					progressBar(progress), progress*100,
					leveling.ExperienceToNextLevel(record.Experience), record.Level+1),
			},
		},
	}
}
