package utils

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/config"
	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/errors"
	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"github.com/bwmarrin/discordgo"
)

const topCommandsShown = 5

func (c *commands) statsCommand() *discord.Command {
	return discord.NewCommand(
		"stats",
		"Muestra estadísticas del bot",
		"utils",
		c.statsHandler,
	)
}

func (c *commands) statsHandler(ctx *discord.CommandContext) error {
	if err := ctx.Defer(); err != nil {
		return err
	}

	go func() {
		defer errors.RecoverMiddleware()()

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		memberCount := 0
		ctx.Session.State.RLock()
		for _, guild := range ctx.Session.State.Guilds {
			memberCount += guild.MemberCount
		}
		ctx.Session.State.RUnlock()

		embed := &discordgo.MessageEmbed{
			Title: "📊 Estadísticas del Bot",
			Color: 0x5865F2,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "🤖 Versión del Bot", Value: config.Version, Inline: true},
				{Name: "🐹 Versión de Go", Value: strings.TrimPrefix(runtime.Version(), "go"), Inline: true},
				{Name: "📚 Versión de DiscordGo", Value: discordgo.VERSION, Inline: true},
				{Name: "🖥 Uso de RAM", Value: fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024), Inline: true},
				{Name: "⚙️ Uso de CPU", Value: fmt.Sprintf("%d Goroutines / %d CPUs", runtime.NumGoroutine(), runtime.NumCPU()), Inline: true},
				{Name: "⏱ Uptime", Value: formatDuration(time.Since(ctx.Client.StartTime)), Inline: true},
				{Name: "🏠 Servidores", Value: fmt.Sprintf("%d", ctx.Client.GuildCount()), Inline: true},
				{Name: "👥 Miembros", Value: fmt.Sprintf("%d", memberCount), Inline: true},
			},
			Footer: &discordgo.MessageEmbedFooter{
				Text: "💫 - Developed by PancyStudios",
			},
			Timestamp: time.Now().Format(time.RFC3339),
		}
		if user := ctx.Client.BotUser(); user != nil {
			embed.Footer.IconURL = user.AvatarURL("")
		}
		embed.Fields = append(embed.Fields, c.usageFields()...)

		ctx.EditReplyEmbed(embed)
	}()
	return nil
}

// usageFields reports command usage totals; nothing when stats are unavailable
func (c *commands) usageFields() []*discordgo.MessageEmbedField {
	if c.usage == nil {
		return nil
	}

	sctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	total, err := c.usage.CountCommands(sctx)
	if err != nil {
		logger.Debug("Estadísticas de uso no disponibles: "+err.Error(), "CMD-Stats")
		return nil
	}
	top, err := c.usage.TopCommands(sctx, topCommandsShown)
	if err != nil {
		logger.Debug("Ranking de comandos no disponible: "+err.Error(), "CMD-Stats")
		top = nil
	}
	return []*discordgo.MessageEmbedField{
		{Name: "⌨️ Comandos ejecutados", Value: fmt.Sprintf("%d", total), Inline: true},
		{Name: "🔥 Más usados", Value: topCommandsText(top), Inline: true},
	}
}

func topCommandsText(top []models.CommandUsage) string {
	if len(top) == 0 {
		return "Sin datos"
	}
	lines := make([]string, len(top))
	for i, u := range top {
		lines[i] = fmt.Sprintf("`/%s` · %d", strings.ReplaceAll(u.Command, ".", " "), u.Count)
	}
	return strings.Join(lines, "\n")
}

// formatDuration formats a time.Duration into a human-readable string
func formatDuration(dur time.Duration) string {
	days := int(dur.Hours() / 24)
	hours := int(dur.Hours()) % 24
	minutes := int(dur.Minutes()) % 60
	seconds := int(dur.Seconds()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%d días", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d horas", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%d minutos", minutes))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%d segundos", seconds))
	}

	return strings.Join(parts, ", ")
}
