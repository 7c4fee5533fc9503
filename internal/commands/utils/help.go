package utils

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/errors"
	"github.com/bwmarrin/discordgo"
)

var categoryTitles = map[string]string{
	"utils":    "🛠️ Utilidad",
	"leveling": "📈 Niveles",
	"giveaway": "🎉 Sorteos",
	"mod":      "🛡️ Moderación",
	"config":   "⚙️ Configuración",
}

func (c *commands) helpCommand() *discord.Command {
	return discord.NewCommand(
		"help",
		"Muestra información de ayuda",
		"utils",
		c.helpHandler,
	)
}

// helpFields lists the public commands grouped by category, keyed by their dotted names
func helpFields(cmds map[string]*discord.Command) []*discordgo.MessageEmbedField {
	byCategory := make(map[string][]string)
	for name, cmd := range cmds {
		if cmd.IsDev {
			continue
		}
		line := fmt.Sprintf("• `/%s` - %s", strings.ReplaceAll(name, ".", " "), cmd.Description)
		byCategory[cmd.Category] = append(byCategory[cmd.Category], line)
	}

	categories := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	fields := make([]*discordgo.MessageEmbedField, 0, len(categories))
	for _, cat := range categories {
		lines := byCategory[cat]
		sort.Strings(lines)
		title, ok := categoryTitles[cat]
		if !ok {
			title = cat
		}
		fields = append(fields, &discordgo.MessageEmbedField{Name: title, Value: strings.Join(lines, "\n")})
	}
	return fields
}

func (c *commands) helpHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()
		ctx.ReplyEphemeralEmbed(&discordgo.MessageEmbed{
			Title:       "📖 Ayuda de PancyCommunityBot",
			Description: "Comandos disponibles:",
			Color:       0x5865F2,
			Fields:      helpFields(ctx.Client.Commands.All()),
		})
	}()
	return nil
}
