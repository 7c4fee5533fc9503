package events

import (
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// guildEvents reports joins and leaves, optionally to a Discord webhook
type guildEvents struct {
	webhookID    string
	webhookToken string
}

// RegisterGuildEvents registers all guild-related event handlers
func RegisterGuildEvents(client *discord.ExtendedClient, webhookURL string) {
	g := &guildEvents{}
	if webhookURL != "" {
		id, token, ok := webhookParts(webhookURL)
		if !ok {
			logger.Warn("GUILDS_WEBHOOK no es una URL de webhook de Discord válida", "Guild")
		}
		g.webhookID, g.webhookToken = id, token
	}

	client.EventHandler.OnGuildCreate(g.onGuildCreate)
	client.EventHandler.OnGuildDelete(g.onGuildDelete)
}

// webhookParts extracts id and token from https://discord.com/api/webhooks/<id>/<token>
func webhookParts(url string) (id, token string, ok bool) {
	_, rest, found := strings.Cut(url, "/api/webhooks/")
	if !found {
		return "", "", false
	}
	id, token, found = strings.Cut(strings.TrimSuffix(rest, "/"), "/")
	if !found || id == "" || token == "" || strings.Contains(token, "/") {
		return "", "", false
	}
	return id, token, true
}

func (g *guildEvents) report(s *discordgo.Session, embed *discordgo.MessageEmbed) {
	if g.webhookID == "" {
		return
	}
	_, err := s.WebhookExecute(g.webhookID, g.webhookToken, false, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
	if err != nil {
		logger.Debug(fmt.Sprintf("No se pudo enviar al webhook de servidores: %v", err), "Guild")
	}
}

// onGuildCreate is called when the bot joins a server. Startup replays of
// known guilds are ignored.
func (g *guildEvents) onGuildCreate(s *discordgo.Session, e *discordgo.GuildCreate) {
	if e.JoinedAt.Before(time.Now().Add(-10 * time.Second)) {
		return
	}

	logger.Info(fmt.Sprintf("➕ Bot agregado a servidor: %s (ID: %s)", e.Name, e.ID), "Guild")
	g.report(s, &discordgo.MessageEmbed{
		Title:       "➕ Nuevo servidor",
		Description: fmt.Sprintf("**%s** (`%s`)\nMiembros: %d", e.Name, e.ID, e.MemberCount),
		Color:       0x00ff00,
		Timestamp:   time.Now().Format(time.RFC3339),
	})

	if e.SystemChannelID == "" {
		return
	}
	welcomeEmbed := &discordgo.MessageEmbed{
		Title:       "¡Gracias por agregarme! 🎉",
		Description: "Hola, soy **PancyCommunityBot**. Usa `/utils help` para ver todos mis comandos.",
		Color:       0x00ff00,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "📈 Niveles", Value: "Gana experiencia chateando: `/level`", Inline: true},
			{Name: "🎉 Sorteos", Value: "Organiza sorteos con `/giveaway create`", Inline: true},
			{Name: "⚙️ Configuración", Value: "Ajusta el bot con `/config`", Inline: true},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "¡Disfruta de PancyCommunityBot!"},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if _, err := s.ChannelMessageSendEmbed(e.SystemChannelID, welcomeEmbed); err != nil {
		logger.Error(fmt.Sprintf("Error enviando mensaje de bienvenida: %v", err), "Guild")
	}
}

// onGuildDelete is called when the bot is removed from a server or it becomes unavailable
func (g *guildEvents) onGuildDelete(s *discordgo.Session, e *discordgo.GuildDelete) {
	if e.Unavailable {
		logger.Warn(fmt.Sprintf("Servidor %s no disponible temporalmente", e.ID), "Guild")
		return
	}
	logger.Info(fmt.Sprintf("➖ Bot removido del servidor ID: %s", e.ID), "Guild")
	g.report(s, &discordgo.MessageEmbed{
		Title:       "➖ Servidor abandonado",
		Description: fmt.Sprintf("`%s`", e.ID),
		Color:       0xe74c3c,
		Timestamp:   time.Now().Format(time.RFC3339),
	})
}
