package events

import (
	"fmt"

	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/PancyStudios/PancyCommunityBot/pkg/notify"
	"github.com/bwmarrin/discordgo"
)

func activityText(guilds int) string {
	if guilds == 1 {
		return "🎉 Sorteos y niveles en 1 servidor | /utils help"
	}
	return fmt.Sprintf("🎉 Sorteos y niveles en %d servidores | /utils help", guilds)
}

// RegisterReadyEvent sets the presence on every (re)connect and announces it
func RegisterReadyEvent(client *discord.ExtendedClient, notifier notify.Notifier) {
	client.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		logger.Info(fmt.Sprintf("📊 Conectado a %d servidores", len(r.Guilds)), "Ready")

		if err := s.UpdateGameStatus(0, activityText(len(r.Guilds))); err != nil {
			logger.Error(fmt.Sprintf("Error estableciendo estado: %v", err), "Ready")
		}

		notifier.Notify(notify.NewEvent(notify.EventBotReady, "", map[string]interface{}{
			"guilds":    len(r.Guilds),
			"sessionId": r.SessionID,
		}))
	})
}
