package events

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/leveling"
	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/PancyStudios/PancyCommunityBot/pkg/notify"
	"github.com/bwmarrin/discordgo"
)

const messageTimeout = 5 * time.Second

type messageHandler struct {
	levels   MessageRecorder
	configs  ConfigReader
	roles    leveling.RoleManager
	notifier notify.Notifier
}

func newMessageHandler(levels MessageRecorder, configs ConfigReader, roles leveling.RoleManager, notifier notify.Notifier) *messageHandler {
	return &messageHandler{levels: levels, configs: configs, roles: roles, notifier: notifier}
}

// RegisterMessageEvents registers the experience handler
func RegisterMessageEvents(client *discord.ExtendedClient, h *messageHandler) {
	client.EventHandler.OnMessageCreate(h.onMessageCreate)
}

func levelUpMessage(userID string, level int) string {
	return fmt.Sprintf("🎉 ¡Felicidades <@%s>! Has subido al **nivel %d**.", userID, level)
}

func mentionsUser(m *discordgo.Message, userID string) bool {
	for _, u := range m.Mentions {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// process accrues experience and grants the threshold roles now earned
func (h *messageHandler) process(ctx context.Context, guildID, userID string) (*leveling.MessageResult, []string, error) {
	result, err := h.levels.RecordMessage(ctx, userID, guildID)
	if err != nil {
		return nil, nil, err
	}

	if result.LeveledUp() {
		h.notifier.Notify(notify.NewEvent(notify.EventLevelUp, guildID, map[string]interface{}{
			"userId":        userID,
			"level":         result.Record.Level,
			"previousLevel": result.PreviousLevel,
			"experience":    result.Record.Experience,
		}))
	}

	if h.configs == nil || h.roles == nil {
		return result, nil, nil
	}
	cfg, err := h.configs.GetGuildConfig(ctx, guildID)
	if err != nil {
		logger.Warn(fmt.Sprintf("No se pudo leer la configuración de %s: %v", guildID, err), "Leveling")
		return result, nil, nil
	}
	granted := leveling.ApplyRoleGrants(h.roles, guildID, userID, leveling.EvaluateRoleGrants(result.Record, cfg))
	return result, granted, nil
}

func (h *messageHandler) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	if s.State.User != nil && mentionsUser(m.Message, s.State.User.ID) {
		_, err := s.ChannelMessageSendEmbedReply(m.ChannelID, &discordgo.MessageEmbed{
			Title:       "👋 ¡Hola!",
			Description: "Usa comandos **slash (/)** para interactuar conmigo.\nEscribe `/utils help` para ver todos los comandos disponibles.",
			Color:       0x3498db,
		}, m.Reference())
		if err != nil {
			logger.Error(fmt.Sprintf("Error enviando respuesta: %v", err), "Message")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), messageTimeout)
	defer cancel()

	result, granted, err := h.process(ctx, m.GuildID, m.Author.ID)
	if err != nil {
		logger.Warn(fmt.Sprintf("No se pudo registrar el mensaje de %s: %v", m.Author.ID, err), "Leveling")
		return
	}

	if result.LeveledUp() {
		if _, err := s.ChannelMessageSend(m.ChannelID, levelUpMessage(m.Author.ID, result.Record.Level)); err != nil {
			logger.Debug(fmt.Sprintf("No se pudo anunciar la subida de nivel: %v", err), "Leveling")
		}
	}
	for _, roleID := range granted {
		logger.Info(fmt.Sprintf("Rol %s asignado a %s en %s", roleID, m.Author.Username, m.GuildID), "Leveling")
	}
}
