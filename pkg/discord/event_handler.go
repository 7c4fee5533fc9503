package discord

import (
	"sync"

	apperrors "github.com/PancyStudios/PancyCommunityBot/pkg/errors"
	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// EventHandler registers gateway event handlers on the session
type EventHandler struct {
	client *ExtendedClient
	count  int
	mu     sync.Mutex
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(client *ExtendedClient) *EventHandler {
	return &EventHandler{client: client}
}

// RegisterEvent adds a raw discordgo handler to the session
func (eh *EventHandler) RegisterEvent(name string, handler interface{}) {
	eh.client.Session.AddHandler(handler)
	eh.mu.Lock()
	eh.count++
	eh.mu.Unlock()
	logger.Debug("Evento '"+name+"' registrado", "EventHandler")
}

// Count returns how many handlers were registered
func (eh *EventHandler) Count() int {
	eh.mu.Lock()
	defer eh.mu.Unlock()
	return eh.count
}

// GuildCreateHandler is called when the bot joins or loads a guild
type GuildCreateHandler func(s *discordgo.Session, g *discordgo.GuildCreate)

// GuildDeleteHandler is called when the bot leaves a guild
type GuildDeleteHandler func(s *discordgo.Session, g *discordgo.GuildDelete)

// MessageCreateHandler is called when a message is created
type MessageCreateHandler func(s *discordgo.Session, m *discordgo.MessageCreate)

// GuildMemberUpdateHandler is called when a member is updated
type GuildMemberUpdateHandler func(s *discordgo.Session, m *discordgo.GuildMemberUpdate)

// Handlers run on discordgo's goroutines; a panic must not take the process down.

// OnGuildCreate registers a guild create event handler
func (eh *EventHandler) OnGuildCreate(handler GuildCreateHandler) {
	eh.RegisterEvent("GuildCreate", func(s *discordgo.Session, g *discordgo.GuildCreate) {
		defer apperrors.RecoverMiddleware()()
		handler(s, g)
	})
}

// OnGuildDelete registers a guild delete event handler
func (eh *EventHandler) OnGuildDelete(handler GuildDeleteHandler) {
	eh.RegisterEvent("GuildDelete", func(s *discordgo.Session, g *discordgo.GuildDelete) {
		defer apperrors.RecoverMiddleware()()
		handler(s, g)
	})
}

// OnMessageCreate registers a message create event handler
func (eh *EventHandler) OnMessageCreate(handler MessageCreateHandler) {
	eh.RegisterEvent("MessageCreate", func(s *discordgo.Session, m *discordgo.MessageCreate) {
		defer apperrors.RecoverMiddleware()()
		handler(s, m)
	})
}

// OnGuildMemberUpdate registers a guild member update event handler
func (eh *EventHandler) OnGuildMemberUpdate(handler GuildMemberUpdateHandler) {
	eh.RegisterEvent("GuildMemberUpdate", func(s *discordgo.Session, m *discordgo.GuildMemberUpdate) {
		defer apperrors.RecoverMiddleware()()
		handler(s, m)
	})
}
