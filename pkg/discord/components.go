package discord

import (
	"strings"
	"sync"

	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// ComponentContext is passed to button handlers
type ComponentContext struct {
	Session     *discordgo.Session
	Interaction *discordgo.InteractionCreate
	Client      *ExtendedClient
}

// ComponentFunc handles a message component interaction. arg is the part of the
// custom id after the first ':' (empty when absent).
type ComponentFunc func(ctx *ComponentContext, arg string) error

// ComponentRouter dispatches component interactions by custom id prefix
type ComponentRouter struct {
	mu       sync.RWMutex
	handlers map[string]ComponentFunc
}

// NewComponentRouter creates an empty router
func NewComponentRouter() *ComponentRouter {
	return &ComponentRouter{handlers: make(map[string]ComponentFunc)}
}

// Register installs fn for custom ids equal to prefix or starting with prefix+":"
func (r *ComponentRouter) Register(prefix string, fn ComponentFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[prefix] = fn
}

// SplitCustomID splits "prefix:arg" into its parts
func SplitCustomID(customID string) (prefix, arg string) {
	prefix, arg, _ = strings.Cut(customID, ":")
	return prefix, arg
}

// CustomID joins a prefix and an argument into a custom id
func CustomID(prefix, arg string) string {
	if arg == "" {
		return prefix
	}
	return prefix + ":" + arg
}

func (r *ComponentRouter) lookup(customID string) (ComponentFunc, string, bool) {
	prefix, arg := SplitCustomID(customID)
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.handlers[prefix]
	return fn, arg, ok
}

// Dispatch runs the handler registered for the interaction's custom id
func (r *ComponentRouter) Dispatch(ctx *ComponentContext) {
	customID := ctx.Interaction.MessageComponentData().CustomID
	fn, arg, ok := r.lookup(customID)
	if !ok {
		logger.Debug("Componente sin manejador: "+customID, "Components")
		return
	}
	if err := fn(ctx, arg); err != nil {
		logger.Error("Error en el componente "+customID+": "+err.Error(), "Components")
	}
}

// User returns the user who pressed the component
func (ctx *ComponentContext) User() *discordgo.User {
	if ctx.Interaction.Member != nil {
		return ctx.Interaction.Member.User
	}
	return ctx.Interaction.User
}

// MemberRoles returns the role ids of the member who pressed the component
func (ctx *ComponentContext) MemberRoles() []string {
	if ctx.Interaction.Member == nil {
		return nil
	}
	return ctx.Interaction.Member.Roles
}

// ReplyEphemeral answers with a message only the presser can see
func (ctx *ComponentContext) ReplyEphemeral(content string) error {
	return ctx.Session.InteractionRespond(ctx.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// ReplyEphemeralEmbed answers with an embed only the presser can see
func (ctx *ComponentContext) ReplyEphemeralEmbed(embed *discordgo.MessageEmbed) error {
	return ctx.Session.InteractionRespond(ctx.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

// UpdateMessage replaces the message that holds the component
func (ctx *ComponentContext) UpdateMessage(content string, embeds []*discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	return ctx.Session.InteractionRespond(ctx.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Embeds:     embeds,
			Components: components,
		},
	})
}

// DeferEphemeral acknowledges the component with a pending ephemeral reply
func (ctx *ComponentContext) DeferEphemeral() error {
	return ctx.Session.InteractionRespond(ctx.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
}

// DeferUpdate acknowledges the component; the response edit then targets the component's message
func (ctx *ComponentContext) DeferUpdate() error {
	return ctx.Session.InteractionRespond(ctx.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
}

// EditResponse edits the deferred response
func (ctx *ComponentContext) EditResponse(edit *discordgo.WebhookEdit) error {
	_, err := ctx.Session.InteractionResponseEdit(ctx.Interaction.Interaction, edit)
	return err
}

// EditReply replaces the deferred response with plain text and no components
func (ctx *ComponentContext) EditReply(content string) error {
	return ctx.EditResponse(&discordgo.WebhookEdit{
		Content:    &content,
		Embeds:     &[]*discordgo.MessageEmbed{},
		Components: &[]discordgo.MessageComponent{},
	})
}

// EditReplyEmbed replaces the deferred response with an embed
func (ctx *ComponentContext) EditReplyEmbed(embed *discordgo.MessageEmbed) error {
	return ctx.EditResponse(&discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	})
}
