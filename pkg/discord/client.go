// Package discord provides the Discord bot client and related structures.
// It wraps discordgo with command routing, component routing, rate limits and usage stats.
package discord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/config"
	apperrors "github.com/PancyStudios/PancyCommunityBot/pkg/errors"
	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/PancyStudios/PancyCommunityBot/pkg/ratelimit"
	"github.com/bwmarrin/discordgo"
)

func init() {
	discordgo.Logger = func(msgL int, caller int, format string, a ...interface{}) {
		logger.Info(fmt.Sprintf(format, a...), "DiscordGo")
	}
}

// UsageRecorder persists one slash command invocation
type UsageRecorder interface {
	RecordCommand(ctx context.Context, guildID, userID, command string) error
}

// ExtendedClient wraps discordgo.Session with additional functionality
type ExtendedClient struct {
	Session        *discordgo.Session
	Commands       *CommandCollection
	Components     *ComponentRouter
	CommandHandler *CommandHandler
	EventHandler   *EventHandler
	RateLimits     *ratelimit.Registry
	Usage          UsageRecorder
	StartTime      time.Time
	mu             sync.RWMutex
	isReady        bool
	onReady        []func(s *discordgo.Session)
}

// CommandCollection holds registered commands keyed by their dotted name
type CommandCollection struct {
	commands map[string]*Command
	mu       sync.RWMutex
}

// NewCommandCollection creates a new CommandCollection
func NewCommandCollection() *CommandCollection {
	return &CommandCollection{
		commands: make(map[string]*Command),
	}
}

// Set adds or updates a command
func (cc *CommandCollection) Set(name string, cmd *Command) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.commands[name] = cmd
}

// Get retrieves a command by name
func (cc *CommandCollection) Get(name string) (*Command, bool) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	cmd, ok := cc.commands[name]
	return cmd, ok
}

// Size returns the number of commands
func (cc *CommandCollection) Size() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.commands)
}

// All returns a copy of all commands
func (cc *CommandCollection) All() map[string]*Command {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	result := make(map[string]*Command, len(cc.commands))
	for k, v := range cc.commands {
		result[k] = v
	}
	return result
}

var (
	client *ExtendedClient
	once   sync.Once
)

// Init initializes the global Discord client
func Init(token string) (*ExtendedClient, error) {
	var err error
	once.Do(func() {
		client, err = NewClient(token)
	})
	return client, err
}

// Get returns the global Discord client
func Get() *ExtendedClient {
	return client
}

// NewClient creates a new ExtendedClient
func NewClient(token string) (*ExtendedClient, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}

	// Member updates carry premiumSince for boosts; message content is not needed for XP.
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers

	session.ShardCount = 1
	session.SyncEvents = false
	session.StateEnabled = true
	session.LogLevel = discordgo.LogWarning

	c := &ExtendedClient{
		Session:    session,
		Commands:   NewCommandCollection(),
		Components: NewComponentRouter(),
		RateLimits: ratelimit.NewRegistry(),
	}

	c.CommandHandler = NewCommandHandler(c)
	c.EventHandler = NewEventHandler(c)

	return c, nil
}

// OnReady queues fn to run after the gateway ready event and command registration
func (c *ExtendedClient) OnReady(fn func(s *discordgo.Session)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReady = append(c.onReady, fn)
}

// Start opens the gateway connection
func (c *ExtendedClient) Start() error {
	c.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		c.mu.Lock()
		c.isReady = true
		hooks := append([]func(*discordgo.Session){}, c.onReady...)
		c.mu.Unlock()

		logger.Success("Bot conectado como: "+r.User.Username, "Client")
		c.CommandHandler.RegisterCommands()

		for _, fn := range hooks {
			fn(s)
		}
	})

	c.Session.AddHandler(c.handleInteraction)

	c.StartTime = time.Now()
	return c.Session.Open()
}

// commandName builds the dotted name of the invoked (sub)command
func commandName(data discordgo.ApplicationCommandInteractionData) string {
	name := data.Name
	if len(data.Options) == 0 {
		return name
	}
	opt := data.Options[0]
	switch opt.Type {
	case discordgo.ApplicationCommandOptionSubCommandGroup:
		if len(opt.Options) > 0 {
			return name + "." + opt.Name + "." + opt.Options[0].Name
		}
	case discordgo.ApplicationCommandOptionSubCommand:
		return name + "." + opt.Name
	}
	return name
}

// handleInteraction routes incoming interactions to commands, autocomplete and components
func (c *ExtendedClient) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	defer apperrors.RecoverMiddleware()()

	switch i.Type {
	case discordgo.InteractionApplicationCommandAutocomplete:
		cmd, ok := c.Commands.Get(commandName(i.ApplicationCommandData()))
		if ok && cmd.AutoComplete != nil {
			cmd.AutoComplete(&CommandContext{Session: s, Interaction: i, Client: c})
		}
	case discordgo.InteractionMessageComponent:
		c.Components.Dispatch(&ComponentContext{Session: s, Interaction: i, Client: c})
	case discordgo.InteractionApplicationCommand:
		c.runCommand(s, i)
	}
}

func (c *ExtendedClient) runCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	name := commandName(i.ApplicationCommandData())
	cmd, ok := c.Commands.Get(name)
	if !ok {
		logger.Warn("Comando no encontrado: "+name, "Client")
		return
	}

	ctx := &CommandContext{Session: s, Interaction: i, Client: c}
	userID := ctx.User().ID

	if cmd.UserPermissions != 0 && !ctx.HasPermission(cmd.UserPermissions) {
		ctx.ReplyEphemeral("❌ No tienes permisos para usar este comando.")
		return
	}

	if ok, wait := c.RateLimits.Check(name, userID); !ok {
		ctx.ReplyEphemeral(RateLimitMessage(wait))
		return
	}

	if c.Usage != nil {
		go func() {
			defer apperrors.RecoverMiddleware()()
			rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := c.Usage.RecordCommand(rctx, i.GuildID, userID, name); err != nil {
				logger.Debug("No se pudo registrar el uso de "+name+": "+err.Error(), "Client")
			}
		}()
	}

	if err := cmd.Run(ctx); err != nil {
		logger.Error("Error ejecutando el comando "+name+": "+err.Error(), "Client")
	}
}

// RateLimitMessage is the reply sent when a user is over a command limit
func RateLimitMessage(wait time.Duration) string {
	secs := int(wait.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return fmt.Sprintf("⏳ Estás usando este comando demasiado rápido. Inténtalo de nuevo en %d segundos.", secs)
}

// Stop stops the bot and closes the session
func (c *ExtendedClient) Stop() error {
	c.mu.Lock()
	c.isReady = false
	c.mu.Unlock()

	if c.Session != nil {
		return c.Session.Close()
	}
	return nil
}

// IsReady returns true if the bot is ready
func (c *ExtendedClient) IsReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isReady
}

// GuildCount returns the number of guilds the bot is in
func (c *ExtendedClient) GuildCount() int {
	if c.Session == nil || c.Session.State == nil {
		return 0
	}
	c.Session.State.RLock()
	defer c.Session.State.RUnlock()
	return len(c.Session.State.Guilds)
}

// Latency returns the last measured gateway heartbeat latency
func (c *ExtendedClient) Latency() time.Duration {
	if c.Session == nil {
		return 0
	}
	return c.Session.HeartbeatLatency()
}

// BotUser returns the bot account once the session is ready
func (c *ExtendedClient) BotUser() *discordgo.User {
	if c.Session == nil || c.Session.State == nil {
		return nil
	}
	return c.Session.State.User
}

// GetConfig returns the bot configuration
func (c *ExtendedClient) GetConfig() *config.Config {
	return config.Get()
}
