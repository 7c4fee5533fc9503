// Package discord provides the command handler for building and registering commands.
package discord

import (
	"github.com/PancyStudios/PancyCommunityBot/pkg/config"
	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// CommandHandler manages command registration
type CommandHandler struct {
	client           *ExtendedClient
	slashCommands    []*discordgo.ApplicationCommand
	slashCommandsDev []*discordgo.ApplicationCommand
}

// NewCommandHandler creates a new CommandHandler
func NewCommandHandler(client *ExtendedClient) *CommandHandler {
	return &CommandHandler{
		client:           client,
		slashCommands:    make([]*discordgo.ApplicationCommand, 0),
		slashCommandsDev: make([]*discordgo.ApplicationCommand, 0),
	}
}

// track stores cmd under its dotted name and installs its rate limit
func (ch *CommandHandler) track(fullName string, cmd *Command) {
	ch.client.Commands.Set(fullName, cmd)
	if cmd.RateLimit != nil && ch.client.RateLimits != nil {
		ch.client.RateLimits.Set(fullName, *cmd.RateLimit)
	}
}

// RegisterCommand adds a top level command to the handler
func (ch *CommandHandler) RegisterCommand(cmd *Command) {
	ch.track(cmd.Name, cmd)

	appCmd := cmd.ToApplicationCommand()
	if cmd.IsDev {
		ch.slashCommandsDev = append(ch.slashCommandsDev, appCmd)
	} else {
		ch.slashCommands = append(ch.slashCommands, appCmd)
	}

	logger.Debug("Comando registrado: "+cmd.Name, "CommandHandler")
}

// BuildCommandGroup creates a command group with subcommands, tracked as "group.sub"
func (ch *CommandHandler) BuildCommandGroup(name, description string, subcommands ...*Command) *discordgo.ApplicationCommand {
	options := make([]*discordgo.ApplicationCommandOption, 0, len(subcommands))

	for _, cmd := range subcommands {
		ch.track(name+"."+cmd.Name, cmd)
		options = append(options, cmd.toSubcommandOption())
	}

	return &discordgo.ApplicationCommand{
		Name:        name,
		Description: description,
		Options:     options,
	}
}

// BuildSubcommandGroup creates a subcommand group, tracked as "group.sub.cmd"
func (ch *CommandHandler) BuildSubcommandGroup(groupName, name, description string, subcommands ...*Command) *discordgo.ApplicationCommandOption {
	options := make([]*discordgo.ApplicationCommandOption, 0, len(subcommands))

	for _, cmd := range subcommands {
		ch.track(groupName+"."+name+"."+cmd.Name, cmd)
		options = append(options, cmd.toSubcommandOption())
	}

	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
		Name:        name,
		Description: description,
		Options:     options,
	}
}

// AddGroup builds a command group and adds it to the global command list.
// perms, when non-zero, is the default member permission of the whole group.
func (ch *CommandHandler) AddGroup(name, description string, perms int64, subcommands ...*Command) *discordgo.ApplicationCommand {
	group := ch.BuildCommandGroup(name, description, subcommands...)
	if perms != 0 {
		group.DefaultMemberPermissions = &perms
	}
	group.DMPermission = new(bool)
	ch.AddGlobalCommand(group)
	logger.Debug("Grupo registrado: /"+name, "CommandHandler")
	return group
}

// GlobalCommands returns the application commands to publish globally
func (ch *CommandHandler) GlobalCommands() []*discordgo.ApplicationCommand {
	return ch.slashCommands
}

// RegisterCommands publishes all slash commands with Discord
func (ch *CommandHandler) RegisterCommands() {
	cfg := config.Get()

	logger.Info("🔄 Registrando comandos globales...", "CommandHandler")
	if err := ch.SyncCommands(); err != nil {
		logger.Error("Error registrando comandos globales: "+err.Error(), "CommandHandler")
	} else {
		logger.Success("✅ Comandos globales registrados.", "CommandHandler")
	}

	if cfg != nil && cfg.DevGuildID != "" && len(ch.slashCommandsDev) > 0 {
		logger.Info("🔄 Registrando comandos de desarrollo en el servidor "+cfg.DevGuildID+"...", "CommandHandler")
		_, err := ch.client.Session.ApplicationCommandBulkOverwrite(ch.appID(), cfg.DevGuildID, ch.slashCommandsDev)
		if err != nil {
			logger.Error("Error registrando comandos de desarrollo: "+err.Error(), "CommandHandler")
			return
		}
		logger.Success("✅ Comandos de desarrollo registrados.", "CommandHandler")
	}
}

func (ch *CommandHandler) appID() string {
	return ch.client.Session.State.User.ID
}

// SyncCommands overwrites the global commands, removing stale ones
func (ch *CommandHandler) SyncCommands() error {
	_, err := ch.client.Session.ApplicationCommandBulkOverwrite(ch.appID(), "", ch.slashCommands)
	return err
}

// SyncGuildCommands overwrites the commands of guildID with the global set
func (ch *CommandHandler) SyncGuildCommands(guildID string) error {
	_, err := ch.client.Session.ApplicationCommandBulkOverwrite(ch.appID(), guildID, ch.slashCommands)
	return err
}

// ListGlobalCommands returns the global commands currently known to Discord
func (ch *CommandHandler) ListGlobalCommands() ([]*discordgo.ApplicationCommand, error) {
	return ch.client.Session.ApplicationCommands(ch.appID(), "")
}

// ListGuildCommands returns the commands registered in guildID
func (ch *CommandHandler) ListGuildCommands(guildID string) ([]*discordgo.ApplicationCommand, error) {
	return ch.client.Session.ApplicationCommands(ch.appID(), guildID)
}

// UnregisterCommands removes all global commands from Discord
func (ch *CommandHandler) UnregisterCommands() error {
	return ch.UnregisterGuildCommands("")
}

// UnregisterGuildCommands removes all commands of guildID ("" for global)
func (ch *CommandHandler) UnregisterGuildCommands(guildID string) error {
	commands, err := ch.client.Session.ApplicationCommands(ch.appID(), guildID)
	if err != nil {
		return err
	}

	for _, cmd := range commands {
		if err := ch.client.Session.ApplicationCommandDelete(ch.appID(), guildID, cmd.ID); err != nil {
			logger.Error("Error eliminando comando "+cmd.Name+": "+err.Error(), "CommandHandler")
		}
	}
	return nil
}

// AddGlobalCommand adds a command to the global command list
func (ch *CommandHandler) AddGlobalCommand(cmd *discordgo.ApplicationCommand) {
	ch.slashCommands = append(ch.slashCommands, cmd)
}

// AddDevCommand adds a command to the dev command list
func (ch *CommandHandler) AddDevCommand(cmd *discordgo.ApplicationCommand) {
	ch.slashCommandsDev = append(ch.slashCommandsDev, cmd)
}
