// Package main provides an operator CLI for the PancyCommunityBot slash commands.
// It compares the locally defined commands with the ones Discord knows about and
// reconciles them.
//
// Usage:
//
//	go run ./cmd/sync-commands [options]
//
// Options:
//
//	-list           List the commands registered in Discord
//	-diff           Show missing, stale and changed commands without touching Discord
//	-clean          Remove all commands without registering new ones
//	-guild <id>     Target a specific guild instead of global commands
//	-sync           Overwrite the remote commands with the local definitions (default)
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/PancyStudios/PancyCommunityBot/internal/commands"
	"github.com/PancyStudios/PancyCommunityBot/pkg/config"
	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
	"github.com/goccy/go-json"
)

const prefix = "SyncCommands"

func main() {
	listCmd := flag.Bool("list", false, "List all registered commands")
	diffCmd := flag.Bool("diff", false, "Show the differences between local and remote commands")
	cleanCmd := flag.Bool("clean", false, "Remove all commands without registering new ones")
	guildID := flag.String("guild", "", "Target a specific guild (leave empty for global)")
	flag.Bool("sync", true, "Sync commands (remove stale, register current)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	logger.System("Iniciando utilidad de sincronización de comandos...", prefix)

	client, err := discord.NewClient(cfg.BotToken)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), prefix)
		os.Exit(1)
	}

	if err := client.Session.Open(); err != nil {
		logger.Critical(fmt.Sprintf("Error connecting to Discord: %v", err), prefix)
		os.Exit(1)
	}
	defer client.Session.Close()

	logger.Success("Conectado a Discord", prefix)

	// Command definitions only; handlers are never invoked here
	commands.RegisterAll(client, nil)

	switch {
	case *listCmd:
		listCommands(client, *guildID)
	case *diffCmd:
		showDiff(client, *guildID)
	case *cleanCmd:
		cleanCommands(client, *guildID)
	default:
		syncCommands(client, *guildID)
	}

	logger.Success("Operación completada exitosamente", prefix)
}

func remoteCommands(client *discord.ExtendedClient, guildID string) ([]*discordgo.ApplicationCommand, error) {
	if guildID != "" {
		logger.Info(fmt.Sprintf("Obteniendo comandos del servidor: %s", guildID), prefix)
		return client.CommandHandler.ListGuildCommands(guildID)
	}
	logger.Info("Obteniendo comandos globales", prefix)
	return client.CommandHandler.ListGlobalCommands()
}

func listCommands(client *discord.ExtendedClient, guildID string) {
	logger.Info("📋 Listando comandos registrados...", prefix)

	cmds, err := remoteCommands(client, guildID)
	if err != nil {
		logger.Error(fmt.Sprintf("Error obteniendo comandos: %v", err), prefix)
		return
	}
	if len(cmds) == 0 {
		logger.Info("No hay comandos registrados", prefix)
		return
	}

	logger.Info(fmt.Sprintf("Comandos encontrados: %d", len(cmds)), prefix)
	for i, cmd := range cmds {
		logger.Info(fmt.Sprintf("  %d. /%s - %s (ID: %s)", i+1, cmd.Name, cmd.Description, cmd.ID), prefix)
	}
}

// commandDiff lists the command names that a sync would add, remove or update
type commandDiff struct {
	Missing []string
	Stale   []string
	Changed []string
}

func (d commandDiff) empty() bool {
	return len(d.Missing) == 0 && len(d.Stale) == 0 && len(d.Changed) == 0
}

// signature is the part of a command definition Discord stores
func signature(cmd *discordgo.ApplicationCommand) string {
	b, _ := json.Marshal(struct {
		Description string                                `json:"description"`
		Options     []*discordgo.ApplicationCommandOption `json:"options"`
		Permissions *int64                                `json:"permissions"`
	}{cmd.Description, cmd.Options, cmd.DefaultMemberPermissions})
	return string(b)
}

func diffCommands(local, remote []*discordgo.ApplicationCommand) commandDiff {
	remoteByName := make(map[string]*discordgo.ApplicationCommand, len(remote))
	for _, cmd := range remote {
		remoteByName[cmd.Name] = cmd
	}

	var d commandDiff
	seen := make(map[string]bool, len(local))
	for _, cmd := range local {
		seen[cmd.Name] = true
		existing, ok := remoteByName[cmd.Name]
		switch {
		case !ok:
			d.Missing = append(d.Missing, cmd.Name)
		case signature(existing) != signature(cmd):
			d.Changed = append(d.Changed, cmd.Name)
		}
	}
	for name := range remoteByName {
		if !seen[name] {
			d.Stale = append(d.Stale, name)
		}
	}

	sort.Strings(d.Missing)
	sort.Strings(d.Stale)
	sort.Strings(d.Changed)
	return d
}

func showDiff(client *discord.ExtendedClient, guildID string) {
	remote, err := remoteCommands(client, guildID)
	if err != nil {
		logger.Error(fmt.Sprintf("Error obteniendo comandos: %v", err), prefix)
		return
	}

	d := diffCommands(client.CommandHandler.GlobalCommands(), remote)
	if d.empty() {
		logger.Success("✅ Los comandos remotos están al día", prefix)
		return
	}
	for _, name := range d.Missing {
		logger.Info("  + /"+name, prefix)
	}
	for _, name := range d.Changed {
		logger.Info("  ~ /"+name, prefix)
	}
	for _, name := range d.Stale {
		logger.Info("  - /"+name, prefix)
	}
}

func cleanCommands(client *discord.ExtendedClient, guildID string) {
	logger.Info("🧹 Eliminando todos los comandos...", prefix)

	var err error
	if guildID != "" {
		logger.Info(fmt.Sprintf("Eliminando comandos del servidor: %s", guildID), prefix)
		err = client.CommandHandler.UnregisterGuildCommands(guildID)
	} else {
		logger.Info("Eliminando comandos globales", prefix)
		err = client.CommandHandler.UnregisterCommands()
	}

	if err != nil {
		logger.Error(fmt.Sprintf("Error eliminando comandos: %v", err), prefix)
		return
	}

	logger.Success("✅ Todos los comandos han sido eliminados", prefix)
}

func syncCommands(client *discord.ExtendedClient, guildID string) {
	logger.Info("🔄 Sincronizando comandos...", prefix)

	if remote, err := remoteCommands(client, guildID); err == nil {
		d := diffCommands(client.CommandHandler.GlobalCommands(), remote)
		logger.Info(fmt.Sprintf("Nuevos: %d, modificados: %d, obsoletos: %d", len(d.Missing), len(d.Changed), len(d.Stale)), prefix)
	}

	var err error
	if guildID != "" {
		err = client.CommandHandler.SyncGuildCommands(guildID)
	} else {
		err = client.CommandHandler.SyncCommands()
	}
	if err != nil {
		logger.Error(fmt.Sprintf("Error sincronizando comandos: %v", err), prefix)
		return
	}
	logger.Success("✅ Comandos sincronizados correctamente", prefix)
}
