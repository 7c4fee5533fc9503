package utils

import (
	"fmt"
	"strings"

	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/errors"
)

func (c *commands) statusCommand() *discord.Command {
	return discord.NewCommand(
		"status",
		"Muestra el estado del bot y sus servicios",
		"utils",
		c.statusHandler,
	)
}

func statusIcon(online bool) string {
	if online {
		return "🟢"
	}
	return "🔴"
}

// statusText renders the bot line followed by one line per component
func statusText(guilds int, components []Component) string {
	var b strings.Builder
	b.WriteString("📊 **Estado del Bot**\n")
	b.WriteString("• Bot: 🟢 Online\n")
	for _, comp := range components {
		status, online := comp.Check()
		fmt.Fprintf(&b, "• %s: %s %s\n", comp.Name, statusIcon(online), status)
	}
	fmt.Fprintf(&b, "• Servidores: %d", guilds)
	return b.String()
}

func (c *commands) statusHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()
		ctx.Reply(statusText(ctx.Client.GuildCount(), c.components))
	}()
	return nil
}
