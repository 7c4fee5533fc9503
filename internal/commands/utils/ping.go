package utils

import (
	"fmt"

	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/errors"
)

func (c *commands) pingCommand() *discord.Command {
	return discord.NewCommand(
		"ping",
		"Comprueba la latencia del bot",
		"utils",
		c.pingHandler,
	)
}

func (c *commands) pingHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()
		ctx.Reply(fmt.Sprintf("🏓 Pong! Latencia: %dms", ctx.Client.Latency().Milliseconds()))
	}()
	return nil
}
