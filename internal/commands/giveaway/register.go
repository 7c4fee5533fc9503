// Package giveaway provides the /giveaway command group and the giveaway buttons.
package giveaway

import (
	"context"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/giveaway"
)

const storageTimeout = 10 * time.Second

type commands struct {
	service   *giveaway.Service
	previews  giveaway.PreviewStore
	announcer *Announcer
	now       func() time.Time
}

// RegisterGiveawayCommands registers /giveaway and its buttons. The returned
// Announcer is shared with the expiry worker.
func RegisterGiveawayCommands(client *discord.ExtendedClient, service *giveaway.Service, previews giveaway.PreviewStore) *Announcer {
	c := &commands{
		service:   service,
		previews:  previews,
		announcer: NewAnnouncer(client.Session),
		now:       time.Now,
	}

	client.CommandHandler.AddGroup("giveaway", "Gestión de sorteos", 0,
		c.createCommand(),
		c.listCommand(),
		c.endCommand(),
		c.rerollCommand(),
	)

	client.Components.Register(enterPrefix, c.enterButton)
	client.Components.Register(participantsPrefix, c.participantsButton)
	client.Components.Register(confirmPrefix, c.confirmButton)
	client.Components.Register(cancelPrefix, c.cancelButton)

	return c.announcer
}

func storageContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storageTimeout)
}
