package giveaway

import (
	"fmt"

	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/errors"
	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

func (c *commands) enterButton(ctx *discord.ComponentContext, _ string) error {
	if ctx.Interaction.Message == nil {
		return nil
	}
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	go func() {
		defer errors.RecoverMiddleware()()

		sctx, cancel := storageContext()
		defer cancel()

		user := ctx.User()
		result, err := c.service.EnterByMessage(sctx, ctx.Interaction.Message.ID, user.ID, ctx.MemberRoles())
		if err != nil {
			logger.Debug(fmt.Sprintf("Entrada de %s rechazada: %v", user.ID, err), "Giveaway")
			ctx.EditReply(userMessage(err))
			return
		}

		msg := "✅ ¡Ya estás participando en el sorteo!"
		if result.Entries > 1 {
			msg = fmt.Sprintf("✅ ¡Ya estás participando en el sorteo con **%d entradas**!", result.Entries)
		}
		ctx.EditReply(msg)

		g := result.Giveaway
		if _, err := ctx.Session.ChannelMessageEditEmbed(g.ChannelID, g.MessageID, activeEmbed(g, result.Participants)); err != nil {
			logger.Debug(fmt.Sprintf("No se pudo actualizar el contador del sorteo #%d: %v", g.ID, err), "Giveaway")
		}
	}()

	return nil
}

func (c *commands) participantsButton(ctx *discord.ComponentContext, _ string) error {
	if ctx.Interaction.Message == nil {
		return nil
	}
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	go func() {
		defer errors.RecoverMiddleware()()

		sctx, cancel := storageContext()
		defer cancel()

		g, err := c.service.GetByMessage(sctx, ctx.Interaction.Message.ID)
		if err != nil {
			ctx.EditReply(userMessage(err))
			return
		}
		entries, err := c.service.Participants(sctx, g.ID)
		if err != nil {
			ctx.EditReply(userMessage(err))
			return
		}

		ctx.EditReplyEmbed(&discordgo.MessageEmbed{
			Title:       fmt.Sprintf("👥 Participantes · %s", g.Prize),
			Description: participantList(entries),
			Color:       g.Color,
			Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Total: %d", len(entries))},
		})
	}()

	return nil
}

func (c *commands) confirmButton(ctx *discord.ComponentContext, token string) error {
	if err := ctx.DeferUpdate(); err != nil {
		return err
	}

	go func() {
		defer errors.RecoverMiddleware()()

		sctx, cancel := storageContext()
		defer cancel()

		preview, err := c.previews.Take(sctx, token, ctx.User().ID)
		if err != nil {
			ctx.EditReply(userMessage(err))
			return
		}

		g := preview.Giveaway
		created, err := c.publish(sctx, ctx.Session, &g, preview.Duration)
		if err != nil {
			logger.Error(fmt.Sprintf("Error publicando sorteo confirmado: %v", err), "CMD-Giveaway")
			ctx.EditReply(userMessage(err))
			return
		}
		ctx.EditReply(fmt.Sprintf("✅ Sorteo **#%d** publicado. Finaliza %s.", created.ID, timestamp(created, "R")))
	}()

	return nil
}

func (c *commands) cancelButton(ctx *discord.ComponentContext, token string) error {
	sctx, cancel := storageContext()
	defer cancel()

	if err := c.previews.Discard(sctx, token, ctx.User().ID); err != nil {
		return ctx.ReplyEphemeral(userMessage(err))
	}
	return ctx.UpdateMessage("❌ Sorteo cancelado.", []*discordgo.MessageEmbed{}, nil)
}
