package giveaway

import (
	"context"
	"fmt"

	"github.com/PancyStudios/PancyCommunityBot/pkg/giveaway"
	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// Announcer posts giveaway results in the giveaway channel
type Announcer struct {
	session *discordgo.Session
}

// NewAnnouncer creates an Announcer over s
func NewAnnouncer(s *discordgo.Session) *Announcer {
	return &Announcer{session: s}
}

func replyTo(g *models.Giveaway) *discordgo.MessageReference {
	if g.MessageID == "" {
		return nil
	}
	return &discordgo.MessageReference{MessageID: g.MessageID, ChannelID: g.ChannelID, GuildID: g.GuildID}
}

// AnnounceEnd announces the winners and turns the original message into its ended state
func (a *Announcer) AnnounceEnd(ctx context.Context, result *giveaway.EndResult) error {
	g := result.Giveaway

	msg := &discordgo.MessageSend{Reference: replyTo(g)}
	if len(result.Winners) == 0 {
		msg.Content = fmt.Sprintf("❌ Nadie participó en el sorteo de **%s**.", g.Prize)
	} else {
		msg.Content = giveaway.FormatWinnerMessage(g.WinnerMessage, winnerMentions(result.Winners), g.Prize)
		msg.Embeds = []*discordgo.MessageEmbed{{
			Title: "🎉 ¡Sorteo finalizado!",
			Color: g.Color,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "🎁 Premio", Value: g.Prize, Inline: true},
				{Name: "🏆 Ganadores", Value: winnerMentions(result.Winners), Inline: true},
				{Name: "👥 Participantes", Value: fmt.Sprintf("%d", result.Entrants), Inline: true},
			},
		}}
		msg.AllowedMentions = &discordgo.MessageAllowedMentions{Users: winnerUserIDs(result.Winners)}
	}

	if _, err := a.session.ChannelMessageSendComplex(g.ChannelID, msg, discordgo.WithContext(ctx)); err != nil {
		return err
	}

	if g.MessageID == "" {
		return nil
	}
	embeds := []*discordgo.MessageEmbed{endedEmbed(g, result.Winners, result.Entrants)}
	components := entryButtons(g, false)
	_, err := a.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         g.MessageID,
		Channel:    g.ChannelID,
		Embeds:     &embeds,
		Components: &components,
	}, discordgo.WithContext(ctx))
	if err != nil {
		// the announcement went out; a deleted original message is not fatal
		logger.Warn(fmt.Sprintf("No se pudo editar el anuncio del sorteo #%d: %v", g.ID, err), "Giveaway")
	}
	return nil
}

// AnnounceReroll announces the newly drawn winners
func (a *Announcer) AnnounceReroll(ctx context.Context, g *models.Giveaway, winners []models.GiveawayWinner) error {
	fields := make([]*discordgo.MessageEmbedField, 0, len(winners))
	for _, w := range winners {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("Posición %d", w.Position),
			Value:  "<@" + w.UserID + ">",
			Inline: true,
		})
	}

	_, err := a.session.ChannelMessageSendComplex(g.ChannelID, &discordgo.MessageSend{
		Content: "🔄 " + giveaway.FormatWinnerMessage(g.WinnerMessage, winnerMentions(winners), g.Prize),
		Embeds: []*discordgo.MessageEmbed{{
			Title:  "🔄 ¡Reroll del sorteo!",
			Color:  g.Color,
			Fields: fields,
			Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("ID del sorteo: %d", g.ID)},
		}},
		AllowedMentions: &discordgo.MessageAllowedMentions{Users: winnerUserIDs(winners)},
		Reference:       replyTo(g),
	}, discordgo.WithContext(ctx))
	return err
}
