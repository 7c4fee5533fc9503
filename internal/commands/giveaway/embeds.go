package giveaway

import (
	"fmt"
	"strings"

	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"github.com/bwmarrin/discordgo"
)

const (
	enterPrefix        = "giveaway_enter"
	participantsPrefix = "giveaway_participants"
	confirmPrefix      = "giveaway_confirm"
	cancelPrefix       = "giveaway_cancel"

	defaultEmoji      = "🎉"
	defaultButtonText = "Participar"
	defaultColor      = 0xFF73FA
	endedColor        = 0x2F3136

	maxListedParticipants = 20
)

func timestamp(g *models.Giveaway, style string) string {
	return fmt.Sprintf("<t:%d:%s>", g.EndTime.Unix(), style)
}

func roleMentions(ids []string) string {
	mentions := make([]string, len(ids))
	for i, id := range ids {
		mentions[i] = "<@&" + id + ">"
	}
	return strings.Join(mentions, ", ")
}

func requirementsText(g *models.Giveaway) string {
	var lines []string
	if len(g.RequiredRoles) > 0 {
		lines = append(lines, "**Roles requeridos:** "+roleMentions(g.RequiredRoles))
	}
	if len(g.BonusRoles) > 0 {
		lines = append(lines, fmt.Sprintf("**Roles bonus (+%d entradas):** %s", g.BonusEntries, roleMentions(g.BonusRoles)))
	}
	return strings.Join(lines, "\n")
}

// activeEmbed renders a running giveaway
func activeEmbed(g *models.Giveaway, participants int64) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       g.Title,
		Description: g.Description,
		Color:       g.Color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🎁 Premio", Value: g.Prize, Inline: true},
			{Name: "🏆 Ganadores", Value: fmt.Sprintf("%d", g.WinnerCount), Inline: true},
			{Name: "⏰ Finaliza", Value: timestamp(g, "R"), Inline: true},
			{Name: "👤 Organizado por", Value: "<@" + g.HostID + ">", Inline: true},
			{Name: "👥 Participantes", Value: fmt.Sprintf("%d", participants), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("ID del sorteo: %d", g.ID)},
	}
	if req := requirementsText(g); req != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "📋 Requisitos", Value: req})
	}
	return embed
}

// endedEmbed renders a finished giveaway in place of its announcement
func endedEmbed(g *models.Giveaway, winners []models.GiveawayWinner, entrants int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       g.Title + " (FINALIZADO)",
		Description: g.Description,
		Color:       endedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🎁 Premio", Value: g.Prize, Inline: true},
			{Name: "🏆 Ganadores", Value: winnerMentions(winners), Inline: true},
			{Name: "👥 Participantes", Value: fmt.Sprintf("%d", entrants), Inline: true},
			{Name: "⏰ Finalizó", Value: timestamp(g, "f"), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("ID del sorteo: %d", g.ID)},
	}
}

func winnerMentions(winners []models.GiveawayWinner) string {
	if len(winners) == 0 {
		return "Nadie"
	}
	mentions := make([]string, len(winners))
	for i, w := range winners {
		mentions[i] = "<@" + w.UserID + ">"
	}
	return strings.Join(mentions, ", ")
}

func winnerUserIDs(winners []models.GiveawayWinner) []string {
	ids := make([]string, len(winners))
	for i, w := range winners {
		ids[i] = w.UserID
	}
	return ids
}

// componentEmoji accepts a unicode emoji or a custom one written as <:name:id> or <a:name:id>
func componentEmoji(raw string) *discordgo.ComponentEmoji {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = defaultEmoji
	}
	if strings.HasPrefix(raw, "<") && strings.HasSuffix(raw, ">") {
		parts := strings.Split(strings.Trim(raw, "<>"), ":")
		if len(parts) == 3 {
			return &discordgo.ComponentEmoji{Name: parts[1], ID: parts[2], Animated: parts[0] == "a"}
		}
	}
	return &discordgo.ComponentEmoji{Name: raw}
}

// entryButtons returns the enter and participants buttons; enter is disabled once the giveaway ends
func entryButtons(g *models.Giveaway, open bool) []discordgo.MessageComponent {
	label := g.ButtonText
	if label == "" {
		label = defaultButtonText
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    label,
				Style:    discordgo.PrimaryButton,
				CustomID: enterPrefix,
				Emoji:    componentEmoji(g.Emoji),
				Disabled: !open,
			},
			discordgo.Button{
				Label:    "Ver participantes",
				Style:    discordgo.SecondaryButton,
				CustomID: participantsPrefix,
				Emoji:    &discordgo.ComponentEmoji{Name: "👥"},
			},
		}},
	}
}

func previewButtons(token string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Publicar sorteo",
				Style:    discordgo.SuccessButton,
				CustomID: confirmPrefix + ":" + token,
				Emoji:    &discordgo.ComponentEmoji{Name: "✅"},
			},
			discordgo.Button{
				Label:    "Cancelar",
				Style:    discordgo.DangerButton,
				CustomID: cancelPrefix + ":" + token,
				Emoji:    &discordgo.ComponentEmoji{Name: "❌"},
			},
		}},
	}
}

// participantList lists the first entrants with their entry weight
func participantList(entries []models.GiveawayEntry) string {
	if len(entries) == 0 {
		return "Todavía no hay participantes."
	}
	var b strings.Builder
	for i, e := range entries {
		if i == maxListedParticipants {
			fmt.Fprintf(&b, "... y %d más", len(entries)-maxListedParticipants)
			break
		}
		fmt.Fprintf(&b, "%d. <@%s>", i+1, e.UserID)
		if e.Entries > 1 {
			fmt.Fprintf(&b, " (%d entradas)", e.Entries)
		}
		b.WriteString("\n")
	}
	return b.String()
}
