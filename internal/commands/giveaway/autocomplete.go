package giveaway

import (
	"fmt"
	"strconv"

	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"github.com/bwmarrin/discordgo"
	"github.com/sahilm/fuzzy"
)

const (
	maxChoices         = 25
	autocompletePool   = 100
	maxChoiceNameRunes = 100
)

// giveawaySource implements fuzzy.Source over "<id> <prize>"
type giveawaySource []models.Giveaway

func (s giveawaySource) Len() int { return len(s) }

func (s giveawaySource) String(i int) string {
	return strconv.FormatInt(s[i].ID, 10) + " " + s[i].Prize
}

func choiceName(g models.Giveaway) string {
	state := "finalizado"
	if g.IsActive {
		state = "activo"
	}
	name := []rune(fmt.Sprintf("#%d · %s (%s)", g.ID, g.Prize, state))
	if len(name) > maxChoiceNameRunes {
		name = append(name[:maxChoiceNameRunes-3], []rune("...")...)
	}
	return string(name)
}

// giveawayChoices ranks list against query. An empty query keeps the list order.
func giveawayChoices(list []models.Giveaway, query string) []*discordgo.ApplicationCommandOptionChoice {
	picked := list
	if query != "" {
		matches := fuzzy.FindFrom(query, giveawaySource(list))
		picked = make([]models.Giveaway, len(matches))
		for i, m := range matches {
			picked[i] = list[m.Index]
		}
	}
	if len(picked) > maxChoices {
		picked = picked[:maxChoices]
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, len(picked))
	for i, g := range picked {
		choices[i] = &discordgo.ApplicationCommandOptionChoice{Name: choiceName(g), Value: g.ID}
	}
	return choices
}

// autocompleteID suggests giveaways of the guild; activeOnly restricts to running ones
func (c *commands) autocompleteID(activeOnly bool) func(ctx *discord.CommandContext) {
	return func(ctx *discord.CommandContext) {
		query := ""
		if focused := ctx.FocusedOption(); focused != nil {
			query = fmt.Sprint(focused.Value)
		}

		sctx, cancel := storageContext()
		defer cancel()
		list, err := c.service.List(sctx, ctx.Interaction.GuildID, activeOnly, autocompletePool)
		if err != nil {
			logger.Debug(fmt.Sprintf("Autocompletado de sorteos sin datos: %v", err), "CMD-Giveaway")
			list = nil
		}
		ctx.RespondChoices(giveawayChoices(list, query))
	}
}

func idOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionInteger,
		Name:         "id",
		Description:  description,
		Required:     true,
		Autocomplete: true,
		MinValue:     floatPtr(1),
	}
}
