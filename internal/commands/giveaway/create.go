package giveaway

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/errors"
	"github.com/PancyStudios/PancyCommunityBot/pkg/giveaway"
	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"github.com/bwmarrin/discordgo"
)

func floatPtr(v float64) *float64 { return &v }

func (c *commands) createCommand() *discord.Command {
	return discord.NewCommand(
		"create",
		"Crea un sorteo en este canal",
		"giveaway",
		c.createHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "premio",
			Description: "Premio del sorteo",
			Required:    true,
			MaxLength:   256,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "duracion",
			Description: "Duración (ej: 30m, 2h, 7d o \"en 3 días\")",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "ganadores",
			Description: "Número de ganadores",
			Required:    true,
			MinValue:    floatPtr(giveaway.MinWinners),
			MaxValue:    giveaway.MaxWinners,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "titulo",
			Description: "Título del sorteo",
			MaxLength:   256,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "descripcion",
			Description: "Descripción del sorteo",
			MaxLength:   2000,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "color",
			Description: "Color del embed en hexadecimal (#RRGGBB)",
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "emoji",
			Description: "Emoji del botón (por defecto 🎉)",
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "texto_boton",
			Description: "Texto del botón (por defecto Participar)",
			MaxLength:   80,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "roles_requeridos",
			Description: "Roles requeridos (menciones o IDs separados por comas)",
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "roles_bonus",
			Description: "Roles con entradas extra (menciones o IDs separados por comas)",
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "entradas_bonus",
			Description: "Entradas extra para los roles bonus",
			MinValue:    floatPtr(giveaway.MinBonusEntries),
			MaxValue:    giveaway.MaxBonusEntries,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "mensaje_ganador",
			Description: "Anuncio del ganador (usa {winner} y {prize})",
			MaxLength:   1000,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "vista_previa",
			Description: "Muestra una vista previa antes de publicar",
		},
	).WithUserPermissions(discordgo.PermissionManageEvents).
		WithBotPermissions(discordgo.PermissionSendMessages | discordgo.PermissionEmbedLinks).
		RequiresDatabase()
}

// createOptions are the raw /giveaway create inputs
type createOptions struct {
	Prize         string
	Duration      string
	Winners       int
	Title         string
	Description   string
	Color         string
	Emoji         string
	ButtonText    string
	RequiredRoles string
	BonusRoles    string
	BonusEntries  int
	WinnerMessage string
}

// buildGiveaway validates the inputs and returns the giveaway to announce with its duration
func buildGiveaway(opts createOptions, hostID, guildID, channelID string, now time.Time) (*models.Giveaway, time.Duration, error) {
	prize := strings.TrimSpace(opts.Prize)
	if prize == "" {
		return nil, 0, inputError("❌ El premio no puede estar vacío.")
	}

	d, err := giveaway.ParseDuration(opts.Duration, now)
	if err != nil {
		return nil, 0, err
	}

	if opts.Winners < giveaway.MinWinners || opts.Winners > giveaway.MaxWinners {
		return nil, 0, inputError(fmt.Sprintf("❌ El número de ganadores debe estar entre %d y %d.", giveaway.MinWinners, giveaway.MaxWinners))
	}

	color := defaultColor
	if opts.Color != "" {
		if color, err = giveaway.ParseColor(opts.Color); err != nil {
			return nil, 0, inputError("❌ Color inválido. Usa el formato #RRGGBB.")
		}
	}

	bonus := opts.BonusEntries
	if bonus == 0 {
		bonus = giveaway.MinBonusEntries
	}
	if bonus < giveaway.MinBonusEntries || bonus > giveaway.MaxBonusEntries {
		return nil, 0, inputError(fmt.Sprintf("❌ Las entradas bonus deben estar entre %d y %d.", giveaway.MinBonusEntries, giveaway.MaxBonusEntries))
	}

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "🎉 ¡Sorteo!"
	}
	emoji := strings.TrimSpace(opts.Emoji)
	if emoji == "" {
		emoji = defaultEmoji
	}
	buttonText := strings.TrimSpace(opts.ButtonText)
	if buttonText == "" {
		buttonText = defaultButtonText
	}

	return &models.Giveaway{
		GuildID:       guildID,
		ChannelID:     channelID,
		HostID:        hostID,
		Prize:         prize,
		Title:         title,
		Description:   strings.TrimSpace(opts.Description),
		Color:         color,
		Emoji:         emoji,
		ButtonText:    buttonText,
		WinnerCount:   opts.Winners,
		EndTime:       now.Add(d),
		RequiredRoles: giveaway.ParseRoleList(opts.RequiredRoles),
		BonusRoles:    giveaway.ParseRoleList(opts.BonusRoles),
		BonusEntries:  bonus,
		WinnerMessage: strings.TrimSpace(opts.WinnerMessage),
	}, d, nil
}

// inputError is a validation failure whose text is shown as is
type inputError string

func (e inputError) Error() string { return string(e) }

// createError formats errors returned by buildGiveaway
func createError(err error) string {
	var input inputError
	if stderrors.As(err, &input) {
		return string(input)
	}
	return userMessage(err)
}

func (c *commands) createHandler(ctx *discord.CommandContext) error {
	if ctx.Interaction.GuildID == "" {
		return ctx.ReplyEphemeral("❌ Este comando solo puede usarse en un canal de un servidor.")
	}

	opts := createOptions{
		Prize:         ctx.GetStringOption("premio"),
		Duration:      ctx.GetStringOption("duracion"),
		Winners:       int(ctx.GetIntOption("ganadores")),
		Title:         ctx.GetStringOption("titulo"),
		Description:   ctx.GetStringOption("descripcion"),
		Color:         ctx.GetStringOption("color"),
		Emoji:         ctx.GetStringOption("emoji"),
		ButtonText:    ctx.GetStringOption("texto_boton"),
		RequiredRoles: ctx.GetStringOption("roles_requeridos"),
		BonusRoles:    ctx.GetStringOption("roles_bonus"),
		BonusEntries:  int(ctx.GetIntOption("entradas_bonus")),
		WinnerMessage: ctx.GetStringOption("mensaje_ganador"),
	}

	host := ctx.User()
	g, d, err := buildGiveaway(opts, host.ID, ctx.Interaction.GuildID, ctx.Interaction.ChannelID, c.now())
	if err != nil {
		return ctx.ReplyEphemeral(createError(err))
	}

	if ctx.GetBoolOption("vista_previa") {
		return c.sendPreview(ctx, g, d)
	}

	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	go func() {
		defer errors.RecoverMiddleware()()

		sctx, cancel := storageContext()
		defer cancel()
		created, err := c.publish(sctx, ctx.Session, g, d)
		if err != nil {
			logger.Error(fmt.Sprintf("Error creando sorteo en %s: %v", g.GuildID, err), "CMD-Giveaway")
			ctx.EditReply(userMessage(err))
			return
		}
		ctx.EditReply(fmt.Sprintf("✅ Sorteo **#%d** publicado. Finaliza %s.", created.ID, timestamp(created, "R")))
	}()

	return nil
}

func (c *commands) sendPreview(ctx *discord.CommandContext, g *models.Giveaway, d time.Duration) error {
	sctx, cancel := storageContext()
	defer cancel()

	token, err := c.previews.Save(sctx, &giveaway.Preview{
		HostID:   g.HostID,
		GuildID:  g.GuildID,
		Duration: d,
		Giveaway: *g,
	})
	if err != nil {
		logger.Error(fmt.Sprintf("Error guardando vista previa: %v", err), "CMD-Giveaway")
		return ctx.ReplyEphemeral("❌ No se pudo generar la vista previa.")
	}

	return ctx.Session.InteractionRespond(ctx.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    "🔍 **Vista previa del sorteo.** ¿Quieres publicarlo?",
			Embeds:     []*discordgo.MessageEmbed{activeEmbed(g, 0)},
			Components: previewButtons(token),
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
}

// publish announces g in its channel and stores it. The end time is counted from now.
func (c *commands) publish(ctx context.Context, s *discordgo.Session, g *models.Giveaway, d time.Duration) (*models.Giveaway, error) {
	id, err := c.service.NextID(ctx)
	if err != nil {
		return nil, err
	}
	g.ID = id
	g.EndTime = c.now().Add(d)
	g.IsActive = true

	msg, err := s.ChannelMessageSendComplex(g.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{activeEmbed(g, 0)},
		Components: entryButtons(g, true),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	g.MessageID = msg.ID

	created, err := c.service.Create(ctx, g)
	if err != nil {
		if derr := s.ChannelMessageDelete(g.ChannelID, msg.ID); derr != nil {
			logger.Warn(fmt.Sprintf("No se pudo borrar el anuncio huérfano %s: %v", msg.ID, derr), "CMD-Giveaway")
		}
		return nil, err
	}
	return created, nil
}
