// Package boost tracks members boosting a guild and runs the boost side effects:
// announcement, booster role and live events.
package boost

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/PancyStudios/PancyCommunityBot/pkg/models"
	"github.com/PancyStudios/PancyCommunityBot/pkg/notify"
)

// DefaultMessage is announced when the guild has no custom boost message
const DefaultMessage = "🎉 ¡{user} acaba de mejorar el servidor! ¡Gracias por tu apoyo!"

// Repository persists boost state
type Repository interface {
	RecordBoost(ctx context.Context, guildID, userID string, at time.Time) error
	EndBoost(ctx context.Context, guildID, userID string, at time.Time) error
}

// ConfigReader returns the configuration of a guild
type ConfigReader interface {
	GetGuildConfig(ctx context.Context, guildID string) (*models.GuildConfig, error)
}

// Platform performs the chat side effects
type Platform interface {
	SendMessage(channelID, content string) error
	HasRole(guildID, userID, roleID string) (bool, error)
	GrantRole(guildID, userID, roleID string) error
	RevokeRole(guildID, userID, roleID string) error
}

// Change is the boost transition seen in a member update
type Change int

const (
	NoChange Change = iota
	Started
	Ended
)

// Detect compares the boosting state before and after a member update
func Detect(wasBoosting, isBoosting bool) Change {
	switch {
	case !wasBoosting && isBoosting:
		return Started
	case wasBoosting && !isBoosting:
		return Ended
	}
	return NoChange
}

// FormatMessage fills the {user} placeholder with a mention
func FormatMessage(template, userID string) string {
	if template == "" {
		template = DefaultMessage
	}
	return strings.ReplaceAll(template, "{user}", "<@"+userID+">")
}

// Tracker reacts to boost transitions
type Tracker struct {
	repo     Repository
	configs  ConfigReader
	platform Platform
	notifier notify.Notifier
	now      func() time.Time
}

// NewTracker creates a Tracker
func NewTracker(repo Repository, configs ConfigReader, platform Platform, notifier notify.Notifier) *Tracker {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Tracker{repo: repo, configs: configs, platform: platform, notifier: notifier, now: time.Now}
}

// HandleUpdate records the transition and runs its side effects. Side effect
// failures are logged; only storage errors are returned.
func (t *Tracker) HandleUpdate(ctx context.Context, guildID, userID string, wasBoosting, isBoosting bool) (Change, error) {
	change := Detect(wasBoosting, isBoosting)
	switch change {
	case Started:
		return change, t.started(ctx, guildID, userID)
	case Ended:
		return change, t.ended(ctx, guildID, userID)
	}
	return change, nil
}

func (t *Tracker) started(ctx context.Context, guildID, userID string) error {
	if err := t.repo.RecordBoost(ctx, guildID, userID, t.now()); err != nil {
		return err
	}
	logger.Info(fmt.Sprintf("%s empezó a mejorar el servidor %s", userID, guildID), "Boost")
	t.notifier.Notify(notify.NewEvent(notify.EventBoostStarted, guildID, map[string]string{"userId": userID}))

	cfg, err := t.configs.GetGuildConfig(ctx, guildID)
	if err != nil {
		logger.Warn(fmt.Sprintf("No se pudo leer la configuración de %s: %v", guildID, err), "Boost")
		return nil
	}

	if cfg.BoostChannelID != "" {
		if err := t.platform.SendMessage(cfg.BoostChannelID, FormatMessage(cfg.BoostMessage, userID)); err != nil {
			logger.Warn(fmt.Sprintf("No se pudo enviar el anuncio de boost: %v", err), "Boost")
		}
	}

	if cfg.BoosterRoleID != "" {
		has, err := t.platform.HasRole(guildID, userID, cfg.BoosterRoleID)
		if err == nil && !has {
			err = t.platform.GrantRole(guildID, userID, cfg.BoosterRoleID)
		}
		if err != nil {
			logger.Warn(fmt.Sprintf("No se pudo asignar el rol de booster: %v", err), "Boost")
		}
	}
	return nil
}

func (t *Tracker) ended(ctx context.Context, guildID, userID string) error {
	if err := t.repo.EndBoost(ctx, guildID, userID, t.now()); err != nil {
		return err
	}
	logger.Info(fmt.Sprintf("%s dejó de mejorar el servidor %s", userID, guildID), "Boost")
	t.notifier.Notify(notify.NewEvent(notify.EventBoostEnded, guildID, map[string]string{"userId": userID}))

	cfg, err := t.configs.GetGuildConfig(ctx, guildID)
	if err != nil {
		logger.Warn(fmt.Sprintf("No se pudo leer la configuración de %s: %v", guildID, err), "Boost")
		return nil
	}

	if cfg.BoosterRoleID != "" {
		has, err := t.platform.HasRole(guildID, userID, cfg.BoosterRoleID)
		if err == nil && has {
			err = t.platform.RevokeRole(guildID, userID, cfg.BoosterRoleID)
		}
		if err != nil {
			logger.Warn(fmt.Sprintf("No se pudo quitar el rol de booster: %v", err), "Boost")
		}
	}
	return nil
}
