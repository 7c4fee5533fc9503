package events

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/boost"
	"github.com/PancyStudios/PancyCommunityBot/pkg/discord"
	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterMemberEvents registers the boost handler on member updates
func RegisterMemberEvents(client *discord.ExtendedClient, boosts BoostHandler) {
	client.EventHandler.OnGuildMemberUpdate(func(s *discordgo.Session, m *discordgo.GuildMemberUpdate) {
		onGuildMemberUpdate(boosts, m)
	})
}

// boostTransition reads the boosting state before and after the update. ok is
// false when the previous member state is unknown.
func boostTransition(m *discordgo.GuildMemberUpdate) (was, is, ok bool) {
	if m.Member == nil || m.BeforeUpdate == nil {
		return false, false, false
	}
	return m.BeforeUpdate.PremiumSince != nil, m.PremiumSince != nil, true
}

func onGuildMemberUpdate(boosts BoostHandler, m *discordgo.GuildMemberUpdate) {
	was, is, ok := boostTransition(m)
	if !ok {
		return
	}
	if was == is {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	change, err := boosts.HandleUpdate(ctx, m.GuildID, m.User.ID, was, is)
	if err != nil {
		logger.Error(fmt.Sprintf("Error procesando boost de %s en %s: %v", m.User.ID, m.GuildID, err), "Member")
		return
	}
	if change == boost.Started {
		logger.Debug(fmt.Sprintf("💎 %s empezó a mejorar %s", m.User.Username, m.GuildID), "Member")
	}
}
