package discord

import (
	"strings"
	"testing"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/ratelimit"
	"github.com/bwmarrin/discordgo"
)

func noop(ctx *CommandContext) error { return nil }

func newTestClient() *ExtendedClient {
	c := &ExtendedClient{
		Commands:   NewCommandCollection(),
		Components: NewComponentRouter(),
		RateLimits: ratelimit.NewRegistry(),
	}
	c.CommandHandler = NewCommandHandler(c)
	return c
}

// TestReplyEphemeralEmbedExists is a compile-time check of the reply helpers
func TestReplyEphemeralEmbedExists(t *testing.T) {
	type replyEphemeralEmbedFunc func(*CommandContext, *discordgo.MessageEmbed) error
	var _ replyEphemeralEmbedFunc = (*CommandContext).ReplyEphemeralEmbed
	type componentReplyEphemeralEmbedFunc func(*ComponentContext, *discordgo.MessageEmbed) error
	var _ componentReplyEphemeralEmbedFunc = (*ComponentContext).ReplyEphemeralEmbed
}

func TestCommandCreation(t *testing.T) {
	cmd := NewCommand("test", "Test command", "test", noop)

	if cmd == nil {
		t.Fatal("NewCommand returned nil")
	}
	if cmd.Name != "test" {
		t.Errorf("Name = %v, want %v", cmd.Name, "test")
	}
	if cmd.Description != "Test command" {
		t.Errorf("Description = %v, want %v", cmd.Description, "Test command")
	}
	if cmd.Category != "test" {
		t.Errorf("Category = %v, want %v", cmd.Category, "test")
	}
	if cmd.Run == nil {
		t.Error("Run function is nil")
	}
	if cmd.RateLimit != nil {
		t.Error("RateLimit should be nil by default")
	}
}

func TestCommandBuilders(t *testing.T) {
	option := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "test-option",
		Description: "Test option",
		Required:    true,
	}

	cmd := NewCommand("test", "Test command", "test", noop).
		WithOptions(option).
		WithUserPermissions(discordgo.PermissionKickMembers).
		WithBotPermissions(discordgo.PermissionSendMessages).
		WithRateLimit(ratelimit.PerMinute(3))

	if len(cmd.Options) != 1 || cmd.Options[0].Name != "test-option" {
		t.Fatalf("Options = %v, want one test-option", cmd.Options)
	}
	if cmd.UserPermissions != discordgo.PermissionKickMembers {
		t.Errorf("UserPermissions = %v, want %v", cmd.UserPermissions, discordgo.PermissionKickMembers)
	}
	if cmd.BotPermissions != discordgo.PermissionSendMessages {
		t.Errorf("BotPermissions = %v, want %v", cmd.BotPermissions, discordgo.PermissionSendMessages)
	}
	if cmd.RateLimit == nil || cmd.RateLimit.Requests != 3 || cmd.RateLimit.Window != time.Minute {
		t.Errorf("RateLimit = %v, want 3/min", cmd.RateLimit)
	}

	appCmd := cmd.ToApplicationCommand()
	if appCmd.DefaultMemberPermissions == nil || *appCmd.DefaultMemberPermissions != discordgo.PermissionKickMembers {
		t.Errorf("DefaultMemberPermissions = %v, want %v", appCmd.DefaultMemberPermissions, discordgo.PermissionKickMembers)
	}
}

func TestCommandAsDev(t *testing.T) {
	c := newTestClient()
	c.CommandHandler.RegisterCommand(NewCommand("eval", "dev", "dev", noop).AsDev())
	c.CommandHandler.RegisterCommand(NewCommand("ping", "ping", "utils", noop))

	if got := len(c.CommandHandler.GlobalCommands()); got != 1 {
		t.Errorf("global commands = %v, want %v", got, 1)
	}
	if got := len(c.CommandHandler.slashCommandsDev); got != 1 {
		t.Errorf("dev commands = %v, want %v", got, 1)
	}
}

func TestBuildCommandGroupTracksSubcommandsAndLimits(t *testing.T) {
	c := newTestClient()
	ban := NewCommand("ban", "Banear", "mod", noop).WithRateLimit(ratelimit.PerMinute(2))
	warn := NewCommand("warn", "Advertir", "mod", noop)

	group := c.CommandHandler.AddGroup("mod", "Moderación", discordgo.PermissionModerateMembers, ban, warn)

	if group.Name != "mod" || len(group.Options) != 2 {
		t.Fatalf("group = %v with %d options, want mod with 2", group.Name, len(group.Options))
	}
	if group.Options[0].Type != discordgo.ApplicationCommandOptionSubCommand {
		t.Errorf("option type = %v, want subcommand", group.Options[0].Type)
	}
	if _, ok := c.Commands.Get("mod.ban"); !ok {
		t.Error("mod.ban not tracked")
	}
	if _, ok := c.Commands.Get("mod.warn"); !ok {
		t.Error("mod.warn not tracked")
	}

	for i := 0; i < 2; i++ {
		if ok, _ := c.RateLimits.Check("mod.ban", "u1"); !ok {
			t.Fatalf("ban %d should be allowed", i)
		}
	}
	if ok, _ := c.RateLimits.Check("mod.ban", "u1"); ok {
		t.Error("third ban within a minute should be limited")
	}
	if ok, _ := c.RateLimits.Check("mod.warn", "u1"); !ok {
		t.Error("warn has no limit")
	}
}

func TestCommandName(t *testing.T) {
	tests := []struct {
		name string
		data discordgo.ApplicationCommandInteractionData
		want string
	}{
		{"top level", discordgo.ApplicationCommandInteractionData{Name: "level"}, "level"},
		{
			"subcommand",
			discordgo.ApplicationCommandInteractionData{
				Name: "giveaway",
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{Name: "create", Type: discordgo.ApplicationCommandOptionSubCommand},
				},
			},
			"giveaway.create",
		},
		{
			"subcommand group",
			discordgo.ApplicationCommandInteractionData{
				Name: "config",
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{
						Name: "roles",
						Type: discordgo.ApplicationCommandOptionSubCommandGroup,
						Options: []*discordgo.ApplicationCommandInteractionDataOption{
							{Name: "level", Type: discordgo.ApplicationCommandOptionSubCommand},
						},
					},
				},
			},
			"config.roles.level",
		},
		{
			"plain option",
			discordgo.ApplicationCommandInteractionData{
				Name: "level",
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{Name: "usuario", Type: discordgo.ApplicationCommandOptionUser},
				},
			},
			"level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := commandName(tt.data); got != tt.want {
				t.Errorf("commandName() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFindOptionAndFocused(t *testing.T) {
	opts := []*discordgo.ApplicationCommandInteractionDataOption{
		{
			Name: "end",
			Type: discordgo.ApplicationCommandOptionSubCommand,
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "id", Type: discordgo.ApplicationCommandOptionString, Value: "12", Focused: true},
			},
		},
	}

	if got := findOption(opts, "id"); got == nil || got.StringValue() != "12" {
		t.Errorf("findOption(id) = %v, want value 12", got)
	}
	if got := findOption(opts, "missing"); got != nil {
		t.Errorf("findOption(missing) = %v, want nil", got)
	}
	if got := findFocused(opts); got == nil || got.Name != "id" {
		t.Errorf("findFocused() = %v, want id", got)
	}
}

func TestComponentRouting(t *testing.T) {
	tests := []struct {
		customID   string
		wantPrefix string
		wantArg    string
	}{
		{"giveaway_enter", "giveaway_enter", ""},
		{"giveaway_confirm:abc-123", "giveaway_confirm", "abc-123"},
		{"a:b:c", "a", "b:c"},
	}
	for _, tt := range tests {
		prefix, arg := SplitCustomID(tt.customID)
		if prefix != tt.wantPrefix || arg != tt.wantArg {
			t.Errorf("SplitCustomID(%q) = (%v, %v), want (%v, %v)", tt.customID, prefix, arg, tt.wantPrefix, tt.wantArg)
		}
	}

	if got := CustomID("giveaway_cancel", "tok"); got != "giveaway_cancel:tok" {
		t.Errorf("CustomID() = %v, want %v", got, "giveaway_cancel:tok")
	}
	if got := CustomID("giveaway_enter", ""); got != "giveaway_enter" {
		t.Errorf("CustomID() = %v, want %v", got, "giveaway_enter")
	}

	r := NewComponentRouter()
	var gotArg string
	r.Register("giveaway_confirm", func(ctx *ComponentContext, arg string) error {
		gotArg = arg
		return nil
	})

	fn, arg, ok := r.lookup("giveaway_confirm:tok")
	if !ok {
		t.Fatal("handler not found")
	}
	_ = fn(nil, arg)
	if gotArg != "tok" {
		t.Errorf("arg = %v, want %v", gotArg, "tok")
	}
	if _, _, ok := r.lookup("unknown"); ok {
		t.Error("unknown prefix should not resolve")
	}
}

func TestRateLimitMessage(t *testing.T) {
	if msg := RateLimitMessage(1500 * time.Millisecond); !strings.Contains(msg, "2 segundos") {
		t.Errorf("RateLimitMessage() = %v, want 2 segundos", msg)
	}
	if msg := RateLimitMessage(0); !strings.Contains(msg, "1 segundos") {
		t.Errorf("RateLimitMessage(0) = %v, want 1 segundos", msg)
	}
}

func TestHasPermission(t *testing.T) {
	ctxWith := func(m *discordgo.Member) *CommandContext {
		return &CommandContext{Interaction: &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{Member: m}}}
	}

	if ctxWith(nil).HasPermission(discordgo.PermissionBanMembers) {
		t.Error("DM interactions have no guild permissions")
	}

	mod := ctxWith(&discordgo.Member{Permissions: discordgo.PermissionBanMembers | discordgo.PermissionKickMembers})
	if !mod.HasPermission(discordgo.PermissionBanMembers) {
		t.Error("expected ban permission")
	}
	if mod.HasPermission(discordgo.PermissionBanMembers | discordgo.PermissionManageGuild) {
		t.Error("every requested bit must be present")
	}

	admin := ctxWith(&discordgo.Member{Permissions: discordgo.PermissionAdministrator})
	if !admin.HasPermission(discordgo.PermissionManageGuild) {
		t.Error("administrator implies every permission")
	}
}
