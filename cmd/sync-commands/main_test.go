package main

import (
	"reflect"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestDiffCommands(t *testing.T) {
	local := []*discordgo.ApplicationCommand{
		{Name: "level", Description: "Muestra tu nivel"},
		{Name: "giveaway", Description: "Sorteos"},
		{Name: "config", Description: "Configuración del servidor"},
	}
	remote := []*discordgo.ApplicationCommand{
		{ID: "1", Name: "level", Description: "Muestra tu nivel"},
		{ID: "2", Name: "giveaway", Description: "Sorteos antiguos"},
		{ID: "3", Name: "music", Description: "Música"},
	}

	d := diffCommands(local, remote)
	if !reflect.DeepEqual(d.Missing, []string{"config"}) {
		t.Errorf("Missing = %v, want [config]", d.Missing)
	}
	if !reflect.DeepEqual(d.Changed, []string{"giveaway"}) {
		t.Errorf("Changed = %v, want [giveaway]", d.Changed)
	}
	if !reflect.DeepEqual(d.Stale, []string{"music"}) {
		t.Errorf("Stale = %v, want [music]", d.Stale)
	}
}

func TestDiffCommandsInSync(t *testing.T) {
	cmds := []*discordgo.ApplicationCommand{{Name: "level", Description: "Muestra tu nivel"}}
	if d := diffCommands(cmds, cmds); !d.empty() {
		t.Errorf("diff = %+v, want empty", d)
	}
}
