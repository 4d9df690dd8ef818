package main

import (
	"testing"

	"pqagent/internal/config"
	"pqagent/internal/env"
	"pqagent/internal/memmap"
)

func TestNavigate(t *testing.T) {
	timing := config.Default().Timing

	game := env.NewGame(env.DefaultSettings(), memmap.Default())
	if !navigate(game, timing) {
		t.Fatalf("navigation reported quit on a running game")
	}
	if game.Frame < timing.MenuLong {
		t.Fatalf("menu script ran for only %d frames", game.Frame)
	}

	// the window closes after the first menu press
	settings := env.DefaultSettings()
	settings.TickCap = timing.MenuLong + 100
	closed := env.NewGame(settings, memmap.Default())
	if navigate(closed, timing) {
		t.Fatalf("quit during the menus was not reported")
	}
}
