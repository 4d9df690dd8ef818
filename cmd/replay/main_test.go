package main

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pqagent/internal/env"
	"pqagent/internal/logging"
	"pqagent/internal/memmap"
)

func TestFrameDrawsFighters(t *testing.T) {
	game := env.NewGame(env.DefaultSettings(), memmap.Default())
	out := NewDisplay().Frame(game)

	lines := strings.Split(out, "\n")
	ground := []rune(lines[2])
	if ground[1+(env.StartPlayer-env.ArenaMinX)/scale] != 'P' {
		t.Fatalf("player not drawn at start position:\n%s", out)
	}
	if ground[1+(env.StartEnemy-env.ArenaMinX)/scale] != 'E' {
		t.Fatalf("enemy not drawn at start position:\n%s", out)
	}
	if !strings.Contains(out, "Menu") || !strings.Contains(out, "Dist:  80") {
		t.Fatalf("unexpected status line:\n%s", out)
	}
}

func TestPrintReport(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "report.json")
	err := logging.SaveReport(path, logging.Report{
		RunID:     "run-7",
		Started:   start,
		Finished:  start.Add(time.Hour),
		Decisions: 1200,
		States:    1,
		Visited:   []string{"(High, Low, Mid)"},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	w := &strings.Builder{}
	if err := printReport(w, path); err != nil {
		t.Fatalf("print: %v", err)
	}
	for _, want := range []string{"Run run-7", "Decisions: 1,200", "Visited: (High, Low, Mid)"} {
		if !strings.Contains(w.String(), want) {
			t.Fatalf("report missing %q:\n%s", want, w.String())
		}
	}

	if err := printReport(w, filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected missing report to fail")
	}
}
