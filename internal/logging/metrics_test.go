package logging

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pqagent/internal/stats"
)

func TestLogRound(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "out", "rounds.csv")
	jsonPath := filepath.Join(dir, "out", "rounds.jsonl")

	l, err := NewLogger(csvPath, jsonPath)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	console := &strings.Builder{}
	l.SetOutput(console)

	if err := l.LogRound(stats.RoundStats{Round: 1}); err == nil {
		t.Fatalf("expected error before Init")
	}
	if err := l.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	rounds := []stats.RoundStats{
		{Round: 1, Winner: stats.WinnerEnemy, Decisions: 1234, Ticks: 12340, TotalReward: -3000.5, Epsilon: 0.88, States: 9},
		{Round: 2, Winner: stats.WinnerPlayer, Decisions: 10, Ticks: 100, TotalReward: 480, Epsilon: 0.87, States: 11},
	}
	for _, rs := range rounds {
		if err := l.Round(rs); err != nil {
			t.Fatalf("log round: %v", err)
		}
	}
	l.Close()

	f, err := os.Open(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(records))
	}
	if records[1][1] != "enemy" || records[2][1] != "player" || records[1][2] != "1234" {
		t.Fatalf("unexpected rows: %v", records[1:])
	}

	jf, err := os.Open(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	defer jf.Close()
	var lines []RoundSummary
	sc := bufio.NewScanner(jf)
	for sc.Scan() {
		var rs RoundSummary
		if err := json.Unmarshal(sc.Bytes(), &rs); err != nil {
			t.Fatalf("bad json line %q: %v", sc.Text(), err)
		}
		lines = append(lines, rs)
	}
	if len(lines) != 2 || lines[1].MeanReward != 48 || lines[0].Winner != "enemy" {
		t.Fatalf("unexpected json lines: %+v", lines)
	}

	out := console.String()
	if !strings.Contains(out, "Decisions:  1,234") || !strings.Contains(out, "Ticks:  12,340") {
		t.Fatalf("unexpected console output:\n%s", out)
	}
}

func TestReport(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r := Report{
		RunID:      "run-1",
		Started:    start,
		Finished:   start.Add(3 * time.Minute),
		Iterations: 25000,
		Decisions:  20000,
		Epsilon:    0.135,
		States:     2,
		Visited:    []string{"(High, High, Close)", "(Low, High, Far)"},
		Rounds:     stats.Aggregate([]stats.RoundStats{{Winner: stats.WinnerPlayer, TotalReward: 100}}),
	}

	path := filepath.Join(t.TempDir(), "nested", "report.json")
	if err := SaveReport(path, r); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadReport(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.RunID != r.RunID || loaded.Decisions != r.Decisions || loaded.Rounds != r.Rounds || !loaded.Finished.Equal(r.Finished) || len(loaded.Visited) != 2 {
		t.Fatalf("report changed on disk: %+v", loaded)
	}

	w := &strings.Builder{}
	r.Print(w)
	for _, want := range []string{"Run run-1 finished after 3 minutes", "Decisions: 20,000", "win rate 100.0%", "Visited: (High, High, Close) (Low, High, Far)"} {
		if !strings.Contains(w.String(), want) {
			t.Fatalf("report missing %q:\n%s", want, w.String())
		}
	}
}
