package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"pqagent/internal/env"
	"pqagent/internal/gamestate"
	"pqagent/internal/logging"
)

func main() {
	// Parse flags
	replayPath := flag.String("replay", "runs/replay.json", "path to replay JSON")
	delay := flag.Int("delay", 16, "delay between rendered frames in milliseconds")
	every := flag.Int("every", 10, "render every n frames")
	from := flag.Int("from", 0, "skip ahead to this frame before rendering")
	noDisplay := flag.Bool("no-display", false, "run without display (just print stats)")
	reportPath := flag.String("report", "", "print a saved run report and exit")
	flag.Parse()

	if *reportPath != "" {
		if err := printReport(os.Stdout, *reportPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading report: %v\n", err)
			os.Exit(1)
		}
		return
	}

	replay, err := env.LoadReplay(*replayPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading replay: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded replay %s (%d frames, %d inputs)\n", replay.RunID, replay.Frames, len(replay.Events))
	fmt.Println("Press Ctrl+C to exit")
	fmt.Println()

	player := env.NewPlayer(replay)
	player.StepTo(*from)

	display := NewDisplay()
	frameDelay := time.Duration(*delay) * time.Millisecond
	if *every < 1 {
		*every = 1
	}

	for !player.Done() {
		player.Step()
		if !*noDisplay && player.Game().Frame%*every == 0 {
			display.Render(player.Game())
			time.Sleep(frameDelay)
		}
	}

	// Final display
	game := player.Game()
	if !*noDisplay {
		display.Render(game)
	}

	fmt.Println()
	fmt.Println("═══════════════════════════════════")
	fmt.Printf("  Replay finished on frame %d: %s\n", game.Frame, game.Phase)
	fmt.Printf("  Wins: player %d, enemy %d\n", game.Player.Wins, game.Enemy.Wins)
	fmt.Printf("  Health: player %d, enemy %d\n", game.Player.Health, game.Enemy.Health)
	fmt.Println("═══════════════════════════════════")
}

// printReport writes the run report saved at path
func printReport(w io.Writer, path string) error {
	report, err := logging.LoadReport(path)
	if err != nil {
		return err
	}
	report.Print(w)
	return nil
}

// pixels per terminal column
const scale = 4

// Display handles terminal rendering
type Display struct {
	width int
}

// NewDisplay creates a new display
func NewDisplay() *Display {
	return &Display{width: (env.ArenaMaxX-env.ArenaMinX)/scale + 1}
}

// Render draws the arena to the terminal
func (d *Display) Render(game *env.Game) {
	clearScreen()
	fmt.Print(d.Frame(game))
}

// Frame returns the arena as text
func (d *Display) Frame(game *env.Game) string {
	var b strings.Builder

	// air row and ground row
	rows := [2][]rune{}
	for i := range rows {
		rows[i] = []rune(strings.Repeat(" ", d.width))
	}
	place := func(f env.Fighter, r rune) {
		col := (f.X - env.ArenaMinX) / scale
		if col < 0 || col >= d.width {
			return
		}
		row := 1
		if f.Y != env.GroundY {
			row = 0
		}
		if f.Crouching {
			r = 'c'
		}
		rows[row][col] = r
	}
	place(game.Enemy, 'E')
	place(game.Player, 'P')

	b.WriteString("┌" + strings.Repeat("─", d.width) + "┐\n")
	for _, row := range rows {
		b.WriteString("│" + string(row) + "│\n")
	}
	b.WriteString("└" + strings.Repeat("─", d.width) + "┘\n")

	fmt.Fprintf(&b, "  Frame: %6d | %-8s | P %5d (%d) | E %5d (%d) | Dist: %3d\n",
		game.Frame, game.Phase, game.Player.Health, game.Player.Wins,
		game.Enemy.Health, game.Enemy.Wins, game.Distance())

	if game.Phase == gamestate.FlagDialogue && game.Sticky() {
		b.WriteString("  dialogue waiting for B\n")
	}
	return b.String()
}

func clearScreen() {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command("cmd", "/c", "cls")
	} else {
		cmd = exec.Command("clear")
	}
	cmd.Stdout = os.Stdout
	cmd.Run()
}
