package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"pqagent/internal/config"
	"pqagent/internal/control"
	"pqagent/internal/emulator"
	"pqagent/internal/env"
	"pqagent/internal/gamestate"
	"pqagent/internal/logger"
	"pqagent/internal/logging"
	"pqagent/internal/qlearning"
	"pqagent/internal/stats"
	"pqagent/internal/storage"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", config.DefaultPath, "path to config file")
	flag.Parse()

	// Load config. a missing file means the built in defaults
	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if cfg.Logging.Echo {
		if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			logger.SetEcho(logger.NewColorizer(os.Stdout))
		} else {
			logger.SetEcho(os.Stdout)
		}
	}

	runID := uuid.NewString()
	started := time.Now()

	fmt.Printf("PowerQuest agent - ROM: %s\n", cfg.ROM)
	fmt.Printf("Run: %s, Seed: %d\n", runID, cfg.Seed)
	fmt.Printf("Alpha: %.2f, Gamma: %.2f, Epsilon: %.2f (decay %.4f, floor %.2f)\n",
		cfg.Agent.LearningRate, cfg.Agent.DiscountFactor, cfg.Agent.Epsilon, cfg.Agent.EpsilonDecay, cfg.Agent.MinEpsilon)
	fmt.Println("---")

	// Create the emulator
	addr := cfg.Addresses()
	game := env.NewGame(cfg.Sim, addr)

	var replay *env.Replay
	if cfg.Logging.ReplayPath != "" {
		replay = env.NewReplay(cfg.Sim, addr)
		replay.RunID = runID
		game.Record(replay)
	}

	// from here on a fatal error has to release the emulator and flush the
	// round outputs before exiting
	var closers []func() error
	fatal := func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, format, args...)
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			}
		}
		stop(game)
		os.Exit(1)
	}

	// Create the game state reader. failing here means the memory map is wrong
	reader, err := gamestate.NewReader(game, addr)
	if err != nil {
		fatal("Error initializing game state: %v\n", err)
	}

	// Create the round outputs
	metrics, err := logging.NewLogger(cfg.Logging.CSVPath, cfg.Logging.JSONPath)
	if err != nil {
		fatal("Error creating logger: %v\n", err)
	}
	closers = append(closers, func() error { metrics.Close(); return nil })
	if err := metrics.Init(); err != nil {
		fatal("Error initializing logger: %v\n", err)
	}
	defer metrics.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.Storage.Driver == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0755); err != nil {
			fatal("Error creating storage directory: %v\n", err)
		}
	}
	store, err := storage.NewStore(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		fatal("Error creating store: %v\n", err)
	}
	closers = append(closers, store.Close)
	if err := store.Init(ctx); err != nil {
		fatal("Error initializing store: %v\n", err)
	}
	defer store.Close()

	run := storage.RunRecord{ID: runID, ROM: cfg.ROM, Seed: cfg.Seed, Started: started}
	if err := store.SaveRun(ctx, run); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save run: %v\n", err)
	}

	// ctrl-c closes the game window
	go func() {
		<-ctx.Done()
		game.Quit()
	}()

	// Create the agent
	agent := qlearning.NewAgent(qlearning.Params{
		Alpha:      cfg.Agent.LearningRate,
		Gamma:      cfg.Agent.DiscountFactor,
		Epsilon:    cfg.Agent.Epsilon,
		Decay:      cfg.Agent.EpsilonDecay,
		MinEpsilon: cfg.Agent.MinEpsilon,
	}, rand.New(rand.NewSource(cfg.Seed)))

	navigated := cfg.Timing.SkipNavigate || navigate(game, cfg.Timing)

	loop := control.NewLoop(game, reader, agent, control.Settings{
		ActionHold:           cfg.Timing.ActionHold,
		MaxConsecutiveErrors: cfg.Loop.MaxConsecutiveErrors,
		ResetPresses:         cfg.Loop.ResetPresses,
		ResetHold:            cfg.Loop.ResetHold,
		LogEvery:             cfg.Loop.LogEvery,
		Recovery: control.RecoverySettings{
			StallThreshold: cfg.Recovery.StallThreshold,
			Timeout:        cfg.Recovery.Timeout,
			ProbeCost:      cfg.Recovery.ProbeCost,
		},
	})
	loop.Sink = control.RoundSinks{metrics, storage.NewRoundRecorder(context.Background(), store, runID)}

	if navigated {
		fmt.Println("Emulator initialized. Starting the game loop...")
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "Error in game loop: %v\n", err)
		}
	} else {
		fmt.Println("Game window closed during the menus, skipping the game loop")
	}
	stop(game)

	summary := loop.Summary()
	report := logging.Report{
		RunID:        runID,
		Started:      started,
		Finished:     time.Now(),
		Iterations:   summary.Iterations,
		Decisions:    summary.Decisions,
		Resets:       summary.Resets,
		UnknownFlags: summary.UnknownFlags,
		Epsilon:      agent.Epsilon(),
		States:       agent.Table.Len(),
		Rounds:       stats.Aggregate(summary.Rounds),
	}
	for _, s := range agent.Table.States() {
		report.Visited = append(report.Visited, s.String())
	}

	run.Finished = report.Finished
	run.Iterations = report.Iterations
	run.Decisions = report.Decisions
	run.Epsilon = report.Epsilon
	run.States = report.States
	if err := store.SaveRun(context.Background(), run); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save run: %v\n", err)
	}

	if replay != nil {
		replay.Finish(game.Frame)
		if err := saveReplay(cfg.Logging.ReplayPath, replay); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save replay: %v\n", err)
		}
	}

	reportPath := filepath.Join(filepath.Dir(cfg.Logging.JSONPath), "report.json")
	if err := logging.SaveReport(reportPath, report); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save report: %v\n", err)
	}

	fmt.Println("---")
	report.Print(os.Stdout)
	fmt.Println("Game window closed. Script finished.")
}

// navigate runs the menu script and returns false if the game window was
// closed on the way
func navigate(d emulator.Driver, t config.TimingConfig) bool {
	sig := control.NavigateToGameplay(d, control.MenuTiming{
		Long:   t.MenuLong,
		Medium: t.MenuMedium,
		Short:  t.MenuShort,
		Tiny:   t.MenuTiny,
	})
	return sig != emulator.SignalQuit
}

// stop releases the emulator if it holds resources
func stop(d emulator.Driver) {
	if s, ok := d.(emulator.Stopper); ok {
		if err := s.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
}

func saveReplay(path string, r *env.Replay) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return r.Save(path)
}
