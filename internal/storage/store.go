// Package storage keeps the history of agent runs: one record per run and
// the statistics of every round fought in it.
package storage

import (
	"context"
	"time"

	"pqagent/internal/stats"
)

// RunRecord describes one run of the agent
type RunRecord struct {
	ID         string
	ROM        string
	Seed       int64
	Started    time.Time
	Finished   time.Time // zero while the run is in progress
	Iterations int
	Decisions  int
	Epsilon    float64
	States     int
}

// Store defines persistence operations for run history
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run RunRecord) error
	GetRun(ctx context.Context, id string) (RunRecord, bool, error)
	SaveRound(ctx context.Context, runID string, round stats.RoundStats) error
	Rounds(ctx context.Context, runID string) ([]stats.RoundStats, error)
	Close() error
}
