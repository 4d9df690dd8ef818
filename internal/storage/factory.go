package storage

import (
	"context"
	"fmt"

	"pqagent/internal/stats"
)

// NewStore returns the backend named by kind
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(sqlitePath), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

// RoundRecorder saves every round it is given under one run
type RoundRecorder struct {
	store Store
	runID string
	ctx   context.Context
}

// NewRoundRecorder creates a control.RoundSink that writes to store
func NewRoundRecorder(ctx context.Context, store Store, runID string) *RoundRecorder {
	return &RoundRecorder{store: store, runID: runID, ctx: ctx}
}

// Round implements control.RoundSink
func (r *RoundRecorder) Round(rs stats.RoundStats) error {
	return r.store.SaveRound(r.ctx, r.runID, rs)
}
