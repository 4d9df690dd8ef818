package storage

import (
	"context"
	"errors"
	"sync"

	"pqagent/internal/stats"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]RunRecord
	rounds      map[string][]stats.RoundStats
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]RunRecord)
	s.rounds = make(map[string][]stats.RoundStats)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) SaveRound(_ context.Context, runID string, round stats.RoundStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	rounds := s.rounds[runID]
	for i := range rounds {
		if rounds[i].Round == round.Round {
			rounds[i] = round
			return nil
		}
	}
	s.rounds[runID] = append(rounds, round)
	return nil
}

func (s *MemoryStore) Rounds(_ context.Context, runID string) ([]stats.RoundStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]stats.RoundStats(nil), s.rounds[runID]...), nil
}

func (s *MemoryStore) Close() error {
	return nil
}
