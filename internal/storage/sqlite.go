package storage

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"pqagent/internal/stats"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run RunRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, rom, seed, started, finished, iterations, decisions, epsilon, states)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			rom = excluded.rom,
			seed = excluded.seed,
			started = excluded.started,
			finished = excluded.finished,
			iterations = excluded.iterations,
			decisions = excluded.decisions,
			epsilon = excluded.epsilon,
			states = excluded.states
	`, run.ID, run.ROM, run.Seed, toUnixNano(run.Started), toUnixNano(run.Finished),
		run.Iterations, run.Decisions, run.Epsilon, run.States)
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (RunRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return RunRecord{}, false, err
	}

	var (
		run               RunRecord
		started, finished int64
	)
	err = db.QueryRowContext(ctx, `
		SELECT id, rom, seed, started, finished, iterations, decisions, epsilon, states
		FROM runs WHERE id = ?
	`, id).Scan(&run.ID, &run.ROM, &run.Seed, &started, &finished,
		&run.Iterations, &run.Decisions, &run.Epsilon, &run.States)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, false, nil
		}
		return RunRecord{}, false, err
	}
	run.Started = fromUnixNano(started)
	run.Finished = fromUnixNano(finished)
	return run, true, nil
}

func (s *SQLiteStore) SaveRound(ctx context.Context, runID string, round stats.RoundStats) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO rounds (run_id, round, winner, decisions, ticks, total_reward, epsilon, states)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, round) DO UPDATE SET
			winner = excluded.winner,
			decisions = excluded.decisions,
			ticks = excluded.ticks,
			total_reward = excluded.total_reward,
			epsilon = excluded.epsilon,
			states = excluded.states
	`, runID, round.Round, int(round.Winner), round.Decisions, round.Ticks,
		round.TotalReward, round.Epsilon, round.States)
	return err
}

func (s *SQLiteStore) Rounds(ctx context.Context, runID string) ([]stats.RoundStats, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT round, winner, decisions, ticks, total_reward, epsilon, states
		FROM rounds WHERE run_id = ? ORDER BY round
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []stats.RoundStats
	for rows.Next() {
		var (
			rs     stats.RoundStats
			winner int
		)
		if err := rows.Scan(&rs.Round, &winner, &rs.Decisions, &rs.Ticks, &rs.TotalReward, &rs.Epsilon, &rs.States); err != nil {
			return nil, err
		}
		rs.Winner = stats.Winner(winner)
		rounds = append(rounds, rs)
	}
	return rounds, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			rom TEXT NOT NULL,
			seed INTEGER NOT NULL,
			started INTEGER NOT NULL,
			finished INTEGER NOT NULL,
			iterations INTEGER NOT NULL,
			decisions INTEGER NOT NULL,
			epsilon REAL NOT NULL,
			states INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS rounds (
			run_id TEXT NOT NULL,
			round INTEGER NOT NULL,
			winner INTEGER NOT NULL,
			decisions INTEGER NOT NULL,
			ticks INTEGER NOT NULL,
			total_reward REAL NOT NULL,
			epsilon REAL NOT NULL,
			states INTEGER NOT NULL,
			PRIMARY KEY (run_id, round)
		);
	`)
	return err
}

// times are stored as unix nanoseconds. 0 is the zero time
func toUnixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
