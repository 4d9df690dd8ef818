package logging

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"pqagent/internal/stats"
)

// Logger writes per-round results as CSV rows, JSON lines and a console line
type Logger struct {
	csvPath     string
	jsonPath    string
	csvFile     *os.File
	csvWriter   *csv.Writer
	jsonFile    *os.File
	out         io.Writer
	initialized bool
}

// NewLogger creates a new logger
func NewLogger(csvPath, jsonPath string) (*Logger, error) {
	l := &Logger{
		csvPath:  csvPath,
		jsonPath: jsonPath,
		out:      os.Stdout,
	}

	// Ensure directories exist
	if err := os.MkdirAll(filepath.Dir(csvPath), 0755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(jsonPath), 0755); err != nil {
		return nil, err
	}

	return l, nil
}

// SetOutput changes where the console line is written. nil silences it
func (l *Logger) SetOutput(w io.Writer) {
	l.out = w
}

// Init initializes the log files
func (l *Logger) Init() error {
	var err error

	// Open CSV file
	l.csvFile, err = os.Create(l.csvPath)
	if err != nil {
		return err
	}
	l.csvWriter = csv.NewWriter(l.csvFile)

	// Write CSV header
	header := []string{
		"round", "winner", "decisions", "ticks", "total_reward", "mean_reward", "epsilon", "states",
	}
	if err := l.csvWriter.Write(header); err != nil {
		return err
	}
	l.csvWriter.Flush()

	// Open JSON file
	l.jsonFile, err = os.OpenFile(l.jsonPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	l.initialized = true
	return nil
}

// Close closes all log files
func (l *Logger) Close() {
	if l.csvWriter != nil {
		l.csvWriter.Flush()
	}
	if l.csvFile != nil {
		l.csvFile.Close()
	}
	if l.jsonFile != nil {
		l.jsonFile.Close()
	}
	l.initialized = false
}

// RoundSummary is the JSON line written for each round
type RoundSummary struct {
	Round       int     `json:"round"`
	Winner      string  `json:"winner"`
	Decisions   int     `json:"decisions"`
	Ticks       int     `json:"ticks"`
	TotalReward float64 `json:"total_reward"`
	MeanReward  float64 `json:"mean_reward"`
	Epsilon     float64 `json:"epsilon"`
	States      int     `json:"states"`
}

// LogRound logs a finished round
func (l *Logger) LogRound(rs stats.RoundStats) error {
	if !l.initialized {
		return fmt.Errorf("logging: logger not initialized")
	}

	summary := RoundSummary{
		Round:       rs.Round,
		Winner:      rs.Winner.String(),
		Decisions:   rs.Decisions,
		Ticks:       rs.Ticks,
		TotalReward: rs.TotalReward,
		MeanReward:  rs.MeanReward(),
		Epsilon:     rs.Epsilon,
		States:      rs.States,
	}

	// Write CSV row
	row := []string{
		strconv.Itoa(summary.Round),
		summary.Winner,
		strconv.Itoa(summary.Decisions),
		strconv.Itoa(summary.Ticks),
		fmt.Sprintf("%.2f", summary.TotalReward),
		fmt.Sprintf("%.4f", summary.MeanReward),
		fmt.Sprintf("%.6f", summary.Epsilon),
		strconv.Itoa(summary.States),
	}
	if err := l.csvWriter.Write(row); err != nil {
		return err
	}
	l.csvWriter.Flush()
	if err := l.csvWriter.Error(); err != nil {
		return err
	}

	// Write JSON line
	jsonLine, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	if _, err := l.jsonFile.Write(append(jsonLine, '\n')); err != nil {
		return err
	}

	// Print to console
	if l.out != nil {
		fmt.Fprintf(l.out, "Round %4d | Winner: %-6s | Decisions: %6s | Ticks: %7s | Reward: %9.1f | Eps: %.4f | States: %d\n",
			summary.Round, summary.Winner, humanize.Comma(int64(summary.Decisions)),
			humanize.Comma(int64(summary.Ticks)), summary.TotalReward, summary.Epsilon, summary.States)
	}
	return nil
}

// Round implements control.RoundSink
func (l *Logger) Round(rs stats.RoundStats) error {
	return l.LogRound(rs)
}

// Report is the end of run summary
type Report struct {
	RunID        string                `json:"run_id"`
	Started      time.Time             `json:"started"`
	Finished     time.Time             `json:"finished"`
	Iterations   int                   `json:"iterations"`
	Decisions    int                   `json:"decisions"`
	Resets       int                   `json:"resets"`
	UnknownFlags int                   `json:"unknown_flags"`
	Epsilon      float64               `json:"epsilon"`
	States       int                   `json:"states"`
	Visited      []string              `json:"visited,omitempty"` // discretized states in the Q-table
	Rounds       stats.AggregatedStats `json:"rounds"`
}

// Print writes a human readable version of the report
func (r Report) Print(w io.Writer) {
	fmt.Fprintf(w, "Run %s finished after %s\n", r.RunID, strings.TrimSpace(humanize.RelTime(r.Started, r.Finished, "", "")))
	fmt.Fprintf(w, "Iterations: %s, Decisions: %s, Resets: %d, Unknown flags: %d\n",
		humanize.Comma(int64(r.Iterations)), humanize.Comma(int64(r.Decisions)), r.Resets, r.UnknownFlags)
	fmt.Fprintf(w, "Rounds: %d (won %d, lost %d, win rate %.1f%%)\n",
		r.Rounds.NumRounds, r.Rounds.PlayerWins, r.Rounds.EnemyWins, 100*r.Rounds.WinRate)
	fmt.Fprintf(w, "Reward per round: %.1f ± %.1f\n", r.Rounds.RewardMean, r.Rounds.RewardStd)
	fmt.Fprintf(w, "Epsilon: %.4f, States visited: %d\n", r.Epsilon, r.States)
	if len(r.Visited) > 0 {
		fmt.Fprintf(w, "Visited: %s\n", strings.Join(r.Visited, " "))
	}
}

// SaveReport saves the run report to a file
func SaveReport(path string, r Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	jsonData, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, jsonData, 0644)
}

// LoadReport loads a run report from a file
func LoadReport(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, err
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return Report{}, err
	}

	return r, nil
}
