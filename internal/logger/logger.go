// Package logger is the agent's central log. Entries are tagged by the
// subsystem that wrote them and identical consecutive entries are collapsed
// into a single entry with a repeat count, which keeps the per-frame chatter
// of the control loop readable.
//
// The package level functions write to a single central logger. Tests that
// need isolation can create their own with NewLogger.
package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Entry is a single log entry
type Entry struct {
	Timestamp time.Time
	Tag       string
	Detail    string
	repeated  int
}

func (e *Entry) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("%s: %s", e.Tag, e.Detail))
	if e.repeated > 0 {
		s.WriteString(fmt.Sprintf(" (repeat x%d)", e.repeated+1))
	}
	s.WriteString("\n")
	return s.String()
}

// Logger keeps the most recent entries in memory and optionally echoes every
// new entry to a writer
type Logger struct {
	mu         sync.Mutex
	maxEntries int
	entries    []Entry
	echo       io.Writer
}

// NewLogger creates a logger that retains at most maxEntries entries
func NewLogger(maxEntries int) *Logger {
	return &Logger{
		maxEntries: maxEntries,
		entries:    make([]Entry, 0, maxEntries),
	}
}

// Log adds an entry. The detail can be anything that fmt can print; errors
// and Stringers are printed with their natural representation
func (l *Logger) Log(tag string, detail any) {
	l.log(tag, fmt.Sprint(detail))
}

// Logf adds an entry with a formatted detail string
func (l *Logger) Logf(tag string, format string, args ...any) {
	l.log(tag, fmt.Sprintf(format, args...))
}

func (l *Logger) log(tag, detail string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// entries are single line
	tag = strings.ReplaceAll(tag, "\n", "")
	detail = strings.ReplaceAll(detail, "\n", "")

	var e *Entry
	if n := len(l.entries); n > 0 && l.entries[n-1].Tag == tag && l.entries[n-1].Detail == detail {
		e = &l.entries[n-1]
		e.repeated++
		e.Timestamp = time.Now()
	} else {
		l.entries = append(l.entries, Entry{Timestamp: time.Now(), Tag: tag, Detail: detail})
		if len(l.entries) > l.maxEntries {
			l.entries = l.entries[len(l.entries)-l.maxEntries:]
		}
		e = &l.entries[len(l.entries)-1]
	}

	if l.echo != nil {
		// echo the entry without the repeat count. a repeated entry is still
		// echoed so that progress is visible on the console
		io.WriteString(l.echo, fmt.Sprintf("%s: %s\n", e.Tag, e.Detail))
	}
}

// Clear removes all entries
func (l *Logger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = l.entries[:0]
}

// Write all entries to the writer
func (l *Logger) Write(output io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.entries {
		io.WriteString(output, l.entries[i].String())
	}
}

// Tail writes the last number entries to the writer
func (l *Logger) Tail(output io.Writer, number int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if number > len(l.entries) {
		number = len(l.entries)
	}
	for i := len(l.entries) - number; i < len(l.entries); i++ {
		io.WriteString(output, l.entries[i].String())
	}
}

// SetEcho mirrors new entries to output. A nil writer turns echoing off
func (l *Logger) SetEcho(output io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.echo = output
}

// Len returns the number of retained entries
func (l *Logger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

const maxCentral = 512

var central = NewLogger(maxCentral)

// Log adds an entry to the central logger
func Log(tag string, detail any) {
	central.Log(tag, detail)
}

// Logf adds a formatted entry to the central logger
func Logf(tag string, format string, args ...any) {
	central.Logf(tag, format, args...)
}

// Clear the central logger
func Clear() {
	central.Clear()
}

// Write the central logger to output
func Write(output io.Writer) {
	central.Write(output)
}

// Tail writes the last number entries of the central logger to output
func Tail(output io.Writer, number int) {
	central.Tail(output, number)
}

// SetEcho mirrors new central entries to output
func SetEcho(output io.Writer) {
	central.SetEcho(output)
}
