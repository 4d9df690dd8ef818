package logger_test

import (
	"errors"
	"strings"
	"testing"

	"pqagent/internal/logger"
)

func TestLoggerWriteAndTail(t *testing.T) {
	log := logger.NewLogger(100)
	w := &strings.Builder{}

	log.Write(w)
	if w.String() != "" {
		t.Fatalf("expected empty log, got %q", w.String())
	}

	log.Log("test", "this is a test")
	log.Log("test2", "this is another test")
	log.Write(w)
	if want := "test: this is a test\ntest2: this is another test\n"; w.String() != want {
		t.Fatalf("got %q, want %q", w.String(), want)
	}

	// asking for too many entries in a Tail() should be okay
	w.Reset()
	log.Tail(w, 100)
	if want := "test: this is a test\ntest2: this is another test\n"; w.String() != want {
		t.Fatalf("got %q, want %q", w.String(), want)
	}

	w.Reset()
	log.Tail(w, 1)
	if want := "test2: this is another test\n"; w.String() != want {
		t.Fatalf("got %q, want %q", w.String(), want)
	}

	w.Reset()
	log.Tail(w, 0)
	if w.String() != "" {
		t.Fatalf("expected no entries, got %q", w.String())
	}
}

func TestLoggerCollapsesRepeats(t *testing.T) {
	log := logger.NewLogger(100)
	w := &strings.Builder{}

	for i := 0; i < 3; i++ {
		log.Log("loop", "current game state: Combat (0xC3)")
	}
	log.Write(w)
	if want := "loop: current game state: Combat (0xC3) (repeat x3)\n"; w.String() != want {
		t.Fatalf("got %q, want %q", w.String(), want)
	}
	if log.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", log.Len())
	}
}

func TestLoggerBounded(t *testing.T) {
	log := logger.NewLogger(3)
	for _, s := range []string{"a", "b", "c", "d", "e"} {
		log.Log("tag", s)
	}
	w := &strings.Builder{}
	log.Write(w)
	if want := "tag: c\ntag: d\ntag: e\n"; w.String() != want {
		t.Fatalf("got %q, want %q", w.String(), want)
	}
}

func TestLoggerErrorsAndFormatting(t *testing.T) {
	log := logger.NewLogger(10)
	w := &strings.Builder{}

	err := errors.New("test error")
	log.Log("tag", err)
	log.Logf("tag", "wrapped: %v", err)
	log.Log("tag", 100)
	log.Write(w)
	if want := "tag: test error\ntag: wrapped: test error\ntag: 100\n"; w.String() != want {
		t.Fatalf("got %q, want %q", w.String(), want)
	}
}

func TestLoggerEcho(t *testing.T) {
	log := logger.NewLogger(10)
	echo := &strings.Builder{}
	log.SetEcho(echo)
	log.Log("memory", "warning: cannot read")
	log.Log("memory", "warning: cannot read")
	if want := "memory: warning: cannot read\nmemory: warning: cannot read\n"; echo.String() != want {
		t.Fatalf("got %q, want %q", echo.String(), want)
	}
}

func TestColorizerHighlightsWarnings(t *testing.T) {
	out := &strings.Builder{}
	c := logger.NewColorizer(out)
	n, err := c.Write([]byte("memory: warning: cannot read address 0xC292\n"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if n != len("memory: warning: cannot read address 0xC292\n") {
		t.Fatalf("unexpected byte count %d", n)
	}
	if !strings.Contains(out.String(), "\033[31m") {
		t.Fatalf("expected red highlight in %q", out.String())
	}
	if !strings.Contains(out.String(), "cannot read address 0xC292") {
		t.Fatalf("detail missing from %q", out.String())
	}
}
