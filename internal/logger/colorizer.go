package logger

import (
	"io"
	"strings"
)

const (
	ansiNormal = "\033[0m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[31m"
)

// Colorizer is an io.Writer that highlights echoed log lines. The tag is
// written in bold and lines reporting a warning or error are written in red.
// Only wrap terminals with it.
type Colorizer struct {
	out io.Writer
}

// NewColorizer wraps out
func NewColorizer(out io.Writer) Colorizer {
	return Colorizer{out: out}
}

func (c Colorizer) Write(p []byte) (int, error) {
	line := string(p)

	tag, detail, ok := strings.Cut(line, ": ")
	if !ok {
		return c.out.Write(p)
	}

	s := strings.Builder{}
	lower := strings.ToLower(detail)
	alert := strings.Contains(lower, "warning") || strings.Contains(lower, "error")
	if alert {
		s.WriteString(ansiRed)
	}
	s.WriteString(ansiBold)
	s.WriteString(tag)
	s.WriteString(ansiNormal)
	if alert {
		s.WriteString(ansiRed)
	}
	s.WriteString(": ")
	s.WriteString(strings.TrimRight(detail, "\n"))
	s.WriteString(ansiNormal)
	s.WriteString("\n")

	if _, err := io.WriteString(c.out, s.String()); err != nil {
		return 0, err
	}
	return len(p), nil
}
