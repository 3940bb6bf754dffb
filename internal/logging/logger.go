package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// Logger writes plain progress lines; Verbosef and Measure only speak when
// Verbose is set. RunID, when set, tags verbose lines so interleaved runs in
// a shared log can be told apart.
type Logger struct {
	Writer  io.Writer
	Verbose bool
	RunID   string
}

func New(writer io.Writer, verbose bool) Logger {
	return Logger{Writer: writer, Verbose: verbose}
}

// WithRun returns a copy tagged with a fresh run id.
func (l Logger) WithRun() Logger {
	l.RunID = uuid.NewString()
	return l
}

func (l Logger) Infof(format string, args ...any) {
	if l.Writer != nil {
		fmt.Fprintf(l.Writer, format+"\n", args...)
	}
}

func (l Logger) Warnf(format string, args ...any) {
	l.Infof("Warning: "+format, args...)
}

func (l Logger) Verbosef(format string, args ...any) {
	if l.Verbose {
		l.Infof(l.verbosePrefix()+format, args...)
	}
}

func (l Logger) verbosePrefix() string {
	id := l.RunID
	if id == "" {
		return "Verbose: "
	}
	if len(id) > 8 {
		id = id[:8]
	}
	return "Verbose [" + id + "]: "
}

// Measure starts a timer; calling the returned func logs the elapsed time.
func (l Logger) Measure(label string) func() {
	if !l.Verbose {
		return func() {}
	}
	start := time.Now()
	return func() {
		l.Verbosef("%s took %s", label, time.Since(start).Round(time.Millisecond))
	}
}
