package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// DefaultDir is where log files go, relative to the working directory (project root when run via go run ./cmd/portfolio).
const DefaultDir = "logs"

const fileName = "portfolio.log"

// Options configures New. Zero values fall back to DefaultDir, info level, console on and a 64 line tail.
type Options struct {
	Dir      string
	Level    string // debug, info, warn, error
	Console  bool
	TailSize int
}

// Logger is a zerolog logger that writes to logs/portfolio.log, optionally the console,
// and keeps the most recent lines in memory so the debug overlay can show them.
type Logger struct {
	zerolog.Logger

	file *os.File
	tail *tailWriter
}

// New opens (appending) the log file and returns a Logger. The logs directory is created if needed.
func New(opts Options) (*Logger, error) {
	dir := opts.Dir
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, fileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	size := opts.TailSize
	if size <= 0 {
		size = 64
	}
	tail := &tailWriter{max: size}

	writers := []io.Writer{
		f,
		zerolog.ConsoleWriter{Out: tail, NoColor: true, TimeFormat: "15:04:05"},
	}
	if opts.Console {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"})
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseLevel(opts.Level)).
		With().Timestamp().Str("app", "portfolio").Logger()

	return &Logger{Logger: zl, file: f, tail: tail}, nil
}

// ParseLevel maps a config string to a zerolog level. Unknown values are info.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Component returns a child logger tagged with component=name.
func (l *Logger) Component(name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

// Lines returns a copy of the most recent formatted lines, oldest first.
func (l *Logger) Lines() []string {
	return l.tail.lines()
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// tailWriter is a bounded in-memory line buffer. zerolog issues one Write per event.
type tailWriter struct {
	mu  sync.Mutex
	buf []string
	max int
}

func (w *tailWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line == "" {
			continue
		}
		w.buf = append(w.buf, line)
	}
	if over := len(w.buf) - w.max; over > 0 {
		w.buf = append(w.buf[:0], w.buf[over:]...)
	}
	return len(p), nil
}

func (w *tailWriter) lines() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.buf))
	copy(out, w.buf)
	return out
}
