// Package logger is the structured logger shared by the server and its
// services. Its verbosity and request logging can be changed on a running
// process, which is how the SIGUSR1/SIGUSR2 controls reach it.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Logger is what services and handlers log through.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger

	Level() slog.Level
	SetLevel(level slog.Level)
	CycleLevel() slog.Level

	RequestLogging() bool
	SetRequestLogging(on bool)
	ToggleRequestLogging() bool
}

// Format selects the slog handler.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// levelCycle is the order CycleLevel steps through.
var levelCycle = []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError}

// Options configures New. Zero values give info level text on stdout with
// request logging off.
type Options struct {
	Level          slog.Level
	Format         Format
	Output         io.Writer
	RequestLogging bool
}

// SlogLogger is the slog-backed Logger. Children made by With share their
// parent's runtime controls.
type SlogLogger struct {
	logger   *slog.Logger
	controls *controls
}

type controls struct {
	level    slog.LevelVar
	requests atomic.Bool
}

func New(opts Options) *SlogLogger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	c := &controls{}
	c.level.Set(opts.Level)
	c.requests.Store(opts.RequestLogging)

	handlerOpts := &slog.HandlerOptions{Level: &c.level}
	var handler slog.Handler
	if opts.Format == FormatJSON {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	return &SlogLogger{logger: slog.New(handler), controls: c}
}

// Discard drops every record.
func Discard() *SlogLogger {
	return New(Options{Level: slog.LevelError + 1, Output: io.Discard})
}

// ParseLevel maps debug, info, warn(ing) and error to slog levels, case
// insensitively. Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// ParseFormat returns FormatJSON for "json" and FormatText otherwise.
func ParseFormat(format string) Format {
	if strings.EqualFold(format, string(FormatJSON)) {
		return FormatJSON
	}
	return FormatText
}

func (l *SlogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *SlogLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *SlogLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *SlogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

func (l *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{logger: l.logger.With(args...), controls: l.controls}
}

func (l *SlogLogger) Level() slog.Level         { return l.controls.level.Level() }
func (l *SlogLogger) SetLevel(level slog.Level) { l.controls.level.Set(level) }

// CycleLevel moves to the next of debug, info, warn and error, wrapping
// back to debug, and returns the new level. A level outside the cycle
// restarts it at debug.
func (l *SlogLogger) CycleLevel() slog.Level {
	next := levelCycle[0]
	current := l.Level()
	for i, lvl := range levelCycle {
		if lvl == current {
			next = levelCycle[(i+1)%len(levelCycle)]
			break
		}
	}
	l.SetLevel(next)
	return next
}

// RequestLogging reports whether the router should log each request.
func (l *SlogLogger) RequestLogging() bool      { return l.controls.requests.Load() }
func (l *SlogLogger) SetRequestLogging(on bool) { l.controls.requests.Store(on) }

// ToggleRequestLogging flips request logging and returns the new state.
func (l *SlogLogger) ToggleRequestLogging() bool {
	for {
		old := l.controls.requests.Load()
		if l.controls.requests.CompareAndSwap(old, !old) {
			return !old
		}
	}
}
