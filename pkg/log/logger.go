package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	pmpoerrors "github.com/YuminosukeSato/pmpo/pkg/errors"
)

var (
	providerMu sync.RWMutex
	provider   LoggerProvider = NewZerologProvider(os.Stderr, LevelInfo)
)

// SetupLogger installs a zerolog-backed provider writing JSON lines to w at
// the given level ("debug", "info", "warn" or "error"). Package warnings
// emitted through pkg/errors.Warn are routed to the new provider.
func SetupLogger(loglevel string, w io.Writer) error {
	level, err := ParseLevel(loglevel)
	if err != nil {
		return err
	}
	if w == nil {
		w = os.Stderr
	}
	SetProvider(NewZerologProvider(w, level))
	return nil
}

// ParseLevel converts a textual level to a Level.
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, errors.Newf("invalid log level: %s", level)
	}
}

// SetProvider replaces the global provider and hooks pkg/errors warnings into it.
func SetProvider(p LoggerProvider) {
	providerMu.Lock()
	provider = p
	providerMu.Unlock()

	warnLogger := p.GetLoggerWithName("pmpo.warnings")
	pmpoerrors.SetZerologWarnFunc(func(w error) {
		warnLogger.Warn(w.Error(), ErrorTypeKey, fmt.Sprintf("%T", w))
	})
}

// GetLogger returns the default logger of the global provider.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLogger()
}

// GetLoggerWithName returns a logger tagged with the component name.
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLoggerWithName(name)
}

// ZerologProvider creates Loggers backed by a shared zerolog.Logger.
type ZerologProvider struct {
	mu    sync.RWMutex
	base  zerolog.Logger
	level Level
}

// NewZerologProvider returns a provider emitting JSON lines to w.
func NewZerologProvider(w io.Writer, level Level) *ZerologProvider {
	return &ZerologProvider{
		base:  zerolog.New(w).With().Timestamp().Logger(),
		level: level,
	}
}

// GetLogger implements LoggerProvider.
func (p *ZerologProvider) GetLogger() Logger {
	return &zerologLogger{provider: p, zl: p.base}
}

// GetLoggerWithName implements LoggerProvider.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	return &zerologLogger{provider: p, zl: p.base.With().Str(ComponentKey, name).Logger()}
}

// SetLevel implements LoggerProvider. It affects loggers already handed out.
func (p *ZerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	p.level = level
	p.mu.Unlock()
}

func (p *ZerologProvider) currentLevel() Level {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.level
}

type zerologLogger struct {
	provider *ZerologProvider
	zl       zerolog.Logger
}

func (l *zerologLogger) Debug(msg string, fields ...any) { l.log(LevelDebug, msg, fields) }
func (l *zerologLogger) Info(msg string, fields ...any)  { l.log(LevelInfo, msg, fields) }
func (l *zerologLogger) Warn(msg string, fields ...any)  { l.log(LevelWarn, msg, fields) }
func (l *zerologLogger) Error(msg string, fields ...any) { l.log(LevelError, msg, fields) }

func (l *zerologLogger) With(fields ...any) Logger {
	err, rest := splitError(fields)
	ctx := l.zl.With()
	if err != nil {
		ctx = ctx.AnErr(ErrorKey, err)
	}
	if len(rest) > 0 {
		ctx = ctx.Fields(normalizeFields(rest))
	}
	return &zerologLogger{provider: l.provider, zl: ctx.Logger()}
}

func (l *zerologLogger) Enabled(_ context.Context, level Level) bool {
	return level >= l.provider.currentLevel()
}

func (l *zerologLogger) log(level Level, msg string, fields []any) {
	if level < l.provider.currentLevel() {
		return
	}
	var ev *zerolog.Event
	switch level {
	case LevelDebug:
		ev = l.zl.Debug()
	case LevelInfo:
		ev = l.zl.Info()
	case LevelWarn:
		ev = l.zl.Warn()
	default:
		ev = l.zl.Error()
	}
	err, rest := splitError(fields)
	if err != nil {
		ev = ev.AnErr(ErrorKey, err)
		if st := extractStacktrace(err); st != "" {
			ev = ev.Str(StacktraceKey, st)
		}
	}
	if len(rest) > 0 {
		ev = ev.Fields(normalizeFields(rest))
	}
	ev.Msg(msg)
}

// splitError detaches a leading error value from a key/value list.
func splitError(fields []any) (error, []any) {
	if len(fields)%2 == 1 {
		if err, ok := fields[0].(error); ok {
			return err, fields[1:]
		}
	}
	return nil, fields
}

// normalizeFields stringifies keys and pads a dangling key, mirroring slog's !BADKEY.
func normalizeFields(fields []any) []any {
	out := make([]any, 0, len(fields)+1)
	for i := 0; i < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		if i+1 >= len(fields) {
			out = append(out, "!BADKEY", fields[i])
			break
		}
		out = append(out, key, fields[i+1])
	}
	return out
}

// extractStacktrace returns the first safe detail recorded by cockroachdb/errors.
func extractStacktrace(err error) string {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}
