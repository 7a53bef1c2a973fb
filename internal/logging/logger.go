// Package logging provides structured JSON logging for gitai using slog.
//
// Usage:
//
//	if err := logging.Init(invocationID); err != nil {
//	    // handle error
//	}
//	defer logging.Close()
//
//	ctx = logging.WithInvocation(ctx, invocationID)
//	logging.Info(ctx, "checkpoint recorded", slog.String("base", baseHex))
package logging

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/git-ai-oss/gitai/internal/paths"
	"github.com/git-ai-oss/gitai/internal/validation"
)

// LogLevelEnvVar is the environment variable that controls log verbosity.
const LogLevelEnvVar = "GITAI_LOG_LEVEL"

var (
	logger *slog.Logger

	logFile      *os.File
	logBufWriter *bufio.Writer

	currentInvocationID string

	mu sync.RWMutex

	logLevelGetter func() string
)

// SetLogLevelGetter registers a callback used to read the log level from
// settings when GITAI_LOG_LEVEL is unset. Kept separate from config to
// avoid an import cycle between logging and config.
func SetLogLevelGetter(getter func() string) {
	mu.Lock()
	defer mu.Unlock()
	logLevelGetter = getter
}

// Init initializes the package logger for one wrapper-pipeline invocation,
// writing JSON logs to .git/gitai/logs/<invocation-id>.log. Falls back to
// stderr if the log file cannot be created.
func Init(invocationID string) error {
	if err := validation.ValidateInvocationID(invocationID); err != nil {
		return fmt.Errorf("invalid invocation ID for logging: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()

	if logBufWriter != nil {
		_ = logBufWriter.Flush()
		logBufWriter = nil
	}
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}

	levelStr := os.Getenv(LogLevelEnvVar)
	if levelStr == "" && logLevelGetter != nil {
		levelStr = logLevelGetter()
	}
	level := parseLogLevel(levelStr)
	if levelStr != "" && !isValidLogLevel(levelStr) {
		fmt.Fprintf(os.Stderr, "[gitai] warning: invalid log level %q, defaulting to INFO\n", levelStr)
	}

	state, err := paths.GitaiStateDir()
	if err != nil {
		logger = createLogger(os.Stderr, level)
		return nil
	}

	logsPath := filepath.Join(state, paths.LogsDir)
	if err := os.MkdirAll(logsPath, 0o750); err != nil {
		logger = createLogger(os.Stderr, level)
		return nil
	}

	logFilePath := filepath.Join(logsPath, invocationID+".log")
	f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) //nolint:gosec // invocationID validated above
	if err != nil {
		logger = createLogger(os.Stderr, level)
		return nil
	}

	logFile = f
	logBufWriter = bufio.NewWriterSize(f, 8192)
	logger = createLogger(logBufWriter, level)
	currentInvocationID = invocationID
	return nil
}

// Close flushes and closes the current log file. Safe to call multiple
// times or when Init was never called.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logBufWriter != nil {
		_ = logBufWriter.Flush()
		logBufWriter = nil
	}
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	currentInvocationID = ""
}

func getLogger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func getInvocationID() string {
	mu.RLock()
	defer mu.RUnlock()
	return currentInvocationID
}

func createLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func isValidLogLevel(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR", "":
		return true
	default:
		return false
	}
}

// Debug logs at DEBUG level, pulling context attributes automatically.
func Debug(ctx context.Context, msg string, attrs ...any) { log(ctx, slog.LevelDebug, msg, attrs...) }

// Info logs at INFO level.
func Info(ctx context.Context, msg string, attrs ...any) { log(ctx, slog.LevelInfo, msg, attrs...) }

// Warn logs at WARN level.
func Warn(ctx context.Context, msg string, attrs ...any) { log(ctx, slog.LevelWarn, msg, attrs...) }

// Error logs at ERROR level.
func Error(ctx context.Context, msg string, attrs ...any) { log(ctx, slog.LevelError, msg, attrs...) }

// LogDuration logs msg with a duration_ms attribute computed from start.
// Intended for defer:
//
//	defer logging.LogDuration(ctx, slog.LevelInfo, "git invocation completed", time.Now())
func LogDuration(ctx context.Context, level slog.Level, msg string, start time.Time, attrs ...any) {
	durationMs := time.Since(start).Milliseconds()
	allAttrs := make([]any, 0, len(attrs)+1)
	allAttrs = append(allAttrs, slog.Int64("duration_ms", durationMs))
	allAttrs = append(allAttrs, attrs...)
	log(ctx, level, msg, allAttrs...)
}

func log(ctx context.Context, level slog.Level, msg string, attrs ...any) {
	l := getLogger()

	var allAttrs []any
	globalInvocationID := getInvocationID()
	if globalInvocationID != "" {
		allAttrs = append(allAttrs, slog.String("invocation_id", globalInvocationID))
	}
	for _, a := range attrsFromContext(ctx, globalInvocationID) {
		allAttrs = append(allAttrs, a)
	}
	allAttrs = append(allAttrs, attrs...)

	l.Log(nil, level, msg, allAttrs...) //nolint:staticcheck // nil context intentional; values already extracted
}

func attrsFromContext(ctx context.Context, globalInvocationID string) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var attrs []slog.Attr

	if globalInvocationID == "" {
		if v := ctx.Value(invocationIDKey); v != nil {
			if s, ok := v.(string); ok && s != "" {
				attrs = append(attrs, slog.String("invocation_id", s))
			}
		}
	}
	if v := ctx.Value(sessionIDKey); v != nil {
		if s, ok := v.(string); ok && s != "" {
			attrs = append(attrs, slog.String("session_id", s))
		}
	}
	if v := ctx.Value(componentKey); v != nil {
		if s, ok := v.(string); ok && s != "" {
			attrs = append(attrs, slog.String("component", s))
		}
	}
	if v := ctx.Value(commandKey); v != nil {
		if s, ok := v.(string); ok && s != "" {
			attrs = append(attrs, slog.String("command", s))
		}
	}
	return attrs
}
