package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"codeberg.org/mutker/energymon/internal/errors"
	"github.com/rs/zerolog"
)

const (
	defaultDirPerm  = 0o755
	defaultFilePerm = 0o644
)

var log zerolog.Logger

type LogLevel int8

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

type LogEvent struct {
	*zerolog.Event
}

func (e *LogEvent) Msg(msg string) {
	e.Event.Msg(msg)
}

func (e *LogEvent) Send() {
	e.Event.Send()
}

// Options configures the process-wide logger.
type Options struct {
	Level LogLevel
	// File is an append-only JSON log sink. Empty disables it.
	File string
	// IsService drops console timestamps; journald adds its own.
	IsService bool
	// Console defaults to os.Stdout.
	Console io.Writer
}

// sink owns the log file opened by Init.
type sink struct {
	file *os.File
}

func (s *sink) Close() error {
	if s.file == nil {
		return nil
	}

	errFactory := errors.New()
	if err := s.file.Sync(); err != nil {
		s.file.Close()
		return errFactory.Wrap(errors.ErrShutdownFailed, err).WithData("sync_log_file")
	}
	if err := s.file.Close(); err != nil {
		return errFactory.Wrap(errors.ErrShutdownFailed, err).WithData("close_log_file")
	}
	s.file = nil

	return nil
}

// Init initializes the process-wide logger. The returned closer flushes and
// closes the file sink and must be called on every exit path.
func Init(opts Options) (io.Closer, error) {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	output := zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: time.RFC3339,
	}

	if opts.IsService {
		output.TimeFormat = ""
		output.FormatTimestamp = func(_ interface{}) string {
			return ""
		}
	}

	s := &sink{}
	var w io.Writer = output

	if opts.File != "" {
		errFactory := errors.New()
		if err := os.MkdirAll(filepath.Dir(opts.File), defaultDirPerm); err != nil {
			return nil, errFactory.Wrap(errors.ErrOpenLogFile, err).WithData(opts.File)
		}

		f, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, defaultFilePerm)
		if err != nil {
			return nil, errFactory.Wrap(errors.ErrOpenLogFile, err).WithData(opts.File)
		}
		s.file = f
		w = zerolog.MultiLevelWriter(output, f)
	}

	log = zerolog.New(w).Level(zerolog.Level(opts.Level)).With().Timestamp().Logger()

	return s, nil
}

// New returns a JSON logger writing to w at the given level.
func New(w io.Writer, level LogLevel) Logger {
	return &zlogger{zl: zerolog.New(w).Level(zerolog.Level(level)).With().Timestamp().Logger()}
}

// Default returns the process-wide logger configured by Init.
func Default() Logger {
	return &zlogger{zl: log}
}

// ParseLevel converts a configured level name into a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, errors.New().WithData(errors.ErrInvalidLogLevel, s)
	}
}

// IsService checks if the application is running as a service
func IsService() bool {
	if _, err := os.Stdin.Stat(); err != nil {
		return true
	}
	if os.Getenv("SERVICE_NAME") != "" || os.Getenv("INVOCATION_ID") != "" {
		return true
	}
	if os.Getppid() == 1 {
		return true
	}

	return syscall.Getpgrp() == syscall.Getpid()
}

// Debug logs a debug message
func Debug() *LogEvent {
	return &LogEvent{log.Debug()}
}

// Info logs an info message
func Info() *LogEvent {
	return &LogEvent{log.Info()}
}

// Warn logs a warning message
func Warn() *LogEvent {
	return &LogEvent{log.Warn()}
}

// Error logs an error message
func Error() *LogEvent {
	return &LogEvent{log.Error()}
}

// Fatal logs a fatal message and exits the program
func Fatal() *LogEvent {
	return &LogEvent{log.Fatal()}
}

type zlogger struct {
	zl zerolog.Logger
}

func (l *zlogger) Debug() *LogEvent {
	return &LogEvent{l.zl.Debug()}
}

func (l *zlogger) Info() *LogEvent {
	return &LogEvent{l.zl.Info()}
}

func (l *zlogger) Warn() *LogEvent {
	return &LogEvent{l.zl.Warn()}
}

func (l *zlogger) Error() *LogEvent {
	return &LogEvent{l.zl.Error()}
}

// ErrorWithCode logs an error message with a specific error code
func (l *zlogger) ErrorWithCode(err errors.Error) *LogEvent {
	return &LogEvent{l.zl.Error().
		Str("error_code", string(err.Code())).
		Str("error_message", err.Error()).
		AnErr("error", err.Unwrap())}
}

// ErrorWithContext logs an error together with the component and operation
// that surfaced it.
func (l *zlogger) ErrorWithContext(err error, component, operation string) *LogEvent {
	return &LogEvent{l.zl.Error().
		Str("component", component).
		Str("operation", operation).
		Str("error_code", string(errors.CodeOf(err))).
		Err(err)}
}

func (l *zlogger) With(key, value string) Logger {
	return &zlogger{zl: l.zl.With().Str(key, value).Logger()}
}
