package dirsync

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger creates a new logger instance with a specified level and output.
func NewLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}
	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("lib", "dirsync").
		Logger()
}

// NewSplitLogger creates a logger writing to a console sink and a file
// sink with independent minimum levels (typically a terse console and a
// verbose file).
func NewSplitLogger(console io.Writer, consoleLevel zerolog.Level, file io.Writer, fileLevel zerolog.Level) zerolog.Logger {
	consoleOut := zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339, NoColor: true}
	fileOut := zerolog.ConsoleWriter{Out: file, TimeFormat: time.RFC3339, NoColor: true}
	multi := zerolog.MultiLevelWriter(
		&minLevelWriter{w: zerolog.MultiLevelWriter(consoleOut), min: consoleLevel},
		&minLevelWriter{w: zerolog.MultiLevelWriter(fileOut), min: fileLevel},
	)
	return zerolog.New(multi).
		With().
		Timestamp().
		Str("lib", "dirsync").
		Logger()
}

// minLevelWriter drops events below its minimum level.
type minLevelWriter struct {
	w   zerolog.LevelWriter
	min zerolog.Level
}

func (lw *minLevelWriter) Write(p []byte) (int, error) {
	return lw.w.Write(p)
}

func (lw *minLevelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < lw.min {
		return len(p), nil
	}
	return lw.w.WriteLevel(level, p)
}

// NewTestLogger creates a logger instance for tests with a specified verbosity.
func NewTestLogger(w io.Writer, verbose int) zerolog.Logger {
	var level zerolog.Level
	switch verbose {
	case 0:
		level = zerolog.WarnLevel
	case 1:
		level = zerolog.InfoLevel
	case 2:
		level = zerolog.DebugLevel
	default:
		level = zerolog.TraceLevel
	}
	return NewLogger(w, level)
}

// LogLevelFromString parses a string to a zerolog.Level.
func LogLevelFromString(levelStr string) (zerolog.Level, error) {
	return zerolog.ParseLevel(strings.ToLower(levelStr))
}

// DefaultLogger returns a logger with default settings (warn level, stderr output).
func DefaultLogger() zerolog.Logger {
	return NewLogger(os.Stderr, zerolog.WarnLevel)
}
