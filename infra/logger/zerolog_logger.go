package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger adapts rs/zerolog to the core Logger interface.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger creates a logger tagged with the component name. APP_ENV=dev
// selects the human-readable console writer, anything else emits JSON. The
// minimum level can be changed with SR_LOG_LEVEL (debug|info|warn|error).
func NewZerologLogger(component string) Logger {
	out := zerolog.New(os.Stdout)
	if strings.EqualFold(os.Getenv("APP_ENV"), "dev") {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	z := out.Level(levelFromEnv()).With().
		Timestamp().
		Str("service", "swiftresponder").
		Str("component", component).
		Logger()
	return &ZerologLogger{log: z}
}

func levelFromEnv() zerolog.Level {
	switch strings.ToLower(os.Getenv("SR_LOG_LEVEL")) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

// Debugw logs at debug level with structured fields attached.
func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
