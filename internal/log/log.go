package log

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelError Level = "ERROR"
)

var (
	base       zerolog.Logger
	loggerOnce sync.Once
)

// initLogger initializes the global zerolog logger to write to stderr.
// The minimum level defaults to INFO and can be overridden via LOG_LEVEL.
func initLogger() {
	loggerOnce.Do(func() {
		level := zerolog.InfoLevel
		if env := os.Getenv("LOG_LEVEL"); env != "" {
			if parsed, err := zerolog.ParseLevel(env); err == nil {
				level = parsed
			}
		}
		zerolog.SetGlobalLevel(level)

		base = zerolog.New(os.Stderr).With().
			Timestamp().
			Str("service", "classclock").
			Logger()
	})
}

func SetLevel(l Level) {
	initLogger()
	switch l {
	case LevelDebug:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case LevelInfo:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case LevelError:
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	}
}

func Debug(msg string, kv ...any) {
	initLogger()
	emit(base.Debug(), msg, kv...)
}

func Info(msg string, kv ...any) {
	initLogger()
	emit(base.Info(), msg, kv...)
}

func Error(msg string, err error, kv ...any) {
	initLogger()
	emit(base.Error().Err(err), msg, kv...)
}

// emit appends structured key-value pairs to the event and fires it.
// kv is expected as pairs: key, value, key, value, ...; a trailing odd
// argument is ignored, and non-string keys are skipped.
func emit(ev *zerolog.Event, msg string, kv ...any) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, kv[i+1])
	}
	ev.Msg(msg)
}
