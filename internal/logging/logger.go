// Package logging configures the process-wide zerolog logger.
package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init sets up the global logger. Development gets a console writer; every
// other environment gets JSON lines with timestamps and callers.
func Init(serviceName, env, level string) {
	InitWithWriter(os.Stdout, serviceName, env, level)
}

func InitWithWriter(out io.Writer, serviceName, env, level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if env == "development" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}).With().
			Timestamp().
			Str("service", serviceName).
			Logger()
		return
	}

	log.Logger = zerolog.New(out).
		With().
		Timestamp().
		Caller().
		Str("service", serviceName).
		Logger()
}

// FromContext returns the request-scoped logger, or the global one.
func FromContext(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}
