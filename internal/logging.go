// Package internal holds process setup shared by the commands.
package internal

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogging configures zerolog for the process. Development gets a console
// writer; other environments log JSON. level overrides the environment
// default when it parses.
func SetupLogging(environment, level string) zerolog.Logger {
	return SetupLoggingWithWriter(environment, level, os.Stdout)
}

// SetupLoggingWithWriter is SetupLogging writing to w.
func SetupLoggingWithWriter(environment, level string, w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	lvl := zerolog.InfoLevel
	if environment == "development" {
		lvl = zerolog.DebugLevel
	}
	if level != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil {
			lvl = parsed
		}
	}

	out := w
	if environment == "development" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	logger := zerolog.New(out).With().Timestamp().Logger().Level(lvl)
	log.Logger = logger
	return logger
}
