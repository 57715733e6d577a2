package logging

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"
)

var current atomic.Pointer[zerolog.Logger]

func init() {
	l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	current.Store(&l)
}

func setLogger(l zerolog.Logger) {
	current.Store(&l)
}

// Logger returns the active package logger for structured call sites.
func Logger() zerolog.Logger {
	return *current.Load()
}

func Debugf(format string, args ...any) {
	current.Load().Debug().Msg(fmt.Sprintf(format, args...))
}

func Debug(msg string) {
	current.Load().Debug().Msg(msg)
}

func Infof(format string, args ...any) {
	current.Load().Info().Msg(fmt.Sprintf(format, args...))
}

func Warnf(format string, args ...any) {
	current.Load().Warn().Msg(fmt.Sprintf(format, args...))
}

func Errf(format string, args ...any) {
	current.Load().Error().Msg(fmt.Sprintf(format, args...))
}

// Logf writes at no level so the line survives any level filter short of Disabled.
func Logf(format string, args ...any) {
	current.Load().Log().Msg(fmt.Sprintf(format, args...))
}
