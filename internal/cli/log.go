// Package cli implements the apisbr command-line interface.
//
// Commands are grouped by API: dados (Dados Abertos), ibge (Localidades and
// Agregados) and ipea (IPEA Data), plus uf, json, cache, config and serve.
// Every command that prints a table honors the global --format and
// --output flags.
//
// # Lookups
//
// Commands accept either an identifier or a title. Titles are resolved to
// identifiers first; when nothing matches exactly the similar results are
// listed, or offered in an interactive picker with --interactive.
//
// # Logging
//
// Logs go to stderr through charmbracelet/log, at the level set in the
// config file, or debug with --verbose (-v). Loggers are passed through
// context.Context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs the time an operation took, as in
// "Fetched 5570 municipalities (1.234s)".
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

func (p *progress) done(format string, args ...any) {
	args = append(args, time.Since(p.start).Round(time.Millisecond))
	p.logger.Debugf(format+" (%s)", args...)
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
