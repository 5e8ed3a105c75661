package logging

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

type contextKey string

const loggerKey = contextKey("logger")

var (
	defaultLogger     log.Logger
	defaultLoggerOnce sync.Once
)

func DefaultLogger() log.Logger {
	defaultLoggerOnce.Do(func() {
		defaultLogger = NewLogger(os.Stderr, "kilnsos", false)
	})
	return defaultLogger
}

// NewLogger returns a logfmt logger tagged with component. Debug records are dropped unless debug is set
func NewLogger(w io.Writer, component string, debug bool) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "component", component)

	if debug {
		return level.NewFilter(logger, level.AllowDebug())
	}

	return level.NewFilter(logger, level.AllowInfo())
}

func WithLogger(ctx context.Context, logger log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

func FromContext(ctx context.Context) log.Logger {
	if logger, ok := ctx.Value(loggerKey).(log.Logger); ok {
		return logger
	}
	return DefaultLogger()
}
