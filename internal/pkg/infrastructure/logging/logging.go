package logging

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type loggerContextKey struct {
	name string
}

var loggerCtxKey = &loggerContextKey{"logger"}

// NewLogger creates a service wide json logger and stores it in the
// returned context.
func NewLogger(ctx context.Context, serviceName, serviceVersion string) (context.Context, zerolog.Logger) {
	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", strings.ToLower(serviceName)).
		Str("version", serviceVersion).
		Logger()

	return NewContextWithLogger(ctx, logger), logger
}

func NewContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey, logger)
}

// GetLoggerFromContext returns the logger stored in ctx, or the default
// global logger if none has been stored.
func GetLoggerFromContext(ctx context.Context) zerolog.Logger {
	logger, ok := ctx.Value(loggerCtxKey).(zerolog.Logger)
	if !ok {
		return log.Logger
	}

	return logger
}
