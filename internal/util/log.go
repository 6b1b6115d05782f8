package util

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string

// CTXKeyDisableLogger marks a context whose callers asked for silence.
const CTXKeyDisableLogger contextKey = "disable_logger"

// LogFromContext returns the request-scoped logger stored in ctx, falling
// back to the global logger.
func LogFromContext(ctx context.Context) *zerolog.Logger {
	l := log.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		if ShouldDisableLogger(ctx) {
			return l
		}
		l = &log.Logger
	}
	return l
}

// DisableLogger returns a context whose LogFromContext logger stays disabled.
func DisableLogger(ctx context.Context, shouldDisable bool) context.Context {
	return context.WithValue(ctx, CTXKeyDisableLogger, shouldDisable)
}

// ShouldDisableLogger reports whether ctx was marked by DisableLogger.
func ShouldDisableLogger(ctx context.Context) bool {
	s, ok := ctx.Value(CTXKeyDisableLogger).(bool)
	return ok && s
}
