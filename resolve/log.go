package resolve

import (
	"log/slog"
	"os"
)

// newLogger builds the resolver's debug logger. Silent (level Info, which
// emits nothing since every call site logs at Debug) unless
// JAQ_DEBUG_RESOLVE is set, matching the lexer's DEVCMD_DEBUG_LEXER
// convention: debug tracing is opt-in and never touched by default
// compilation.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("JAQ_DEBUG_RESOLVE") != "" {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}
