package internal

import (
	"context"
	"fmt"
	"log"
	"os"
)

// Prefix creates a consistent prefix for all commands that work on one entry of one archive.
func Prefix(archive, entry string) string {
	return fmt.Sprintf(`"%s" [%s] - `, TruncateLeftWithPrefix(archive, 40, "..."), TruncateLeftWithPrefix(entry, 40, "..."))
}

// NewLogger creates a new logger that writes to os.Stderr with the given prefix.
func NewLogger(prefix string) *log.Logger {
	return log.New(os.Stderr, prefix, 0)
}

type loggerKey struct{}

// WithLogger attaches the logger to context.
func WithLogger(ctx context.Context, logger *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// Logger returns the logger attached to the given context, or the standard logger if there is none.
func Logger(ctx context.Context) *log.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return logger
	}

	return log.Default()
}

// TruncateLeftWithPrefix keeps the last n runes of text and prepends prefix only if truncation happens.
//
// Archive paths and entry names are most informative at the end.
func TruncateLeftWithPrefix(text string, n int, prefix string) string {
	rs := []rune(text)
	if len(rs) <= n {
		return text
	}

	return prefix + string(rs[len(rs)-max(0, n):])
}
