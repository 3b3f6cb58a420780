package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(slog.New(slog.NewTextHandler(os.Stdout, nil)))
}

// Init configures the process logger: JSON in production, text elsewhere.
func Init(env string) {
	InitWithWriter(env, os.Stdout)
}

func InitWithWriter(env string, w io.Writer) {
	var handler slog.Handler
	switch strings.ToLower(env) {
	case "production", "prod":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	l := slog.New(handler)
	current.Store(l)
	slog.SetDefault(l)
}

func L() *slog.Logger {
	return current.Load()
}

func Debug(msg string, args ...any) {
	L().Debug(msg, normalize(args)...)
}

func Info(msg string, args ...any) {
	L().Info(msg, normalize(args)...)
}

func Warn(msg string, args ...any) {
	L().Warn(msg, normalize(args)...)
}

func Error(msg string, args ...any) {
	L().Error(msg, normalize(args)...)
}

func Fatal(msg string, args ...any) {
	L().Error(msg, normalize(args)...)
	os.Exit(1)
}

func InfoContext(ctx context.Context, msg string, args ...any) {
	L().InfoContext(ctx, msg, normalize(args)...)
}

func ErrorContext(ctx context.Context, msg string, args ...any) {
	L().ErrorContext(ctx, msg, normalize(args)...)
}

// normalize lets callers pass a bare error or value without a key.
// Anything in key position that is not a string or slog.Attr gets one.
func normalize(args []any) []any {
	if len(args) == 0 {
		return args
	}

	out := make([]any, 0, len(args)+2)
	for i := 0; i < len(args); i++ {
		switch v := args[i].(type) {
		case string:
			if i+1 < len(args) {
				out = append(out, v, args[i+1])
				i++
			} else {
				out = append(out, slog.String("detail", v))
			}
		case slog.Attr:
			out = append(out, v)
		case error:
			out = append(out, slog.Any("error", v))
		default:
			out = append(out, slog.Any("detail", v))
		}
	}
	return out
}
