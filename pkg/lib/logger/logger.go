package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"foodgram/pkg/config"
	"foodgram/pkg/lib/logger/handler/slogpretty"
)

const serviceName = "foodgram"

var ErrUnknownEnv = errors.New("unknown env")

// SetupLogger builds the process logger on stdout.
func SetupLogger(env string) (*slog.Logger, error) {
	return New(env, os.Stdout)
}

// New picks the handler by env: colored text for local, JSON otherwise.
// Every record carries service and env attributes.
func New(env string, out io.Writer) (*slog.Logger, error) {
	var handler slog.Handler

	switch env {
	case config.EnvLocal:
		handler = slogpretty.PrettyHandlerOptions{
			SlogOpts: &slog.HandlerOptions{Level: slog.LevelDebug},
		}.NewPrettyHandler(out)
	case config.EnvDev:
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug})
	case config.EnvProd:
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		return nil, fmt.Errorf("failed to init logger: %w %q", ErrUnknownEnv, env)
	}

	return slog.New(handler).With(
		slog.String("service", serviceName),
		slog.String("env", env),
	), nil
}
