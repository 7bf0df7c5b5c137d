package app

import (
	"log/slog"
	"os"

	"github.com/rollbar/rollbar-go"

	"github.com/alem-hub/course-schedule/config"
	"github.com/alem-hub/course-schedule/pkg/logger"
)

// SetupLogger builds the process-wide slog logger: JSON or text by
// LOG_FORMAT, wrapped with a Rollbar reporter when a token is configured.
// The returned flush function must be called before exit.
func SetupLogger(cfg *config.Config, component string) (*slog.Logger, func()) {
	opts := &slog.HandlerOptions{Level: logger.ParseLevel(cfg.Observability.LogLevel)}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "json" || cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	flush := func() {}
	if cfg.Observability.RollbarToken != "" {
		host, _ := os.Hostname()
		client := logger.NewRollbarClient(logger.RollbarOptions{
			Token:       cfg.Observability.RollbarToken,
			Environment: string(cfg.App.Environment),
			CodeVersion: cfg.App.Version,
			ServerHost:  host,
		})
		handler = logger.NewRollbarHandler(handler, client)
		flush = func() { flushRollbar(client) }
	}

	log := slog.New(handler).With("app", cfg.App.Name, "component", component)
	slog.SetDefault(log)
	return log, flush
}

func flushRollbar(client *rollbar.Client) {
	client.Wait()
}

// HTTPLogger returns the JSON request logger used by the API server.
func HTTPLogger(cfg *config.Config) *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	return logger.New(opts).With(logger.Component("http"), logger.String("app", cfg.App.Name))
}
