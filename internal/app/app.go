package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/vk/webstack/internal/config"
	"github.com/vk/webstack/internal/preflight"
)

// imageChecker resolves an image reference against its registry.
type imageChecker func(ctx context.Context, ref string, opts preflight.Options) (*preflight.Result, error)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	loader     config.Loader
	checkImage imageChecker
}

// NewApp is the constructor for the main application. The plan is written to
// outW and logs to logW, so the plan stays machine-readable.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:       outW,
		logger:     logger,
		config:     cfg,
		loader:     loader,
		checkImage: preflight.CheckImage,
	}
}
