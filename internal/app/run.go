package app

import (
	"context"
	"fmt"

	"github.com/vk/webstack/internal/ctxlog"
	"github.com/vk/webstack/internal/plan"
	"github.com/vk/webstack/internal/preflight"
	"github.com/vk/webstack/internal/topology"
)

// Run loads the declaration, synthesizes the topology and writes the plan.
// Nothing is written to the output unless every step succeeds.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	format, err := plan.ParseFormat(a.config.OutputFormat)
	if err != nil {
		return err
	}

	model, err := a.loader.Load(ctx, a.config.ConfigPaths...)
	if err != nil {
		return fmt.Errorf("failed to load declaration: %w", err)
	}
	if a.config.Image != "" && model.Task != nil {
		a.logger.Debug("Overriding task image.", "from", model.Task.Image, "to", a.config.Image)
		model.Task.Image = a.config.Image
	}

	topo, err := topology.Synthesize(ctx, model)
	if err != nil {
		return fmt.Errorf("failed to synthesize topology: %w", err)
	}

	if a.config.PreflightImage {
		a.logger.Info("Running image pre-flight check.", "image", topo.Outputs.ImageReference)
		opts := preflight.Options{Insecure: a.config.InsecureRegistry}
		if _, err := a.checkImage(ctx, topo.Outputs.ImageReference, opts); err != nil {
			return fmt.Errorf("image pre-flight check failed: %w", err)
		}
	}

	p, err := plan.Render(topo)
	if err != nil {
		return fmt.Errorf("failed to render plan: %w", err)
	}
	a.logger.Debug("Plan rendered.", "steps", len(p.Steps), "calls", len(p.Calls()))

	if err := plan.Encode(a.outW, p, format); err != nil {
		return err
	}
	a.logger.Info("Plan written.", "stack", p.Stack, "steps", len(p.Steps), "warnings", len(p.Warnings))
	return nil
}
