package app

import (
	"errors"

	"github.com/vk/webstack/internal/plan"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPaths []string          // hcl files or directories
	Vars        map[string]string // -var values, visible as var.<name>
	// Image overrides the task image of the declaration; the build pipeline
	// sets it to the reference it just pushed.
	Image string

	OutputFormat string
	LogFormat    string
	LogLevel     string

	PreflightImage   bool
	InsecureRegistry bool
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.ConfigPaths) == 0 {
		return nil, errors.New("at least one declaration path is required")
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = string(plan.FormatYAML)
	}
	if _, err := plan.ParseFormat(cfg.OutputFormat); err != nil {
		return nil, err
	}
	if cfg.InsecureRegistry && !cfg.PreflightImage {
		return nil, errors.New("insecure-registry only applies together with preflight-image")
	}
	return &cfg, nil
}
