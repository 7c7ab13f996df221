package cli

import (
	"errors"

	"github.com/vk/webstack/internal/config"
	"github.com/vk/webstack/internal/topology"
)

// Process exit codes.
const (
	ExitFailure = 1
	// ExitUsage reports invalid flags or arguments.
	ExitUsage = 2
	// ExitConfiguration reports a malformed declaration or an invalid task shape.
	ExitConfiguration = 3
	// ExitPolicy reports a policy conflict or a least-privilege violation.
	ExitPolicy = 4
)

// ExitCode maps an error returned by the application to a process exit code.
func ExitCode(err error) int {
	var (
		exitErr   *ExitError
		cfgErr    *topology.ConfigurationError
		shapeErr  *topology.InvalidShapeError
		conflict  *topology.PolicyConflictError
		violation *topology.ScopeViolationError
	)
	switch {
	case err == nil:
		return 0
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.As(err, &conflict), errors.As(err, &violation):
		return ExitPolicy
	case errors.As(err, &cfgErr), errors.As(err, &shapeErr), errors.Is(err, config.ErrInvalidDeclaration):
		return ExitConfiguration
	default:
		return ExitFailure
	}
}
