package config

import (
	"context"
	"errors"
)

// Loader is the interface for a format-specific declaration loader.
type Loader interface {
	// Load reads the declaration from the given paths, translates it into
	// the format-agnostic model and fills in defaults.
	Load(ctx context.Context, paths ...string) (*Model, error)
}

// ErrInvalidDeclaration is wrapped by every Loader error caused by the
// content of the declaration rather than by the environment.
var ErrInvalidDeclaration = errors.New("invalid declaration")
