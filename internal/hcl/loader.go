package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/webstack/internal/config"
	"github.com/vk/webstack/internal/ctxlog"
	"github.com/vk/webstack/internal/fsutil"
)

const fileExtension = ".hcl"

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	vars map[string]string
}

// NewLoader creates a new HCL declaration loader. vars are the
// command-line variable values, visible to the declaration as `var.<name>`.
func NewLoader(vars map[string]string) *Loader {
	return &Loader{vars: vars}
}

var _ config.Loader = (*Loader)(nil)

// Load parses every .hcl file found under the given paths and translates the
// single `deployment` block they contain into a config.Model. Variables may
// be declared in any file.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.CollectFiles(paths, fileExtension)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no %s files found in %v", config.ErrInvalidDeclaration, fileExtension, paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	var variables []*variableBlock
	var deployments []*deploymentBlock

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("%w: failed to parse HCL file %s: %w", config.ErrInvalidDeclaration, file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("%w: failed to decode HCL file %s: %w", config.ErrInvalidDeclaration, file, diags)
		}
		variables = append(variables, root.Variables...)
		deployments = append(deployments, root.Deployments...)
	}

	switch len(deployments) {
	case 0:
		return nil, fmt.Errorf("%w: no deployment block found", config.ErrInvalidDeclaration)
	case 1:
	default:
		return nil, fmt.Errorf("%w: found %d deployment blocks (%q and %q, ...), exactly one is allowed",
			config.ErrInvalidDeclaration, len(deployments), deployments[0].Name, deployments[1].Name)
	}

	values, diags := resolveVariables(variables, l.vars)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidDeclaration, diags)
	}
	logger.Debug("Resolved variables.", "count", len(values))

	deployment := deployments[0]
	declared := make(map[string]*variableBlock, len(variables))
	for _, v := range variables {
		declared[v.Name] = v
	}
	unused, diags := checkReferences(deployment.Body, declared)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: invalid references in deployment %q: %w", config.ErrInvalidDeclaration, deployment.Name, diags)
	}
	for _, name := range unused {
		logger.Warn("Declared variable is never referenced.", "variable", name)
	}

	var spec deploymentSpec
	diags = gohcl.DecodeBody(deployment.Body, newEvalContext(values), &spec)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: failed to decode deployment %q: %w", config.ErrInvalidDeclaration, deployment.Name, diags)
	}

	model, err := translate(deployment.Name, &spec)
	if err != nil {
		return nil, err
	}
	logger.Debug("HCL loading complete.", "stack", model.Stack.Name, "region", model.Stack.Region)
	return model, nil
}

// diagError adapts a single diagnostic to an error wrapping ErrInvalidDeclaration.
func diagError(summary, detail string, subject *hcl.Range) error {
	diags := hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   detail,
		Subject:  subject,
	}}
	return fmt.Errorf("%w: %w", config.ErrInvalidDeclaration, diags)
}
