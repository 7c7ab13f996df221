package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/webstack/internal/cli"
)

const declaration = `
variable "account" {}

deployment "webfront" {
  account_id = var.account

  assets {
    name               = "static"
    versioned          = true
    public_read        = true
    public_read_reason = "static web assets"
  }

  task {
    cpu            = 512
    memory         = 1024
    image          = "registry.example.com/web:1.0.0"
    container_port = 3000
  }

  service {
    desired_count = 2
  }
}
`

func writeDeclaration(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600), "failed to set up test file")
	return path
}

func TestRun_WritesPlan(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := writeDeclaration(t, declaration)
	args := []string{"-var", "account=123456789012", "-image", "registry.example.com/web:1.0.1", path}
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, errOut, args)

	// --- Assert ---
	require.NoError(t, err)
	assert.Contains(t, out.String(), "stack: webfront")
	assert.Contains(t, out.String(), "registry.example.com/web:1.0.1")
	assert.Contains(t, out.String(), "ecs:UpdateService")
	assert.Contains(t, errOut.String(), "Plan written.")
}

func TestRun_Deterministic(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := writeDeclaration(t, declaration)
	args := []string{"-format", "json", "-var", "account=123456789012", path}
	first, second := &bytes.Buffer{}, &bytes.Buffer{}

	// --- Act ---
	require.NoError(t, run(context.Background(), first, &bytes.Buffer{}, args))
	require.NoError(t, run(context.Background(), second, &bytes.Buffer{}, args))

	// --- Assert ---
	assert.Equal(t, first.String(), second.String())
}

func TestRun_ExitCodes(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	testCases := []struct {
		name     string
		content  string
		args     []string
		wantCode int
	}{
		{
			name:     "syntax error",
			content:  "deployment \"webfront\" {\n",
			wantCode: cli.ExitConfiguration,
		},
		{
			name:     "zero replicas",
			content:  replace(declaration, "desired_count = 2", "desired_count = 0"),
			wantCode: cli.ExitConfiguration,
		},
		{
			name:     "invalid shape",
			content:  replace(declaration, "memory         = 1024", "memory         = 512"),
			wantCode: cli.ExitConfiguration,
		},
		{
			name:     "write access",
			content:  replace(declaration, "container_port = 3000", "container_port = 3000\n    storage_actions = [\"s3:PutObject\"]"),
			wantCode: cli.ExitPolicy,
		},
		{
			name:     "public read with acls",
			content:  replace(declaration, "versioned          = true", "versioned          = true\n    block_acls_only    = false"),
			wantCode: cli.ExitPolicy,
		},
		{
			name:     "public read with acls and no reason",
			content:  replace(declaration, "public_read_reason = \"static web assets\"", "block_acls_only    = false"),
			wantCode: cli.ExitPolicy,
		},
		{
			name:     "malformed region",
			content:  replace(declaration, "account_id = var.account", "account_id = var.account\n  region     = \"not a region\""),
			wantCode: cli.ExitConfiguration,
		},
		{
			name:     "unknown flag",
			content:  declaration,
			args:     []string{"-nope"},
			wantCode: cli.ExitUsage,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			path := writeDeclaration(t, tc.content)
			args := append(append([]string{}, tc.args...), "-var", "account=123456789012", path)
			out := &bytes.Buffer{}

			// --- Act ---
			err := run(context.Background(), out, &bytes.Buffer{}, args)

			// --- Assert ---
			require.Error(t, err)
			assert.Equal(t, tc.wantCode, cli.ExitCode(err), "error: %v", err)
			assert.Empty(t, out.String(), "no plan may be written on failure")
		})
	}
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	errOut := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), &bytes.Buffer{}, errOut, []string{"-h"})

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, errOut.String(), "Usage:", "Expected help text to be printed to the error output")
}

func replace(s, from, to string) string {
	if !strings.Contains(s, from) {
		panic("replace: " + from + " not found")
	}
	return strings.Replace(s, from, to, 1)
}
