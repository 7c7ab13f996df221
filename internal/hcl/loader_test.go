package hcl

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/webstack/internal/config"
)

const fullDeclaration = `
variable "image" {
  description = "Container image built by the pipeline."
}

variable "replicas" {
  default = 2
}

deployment "webfront" {
  region     = "eu-west-1"
  account_id = "123456789012"
  tags = {
    team = "web"
  }

  network {
    az_count           = 3
    cidr               = "10.20.0.0/16"
    single_nat_gateway = true
  }

  cluster {
    container_insights = true
  }

  assets {
    name               = "static"
    versioned          = true
    public_read        = true
    public_read_reason = "static web assets"
  }

  task {
    cpu            = 512
    memory         = 1024
    image          = var.image
    container_port = 3000
    environment = {
      NODE_ENV = "production"
    }
  }

  service {
    desired_count     = var.replicas
    health_check_path = format("/%s", "health")
  }
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FullDeclaration(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	path := writeFile(t, dir, "main.hcl", fullDeclaration)
	loader := NewLoader(map[string]string{"image": "registry.example.com/web:1.0.0"})

	// --- Act ---
	model, err := loader.Load(context.Background(), path)

	// --- Assert ---
	require.NoError(t, err)
	want := &config.Model{
		Stack: &config.Stack{Name: "webfront", Region: "eu-west-1", AccountID: "123456789012", Tags: map[string]string{"team": "web"}},
		Network: &config.Network{
			Name: "main", AZCount: 3, CIDR: "10.20.0.0/16", SubnetPrefix: config.DefaultSubnetPrefix, SingleNATGateway: true,
		},
		Cluster: &config.Cluster{Name: "main", ContainerInsights: true},
		Assets: &config.Assets{
			Name:                            "static",
			Versioned:                       true,
			PublicRead:                      true,
			PublicReadReason:                "static web assets",
			BlockACLsOnly:                   true,
			NoncurrentVersionExpirationDays: config.DefaultNoncurrentExpDays,
		},
		Task: &config.Task{
			Name:             "web",
			CPU:              512,
			MemoryMiB:        1024,
			Image:            "registry.example.com/web:1.0.0",
			ContainerPort:    3000,
			LogStreamPrefix:  "web",
			LogRetentionDays: config.DefaultLogRetentionDays,
			Environment:      map[string]string{"NODE_ENV": "production"},
		},
		Service: &config.Service{
			Name:            "web",
			DesiredCount:    2,
			ListenerPort:    config.DefaultListenerPort,
			HealthCheckPath: "/health",
		},
	}
	if diff := cmp.Diff(want, model); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	writeFile(t, dir, "main.hcl", `
deployment "site" {
  account_id = "123456789012"
  task {
    cpu    = 256
    memory = 512
    image  = "nginx:1.27"
  }
}
`)

	// --- Act ---
	model, err := NewLoader(nil).Load(context.Background(), dir)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, config.DefaultRegion, model.Stack.Region)
	assert.Equal(t, config.DefaultAZCount, model.Network.AZCount)
	assert.Equal(t, config.DefaultCIDR, model.Network.CIDR)
	assert.Equal(t, "assets", model.Assets.Name)
	assert.True(t, model.Assets.BlockACLsOnly)
	assert.False(t, model.Assets.PublicRead)
	assert.Equal(t, config.DefaultContainerPort, model.Task.ContainerPort)
	assert.Equal(t, config.DefaultDesiredCount, model.Service.DesiredCount)
	assert.Equal(t, config.DefaultHealthCheckPath, model.Service.HealthCheckPath)
}

func TestLoad_ExplicitZeroIsKept(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	writeFile(t, dir, "main.hcl", `
deployment "site" {
  account_id = "123456789012"
  task {
    cpu    = 256
    memory = 512
  }
  service {
    desired_count = 0
  }
}
`)

	// --- Act ---
	model, err := NewLoader(nil).Load(context.Background(), dir)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 0, model.Service.DesiredCount)
}

func TestLoad_PinnedZones(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	writeFile(t, dir, "main.hcl", `
deployment "site" {
  account_id = "123456789012"
  region     = "ap-northeast-1"
  network {
    availability_zones = ["ap-northeast-1a", "ap-northeast-1c", "ap-northeast-1d"]
  }
  task {
    cpu    = 256
    memory = 512
  }
}
`)

	// --- Act ---
	model, err := NewLoader(nil).Load(context.Background(), dir)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{"ap-northeast-1a", "ap-northeast-1c", "ap-northeast-1d"}, model.Network.AvailabilityZones)
	assert.Equal(t, 3, model.Network.AZCount, "az_count spans every pinned zone when omitted")
}

func TestLoad_VariablesAcrossFiles(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	writeFile(t, dir, "variables.hcl", `
variable "account" {}
`)
	writeFile(t, dir, "main.hcl", `
deployment "site" {
  account_id = var.account
  task {
    cpu    = 256
    memory = 512
  }
}
`)
	writeFile(t, dir, "README.md", "not a declaration")

	// --- Act ---
	model, err := NewLoader(map[string]string{"account": "210987654321"}).Load(context.Background(), dir)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "210987654321", model.Stack.AccountID)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		content string
		vars    map[string]string
		wantErr string
	}{
		{
			name:    "syntax error",
			content: `deployment "site" {`,
			wantErr: "failed to parse HCL file",
		},
		{
			name:    "unknown block",
			content: `frontend "site" {}`,
			wantErr: "failed to decode HCL file",
		},
		{
			name:    "no deployment",
			content: `variable "x" { default = 1 }`,
			wantErr: "no deployment block found",
		},
		{
			name: "two deployments",
			content: `
deployment "a" {
  account_id = "123456789012"
  task {
    cpu = 256
    memory = 512
  }
}
deployment "b" {
  account_id = "123456789012"
  task {
    cpu = 256
    memory = 512
  }
}`,
			wantErr: "exactly one is allowed",
		},
		{
			name: "unknown attribute",
			content: `
deployment "site" {
  account_id = "123456789012"
  task {
    cpu      = 256
    memory   = 512
    replicas = 2
  }
}`,
			wantErr: "failed to decode deployment",
		},
		{
			name: "missing task",
			content: `
deployment "site" {
  account_id = "123456789012"
}`,
			wantErr: "Missing task block",
		},
		{
			name: "duplicate service block",
			content: `
deployment "site" {
  account_id = "123456789012"
  task {
    cpu    = 256
    memory = 512
  }
  service {}
  service {}
}`,
			wantErr: "failed to decode deployment",
		},
		{
			name:    "undeclared variable value",
			content: `deployment "site" {}`,
			vars:    map[string]string{"nope": "1"},
			wantErr: "Undeclared variable",
		},
		{
			name: "required variable without value",
			content: `
variable "account" {}
deployment "site" {}`,
			wantErr: "No value for required variable",
		},
		{
			name: "reference to undeclared variable",
			content: `
deployment "site" {
  account_id = var.account
  task {
    cpu    = 256
    memory = 512
  }
}`,
			wantErr: "invalid references",
		},
		{
			name: "wrong attribute type",
			content: `
deployment "site" {
  account_id = "123456789012"
  task {
    cpu    = "large"
    memory = 512
  }
}`,
			wantErr: "failed to decode deployment",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			dir := t.TempDir()
			writeFile(t, dir, "main.hcl", tc.content)

			// --- Act ---
			_, err := NewLoader(tc.vars).Load(context.Background(), dir)

			// --- Assert ---
			require.Error(t, err)
			assert.True(t, errors.Is(err, config.ErrInvalidDeclaration), "error should wrap ErrInvalidDeclaration: %v", err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoad_MissingPath(t *testing.T) {
	t.Parallel()

	// --- Act ---
	_, err := NewLoader(nil).Load(context.Background(), filepath.Join(t.TempDir(), "absent.hcl"))

	// --- Assert ---
	require.Error(t, err)
	assert.False(t, errors.Is(err, config.ErrInvalidDeclaration))
}
