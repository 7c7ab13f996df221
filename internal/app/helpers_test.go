package app

import (
	"bytes"
	"context"
	"os"
	"sync"
	"testing"

	"github.com/vk/webstack/internal/config"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// staticLoader returns a fresh copy of a fixed model on every Load.
type staticLoader struct {
	model func() *config.Model
	err   error
}

func (l staticLoader) Load(context.Context, ...string) (*config.Model, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.model(), nil
}

func testModel() *config.Model {
	return &config.Model{
		Stack:   &config.Stack{Name: "webfront", Region: "us-east-1", AccountID: "123456789012"},
		Network: &config.Network{Name: "main", AZCount: 2, CIDR: "10.0.0.0/16", SubnetPrefix: 24},
		Cluster: &config.Cluster{Name: "main"},
		Assets:  &config.Assets{Name: "static", BlockACLsOnly: true},
		Task: &config.Task{
			Name: "web", CPU: 256, MemoryMiB: 512, Image: "nginx:1.27",
			ContainerPort: 80, LogStreamPrefix: "web",
		},
		Service: &config.Service{Name: "web", DesiredCount: 1, ListenerPort: 80, HealthCheckPath: "/"},
	}
}

// setupAppTest creates a new app instance with debug logging captured in a
// buffer. Set WEBSTACK_TEST_LOGS=true to print it after the test.
func setupAppTest(t *testing.T, cfg Config, loader config.Loader) (*App, *bytes.Buffer, *SafeBuffer) {
	t.Helper()

	if len(cfg.ConfigPaths) == 0 {
		cfg.ConfigPaths = []string{"unused.hcl"}
	}
	cfg.LogLevel = "debug"
	validated, err := NewConfig(cfg)
	if err != nil {
		t.Fatalf("invalid test config: %v", err)
	}

	out := &bytes.Buffer{}
	logs := &SafeBuffer{}
	testApp := NewApp(out, logs, validated, loader)

	t.Cleanup(func() {
		if os.Getenv("WEBSTACK_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	return testApp, out, logs
}
