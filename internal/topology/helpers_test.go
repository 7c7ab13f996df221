package topology

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/webstack/internal/config"
)

const (
	testAccount = "123456789012"
	testRegion  = "us-east-1"
	testImage   = "123456789012.dkr.ecr.us-east-1.amazonaws.com/web:1.4.2"
)

func newTestStack(t *testing.T) *Stack {
	t.Helper()
	stack, err := NewStack("webfront", testRegion, testAccount, map[string]string{"team": "web"})
	require.NoError(t, err)
	return stack
}

// newTestModel returns the reference deployment: two zones, a 512/1024 task,
// two replicas and a public-read asset store with ACLs blocked.
func newTestModel() *config.Model {
	return &config.Model{
		Stack:   &config.Stack{Name: "webfront", Region: testRegion, AccountID: testAccount},
		Network: &config.Network{Name: "main", AZCount: 2, CIDR: "10.0.0.0/16", SubnetPrefix: 24},
		Cluster: &config.Cluster{Name: "main"},
		Assets: &config.Assets{
			Name:             "static",
			Versioned:        true,
			PublicRead:       true,
			PublicReadReason: "static web assets",
			BlockACLsOnly:    true,
		},
		Task: &config.Task{
			Name:            "web",
			CPU:             512,
			MemoryMiB:       1024,
			Image:           testImage,
			ContainerPort:   3000,
			LogStreamPrefix: "web",
		},
		Service: &config.Service{
			Name:            "web",
			DesiredCount:    2,
			ListenerPort:    80,
			HealthCheckPath: "/",
		},
	}
}

func newTestRole(t *testing.T, stack *Stack) *AccessRole {
	t.Helper()
	role, err := BuildAccessRole(stack, RoleInput{
		Name:           "web",
		TrustPrincipal: TaskExecutionPrincipal,
		ExtraActions:   []string{"s3:GetObject"},
		ResourceScopes: []string{"arn:aws:s3:::webfront-static-0a1b2c3d/*"},
	})
	require.NoError(t, err)
	return role
}
