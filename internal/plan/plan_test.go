package plan

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ecs"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/webstack/internal/config"
	"github.com/vk/webstack/internal/topology"
	"sigs.k8s.io/yaml"
)

func testModel() *config.Model {
	return &config.Model{
		Stack:   &config.Stack{Name: "webfront", Region: "eu-west-1", AccountID: "123456789012"},
		Network: &config.Network{Name: "main", AZCount: 2, CIDR: "10.0.0.0/16", SubnetPrefix: 24},
		Cluster: &config.Cluster{Name: "main", ContainerInsights: true},
		Assets: &config.Assets{
			Name:                            "static",
			Versioned:                       true,
			PublicRead:                      true,
			PublicReadReason:                "static web assets",
			BlockACLsOnly:                   true,
			NoncurrentVersionExpirationDays: 30,
		},
		Task: &config.Task{
			Name:             "web",
			CPU:              512,
			MemoryMiB:        1024,
			Image:            "registry.example.com/web:1.4.2",
			ContainerPort:    3000,
			LogStreamPrefix:  "web",
			LogRetentionDays: 14,
		},
		Service: &config.Service{Name: "web", DesiredCount: 2, ListenerPort: 80, HealthCheckPath: "/"},
	}
}

func renderTestPlan(t *testing.T) (*topology.Topology, *Plan) {
	t.Helper()
	topo, err := topology.Synthesize(context.Background(), testModel())
	require.NoError(t, err)
	p, err := Render(topo)
	require.NoError(t, err)
	return topo, p
}

func findCall(t *testing.T, p *Plan, action string) Call {
	t.Helper()
	for _, c := range p.Calls() {
		if c.Action == action {
			return c
		}
	}
	t.Fatalf("plan has no %s call", action)
	return Call{}
}

func TestRender_StepsFollowTopologyOrder(t *testing.T) {
	t.Parallel()

	// --- Act ---
	topo, p := renderTestPlan(t)

	// --- Assert ---
	require.Len(t, p.Steps, len(topo.Order))
	for i, step := range p.Steps {
		assert.Equal(t, topo.Order[i], step.Resource)
		assert.NotEmpty(t, step.Calls, "step %s has no calls", step.Resource)
	}
	assert.Equal(t, "webfront", p.Stack)
	assert.Equal(t, "eu-west-1", p.Region)
}

func TestRender_Inputs(t *testing.T) {
	t.Parallel()

	// --- Act ---
	topo, p := renderTestPlan(t)

	// --- Assert ---
	vpc := findCall(t, p, "ec2:CreateVpc").Input.(*ec2.CreateVpcInput)
	assert.Equal(t, "10.0.0.0/16", aws.StringValue(vpc.CidrBlock))

	bucket := findCall(t, p, "s3:CreateBucket").Input.(*s3.CreateBucketInput)
	assert.Equal(t, topo.Assets.BucketName, aws.StringValue(bucket.Bucket))
	require.NotNil(t, bucket.CreateBucketConfiguration)
	assert.Equal(t, "eu-west-1", aws.StringValue(bucket.CreateBucketConfiguration.LocationConstraint))

	block := findCall(t, p, "s3:PutPublicAccessBlock").Input.(*s3.PutPublicAccessBlockInput)
	assert.True(t, aws.BoolValue(block.PublicAccessBlockConfiguration.BlockPublicAcls))
	assert.False(t, aws.BoolValue(block.PublicAccessBlockConfiguration.BlockPublicPolicy))

	policy := findCall(t, p, "s3:PutBucketPolicy").Input.(*s3.PutBucketPolicyInput)
	assert.Contains(t, aws.StringValue(policy.Policy), topo.Assets.ObjectsARN)

	taskDef := findCall(t, p, "ecs:RegisterTaskDefinition").Input.(*ecs.RegisterTaskDefinitionInput)
	assert.Equal(t, "512", aws.StringValue(taskDef.Cpu))
	assert.Equal(t, "1024", aws.StringValue(taskDef.Memory))
	assert.Equal(t, topo.Role.ARN, aws.StringValue(taskDef.ExecutionRoleArn))
	require.Len(t, taskDef.ContainerDefinitions, 1)
	require.Len(t, taskDef.ContainerDefinitions[0].PortMappings, 1)
	assert.Equal(t, int64(3000), aws.Int64Value(taskDef.ContainerDefinitions[0].PortMappings[0].ContainerPort))

	svc := findCall(t, p, "ecs:CreateService").Input.(*ecs.CreateServiceInput)
	assert.Equal(t, int64(2), aws.Int64Value(svc.DesiredCount))
	assert.Equal(t, ecs.AssignPublicIpDisabled, aws.StringValue(svc.NetworkConfiguration.AwsvpcConfiguration.AssignPublicIp))
	assert.Equal(t, []string{"${subnet.private[0].id}", "${subnet.private[1].id}"},
		aws.StringValueSlice(svc.NetworkConfiguration.AwsvpcConfiguration.Subnets))
	assert.True(t, aws.BoolValue(svc.DeploymentConfiguration.DeploymentCircuitBreaker.Rollback))

	redeploy := p.Redeploy.Input.(*ecs.UpdateServiceInput)
	assert.True(t, aws.BoolValue(redeploy.ForceNewDeployment))
	assert.Equal(t, topo.Service.Name, aws.StringValue(redeploy.Service))

	assert.Equal(t, topo.Assets.BaseURL, p.Outputs["asset_base_url"])
}

func TestRender_PrivateRouteUsesNAT(t *testing.T) {
	t.Parallel()

	// --- Act ---
	_, p := renderTestPlan(t)

	// --- Assert ---
	for _, step := range p.Steps {
		if step.Resource != "subnet.private[1]" {
			continue
		}
		route := step.Calls[2].Input.(*ec2.CreateRouteInput)
		assert.Equal(t, "${nat_gateway.main[1].id}", aws.StringValue(route.NatGatewayId))
		assert.Nil(t, route.GatewayId)
		return
	}
	t.Fatal("plan has no step for subnet.private[1]")
}

func TestEncode_Deterministic(t *testing.T) {
	t.Parallel()

	for _, format := range []Format{FormatYAML, FormatJSON} {
		format := format
		t.Run(string(format), func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			_, first := renderTestPlan(t)
			_, second := renderTestPlan(t)
			var a, b bytes.Buffer

			// --- Act ---
			require.NoError(t, Encode(&a, first, format))
			require.NoError(t, Encode(&b, second, format))

			// --- Assert ---
			assert.Equal(t, a.String(), b.String())
			assert.NotContains(t, a.String(), "null")
		})
	}
}

func TestEncode_JSONShape(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	_, p := renderTestPlan(t)
	var buf bytes.Buffer

	// --- Act ---
	require.NoError(t, Encode(&buf, p, FormatJSON))

	// --- Assert ---
	var doc struct {
		Steps []struct {
			Resource string `json:"resource"`
			Calls    []struct {
				Action string         `json:"action"`
				Input  map[string]any `json:"input"`
			} `json:"calls"`
		} `json:"steps"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.NotEmpty(t, doc.Steps)

	first := doc.Steps[0].Calls[0]
	assert.Equal(t, "s3:CreateBucket", first.Action)
	assert.Contains(t, first.Input, "Bucket")
	assert.NotContains(t, first.Input, "ACL")
}

func TestEncode_YAMLRoundTrip(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	_, p := renderTestPlan(t)
	var buf bytes.Buffer

	// --- Act ---
	require.NoError(t, Encode(&buf, p, FormatYAML))

	// --- Assert ---
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "webfront", doc["stack"])
	assert.Equal(t, "${load_balancer.web.dns_name}", doc["outputs"].(map[string]any)["load_balancer_dns_name"])
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	// --- Act ---
	f, err := ParseFormat("JSON")
	_, unsupported := ParseFormat("toml")

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)
	assert.EqualError(t, unsupported, `unsupported plan format "toml": must be 'yaml' or 'json'`)
}

func TestRender_Empty(t *testing.T) {
	t.Parallel()

	// --- Act ---
	_, err := Render(&topology.Topology{})

	// --- Assert ---
	assert.Error(t, err)
}
