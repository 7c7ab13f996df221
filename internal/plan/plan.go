package plan

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ecs"
	"github.com/vk/webstack/internal/topology"
)

// Plan is the rendered declaration handed to the provisioning engine.
type Plan struct {
	Stack     string            `json:"stack"`
	Region    string            `json:"region"`
	AccountID string            `json:"accountId"`
	Steps     []Step            `json:"steps"`
	Outputs   map[string]string `json:"outputs"`
	// Redeploy is the call the build pipeline issues after pushing a new
	// image under the same reference.
	Redeploy Call     `json:"redeploy"`
	Warnings []string `json:"warnings,omitempty"`
}

// Step groups the calls that create one logical resource.
type Step struct {
	Resource  string   `json:"resource"`
	DependsOn []string `json:"dependsOn,omitempty"`
	Calls     []Call   `json:"calls"`
}

// Call is a single provider API request.
type Call struct {
	Action string `json:"action"`
	Input  any    `json:"input"`
}

type renderFunc func() ([]Call, error)

// Render turns the topology into steps in its dependency order.
func Render(t *topology.Topology) (*Plan, error) {
	if t == nil || len(t.Order) == 0 {
		return nil, fmt.Errorf("cannot render an empty topology")
	}

	renderers := make(map[string]renderFunc)
	addNetwork(renderers, t)
	addStorage(renderers, t)
	addCompute(renderers, t)

	p := &Plan{
		Stack:     t.Stack.Name,
		Region:    t.Stack.Region,
		AccountID: t.Stack.AccountID,
		Steps:     make([]Step, 0, len(t.Order)),
		Outputs: map[string]string{
			"asset_base_url":         t.Outputs.AssetBaseURL,
			"asset_bucket":           t.Outputs.AssetBucket,
			"cluster_name":           t.Outputs.ClusterName,
			"image":                  t.Outputs.ImageReference,
			"load_balancer_dns_name": t.Outputs.LoadBalancerDNSName,
			"service_name":           t.Outputs.ServiceName,
		},
		Redeploy: Call{
			Action: "ecs:UpdateService",
			Input: &ecs.UpdateServiceInput{
				Cluster:            aws.String(t.Cluster.Name),
				Service:            aws.String(t.Service.Name),
				ForceNewDeployment: aws.Bool(true),
			},
		},
	}

	for _, id := range t.Order {
		render, ok := renderers[id]
		if !ok {
			return nil, fmt.Errorf("no renderer for resource %s", id)
		}
		calls, err := render()
		if err != nil {
			return nil, fmt.Errorf("error rendering %s: %w", id, err)
		}
		p.Steps = append(p.Steps, Step{
			Resource:  id,
			DependsOn: t.DependsOn[id],
			Calls:     calls,
		})
	}

	for _, w := range t.Warnings {
		p.Warnings = append(p.Warnings, w.String())
	}
	return p, nil
}

// Calls returns every call of the plan in submission order.
func (p *Plan) Calls() []Call {
	var out []Call
	for _, s := range p.Steps {
		out = append(out, s.Calls...)
	}
	return out
}

func single(calls ...Call) renderFunc {
	return func() ([]Call, error) { return calls, nil }
}
