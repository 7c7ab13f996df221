package topology

import (
	"strings"

	"github.com/vk/webstack/internal/resourceid"
)

// Fixed load balancer and rollout settings. The balancer is always present:
// new task generations are health-checked behind it before old ones drain.
const (
	SchemeInternetFacing  = "internet-facing"
	ProtocolHTTP          = "HTTP"
	TargetTypeIP          = "ip"
	healthCheckMatcher    = "200-399"
	anywhereIPv4          = "0.0.0.0/0"
	minimumHealthyPercent = 100
	maximumPercent        = 200
)

// ServiceInput is the declared intent for the load-balanced service.
type ServiceInput struct {
	Name                          string
	DesiredCount                  int
	ListenerPort                  int
	HealthCheckPath               string
	HealthCheckGracePeriodSeconds int
}

// IngressRule admits TCP traffic on one port, either from a CIDR range or
// from members of another security group.
type IngressRule struct {
	Port        int
	CIDR        string
	SourceGroup resourceid.Address
}

// SecurityGroup is a stateful firewall attached to network interfaces.
type SecurityGroup struct {
	Address     resourceid.Address
	Name        string
	Description string
	Ingress     []IngressRule
	Tags        map[string]string
}

// TargetGroup is the set of task IPs the balancer forwards to.
type TargetGroup struct {
	Address         resourceid.Address
	Name            string
	Port            int
	Protocol        string
	TargetType      string
	HealthCheckPath string
	Matcher         string
	Tags            map[string]string
}

// LoadBalancer fronts the service from the public subnets.
type LoadBalancer struct {
	Address       resourceid.Address
	Name          string
	Scheme        string
	Subnets       []resourceid.Address
	SecurityGroup SecurityGroup
	Listener      resourceid.Address
	ListenerPort  int
	TargetGroup   TargetGroup
	Tags          map[string]string
}

// DeploymentPolicy is the rolling-update envelope handed to the engine.
type DeploymentPolicy struct {
	MinimumHealthyPercent int
	MaximumPercent        int
	CircuitBreaker        bool
	Rollback              bool
}

// ServiceSpec is the running, replicated instantiation of a task.
type ServiceSpec struct {
	Address      resourceid.Address
	Name         string
	Cluster      *ComputeCluster
	Task         *ContainerSpec
	DesiredCount int
	LaunchType   string
	// Subnets are the private subnets tasks are placed in.
	Subnets                       []resourceid.Address
	AssignPublicIP                bool
	SecurityGroup                 SecurityGroup
	LoadBalancer                  LoadBalancer
	Deployment                    DeploymentPolicy
	HealthCheckGracePeriodSeconds int
	Tags                          map[string]string
}

// BuildService composes the replicated service behind an internet-facing
// balancer. Tasks never receive public addresses and only accept traffic
// from the balancer's security group.
func BuildService(stack *Stack, cluster *ComputeCluster, task *ContainerSpec, in ServiceInput) (*ServiceSpec, error) {
	addr, err := logicalAddress("service", in.Name)
	if err != nil {
		return nil, err
	}
	res := addr.String()

	if cluster == nil || cluster.Network == nil {
		return nil, configErr(res, "cluster", "is required and must reference a network")
	}
	if task == nil {
		return nil, configErr(res, "task", "is required")
	}
	if in.DesiredCount < 1 {
		return nil, configErr(res, "desired_count", "must be at least 1, got %d", in.DesiredCount)
	}
	if in.ListenerPort < 1 || in.ListenerPort > 65535 {
		return nil, configErr(res, "listener_port", "must be between 1 and 65535, got %d", in.ListenerPort)
	}
	if !strings.HasPrefix(in.HealthCheckPath, "/") {
		return nil, configErr(res, "health_check_path", "%q must start with '/'", in.HealthCheckPath)
	}
	if in.HealthCheckGracePeriodSeconds < 0 {
		return nil, configErr(res, "health_check_grace_period_seconds", "must not be negative")
	}

	network := cluster.Network
	lbSGAddr := resourceid.New("security_group", in.Name+"_lb")
	svcSGAddr := resourceid.New("security_group", in.Name+"_tasks")
	lbAddr := resourceid.New("load_balancer", in.Name)
	tgAddr := resourceid.New("target_group", in.Name)

	var publicSubnets, privateSubnets []resourceid.Address
	for _, s := range network.PublicSubnets() {
		publicSubnets = append(publicSubnets, s.Address)
	}
	for _, s := range network.PrivateSubnets() {
		privateSubnets = append(privateSubnets, s.Address)
	}

	return &ServiceSpec{
		Address:      addr,
		Name:         stack.PhysicalName(addr, 255),
		Cluster:      cluster,
		Task:         task,
		DesiredCount: in.DesiredCount,
		LaunchType:   LaunchTypeFargate,
		Subnets:      privateSubnets,
		SecurityGroup: SecurityGroup{
			Address:     svcSGAddr,
			Name:        stack.PhysicalName(svcSGAddr, 255),
			Description: "Task traffic from the load balancer only",
			Ingress:     []IngressRule{{Port: task.Port(), SourceGroup: lbSGAddr}},
			Tags:        stack.TagsFor(svcSGAddr),
		},
		LoadBalancer: LoadBalancer{
			Address: lbAddr,
			Name:    stack.PhysicalName(lbAddr, 32),
			Scheme:  SchemeInternetFacing,
			Subnets: publicSubnets,
			SecurityGroup: SecurityGroup{
				Address:     lbSGAddr,
				Name:        stack.PhysicalName(lbSGAddr, 255),
				Description: "Public listener traffic",
				Ingress:     []IngressRule{{Port: in.ListenerPort, CIDR: anywhereIPv4}},
				Tags:        stack.TagsFor(lbSGAddr),
			},
			Listener:     resourceid.New("listener", in.Name),
			ListenerPort: in.ListenerPort,
			TargetGroup: TargetGroup{
				Address:         tgAddr,
				Name:            stack.PhysicalName(tgAddr, 32),
				Port:            task.Port(),
				Protocol:        ProtocolHTTP,
				TargetType:      TargetTypeIP,
				HealthCheckPath: in.HealthCheckPath,
				Matcher:         healthCheckMatcher,
				Tags:            stack.TagsFor(tgAddr),
			},
			Tags: stack.TagsFor(lbAddr),
		},
		Deployment: DeploymentPolicy{
			MinimumHealthyPercent: minimumHealthyPercent,
			MaximumPercent:        maximumPercent,
			CircuitBreaker:        true,
			Rollback:              true,
		},
		HealthCheckGracePeriodSeconds: in.HealthCheckGracePeriodSeconds,
		Tags:                          stack.TagsFor(addr),
	}, nil
}
