package topology

import (
	"context"

	"github.com/vk/webstack/internal/config"
	"github.com/vk/webstack/internal/ctxlog"
)

// Topology is the complete, dependency-ordered declaration of one deployment.
type Topology struct {
	Stack   *Stack
	Network *NetworkTopology
	Cluster *ComputeCluster
	Assets  *AssetStoreHandle
	Role    *AccessRole
	Task    *ContainerSpec
	Service *ServiceSpec

	Warnings []Warning
	// Order lists every resource address so that each one follows all of
	// its dependencies.
	Order []string
	// DependsOn maps each resource address to its direct dependencies.
	DependsOn map[string][]string
	Outputs   Outputs
}

// Outputs are the values collaborators consume once the declaration is
// provisioned. Values only known after provisioning are reference tokens.
type Outputs struct {
	AssetBaseURL        string
	AssetBucket         string
	LoadBalancerDNSName string
	ClusterName         string
	ServiceName         string
	ImageReference      string
}

// Synthesize expands the declared intents into a full topology by calling
// the builders in their fixed dependency order. It performs no I/O and is
// all-or-nothing: on any error no partial topology is returned.
func Synthesize(ctx context.Context, model *config.Model) (*Topology, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Synthesize: Starting topology synthesis.")

	if err := requireSections(model); err != nil {
		return nil, err
	}

	stack, err := NewStack(model.Stack.Name, model.Stack.Region, model.Stack.AccountID, model.Stack.Tags)
	if err != nil {
		return nil, err
	}
	ctx = ctxlog.With(ctx, "stack", stack.Name, "region", stack.Region)
	logger = ctxlog.FromContext(ctx)

	network, err := BuildNetwork(stack, NetworkInput{
		Name:              model.Network.Name,
		AZCount:           model.Network.AZCount,
		AvailabilityZones: model.Network.AvailabilityZones,
		CIDR:              model.Network.CIDR,
		SubnetPrefix:      model.Network.SubnetPrefix,
		SingleNATGateway:  model.Network.SingleNATGateway,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("Synthesize: Network built.", "subnets", len(network.Subnets), "nat_gateways", len(network.NATGateways))

	cluster, err := BuildCluster(stack, network, ClusterInput{
		Name:              model.Cluster.Name,
		ContainerInsights: model.Cluster.ContainerInsights,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("Synthesize: Cluster built.", "name", cluster.Name)

	opts := AssetStoreOptions{
		Versioned:                       model.Assets.Versioned,
		DestroyOnTeardown:               model.Assets.DestroyOnTeardown,
		AutoPurgeOnDestroy:              model.Assets.AutoPurgeOnDestroy,
		BlockACLsOnly:                   model.Assets.BlockACLsOnly,
		NoncurrentVersionExpirationDays: model.Assets.NoncurrentVersionExpirationDays,
	}
	if model.Assets.PublicRead {
		opts.PublicRead = ConsentPublicRead(model.Assets.PublicReadReason)
	}
	assets, err := BuildAssetStore(stack, model.Assets.Name, opts)
	if err != nil {
		return nil, err
	}
	logger.Debug("Synthesize: Asset store built.", "bucket", assets.BucketName, "public_read", assets.PublicRead)

	actions := model.Task.StorageActions
	if len(actions) == 0 {
		actions = config.DefaultStorageActions
	}
	role, err := BuildAccessRole(stack, RoleInput{
		Name:           model.Task.Name,
		TrustPrincipal: TaskExecutionPrincipal,
		ExtraActions:   actions,
		ResourceScopes: assets.ResourceScopes(),
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("Synthesize: Access role built.", "name", role.Name, "statements", len(role.InlinePolicy.Statement))

	task, err := BuildTaskSpec(stack, TaskInput{
		Name:             model.Task.Name,
		CPU:              model.Task.CPU,
		MemoryMiB:        model.Task.MemoryMiB,
		Role:             role,
		Image:            model.Task.Image,
		ContainerPort:    model.Task.ContainerPort,
		LogStreamPrefix:  model.Task.LogStreamPrefix,
		LogRetentionDays: model.Task.LogRetentionDays,
		Environment:      model.Task.Environment,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("Synthesize: Task spec built.", "family", task.Family, "cpu", task.CPU, "memory", task.MemoryMiB)

	service, err := BuildService(stack, cluster, task, ServiceInput{
		Name:                          model.Service.Name,
		DesiredCount:                  model.Service.DesiredCount,
		ListenerPort:                  model.Service.ListenerPort,
		HealthCheckPath:               model.Service.HealthCheckPath,
		HealthCheckGracePeriodSeconds: model.Service.HealthCheckGracePeriodSeconds,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("Synthesize: Service built.", "name", service.Name, "desired_count", service.DesiredCount)

	t := &Topology{
		Stack:    stack,
		Network:  network,
		Cluster:  cluster,
		Assets:   assets,
		Role:     role,
		Task:     task,
		Service:  service,
		Warnings: append([]Warning(nil), assets.Warnings...),
		Outputs: Outputs{
			AssetBaseURL:        assets.BaseURL,
			AssetBucket:         assets.BucketName,
			LoadBalancerDNSName: service.LoadBalancer.Address.Ref("dns_name"),
			ClusterName:         cluster.Name,
			ServiceName:         service.Name,
			ImageReference:      task.Container.Image,
		},
	}
	if err := t.link(); err != nil {
		return nil, err
	}
	logger.Debug("Synthesize: Dependency graph linked.", "resources", len(t.Order))

	for _, w := range t.Warnings {
		logger.Warn("Synthesize: Configuration warning.", "resource", w.Resource, "warning", w.Message)
	}
	logger.Info("Synthesize: Topology synthesis successful.", "resources", len(t.Order), "warnings", len(t.Warnings))
	return t, nil
}

func requireSections(model *config.Model) error {
	switch {
	case model == nil:
		return configErr("deployment", "declaration", "is required")
	case model.Stack == nil:
		return configErr("deployment", "stack", "is required")
	case model.Network == nil:
		return configErr("deployment", "network", "block is required")
	case model.Cluster == nil:
		return configErr("deployment", "cluster", "block is required")
	case model.Assets == nil:
		return configErr("deployment", "assets", "block is required")
	case model.Task == nil:
		return configErr("deployment", "task", "block is required")
	case model.Service == nil:
		return configErr("deployment", "service", "block is required")
	}
	return nil
}
