package hcl

import (
	"github.com/vk/webstack/internal/config"
)

// Logical names used when a block omits its `name` attribute.
const (
	defaultNetworkName = "main"
	defaultClusterName = "main"
	defaultAssetsName  = "assets"
	defaultTaskName    = "web"
	defaultServiceName = "web"
)

// translate converts the decoded deployment into the format-agnostic model
// and applies defaults to every omitted optional attribute. Values that are
// present but invalid are passed through unchanged; rejecting them is the
// synthesizer's job.
func translate(stackName string, s *deploymentSpec) (*config.Model, error) {
	if s.Task == nil {
		return nil, diagError("Missing task block", "A deployment must declare exactly one task block.", nil)
	}

	network := s.Network
	if network == nil {
		network = &networkBlock{}
	}
	cluster := s.Cluster
	if cluster == nil {
		cluster = &clusterBlock{}
	}
	assets := s.Assets
	if assets == nil {
		assets = &assetsBlock{}
	}
	service := s.Service
	if service == nil {
		service = &serviceBlock{}
	}
	task := s.Task
	taskName := orDefault(task.Name, defaultTaskName)

	return &config.Model{
		Stack: &config.Stack{
			Name:      stackName,
			Region:    deref(s.Region, config.DefaultRegion),
			AccountID: s.AccountID,
			Tags:      s.Tags,
		},
		Network: &config.Network{
			Name:              orDefault(network.Name, defaultNetworkName),
			AZCount:           deref(network.AZCount, azCountDefault(network.Zones)),
			AvailabilityZones: network.Zones,
			CIDR:              deref(network.CIDR, config.DefaultCIDR),
			SubnetPrefix:      deref(network.SubnetPrefix, config.DefaultSubnetPrefix),
			SingleNATGateway:  network.SingleNATGateway,
		},
		Cluster: &config.Cluster{
			Name:              orDefault(cluster.Name, defaultClusterName),
			ContainerInsights: cluster.ContainerInsights,
		},
		Assets: &config.Assets{
			Name:                            orDefault(assets.Name, defaultAssetsName),
			Versioned:                       assets.Versioned,
			PublicRead:                      assets.PublicRead,
			PublicReadReason:                assets.PublicReadReason,
			BlockACLsOnly:                   deref(assets.BlockACLsOnly, true),
			DestroyOnTeardown:               assets.DestroyOnTeardown,
			AutoPurgeOnDestroy:              assets.AutoPurgeOnDestroy,
			NoncurrentVersionExpirationDays: deref(assets.NoncurrentVersionExpirationDays, config.DefaultNoncurrentExpDays),
		},
		Task: &config.Task{
			Name:             taskName,
			CPU:              task.CPU,
			MemoryMiB:        task.MemoryMiB,
			Image:            task.Image,
			ContainerPort:    deref(task.ContainerPort, config.DefaultContainerPort),
			LogStreamPrefix:  orDefault(task.LogStreamPrefix, taskName),
			LogRetentionDays: deref(task.LogRetentionDays, config.DefaultLogRetentionDays),
			Environment:      task.Environment,
			StorageActions:   task.StorageActions,
		},
		Service: &config.Service{
			Name:                          orDefault(service.Name, defaultServiceName),
			DesiredCount:                  deref(service.DesiredCount, config.DefaultDesiredCount),
			ListenerPort:                  deref(service.ListenerPort, config.DefaultListenerPort),
			HealthCheckPath:               deref(service.HealthCheckPath, config.DefaultHealthCheckPath),
			HealthCheckGracePeriodSeconds: service.HealthCheckGracePeriodSeconds,
		},
	}, nil
}

func deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// azCountDefault spans every pinned zone when az_count is omitted.
func azCountDefault(zones []string) int {
	if len(zones) > 0 {
		return len(zones)
	}
	return config.DefaultAZCount
}
