package topology

import "github.com/vk/webstack/internal/resourceid"

// ClusterInput is the declared intent for the compute cluster.
type ClusterInput struct {
	Name              string
	ContainerInsights bool
}

// ComputeCluster is the logical grouping of execution capacity.
type ComputeCluster struct {
	Address           resourceid.Address
	Name              string
	ARN               string
	ContainerInsights bool
	// Network is a non-owning reference to the network the cluster's
	// tasks are placed in.
	Network *NetworkTopology
	Tags    map[string]string
}

// BuildCluster binds a cluster to exactly one network.
func BuildCluster(stack *Stack, network *NetworkTopology, in ClusterInput) (*ComputeCluster, error) {
	addr, err := logicalAddress("cluster", in.Name)
	if err != nil {
		return nil, err
	}
	if network == nil {
		return nil, configErr(addr.String(), "network", "is required")
	}
	name := stack.PhysicalName(addr, 255)
	return &ComputeCluster{
		Address:           addr,
		Name:              name,
		ARN:               stack.ARN("ecs", "cluster/"+name, true),
		ContainerInsights: in.ContainerInsights,
		Network:           network,
		Tags:              stack.TagsFor(addr),
	}, nil
}
