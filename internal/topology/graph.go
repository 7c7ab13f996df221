package topology

import (
	"fmt"

	"github.com/vk/webstack/internal/dag"
	"github.com/vk/webstack/internal/resourceid"
)

type edge struct {
	from, to resourceid.Address
}

// resources lists every declared resource address of the topology.
func (t *Topology) resources() []resourceid.Address {
	n, s := t.Network, t.Service
	out := []resourceid.Address{n.Address, n.InternetGateway}
	for _, sub := range n.Subnets {
		out = append(out, sub.Address)
	}
	for _, nat := range n.NATGateways {
		out = append(out, nat.Address)
	}
	return append(out,
		t.Cluster.Address,
		t.Assets.Address,
		t.Role.Address,
		t.Task.Container.Log.Group,
		t.Task.Address,
		s.LoadBalancer.SecurityGroup.Address,
		s.SecurityGroup.Address,
		s.LoadBalancer.Address,
		s.LoadBalancer.TargetGroup.Address,
		s.LoadBalancer.Listener,
		s.Address,
	)
}

// edges derives the dependency edges from the cross-references the builders
// wired. An edge points from the dependency to the dependent.
func (t *Topology) edges() []edge {
	n, s := t.Network, t.Service
	lb := s.LoadBalancer

	es := []edge{
		{n.Address, n.InternetGateway},
		{n.Address, t.Cluster.Address},
		{t.Assets.Address, t.Role.Address},
		{t.Role.Address, t.Task.Address},
		{t.Task.Container.Log.Group, t.Task.Address},
		{n.Address, lb.SecurityGroup.Address},
		{n.Address, s.SecurityGroup.Address},
		{lb.SecurityGroup.Address, s.SecurityGroup.Address},
		{lb.SecurityGroup.Address, lb.Address},
		{n.Address, lb.TargetGroup.Address},
		{lb.Address, lb.Listener},
		{lb.TargetGroup.Address, lb.Listener},
		{t.Cluster.Address, s.Address},
		{t.Task.Address, s.Address},
		{s.SecurityGroup.Address, s.Address},
		{lb.Listener, s.Address},
	}
	for _, sub := range n.Subnets {
		es = append(es, edge{n.Address, sub.Address}, edge{sub.EgressVia, sub.Address})
	}
	for _, nat := range n.NATGateways {
		es = append(es, edge{nat.Subnet, nat.Address})
	}
	for _, sub := range lb.Subnets {
		es = append(es, edge{sub, lb.Address})
	}
	for _, sub := range s.Subnets {
		es = append(es, edge{sub, s.Address})
	}
	return es
}

// link records the topology in a dependency graph, rejects cycles and stores
// the resulting provisioning order.
func (t *Topology) link() error {
	g := dag.New()
	resources := t.resources()
	for _, addr := range resources {
		g.AddNode(addr.String())
	}
	if g.Len() != len(resources) {
		return fmt.Errorf("topology declares %d resources but only %d distinct addresses", len(resources), g.Len())
	}
	for _, e := range t.edges() {
		if err := g.AddEdge(e.from.String(), e.to.String()); err != nil {
			return fmt.Errorf("error linking %s -> %s: %w", e.from, e.to, err)
		}
	}
	if err := g.DetectCycles(); err != nil {
		return fmt.Errorf("error validating dependency graph: %w", err)
	}

	order, err := g.TopologicalOrder()
	if err != nil {
		return err
	}
	t.Order = order
	t.DependsOn = make(map[string][]string, len(order))
	for _, id := range order {
		deps, err := g.Dependencies(id)
		if err != nil {
			return err
		}
		t.DependsOn[id] = deps
	}
	return nil
}
