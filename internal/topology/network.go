package topology

import (
	"net"
	"strings"

	"github.com/apparentlymart/go-cidr/cidr"
	"github.com/vk/webstack/internal/resourceid"
)

// MaxAZCount is the largest number of availability zones a network may span.
const MaxAZCount = 6

// NetworkInput is the declared intent for the network.
type NetworkInput struct {
	Name    string
	AZCount int
	// AvailabilityZones pins the zone names. When empty the first AZCount
	// zones of the region are assumed.
	AvailabilityZones []string
	// CIDR is the base address range the subnets are carved from.
	CIDR string
	// SubnetPrefix is the prefix length of every subnet, e.g. 24.
	SubnetPrefix int
	// SingleNATGateway routes all private subnets through one NAT gateway
	// instead of one per zone.
	SingleNATGateway bool
}

// Subnet is one public or private subnet of the network.
type Subnet struct {
	Address          resourceid.Address
	Name             string
	AvailabilityZone string
	CIDR             string
	Public           bool
	// EgressVia is the address of the gateway the subnet's default route targets.
	EgressVia resourceid.Address
	Tags      map[string]string
}

// NATGateway gives private subnets outbound access from a public subnet.
type NATGateway struct {
	Address resourceid.Address
	Name    string
	Subnet  resourceid.Address
	Tags    map[string]string
}

// NetworkTopology is the isolated address space and its subnet layout.
type NetworkTopology struct {
	Address           resourceid.Address
	Name              string
	CIDR              string
	AZCount           int
	AvailabilityZones []string
	Subnets           []Subnet
	InternetGateway   resourceid.Address
	NATGateways       []NATGateway
	Tags              map[string]string
}

// PublicSubnets returns the public half of the subnet layout in zone order.
func (n *NetworkTopology) PublicSubnets() []Subnet {
	return n.subnets(true)
}

// PrivateSubnets returns the private half of the subnet layout in zone order.
func (n *NetworkTopology) PrivateSubnets() []Subnet {
	return n.subnets(false)
}

func (n *NetworkTopology) subnets(public bool) []Subnet {
	var out []Subnet
	for _, s := range n.Subnets {
		if s.Public == public {
			out = append(out, s)
		}
	}
	return out
}

// BuildNetwork derives a network with one public and one private subnet per
// availability zone. Public subnet i takes block i of the base range and
// private subnet i takes block AZCount+i, so the layout only depends on the
// input.
func BuildNetwork(stack *Stack, in NetworkInput) (*NetworkTopology, error) {
	addr, err := logicalAddress("network", in.Name)
	if err != nil {
		return nil, err
	}
	res := addr.String()

	if in.AZCount < 1 || in.AZCount > MaxAZCount {
		return nil, configErr(res, "az_count", "must be between 1 and %d, got %d", MaxAZCount, in.AZCount)
	}
	zones, err := availabilityZones(stack, res, in)
	if err != nil {
		return nil, err
	}
	_, base, err := net.ParseCIDR(in.CIDR)
	if err != nil || base.IP.To4() == nil {
		return nil, configErr(res, "cidr", "%q is not a valid IPv4 CIDR block", in.CIDR)
	}
	baseBits, _ := base.Mask.Size()
	newBits := in.SubnetPrefix - baseBits
	if newBits <= 0 || in.SubnetPrefix > 28 {
		return nil, configErr(res, "subnet_prefix", "/%d must be longer than the base /%d and at most /28", in.SubnetPrefix, baseBits)
	}
	if newBits < 31 && 1<<newBits < 2*in.AZCount {
		return nil, configErr(res, "cidr", "%s cannot hold %d /%d subnets", base, 2*in.AZCount, in.SubnetPrefix)
	}

	network := &NetworkTopology{
		Address:           addr,
		Name:              stack.PhysicalName(addr, 255),
		CIDR:              base.String(),
		AZCount:           in.AZCount,
		AvailabilityZones: zones,
		InternetGateway:   resourceid.New("internet_gateway", in.Name),
		Tags:              stack.TagsFor(addr),
	}

	blocks := make([]*net.IPNet, 0, 2*in.AZCount)
	for i := 0; i < 2*in.AZCount; i++ {
		block, err := cidr.Subnet(base, newBits, i)
		if err != nil {
			return nil, configErr(res, "cidr", "failed to carve subnet %d: %v", i, err)
		}
		blocks = append(blocks, block)
	}
	if err := cidr.VerifyNoOverlap(blocks, base); err != nil {
		return nil, configErr(res, "cidr", "subnet layout overlaps: %v", err)
	}

	natCount := in.AZCount
	if in.SingleNATGateway {
		natCount = 1
	}
	for i := 0; i < natCount; i++ {
		natAddr := resourceid.Indexed("nat_gateway", in.Name, i)
		network.NATGateways = append(network.NATGateways, NATGateway{
			Address: natAddr,
			Name:    stack.PhysicalName(natAddr, 255),
			Subnet:  resourceid.Indexed("subnet", "public", i),
			Tags:    stack.TagsFor(natAddr),
		})
	}

	for i, zone := range network.AvailabilityZones {
		subAddr := resourceid.Indexed("subnet", "public", i)
		network.Subnets = append(network.Subnets, Subnet{
			Address:          subAddr,
			Name:             stack.PhysicalName(subAddr, 255),
			AvailabilityZone: zone,
			CIDR:             blocks[i].String(),
			Public:           true,
			EgressVia:        network.InternetGateway,
			Tags:             stack.TagsFor(subAddr),
		})
	}
	for i, zone := range network.AvailabilityZones {
		subAddr := resourceid.Indexed("subnet", "private", i)
		nat := network.NATGateways[i%natCount]
		network.Subnets = append(network.Subnets, Subnet{
			Address:          subAddr,
			Name:             stack.PhysicalName(subAddr, 255),
			AvailabilityZone: zone,
			CIDR:             blocks[in.AZCount+i].String(),
			Public:           false,
			EgressVia:        nat.Address,
			Tags:             stack.TagsFor(subAddr),
		})
	}

	return network, nil
}

func availabilityZones(stack *Stack, res string, in NetworkInput) ([]string, error) {
	if len(in.AvailabilityZones) == 0 {
		return stack.AvailabilityZones(in.AZCount), nil
	}
	if len(in.AvailabilityZones) != in.AZCount {
		return nil, configErr(res, "availability_zones", "lists %d zones but az_count is %d", len(in.AvailabilityZones), in.AZCount)
	}
	seen := make(map[string]bool, len(in.AvailabilityZones))
	for _, zone := range in.AvailabilityZones {
		suffix, ok := strings.CutPrefix(zone, stack.Region)
		if !ok || len(suffix) != 1 || suffix[0] < 'a' || suffix[0] > 'z' {
			return nil, configErr(res, "availability_zones", "%q is not a zone of region %s", zone, stack.Region)
		}
		if seen[zone] {
			return nil, configErr(res, "availability_zones", "%q is listed twice", zone)
		}
		seen[zone] = true
	}
	return append([]string(nil), in.AvailabilityZones...), nil
}
