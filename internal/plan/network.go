package plan

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/vk/webstack/internal/topology"
)

const defaultRoute = "0.0.0.0/0"

func addNetwork(r map[string]renderFunc, t *topology.Topology) {
	n := t.Network
	vpcID := aws.String(n.Address.Ref("id"))

	r[n.Address.String()] = single(
		Call{Action: "ec2:CreateVpc", Input: &ec2.CreateVpcInput{
			CidrBlock:         aws.String(n.CIDR),
			TagSpecifications: ec2TagSpec(ec2.ResourceTypeVpc, withName(n.Tags, n.Name)),
		}},
		Call{Action: "ec2:ModifyVpcAttribute", Input: &ec2.ModifyVpcAttributeInput{
			VpcId:              vpcID,
			EnableDnsHostnames: &ec2.AttributeBooleanValue{Value: aws.Bool(true)},
		}},
	)

	igw := n.InternetGateway
	r[igw.String()] = single(
		Call{Action: "ec2:CreateInternetGateway", Input: &ec2.CreateInternetGatewayInput{
			TagSpecifications: ec2TagSpec(ec2.ResourceTypeInternetGateway,
				withName(t.Stack.TagsFor(igw), t.Stack.PhysicalName(igw, 255))),
		}},
		Call{Action: "ec2:AttachInternetGateway", Input: &ec2.AttachInternetGatewayInput{
			InternetGatewayId: aws.String(igw.Ref("id")),
			VpcId:             vpcID,
		}},
	)

	for _, sub := range n.Subnets {
		routeTableID := aws.String(sub.Address.Ref("route_table_id"))
		route := &ec2.CreateRouteInput{
			RouteTableId:         routeTableID,
			DestinationCidrBlock: aws.String(defaultRoute),
		}
		if sub.Public {
			route.GatewayId = aws.String(sub.EgressVia.Ref("id"))
		} else {
			route.NatGatewayId = aws.String(sub.EgressVia.Ref("id"))
		}

		r[sub.Address.String()] = single(
			Call{Action: "ec2:CreateSubnet", Input: &ec2.CreateSubnetInput{
				VpcId:             vpcID,
				CidrBlock:         aws.String(sub.CIDR),
				AvailabilityZone:  aws.String(sub.AvailabilityZone),
				TagSpecifications: ec2TagSpec(ec2.ResourceTypeSubnet, withName(sub.Tags, sub.Name)),
			}},
			Call{Action: "ec2:CreateRouteTable", Input: &ec2.CreateRouteTableInput{
				VpcId:             vpcID,
				TagSpecifications: ec2TagSpec(ec2.ResourceTypeRouteTable, withName(sub.Tags, sub.Name)),
			}},
			Call{Action: "ec2:CreateRoute", Input: route},
			Call{Action: "ec2:AssociateRouteTable", Input: &ec2.AssociateRouteTableInput{
				RouteTableId: routeTableID,
				SubnetId:     aws.String(sub.Address.Ref("id")),
			}},
		)
	}

	for _, nat := range n.NATGateways {
		r[nat.Address.String()] = single(
			Call{Action: "ec2:AllocateAddress", Input: &ec2.AllocateAddressInput{
				Domain: aws.String(ec2.DomainTypeVpc),
			}},
			Call{Action: "ec2:CreateNatGateway", Input: &ec2.CreateNatGatewayInput{
				AllocationId:      aws.String(nat.Address.Ref("allocation_id")),
				SubnetId:          aws.String(nat.Subnet.Ref("id")),
				TagSpecifications: ec2TagSpec(ec2.ResourceTypeNatgateway, withName(nat.Tags, nat.Name)),
			}},
		)
	}
}

func securityGroupCalls(sg topology.SecurityGroup, vpcID *string) []Call {
	groupID := aws.String(sg.Address.Ref("id"))
	perms := make([]*ec2.IpPermission, 0, len(sg.Ingress))
	for _, rule := range sg.Ingress {
		perm := &ec2.IpPermission{
			IpProtocol: aws.String(topology.ProtocolTCP),
			FromPort:   aws.Int64(int64(rule.Port)),
			ToPort:     aws.Int64(int64(rule.Port)),
		}
		if rule.CIDR != "" {
			perm.IpRanges = []*ec2.IpRange{{CidrIp: aws.String(rule.CIDR)}}
		} else {
			perm.UserIdGroupPairs = []*ec2.UserIdGroupPair{{GroupId: aws.String(rule.SourceGroup.Ref("id"))}}
		}
		perms = append(perms, perm)
	}

	return []Call{
		{Action: "ec2:CreateSecurityGroup", Input: &ec2.CreateSecurityGroupInput{
			GroupName:   aws.String(sg.Name),
			Description: aws.String(sg.Description),
			VpcId:       vpcID,
		}},
		{Action: "ec2:CreateTags", Input: &ec2.CreateTagsInput{
			Resources: []*string{groupID},
			Tags:      ec2Tags(withName(sg.Tags, sg.Name)),
		}},
		{Action: "ec2:AuthorizeSecurityGroupIngress", Input: &ec2.AuthorizeSecurityGroupIngressInput{
			GroupId:       groupID,
			IpPermissions: perms,
		}},
	}
}
