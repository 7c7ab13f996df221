package plan

import (
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ecs"
	"github.com/aws/aws-sdk-go/service/elbv2"
	"github.com/vk/webstack/internal/resourceid"
	"github.com/vk/webstack/internal/topology"
)

func addCompute(r map[string]renderFunc, t *topology.Topology) {
	c, task, svc := t.Cluster, t.Task, t.Service
	lb := svc.LoadBalancer
	vpcID := aws.String(t.Network.Address.Ref("id"))

	insights := "disabled"
	if c.ContainerInsights {
		insights = "enabled"
	}
	r[c.Address.String()] = single(Call{Action: "ecs:CreateCluster", Input: &ecs.CreateClusterInput{
		ClusterName: aws.String(c.Name),
		Settings: []*ecs.ClusterSetting{{
			Name:  aws.String(ecs.ClusterSettingNameContainerInsights),
			Value: aws.String(insights),
		}},
		Tags: ecsTags(c.Tags),
	}})

	r[task.Address.String()] = single(Call{Action: "ecs:RegisterTaskDefinition", Input: taskDefinition(task)})

	r[lb.SecurityGroup.Address.String()] = single(securityGroupCalls(lb.SecurityGroup, vpcID)...)
	r[svc.SecurityGroup.Address.String()] = single(securityGroupCalls(svc.SecurityGroup, vpcID)...)

	r[lb.Address.String()] = single(Call{Action: "elbv2:CreateLoadBalancer", Input: &elbv2.CreateLoadBalancerInput{
		Name:           aws.String(lb.Name),
		Scheme:         aws.String(lb.Scheme),
		Type:           aws.String(elbv2.LoadBalancerTypeEnumApplication),
		Subnets:        refs(lb.Subnets, "id"),
		SecurityGroups: []*string{aws.String(lb.SecurityGroup.Address.Ref("id"))},
		Tags:           elbv2Tags(lb.Tags),
	}})

	tg := lb.TargetGroup
	r[tg.Address.String()] = single(Call{Action: "elbv2:CreateTargetGroup", Input: &elbv2.CreateTargetGroupInput{
		Name:            aws.String(tg.Name),
		Port:            aws.Int64(int64(tg.Port)),
		Protocol:        aws.String(tg.Protocol),
		TargetType:      aws.String(tg.TargetType),
		VpcId:           vpcID,
		HealthCheckPath: aws.String(tg.HealthCheckPath),
		Matcher:         &elbv2.Matcher{HttpCode: aws.String(tg.Matcher)},
		Tags:            elbv2Tags(tg.Tags),
	}})

	r[lb.Listener.String()] = single(Call{Action: "elbv2:CreateListener", Input: &elbv2.CreateListenerInput{
		LoadBalancerArn: aws.String(lb.Address.Ref("arn")),
		Port:            aws.Int64(int64(lb.ListenerPort)),
		Protocol:        aws.String(elbv2.ProtocolEnumHttp),
		DefaultActions: []*elbv2.Action{{
			Type:           aws.String(elbv2.ActionTypeEnumForward),
			TargetGroupArn: aws.String(tg.Address.Ref("arn")),
		}},
	}})

	r[svc.Address.String()] = single(Call{Action: "ecs:CreateService", Input: &ecs.CreateServiceInput{
		Cluster:        aws.String(c.Name),
		ServiceName:    aws.String(svc.Name),
		TaskDefinition: aws.String(task.Address.Ref("arn")),
		DesiredCount:   aws.Int64(int64(svc.DesiredCount)),
		LaunchType:     aws.String(svc.LaunchType),
		NetworkConfiguration: &ecs.NetworkConfiguration{
			AwsvpcConfiguration: &ecs.AwsVpcConfiguration{
				Subnets:        refs(svc.Subnets, "id"),
				SecurityGroups: []*string{aws.String(svc.SecurityGroup.Address.Ref("id"))},
				AssignPublicIp: aws.String(assignPublicIP(svc.AssignPublicIP)),
			},
		},
		LoadBalancers: []*ecs.LoadBalancer{{
			TargetGroupArn: aws.String(tg.Address.Ref("arn")),
			ContainerName:  aws.String(task.Container.Name),
			ContainerPort:  aws.Int64(int64(task.Port())),
		}},
		DeploymentConfiguration: &ecs.DeploymentConfiguration{
			MinimumHealthyPercent: aws.Int64(int64(svc.Deployment.MinimumHealthyPercent)),
			MaximumPercent:        aws.Int64(int64(svc.Deployment.MaximumPercent)),
			DeploymentCircuitBreaker: &ecs.DeploymentCircuitBreaker{
				Enable:   aws.Bool(svc.Deployment.CircuitBreaker),
				Rollback: aws.Bool(svc.Deployment.Rollback),
			},
		},
		HealthCheckGracePeriodSeconds: aws.Int64(int64(svc.HealthCheckGracePeriodSeconds)),
		PropagateTags:                 aws.String(ecs.PropagateTagsService),
		Tags:                          ecsTags(svc.Tags),
	}})
}

func taskDefinition(task *topology.ContainerSpec) *ecs.RegisterTaskDefinitionInput {
	ctr := task.Container

	ports := make([]*ecs.PortMapping, 0, len(ctr.PortMappings))
	for _, pm := range ctr.PortMappings {
		ports = append(ports, &ecs.PortMapping{
			ContainerPort: aws.Int64(int64(pm.ContainerPort)),
			Protocol:      aws.String(pm.Protocol),
		})
	}
	env := make([]*ecs.KeyValuePair, 0, len(ctr.Environment))
	for _, kv := range ctr.Environment {
		env = append(env, &ecs.KeyValuePair{Name: aws.String(kv.Name), Value: aws.String(kv.Value)})
	}

	return &ecs.RegisterTaskDefinitionInput{
		Family:                  aws.String(task.Family),
		Cpu:                     aws.String(strconv.Itoa(task.CPU)),
		Memory:                  aws.String(strconv.Itoa(task.MemoryMiB)),
		NetworkMode:             aws.String(task.NetworkMode),
		RequiresCompatibilities: aws.StringSlice([]string{task.Compatibility}),
		ExecutionRoleArn:        aws.String(task.Role.ARN),
		TaskRoleArn:             aws.String(task.Role.ARN),
		ContainerDefinitions: []*ecs.ContainerDefinition{{
			Name:         aws.String(ctr.Name),
			Image:        aws.String(ctr.Image),
			Essential:    aws.Bool(ctr.Essential),
			PortMappings: ports,
			Environment:  env,
			LogConfiguration: &ecs.LogConfiguration{
				LogDriver: aws.String(ctr.Log.Driver),
				Options: aws.StringMap(map[string]string{
					"awslogs-group":         ctr.Log.GroupName,
					"awslogs-region":        ctr.Log.Region,
					"awslogs-stream-prefix": ctr.Log.StreamPrefix,
				}),
			},
		}},
		Tags: ecsTags(task.Tags),
	}
}

func refs(addrs []resourceid.Address, attribute string) []*string {
	out := make([]*string, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, aws.String(a.Ref(attribute)))
	}
	return out
}

func assignPublicIP(enabled bool) string {
	if enabled {
		return ecs.AssignPublicIpEnabled
	}
	return ecs.AssignPublicIpDisabled
}
