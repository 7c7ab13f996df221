package plan

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ecs"
	"github.com/aws/aws-sdk-go/service/elbv2"
	"github.com/aws/aws-sdk-go/service/iam"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/vk/webstack/internal/topology"
)

// nameTag is the tag the console displays as the resource name.
const nameTag = "Name"

func withName(tags map[string]string, name string) map[string]string {
	out := make(map[string]string, len(tags)+1)
	for k, v := range tags {
		out[k] = v
	}
	out[nameTag] = name
	return out
}

func ec2TagSpec(resourceType string, tags map[string]string) []*ec2.TagSpecification {
	return []*ec2.TagSpecification{{
		ResourceType: aws.String(resourceType),
		Tags:         ec2Tags(tags),
	}}
}

func ec2Tags(tags map[string]string) []*ec2.Tag {
	out := make([]*ec2.Tag, 0, len(tags))
	for _, k := range topology.SortedKeys(tags) {
		out = append(out, &ec2.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	return out
}

func ecsTags(tags map[string]string) []*ecs.Tag {
	out := make([]*ecs.Tag, 0, len(tags))
	for _, k := range topology.SortedKeys(tags) {
		out = append(out, &ecs.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	return out
}

func elbv2Tags(tags map[string]string) []*elbv2.Tag {
	out := make([]*elbv2.Tag, 0, len(tags))
	for _, k := range topology.SortedKeys(tags) {
		out = append(out, &elbv2.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	return out
}

func iamTags(tags map[string]string) []*iam.Tag {
	out := make([]*iam.Tag, 0, len(tags))
	for _, k := range topology.SortedKeys(tags) {
		out = append(out, &iam.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	return out
}

func s3Tags(tags map[string]string) []*s3.Tag {
	out := make([]*s3.Tag, 0, len(tags))
	for _, k := range topology.SortedKeys(tags) {
		out = append(out, &s3.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	return out
}
