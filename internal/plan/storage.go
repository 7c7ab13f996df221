package plan

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go/service/iam"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/vk/webstack/internal/topology"
)

// usEast1 is the one region whose buckets take no location constraint.
const usEast1 = "us-east-1"

func addStorage(r map[string]renderFunc, t *topology.Topology) {
	r[t.Assets.Address.String()] = func() ([]Call, error) { return assetStoreCalls(t.Stack, t.Assets) }
	r[t.Role.Address.String()] = func() ([]Call, error) { return roleCalls(t.Role) }

	logs := t.Task.Container.Log
	calls := []Call{{Action: "logs:CreateLogGroup", Input: &cloudwatchlogs.CreateLogGroupInput{
		LogGroupName: aws.String(logs.GroupName),
		Tags:         aws.StringMap(t.Stack.TagsFor(logs.Group)),
	}}}
	if logs.RetentionDays > 0 {
		calls = append(calls, Call{Action: "logs:PutRetentionPolicy", Input: &cloudwatchlogs.PutRetentionPolicyInput{
			LogGroupName:    aws.String(logs.GroupName),
			RetentionInDays: aws.Int64(int64(logs.RetentionDays)),
		}})
	}
	r[logs.Group.String()] = single(calls...)
}

func assetStoreCalls(stack *topology.Stack, h *topology.AssetStoreHandle) ([]Call, error) {
	bucket := aws.String(h.BucketName)

	create := &s3.CreateBucketInput{Bucket: bucket}
	if stack.Region != usEast1 {
		create.CreateBucketConfiguration = &s3.CreateBucketConfiguration{
			LocationConstraint: aws.String(stack.Region),
		}
	}

	calls := []Call{
		{Action: "s3:CreateBucket", Input: create},
		{Action: "s3:PutBucketOwnershipControls", Input: &s3.PutBucketOwnershipControlsInput{
			Bucket: bucket,
			OwnershipControls: &s3.OwnershipControls{
				Rules: []*s3.OwnershipControlsRule{{ObjectOwnership: aws.String(h.ObjectOwnership)}},
			},
		}},
		{Action: "s3:PutPublicAccessBlock", Input: &s3.PutPublicAccessBlockInput{
			Bucket: bucket,
			PublicAccessBlockConfiguration: &s3.PublicAccessBlockConfiguration{
				BlockPublicAcls:       aws.Bool(h.PublicAccessBlock.BlockPublicACLs),
				IgnorePublicAcls:      aws.Bool(h.PublicAccessBlock.IgnorePublicACLs),
				BlockPublicPolicy:     aws.Bool(h.PublicAccessBlock.BlockPublicPolicy),
				RestrictPublicBuckets: aws.Bool(h.PublicAccessBlock.RestrictPublicBuckets),
			},
		}},
	}

	if h.Versioned {
		calls = append(calls, Call{Action: "s3:PutBucketVersioning", Input: &s3.PutBucketVersioningInput{
			Bucket:                  bucket,
			VersioningConfiguration: &s3.VersioningConfiguration{Status: aws.String(s3.BucketVersioningStatusEnabled)},
		}})
	}

	rules := make([]*s3.LifecycleRule, 0, len(h.LifecycleRules))
	for _, lr := range h.LifecycleRules {
		rule := &s3.LifecycleRule{
			ID:     aws.String(lr.ID),
			Status: aws.String(s3.ExpirationStatusEnabled),
			Filter: &s3.LifecycleRuleFilter{Prefix: aws.String("")},
		}
		if lr.NoncurrentVersionExpirationDays > 0 {
			rule.NoncurrentVersionExpiration = &s3.NoncurrentVersionExpiration{
				NoncurrentDays: aws.Int64(int64(lr.NoncurrentVersionExpirationDays)),
			}
		}
		if lr.AbortIncompleteUploadDays > 0 {
			rule.AbortIncompleteMultipartUpload = &s3.AbortIncompleteMultipartUpload{
				DaysAfterInitiation: aws.Int64(int64(lr.AbortIncompleteUploadDays)),
			}
		}
		rules = append(rules, rule)
	}
	calls = append(calls, Call{Action: "s3:PutBucketLifecycleConfiguration", Input: &s3.PutBucketLifecycleConfigurationInput{
		Bucket:                 bucket,
		LifecycleConfiguration: &s3.BucketLifecycleConfiguration{Rules: rules},
	}})

	if h.Policy != nil {
		doc, err := h.Policy.JSON()
		if err != nil {
			return nil, err
		}
		calls = append(calls, Call{Action: "s3:PutBucketPolicy", Input: &s3.PutBucketPolicyInput{
			Bucket: bucket,
			Policy: aws.String(doc),
		}})
	}

	calls = append(calls, Call{Action: "s3:PutBucketTagging", Input: &s3.PutBucketTaggingInput{
		Bucket:  bucket,
		Tagging: &s3.Tagging{TagSet: s3Tags(h.Tags)},
	}})
	return calls, nil
}

func roleCalls(role *topology.AccessRole) ([]Call, error) {
	trust, err := role.AssumeRolePolicy.JSON()
	if err != nil {
		return nil, err
	}
	inline, err := role.InlinePolicy.JSON()
	if err != nil {
		return nil, err
	}

	name := aws.String(role.Name)
	calls := []Call{{Action: "iam:CreateRole", Input: &iam.CreateRoleInput{
		RoleName:                 name,
		AssumeRolePolicyDocument: aws.String(trust),
		Tags:                     iamTags(role.Tags),
	}}}
	for _, arn := range role.ManagedPolicyARNs {
		calls = append(calls, Call{Action: "iam:AttachRolePolicy", Input: &iam.AttachRolePolicyInput{
			RoleName:  name,
			PolicyArn: aws.String(arn),
		}})
	}
	return append(calls, Call{Action: "iam:PutRolePolicy", Input: &iam.PutRolePolicyInput{
		RoleName:       name,
		PolicyName:     aws.String(role.InlinePolicyName),
		PolicyDocument: aws.String(inline),
	}}), nil
}
