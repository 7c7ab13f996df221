package topology

import (
	"strings"

	"github.com/aws/aws-sdk-go/aws/arn"
	"github.com/vk/webstack/internal/resourceid"
)

// TaskExecutionPrincipal is the only service allowed to assume the role.
const TaskExecutionPrincipal = "ecs-tasks.amazonaws.com"

// TaskExecutionPolicyPath is the provider-managed baseline policy granting
// image pull and log delivery.
const TaskExecutionPolicyPath = "service-role/AmazonECSTaskExecutionRolePolicy"

// BaselineActions is the fixed image-pull and log-write grant every task
// execution role carries.
var BaselineActions = []string{
	"ecr:GetAuthorizationToken",
	"ecr:BatchCheckLayerAvailability",
	"ecr:GetDownloadUrlForLayer",
	"ecr:BatchGetImage",
	"logs:CreateLogStream",
	"logs:PutLogEvents",
}

// storageReadActions are the only storage actions a role may be granted.
var storageReadActions = map[string]bool{
	"s3:GetObject":         true,
	"s3:GetObjectVersion":  true,
	"s3:ListBucket":        true,
	"s3:GetBucketLocation": true,
}

// RoleInput is the declared intent for the task's identity.
type RoleInput struct {
	Name           string
	TrustPrincipal string
	// ManagedBaselines are provider-managed policy ARNs to attach. Empty
	// means the task execution baseline.
	ManagedBaselines []string
	// ExtraActions are the storage read/list actions the task needs.
	ExtraActions []string
	// ResourceScopes are the concrete resource ARNs ExtraActions apply to.
	ResourceScopes []string
}

// AccessRole is an identity with a trust policy, attached managed policies
// and one inline policy.
type AccessRole struct {
	Address           resourceid.Address
	Name              string
	ARN               string
	TrustPrincipal    string
	AssumeRolePolicy  PolicyDocument
	ManagedPolicyARNs []string
	InlinePolicyName  string
	InlinePolicy      PolicyDocument
	Tags              map[string]string
}

// BuildAccessRole derives a least-privilege role. The inline policy always
// holds exactly two statements: the fixed baseline and a storage statement
// limited to ExtraActions on ResourceScopes. Anything broader is rejected.
func BuildAccessRole(stack *Stack, in RoleInput) (*AccessRole, error) {
	addr, err := logicalAddress("role", in.Name)
	if err != nil {
		return nil, err
	}
	res := addr.String()

	if in.TrustPrincipal != TaskExecutionPrincipal {
		return nil, &ScopeViolationError{Resource: res, Value: in.TrustPrincipal, Reason: "is not the task execution service principal " + TaskExecutionPrincipal}
	}

	managed := dedupe(in.ManagedBaselines)
	if len(managed) == 0 {
		managed = []string{stack.ManagedPolicyARN(TaskExecutionPolicyPath)}
	}
	for _, m := range managed {
		if err := validateManagedPolicy(res, m); err != nil {
			return nil, err
		}
	}

	actions := dedupe(in.ExtraActions)
	if len(actions) == 0 {
		return nil, configErr(res, "extra_actions", "at least one storage action is required")
	}
	for _, a := range actions {
		if !storageReadActions[a] {
			return nil, &ScopeViolationError{Resource: res, Value: a, Reason: "is not a storage read/list action"}
		}
	}

	scopes := dedupe(in.ResourceScopes)
	if len(scopes) == 0 {
		return nil, configErr(res, "resource_scopes", "at least one resource scope is required")
	}
	for _, s := range scopes {
		if err := validateStorageScope(res, s); err != nil {
			return nil, err
		}
	}

	name := stack.PhysicalName(addr, 64)
	return &AccessRole{
		Address:        addr,
		Name:           name,
		ARN:            stack.ARN("iam", "role/"+name, false),
		TrustPrincipal: in.TrustPrincipal,
		AssumeRolePolicy: PolicyDocument{
			Version: PolicyVersion,
			Statement: []Statement{{
				Effect:    "Allow",
				Principal: &Principal{Service: in.TrustPrincipal},
				Action:    []string{"sts:AssumeRole"},
			}},
		},
		ManagedPolicyARNs: managed,
		InlinePolicyName:  name + "-access",
		InlinePolicy: PolicyDocument{
			Version: PolicyVersion,
			Statement: []Statement{
				{
					Sid:      "ImagePullAndLogDelivery",
					Effect:   "Allow",
					Action:   append([]string(nil), BaselineActions...),
					Resource: []string{"*"},
				},
				{
					Sid:      "AssetStoreRead",
					Effect:   "Allow",
					Action:   actions,
					Resource: scopes,
				},
			},
		},
		Tags: stack.TagsFor(addr),
	}, nil
}

func validateManagedPolicy(res, raw string) error {
	a, err := arn.Parse(raw)
	if err != nil {
		return configErr(res, "managed_baselines", "%q is not an ARN: %v", raw, err)
	}
	if a.Service != "iam" || a.AccountID != "aws" || !strings.HasPrefix(a.Resource, "policy/") {
		return &ScopeViolationError{Resource: res, Value: raw, Reason: "is not a provider-managed IAM policy"}
	}
	return nil
}

// validateStorageScope rejects any scope that is not a concrete bucket or
// object path inside a concrete bucket.
func validateStorageScope(res, raw string) error {
	if raw == "*" {
		return &ScopeViolationError{Resource: res, Value: raw, Reason: "grants storage actions on every resource"}
	}
	a, err := arn.Parse(raw)
	if err != nil {
		return configErr(res, "resource_scopes", "%q is not an ARN: %v", raw, err)
	}
	if a.Service != "s3" {
		return &ScopeViolationError{Resource: res, Value: raw, Reason: "is not an asset store resource"}
	}
	bucket := strings.SplitN(a.Resource, "/", 2)[0]
	if bucket == "" || strings.ContainsAny(bucket, "*?") {
		return &ScopeViolationError{Resource: res, Value: raw, Reason: "does not name a concrete bucket"}
	}
	return nil
}
