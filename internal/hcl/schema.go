package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot is decoded from every declaration file. Unknown top-level blocks
// and attributes are rejected by gohcl.
type fileRoot struct {
	Variables   []*variableBlock   `hcl:"variable,block"`
	Deployments []*deploymentBlock `hcl:"deployment,block"`
}

// variableBlock declares a name that can be referenced as `var.<name>`.
type variableBlock struct {
	Name        string         `hcl:"name,label"`
	Description string         `hcl:"description,optional"`
	Default     hcl.Expression `hcl:"default,optional"`
}

// deploymentBlock is decoded in two passes: the label first, the body once
// every variable is known.
type deploymentBlock struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

type deploymentSpec struct {
	Region    *string           `hcl:"region,optional"`
	AccountID string            `hcl:"account_id"`
	Tags      map[string]string `hcl:"tags,optional"`
	Network   *networkBlock     `hcl:"network,block"`
	Cluster   *clusterBlock     `hcl:"cluster,block"`
	Assets    *assetsBlock      `hcl:"assets,block"`
	Task      *taskBlock        `hcl:"task,block"`
	Service   *serviceBlock     `hcl:"service,block"`
}

type networkBlock struct {
	Name             string   `hcl:"name,optional"`
	AZCount          *int     `hcl:"az_count,optional"`
	Zones            []string `hcl:"availability_zones,optional"`
	CIDR             *string  `hcl:"cidr,optional"`
	SubnetPrefix     *int     `hcl:"subnet_prefix,optional"`
	SingleNATGateway bool     `hcl:"single_nat_gateway,optional"`
}

type clusterBlock struct {
	Name              string `hcl:"name,optional"`
	ContainerInsights bool   `hcl:"container_insights,optional"`
}

type assetsBlock struct {
	Name                            string `hcl:"name,optional"`
	Versioned                       bool   `hcl:"versioned,optional"`
	PublicRead                      bool   `hcl:"public_read,optional"`
	PublicReadReason                string `hcl:"public_read_reason,optional"`
	BlockACLsOnly                   *bool  `hcl:"block_acls_only,optional"`
	DestroyOnTeardown               bool   `hcl:"destroy_on_teardown,optional"`
	AutoPurgeOnDestroy              bool   `hcl:"auto_purge_on_destroy,optional"`
	NoncurrentVersionExpirationDays *int   `hcl:"noncurrent_version_expiration_days,optional"`
}

type taskBlock struct {
	Name             string            `hcl:"name,optional"`
	CPU              int               `hcl:"cpu"`
	MemoryMiB        int               `hcl:"memory"`
	Image            string            `hcl:"image,optional"`
	ContainerPort    *int              `hcl:"container_port,optional"`
	LogStreamPrefix  string            `hcl:"log_stream_prefix,optional"`
	LogRetentionDays *int              `hcl:"log_retention_days,optional"`
	Environment      map[string]string `hcl:"environment,optional"`
	StorageActions   []string          `hcl:"storage_actions,optional"`
}

type serviceBlock struct {
	Name                          string  `hcl:"name,optional"`
	DesiredCount                  *int    `hcl:"desired_count,optional"`
	ListenerPort                  *int    `hcl:"listener_port,optional"`
	HealthCheckPath               *string `hcl:"health_check_path,optional"`
	HealthCheckGracePeriodSeconds int     `hcl:"health_check_grace_period_seconds,optional"`
}
