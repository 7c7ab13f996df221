package config

// Defaults applied to omitted optional intents.
const (
	DefaultRegion            = "us-east-1"
	DefaultAZCount           = 2
	DefaultCIDR              = "10.0.0.0/16"
	DefaultSubnetPrefix      = 24
	DefaultContainerPort     = 80
	DefaultListenerPort      = 80
	DefaultHealthCheckPath   = "/"
	DefaultDesiredCount      = 1
	DefaultLogRetentionDays  = 14
	DefaultNoncurrentExpDays = 30
)

// Model is the unified, format-agnostic representation of one deployment
// declaration. Every value is a plain scalar, boolean, list or map.
type Model struct {
	Stack   *Stack
	Network *Network
	Cluster *Cluster
	Assets  *Assets
	Task    *Task
	Service *Service
}

// Stack carries the account/region execution context and the name every
// physical resource name is derived from.
type Stack struct {
	Name      string
	Region    string
	AccountID string
	Tags      map[string]string
}

// Network is the intent for the isolated virtual network.
type Network struct {
	Name    string
	AZCount int
	// AvailabilityZones pins the zone names; empty derives them from the region.
	AvailabilityZones []string
	CIDR              string
	SubnetPrefix      int
	SingleNATGateway  bool
}

// Cluster is the intent for the compute cluster.
type Cluster struct {
	Name              string
	ContainerInsights bool
}

// Assets is the intent for the static asset store.
type Assets struct {
	Name                            string
	Versioned                       bool
	PublicRead                      bool
	PublicReadReason                string
	BlockACLsOnly                   bool
	DestroyOnTeardown               bool
	AutoPurgeOnDestroy              bool
	NoncurrentVersionExpirationDays int
}

// Task is the intent for the container task definition.
type Task struct {
	Name             string
	CPU              int
	MemoryMiB        int
	Image            string
	ContainerPort    int
	LogStreamPrefix  string
	LogRetentionDays int
	Environment      map[string]string
	// StorageActions are the asset-store actions the running container needs.
	StorageActions []string
}

// Service is the intent for the load-balanced service.
type Service struct {
	Name                          string
	DesiredCount                  int
	ListenerPort                  int
	HealthCheckPath               string
	HealthCheckGracePeriodSeconds int
}

// DefaultStorageActions is the read/list access a static front end needs.
var DefaultStorageActions = []string{"s3:GetObject", "s3:ListBucket"}
