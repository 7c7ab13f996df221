package topology

import (
	"strings"

	"github.com/vk/webstack/internal/resourceid"
)

// Fixed task settings of this topology.
const (
	LaunchTypeFargate = "FARGATE"
	NetworkModeAwsVPC = "awsvpc"
	LogDriverAwsLogs  = "awslogs"
	ProtocolTCP       = "tcp"
	containerName     = "web"
)

// logRetentionDays are the retention periods the log service accepts.
var logRetentionDays = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 14: true, 30: true, 60: true, 90: true,
	120: true, 150: true, 180: true, 365: true, 400: true, 545: true, 731: true,
	1827: true, 3653: true,
}

// TaskInput is the declared intent for the task definition.
type TaskInput struct {
	Name            string
	CPU             int
	MemoryMiB       int
	Role            *AccessRole
	Image           string
	ContainerPort   int
	LogStreamPrefix string
	// LogRetentionDays of zero keeps logs forever.
	LogRetentionDays int
	Environment      map[string]string
}

// PortMapping exposes one container port.
type PortMapping struct {
	ContainerPort int
	Protocol      string
}

// KeyValue is one environment variable.
type KeyValue struct {
	Name  string
	Value string
}

// LogConfiguration routes container output to a log group.
type LogConfiguration struct {
	Driver        string
	Group         resourceid.Address
	GroupName     string
	Region        string
	StreamPrefix  string
	RetentionDays int
}

// Container is the single runnable unit inside the task.
type Container struct {
	Name         string
	Image        string
	Essential    bool
	PortMappings []PortMapping
	Log          LogConfiguration
	Environment  []KeyValue
}

// ContainerSpec is the task definition: its shape, identity and container.
//
// Only one container with exactly one port mapping is supported; that is
// the whole contract of this topology rather than a missing feature.
type ContainerSpec struct {
	Address       resourceid.Address
	Family        string
	CPU           int
	MemoryMiB     int
	NetworkMode   string
	Compatibility string
	// Role is attached both as execution and as task identity.
	Role      *AccessRole
	Container Container
	Tags      map[string]string
}

// Port returns the single exposed container port.
func (c *ContainerSpec) Port() int {
	return c.Container.PortMappings[0].ContainerPort
}

// BuildTaskSpec composes the task definition. The image is an opaque
// reference; whether it exists in a registry is not checked here.
func BuildTaskSpec(stack *Stack, in TaskInput) (*ContainerSpec, error) {
	addr, err := logicalAddress("task", in.Name)
	if err != nil {
		return nil, err
	}
	res := addr.String()

	if err := ValidateShape(in.CPU, in.MemoryMiB); err != nil {
		return nil, err
	}
	if in.Role == nil {
		return nil, configErr(res, "role", "is required")
	}
	if strings.TrimSpace(in.Image) == "" {
		return nil, configErr(res, "image", "is required")
	}
	if in.ContainerPort < 1 || in.ContainerPort > 65535 {
		return nil, configErr(res, "container_port", "must be between 1 and 65535, got %d", in.ContainerPort)
	}
	if in.LogStreamPrefix == "" || strings.ContainsAny(in.LogStreamPrefix, ":*") {
		return nil, configErr(res, "log_stream_prefix", "%q must be non-empty and must not contain ':' or '*'", in.LogStreamPrefix)
	}
	if in.LogRetentionDays != 0 && !logRetentionDays[in.LogRetentionDays] {
		return nil, configErr(res, "log_retention_days", "%d is not a supported retention period", in.LogRetentionDays)
	}

	family := stack.PhysicalName(addr, 255)
	env := make([]KeyValue, 0, len(in.Environment))
	for _, k := range SortedKeys(in.Environment) {
		env = append(env, KeyValue{Name: k, Value: in.Environment[k]})
	}

	return &ContainerSpec{
		Address:       addr,
		Family:        family,
		CPU:           in.CPU,
		MemoryMiB:     in.MemoryMiB,
		NetworkMode:   NetworkModeAwsVPC,
		Compatibility: LaunchTypeFargate,
		Role:          in.Role,
		Container: Container{
			Name:         containerName,
			Image:        in.Image,
			Essential:    true,
			PortMappings: []PortMapping{{ContainerPort: in.ContainerPort, Protocol: ProtocolTCP}},
			Log: LogConfiguration{
				Driver:        LogDriverAwsLogs,
				Group:         resourceid.New("log_group", in.Name),
				GroupName:     "/ecs/" + family,
				Region:        stack.Region,
				StreamPrefix:  in.LogStreamPrefix,
				RetentionDays: in.LogRetentionDays,
			},
			Environment: env,
		},
		Tags: stack.TagsFor(addr),
	}, nil
}
