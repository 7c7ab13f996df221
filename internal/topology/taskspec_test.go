package topology

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateShape_Table(t *testing.T) {
	t.Parallel()

	// --- Act & Assert ---
	valid := make(map[Shape]bool)
	for _, s := range Shapes() {
		valid[s] = true
		assert.NoError(t, ValidateShape(s.CPU, s.MemoryMiB), "shape %+v", s)
	}

	cpus := []int{0, 128, 256, 384, 512, 1024, 2048, 4096, 8192, 16384, 32768}
	var memories []int
	for m := 0; m <= 131072; m += 512 {
		memories = append(memories, m)
	}
	for _, cpu := range cpus {
		for _, mem := range memories {
			if valid[Shape{CPU: cpu, MemoryMiB: mem}] {
				continue
			}
			var shapeErr *InvalidShapeError
			err := ValidateShape(cpu, mem)
			require.True(t, errors.As(err, &shapeErr), "cpu=%d memory=%d should be rejected", cpu, mem)
		}
	}
}

func TestValidateShape_Examples(t *testing.T) {
	t.Parallel()

	// --- Act & Assert ---
	for _, mem := range []int{1024, 2048, 3072, 4096} {
		assert.NoError(t, ValidateShape(512, mem))
	}
	for _, mem := range []int{512, 1536, 5120} {
		err := ValidateShape(512, mem)
		var shapeErr *InvalidShapeError
		require.True(t, errors.As(err, &shapeErr))
		assert.Equal(t, []int{1024, 2048, 3072, 4096}, shapeErr.Allowed)
	}

	err := ValidateShape(300, 1024)
	assert.EqualError(t, err, "invalid task shape: cpu 300 is not a supported cpu value")
}

func TestBuildTaskSpec(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	stack := newTestStack(t)
	role := newTestRole(t, stack)

	// --- Act ---
	spec, err := BuildTaskSpec(stack, TaskInput{
		Name:             "web",
		CPU:              512,
		MemoryMiB:        1024,
		Role:             role,
		Image:            testImage,
		ContainerPort:    3000,
		LogStreamPrefix:  "web",
		LogRetentionDays: 14,
		Environment:      map[string]string{"NODE_ENV": "production", "ASSET_URL": "https://example"},
	})

	// --- Assert ---
	require.NoError(t, err)

	assert.Equal(t, NetworkModeAwsVPC, spec.NetworkMode)
	assert.Equal(t, LaunchTypeFargate, spec.Compatibility)
	assert.Same(t, role, spec.Role)
	assert.Equal(t, testImage, spec.Container.Image)
	assert.True(t, spec.Container.Essential)
	assert.Equal(t, []PortMapping{{ContainerPort: 3000, Protocol: ProtocolTCP}}, spec.Container.PortMappings)
	assert.Equal(t, 3000, spec.Port())
	assert.Equal(t, []KeyValue{{"ASSET_URL", "https://example"}, {"NODE_ENV", "production"}}, spec.Container.Environment)

	log := spec.Container.Log
	assert.Equal(t, LogDriverAwsLogs, log.Driver)
	assert.Equal(t, "/ecs/"+spec.Family, log.GroupName)
	assert.Equal(t, "log_group.web", log.Group.String())
	assert.Equal(t, testRegion, log.Region)
	assert.Equal(t, "web", log.StreamPrefix)
}

func TestBuildTaskSpec_Errors(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	stack := newTestStack(t)
	role := newTestRole(t, stack)
	valid := TaskInput{Name: "web", CPU: 256, MemoryMiB: 512, Role: role, Image: testImage, ContainerPort: 80, LogStreamPrefix: "web"}

	testCases := []struct {
		name   string
		mutate func(*TaskInput)
		field  string
	}{
		{name: "missing role", mutate: func(in *TaskInput) { in.Role = nil }, field: "role"},
		{name: "empty image", mutate: func(in *TaskInput) { in.Image = "  " }, field: "image"},
		{name: "port zero", mutate: func(in *TaskInput) { in.ContainerPort = 0 }, field: "container_port"},
		{name: "port too large", mutate: func(in *TaskInput) { in.ContainerPort = 70000 }, field: "container_port"},
		{name: "empty prefix", mutate: func(in *TaskInput) { in.LogStreamPrefix = "" }, field: "log_stream_prefix"},
		{name: "prefix with colon", mutate: func(in *TaskInput) { in.LogStreamPrefix = "a:b" }, field: "log_stream_prefix"},
		{name: "retention", mutate: func(in *TaskInput) { in.LogRetentionDays = 10 }, field: "log_retention_days"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			in := valid
			tc.mutate(&in)

			// --- Act ---
			_, err := BuildTaskSpec(stack, in)

			// --- Assert ---
			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "expected ConfigurationError, got %v", err)
			assert.Equal(t, tc.field, cfgErr.Field)
		})
	}

	t.Run("invalid shape", func(t *testing.T) {
		t.Parallel()

		// --- Arrange ---
		in := valid
		in.MemoryMiB = 4096

		// --- Act ---
		_, err := BuildTaskSpec(stack, in)

		// --- Assert ---
		var shapeErr *InvalidShapeError
		require.True(t, errors.As(err, &shapeErr), fmt.Sprintf("expected InvalidShapeError, got %v", err))
	})
}
