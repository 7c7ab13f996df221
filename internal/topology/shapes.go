package topology

import "sort"

// Shape is a (CPU units, memory MiB) pair accepted by the execution platform.
type Shape struct {
	CPU       int
	MemoryMiB int
}

// taskShapes is the fixed Fargate compatibility table.
var taskShapes = map[int][]int{
	256:   {512, 1024, 2048},
	512:   memoryRange(1024, 4096, 1024),
	1024:  memoryRange(2048, 8192, 1024),
	2048:  memoryRange(4096, 16384, 1024),
	4096:  memoryRange(8192, 30720, 1024),
	8192:  memoryRange(16384, 61440, 4096),
	16384: memoryRange(32768, 122880, 8192),
}

func memoryRange(from, to, step int) []int {
	var out []int
	for m := from; m <= to; m += step {
		out = append(out, m)
	}
	return out
}

// ValidateShape returns an *InvalidShapeError unless (cpu, memoryMiB) is in
// the compatibility table.
func ValidateShape(cpu, memoryMiB int) error {
	allowed, ok := taskShapes[cpu]
	if !ok {
		return &InvalidShapeError{CPU: cpu, MemoryMiB: memoryMiB}
	}
	for _, m := range allowed {
		if m == memoryMiB {
			return nil
		}
	}
	return &InvalidShapeError{CPU: cpu, MemoryMiB: memoryMiB, Allowed: append([]int(nil), allowed...)}
}

// Shapes lists every supported task shape ordered by CPU, then memory.
func Shapes() []Shape {
	cpus := make([]int, 0, len(taskShapes))
	for cpu := range taskShapes {
		cpus = append(cpus, cpu)
	}
	sort.Ints(cpus)

	var out []Shape
	for _, cpu := range cpus {
		for _, m := range taskShapes[cpu] {
			out = append(out, Shape{CPU: cpu, MemoryMiB: m})
		}
	}
	return out
}
