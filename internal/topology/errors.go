package topology

import "fmt"

// ConfigurationError reports malformed or out-of-range input. It is always
// fatal to the builder call that returns it.
type ConfigurationError struct {
	Resource string
	Field    string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s %s", e.Resource, e.Field, e.Reason)
}

// PolicyConflictError reports mutually inconsistent access settings on a
// resource, e.g. public read granted while object ACLs remain enabled.
type PolicyConflictError struct {
	Resource string
	Reason   string
}

func (e *PolicyConflictError) Error() string {
	return fmt.Sprintf("policy conflict: %s: %s", e.Resource, e.Reason)
}

// ScopeViolationError reports a grant that would exceed least privilege.
type ScopeViolationError struct {
	Resource string
	Value    string
	Reason   string
}

func (e *ScopeViolationError) Error() string {
	return fmt.Sprintf("scope violation: %s: %q %s", e.Resource, e.Value, e.Reason)
}

// InvalidShapeError reports a CPU/memory pair the execution platform does
// not accept as a task shape.
type InvalidShapeError struct {
	CPU       int
	MemoryMiB int
	Allowed   []int
}

func (e *InvalidShapeError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("invalid task shape: cpu %d is not a supported cpu value", e.CPU)
	}
	return fmt.Sprintf("invalid task shape: cpu %d does not accept memory %d MiB (allowed: %v)", e.CPU, e.MemoryMiB, e.Allowed)
}

// Warning is a non-fatal, informational finding about the declaration.
type Warning struct {
	Resource string
	Message  string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Resource, w.Message)
}

func configErr(resource, field, format string, args ...any) error {
	return &ConfigurationError{Resource: resource, Field: field, Reason: fmt.Sprintf(format, args...)}
}
