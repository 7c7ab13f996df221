package resourceid

import (
	"fmt"
	"strings"
)

// NoIndex marks an address that does not belong to an indexed family.
const NoIndex = -1

// Address is the logical identity of a declared resource.
type Address struct {
	Kind  string
	Name  string
	Index int
}

// New returns a singular address.
func New(kind, name string) Address {
	return Address{Kind: kind, Name: name, Index: NoIndex}
}

// Indexed returns the address of the i-th member of a resource family.
func Indexed(kind, name string, i int) Address {
	return Address{Kind: kind, Name: name, Index: i}
}

// String serializes the Address into its canonical form.
func (a Address) String() string {
	if a.Kind == "" && a.Name == "" {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(a.Kind)
	sb.WriteRune('.')
	sb.WriteString(a.Name)
	if a.Index != NoIndex {
		sb.WriteString(fmt.Sprintf("[%d]", a.Index))
	}
	return sb.String()
}

// Ref returns an attribute reference token for a value that is only known
// once the resource has been provisioned, e.g. `${subnet.public[0].id}`.
func (a Address) Ref(attribute string) string {
	return fmt.Sprintf("${%s.%s}", a.String(), attribute)
}

// Slug flattens the address into a form usable inside physical names.
func (a Address) Slug() string {
	s := a.Name
	if a.Index != NoIndex {
		s = fmt.Sprintf("%s-%d", s, a.Index)
	}
	return strings.ReplaceAll(strings.ToLower(s), "_", "-")
}
