package resourceid

import (
	"fmt"
	"regexp"
	"strconv"
)

// addressRegex matches `kind.name` with an optional `[index]` suffix.
var addressRegex = regexp.MustCompile(`^([a-z][a-z0-9_]*)\.([a-zA-Z0-9_-]+)(?:\[(\d+)\])?$`)

// Parse creates an Address by parsing its canonical string representation.
func Parse(raw string) (Address, error) {
	if raw == "" {
		return Address{}, fmt.Errorf("address cannot be empty")
	}

	matches := addressRegex.FindStringSubmatch(raw)
	if matches == nil {
		return Address{}, fmt.Errorf("invalid resource address format: %q", raw)
	}

	addr := New(matches[1], matches[2])
	if matches[3] != "" {
		index, err := strconv.Atoi(matches[3])
		if err != nil {
			// Unreachable due to regex `\d+`
			return Address{}, fmt.Errorf("internal error parsing index: %w", err)
		}
		addr.Index = index
	}
	return addr, nil
}

// MustParse is like Parse but panics on malformed input. It is intended for
// addresses generated by the synthesizer itself.
func MustParse(raw string) Address {
	addr, err := Parse(raw)
	if err != nil {
		panic(fmt.Sprintf("internal error: failed to parse generated address %q: %v", raw, err))
	}
	return addr
}
