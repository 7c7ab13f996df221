package topology

import (
	"encoding/json"
	"fmt"
)

// PolicyVersion is the IAM policy language version every document uses.
const PolicyVersion = "2012-10-17"

// PolicyDocument is an IAM-style policy: a bucket policy, a trust policy or
// an inline role policy.
type PolicyDocument struct {
	Version   string      `json:"Version"`
	Statement []Statement `json:"Statement"`
}

// Statement is a single allow/deny rule inside a PolicyDocument.
type Statement struct {
	Sid       string     `json:"Sid,omitempty"`
	Effect    string     `json:"Effect"`
	Principal *Principal `json:"Principal,omitempty"`
	Action    []string   `json:"Action"`
	Resource  []string   `json:"Resource,omitempty"`
}

// Principal names who a resource-based or trust policy applies to.
type Principal struct {
	// Anyone renders as the bare "*" principal.
	Anyone  bool
	Service string
}

// MarshalJSON renders the principal in IAM's wire form.
func (p Principal) MarshalJSON() ([]byte, error) {
	if p.Anyone {
		return json.Marshal("*")
	}
	return json.Marshal(map[string]string{"Service": p.Service})
}

// JSON encodes the document the way provider APIs expect it.
func (d PolicyDocument) JSON() (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("failed to encode policy document: %w", err)
	}
	return string(b), nil
}

// Resources returns every resource referenced by the document's statements,
// in statement order.
func (d PolicyDocument) Resources() []string {
	var out []string
	for _, s := range d.Statement {
		out = append(out, s.Resource...)
	}
	return out
}

// Actions returns every action granted by the document's statements, in
// statement order.
func (d PolicyDocument) Actions() []string {
	var out []string
	for _, s := range d.Statement {
		out = append(out, s.Action...)
	}
	return out
}

// dedupe returns values without repeats, keeping first occurrences in order.
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
