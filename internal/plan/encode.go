package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"sigs.k8s.io/yaml"
)

// Format is an output encoding of the plan.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatYAML, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported plan format %q: must be 'yaml' or 'json'", s)
	}
}

// Encode writes the plan in the given format. Unset fields of the provider
// input structs are omitted and map keys are sorted, so equal plans encode
// to identical bytes.
func Encode(w io.Writer, p *Plan, format Format) error {
	doc, err := normalize(p)
	if err != nil {
		return err
	}

	var out []byte
	switch format {
	case FormatJSON:
		out, err = json.MarshalIndent(doc, "", "  ")
		out = append(out, '\n')
	case FormatYAML:
		out, err = yaml.Marshal(doc)
	default:
		return fmt.Errorf("unsupported plan format %q", format)
	}
	if err != nil {
		return fmt.Errorf("error encoding plan as %s: %w", format, err)
	}

	_, err = w.Write(out)
	return err
}

// normalize round-trips the plan through JSON into generic values and drops
// every null, which is how the provider structs represent unset fields.
func normalize(p *Plan) (any, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("error marshalling plan: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("error decoding plan: %w", err)
	}
	return prune(doc), nil
}

func prune(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			if child == nil {
				delete(t, k)
				continue
			}
			t[k] = prune(child)
		}
		return t
	case []any:
		for i, child := range t {
			t[i] = prune(child)
		}
		return t
	default:
		return v
	}
}
