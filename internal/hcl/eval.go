package hcl

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// functions are the expression functions available inside a declaration.
var functions = map[string]function.Function{
	"coalesce":  stdlib.CoalesceFunc,
	"format":    stdlib.FormatFunc,
	"join":      stdlib.JoinFunc,
	"lower":     stdlib.LowerFunc,
	"trimspace": stdlib.TrimSpaceFunc,
	"upper":     stdlib.UpperFunc,
}

// resolveVariables merges declared defaults with the values given on the
// command line. Command-line values are strings; gohcl converts them to the
// attribute's type when the body is decoded.
func resolveVariables(decls []*variableBlock, overrides map[string]string) (map[string]cty.Value, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	values := make(map[string]cty.Value, len(decls))
	declared := make(map[string]*variableBlock, len(decls))

	for _, v := range decls {
		if prev, ok := declared[v.Name]; ok {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate variable declaration",
				Detail:   fmt.Sprintf("Variable %q was already declared at %s.", v.Name, prev.Default.Range()),
				Subject:  v.Default.Range().Ptr(),
			})
			continue
		}
		declared[v.Name] = v

		val, valDiags := v.Default.Value(nil)
		diags = append(diags, valDiags...)
		if valDiags.HasErrors() || val.IsNull() {
			continue
		}
		values[v.Name] = val
	}

	for _, name := range sortedNames(overrides) {
		if _, ok := declared[name]; !ok {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Undeclared variable",
				Detail:   fmt.Sprintf("A value was given for %q, but no variable block declares it.", name),
			})
			continue
		}
		values[name] = cty.StringVal(overrides[name])
	}

	for _, name := range sortedNames(declared) {
		if _, ok := values[name]; !ok {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "No value for required variable",
				Detail:   fmt.Sprintf("Variable %q has no default; set it with -var %s=<value>.", name, name),
				Subject:  declared[name].Default.Range().Ptr(),
			})
		}
	}
	return values, diags
}

func newEvalContext(vars map[string]cty.Value) *hcl.EvalContext {
	obj := cty.EmptyObjectVal
	if len(vars) > 0 {
		obj = cty.ObjectVal(vars)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"var": obj},
		Functions: functions,
	}
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
