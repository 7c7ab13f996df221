package hcl

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

// traversalKey generates a stable, canonical string representation for an
// hcl.Traversal, suitable for use as a map key, e.g. `var.image`.
func traversalKey(t hcl.Traversal) string {
	return string(hclwrite.TokensForTraversal(t).Bytes())
}

// bodyExpressions collects every attribute expression of a native-syntax
// body, including those of nested blocks, in source order.
func bodyExpressions(body hcl.Body) []hcl.Expression {
	syntaxBody, ok := body.(*hclsyntax.Body)
	if !ok {
		return nil
	}

	attrs := make([]*hclsyntax.Attribute, 0, len(syntaxBody.Attributes))
	for _, attr := range syntaxBody.Attributes {
		attrs = append(attrs, attr)
	}
	sort.Slice(attrs, func(i, j int) bool {
		return attrs[i].SrcRange.Start.Byte < attrs[j].SrcRange.Start.Byte
	})

	exprs := make([]hcl.Expression, 0, len(attrs))
	for _, attr := range attrs {
		exprs = append(exprs, attr.Expr)
	}
	for _, block := range syntaxBody.Blocks {
		exprs = append(exprs, bodyExpressions(block.Body)...)
	}
	return exprs
}

// extractReferencesAndFunctions walks through HCL expressions to find all unique
// variable traversals and function calls. The returned slices are sorted to
// ensure a deterministic order.
func extractReferencesAndFunctions(exprs ...hcl.Expression) ([]hcl.Traversal, []string) {
	traversals := make(map[string]hcl.Traversal)
	functions := make(map[string]struct{})

	for _, expr := range exprs {
		if expr == nil {
			continue
		}
		for _, traversal := range expr.Variables() {
			traversals[traversalKey(traversal)] = traversal
		}
		// Variables() does not report function calls.
		if syntaxExpr, ok := expr.(hclsyntax.Expression); ok {
			walkForFunctions(syntaxExpr, functions)
		}
	}

	keys := sortedNames(traversals)
	traversalSlice := make([]hcl.Traversal, 0, len(keys))
	for _, k := range keys {
		traversalSlice = append(traversalSlice, traversals[k])
	}
	return traversalSlice, sortedNames(functions)
}

// walkForFunctions recursively walks the AST, looking only for function calls.
func walkForFunctions(expr hclsyntax.Expression, functions map[string]struct{}) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		functions[e.Name] = struct{}{}
		for _, arg := range e.Args {
			walkForFunctions(arg, functions)
		}
	case *hclsyntax.BinaryOpExpr:
		walkForFunctions(e.LHS, functions)
		walkForFunctions(e.RHS, functions)
	case *hclsyntax.ConditionalExpr:
		walkForFunctions(e.Condition, functions)
		walkForFunctions(e.TrueResult, functions)
		walkForFunctions(e.FalseResult, functions)
	case *hclsyntax.UnaryOpExpr:
		walkForFunctions(e.Val, functions)
	case *hclsyntax.TemplateExpr:
		for _, part := range e.Parts {
			walkForFunctions(part, functions)
		}
	case *hclsyntax.TemplateWrapExpr:
		walkForFunctions(e.Wrapped, functions)
	case *hclsyntax.TupleConsExpr:
		for _, item := range e.Exprs {
			walkForFunctions(item, functions)
		}
	case *hclsyntax.ObjectConsExpr:
		for _, item := range e.Items {
			walkForFunctions(item.KeyExpr, functions)
			walkForFunctions(item.ValueExpr, functions)
		}
	case *hclsyntax.ForExpr:
		walkForFunctions(e.CollExpr, functions)
		walkForFunctions(e.KeyExpr, functions)
		walkForFunctions(e.ValExpr, functions)
		walkForFunctions(e.CondExpr, functions)
	case *hclsyntax.IndexExpr:
		walkForFunctions(e.Collection, functions)
		walkForFunctions(e.Key, functions)
	case *hclsyntax.SplatExpr:
		walkForFunctions(e.Source, functions)
		walkForFunctions(e.Each, functions)
	case *hclsyntax.ParenthesesExpr:
		walkForFunctions(e.Expression, functions)
	}
}

// checkReferences rejects references to anything but declared variables and
// calls to unknown functions. It returns the declared variables the body
// never references.
func checkReferences(body hcl.Body, declared map[string]*variableBlock) ([]string, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	refs, funcs := extractReferencesAndFunctions(bodyExpressions(body)...)

	used := make(map[string]bool)
	for _, ref := range refs {
		subject := ref.SourceRange().Ptr()
		if ref.RootName() != "var" {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unsupported reference",
				Detail:   fmt.Sprintf("%s cannot be referenced here; only var.<name> is available.", traversalKey(ref)),
				Subject:  subject,
			})
			continue
		}
		if len(ref) < 2 {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid variable reference",
				Detail:   "A variable reference must name the variable, e.g. var.image.",
				Subject:  subject,
			})
			continue
		}
		attr, ok := ref[1].(hcl.TraverseAttr)
		if !ok {
			continue
		}
		if _, ok := declared[attr.Name]; !ok {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Reference to undeclared variable",
				Detail:   fmt.Sprintf("No variable block declares %q.", attr.Name),
				Subject:  subject,
			})
			continue
		}
		used[attr.Name] = true
	}

	for _, name := range funcs {
		if _, ok := functions[name]; !ok {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Call to unknown function",
				Detail:   fmt.Sprintf("There is no function named %q. Available functions: %v.", name, sortedNames(functions)),
			})
		}
	}

	var unused []string
	for _, name := range sortedNames(declared) {
		if !used[name] {
			unused = append(unused, name)
		}
	}
	return unused, diags
}
