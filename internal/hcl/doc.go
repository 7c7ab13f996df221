// Package hcl provides the HCL implementation of the config.Loader
// interface. It parses declaration files, resolves `var.*` references
// against declared variables and command-line values, and translates the
// single `deployment` block into a config.Model with defaults applied.
package hcl
