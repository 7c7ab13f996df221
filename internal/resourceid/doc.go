/*
Package resourceid provides the canonical logical address of every resource
in a synthesized topology.

The format is `kind.name` for singular resources and `kind.name[index]` for
members of a per-AZ family, e.g. `network.main`, `subnet.public[1]`,
`nat_gateway.main[0]`. Addresses are used as node IDs in the dependency graph,
as step IDs in the rendered plan and as the seed for deterministic physical
names.
*/
package resourceid
