// Package dag is a small, generic directed acyclic graph keyed by string IDs.
//
// The topology synthesizer registers every declared resource as a node and
// every cross-reference as an edge (dependency -> dependent). The graph then
// answers two questions: is the declaration acyclic, and in which order must
// the resources be handed to the provisioning engine. Both answers are
// deterministic: iteration always happens in sorted ID order, never in Go's
// randomized map order.
package dag
