/*
Package topology is the topology synthesizer: it turns a handful of declared
intents into a consistent, dependency-ordered declaration of the
infrastructure a containerized web front end runs on.

Six builders each produce one plain value structure and take everything they
depend on as explicit arguments:

 1. BuildNetwork: the VPC with a public and a private subnet per zone.
 2. BuildCluster: the compute cluster bound to that network.
 3. BuildAssetStore: the static asset bucket and its access posture.
 4. BuildAccessRole: the least-privilege task identity, scoped to the
    asset store's identifiers.
 5. BuildTaskSpec: the task shape, container, port and log routing.
 6. BuildService: the replicated service behind a load balancer.

Synthesize calls them in that order, then records every cross-reference in a
dag.Graph to validate the declaration and derive the provisioning order.

Nothing here performs I/O. Building twice from the same model yields
structurally identical topologies: physical names are hashes of the stack
and logical address, and every list is produced in a fixed order.

Errors are typed. *ConfigurationError, *PolicyConflictError,
*ScopeViolationError and *InvalidShapeError are fatal and are meant to be
matched with errors.As; Warning values are informational and collected on
the Topology.
*/
package topology
