// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the primary execution lifecycle (load the
// declaration, synthesize the topology, optionally pre-flight the image,
// render and encode the plan), decoupled from any specific entrypoint like
// a CLI.
package app
