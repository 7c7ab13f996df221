// Package config defines the format-agnostic declaration model for a
// deployment: the small set of resource intents the topology synthesizer
// expands into a full infrastructure declaration, along with the Loader
// interface for reading that model from a concrete source.
//
// The `config.Model` is the single input of `topology.Synthesize`. Concrete
// Loader implementations, such as the HCL one, live in separate packages.
package config
