// Package plan renders a synthesized topology into an ordered list of
// provider API calls and encodes it for the provisioning engine.
//
// Every call carries the aws-sdk-go input struct the engine submits. Values
// that only exist once an earlier call has completed, such as a VPC ID, are
// `${<address>.<attribute>}` reference tokens. Rendering and encoding are
// deterministic: the same topology always produces byte-identical output.
package plan
