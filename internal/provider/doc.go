// Package provider selects and invokes external capability providers.
//
// A provider is an opaque service that performs work on behalf of a block,
// such as solving a reCaptcha challenge. Concrete vendor clients live outside
// this module; the runner plugs them in by registering a Factory for their
// Kind. This package owns only the contract:
//
//   - Kind enumerates the provider services a configuration may select.
//   - Registry maps each Kind to a Descriptor (capabilities, required
//     credentials, factory). Adding a provider never touches dispatch code.
//   - Dispatcher validates the selection, constructs the provider and calls it
//     synchronously, bounded by a timeout.
//
// OUTCOMES:
//
// Configuration problems (unknown kind, missing capability, missing
// credentials, no factory) are errors and surface before any provider call.
// A provider that answers with nothing, fails, or runs out of time is not an
// error: Solve returns a Result with an empty Token and a Reason explaining
// why. Absence of a solution is a normal outcome of a run.
package provider
