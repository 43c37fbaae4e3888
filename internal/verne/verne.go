// Package verne sequences template parsing and resource lifecycle operations
// against a management backend.
//
// The Orchestrator owns one Parser and one Driver. Each Create or Clean call
// is a complete pass: parse the template, open the backend session, apply the
// operation to every parsed resource in template order, close the session.
//
// Failure handling is split by layer:
//   - Parser errors, Driver.Open errors and Driver.Close errors are fatal and
//     returned to the caller.
//   - Per-resource failures are handled inside the Driver, which logs them
//     and returns. The Orchestrator never stops a pass early.
package verne

import (
	"context"

	"github.com/jbweber/verne/internal/resource"
)

// Parser turns an external template into an ordered resource sequence.
//
// Implementations own all format-specific validation. Any error returned is
// fatal for the run. Unrecognized resource kinds are logged and skipped
// rather than returned as errors.
type Parser interface {
	Parse(ctx context.Context) ([]resource.Resource, error)
}

// Driver realizes and destroys resources against a management backend.
type Driver interface {
	// Open prepares the backend session. Called once per pass, before any
	// Create or Clean.
	Open(ctx context.Context) error

	// Close releases the backend session. Called once per pass, after every
	// Create or Clean, whatever their outcome. An error means the session is
	// in an unknown state.
	Close() error

	// Create realizes one resource. Unsupported variants and backend
	// failures are logged by the driver; they never abort the pass.
	Create(ctx context.Context, r resource.Resource)

	// Clean tears down one resource by name. A resource that does not exist
	// is logged and treated as already clean.
	Clean(ctx context.Context, r resource.Resource)
}
