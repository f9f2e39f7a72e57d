package audit

import "context"

// Store persists audit records. Persistence of audit events to sinks
// beyond emission is out of scope for the core (spec.md section 1); the
// core only needs to emit Append calls and, for local inspection, read
// back a recent window.
type Store interface {
	// Append stores audit records. The services call it synchronously,
	// including on the decision path, and log a returned error without
	// failing the operation.
	Append(ctx context.Context, records ...Record) error

	// Flush forces pending records to storage. Called during shutdown.
	Flush(ctx context.Context) error

	// Close releases resources.
	Close() error

	// Recent returns the last n records, newest first, for local
	// inspection (e.g. an admin CLI command). Not a durable query API.
	Recent(n int) []Record
}
