package attribute

import "context"

// Registry is the attribute-store port. Adapters persist subject and
// object attribute maps; the write side enforces the authorization rule
// of spec.md section 4.1 (subject writes: caller == subject or admin;
// object writes: caller == admin).
//
// A missing attribute always reads as the all-zero Value; there is no
// "not found" error for reads, matching spec.md's "no exception" rule.
type Registry interface {
	// SetSubjectAttribute writes a single subject attribute.
	SetSubjectAttribute(ctx context.Context, caller, subject Identifier, key Key, value Value) error
	// SetObjectAttribute writes a single object attribute.
	SetObjectAttribute(ctx context.Context, caller, object Identifier, key Key, value Value) error

	// SetSubjectAttributes writes a batch of parallel key/value pairs
	// atomically: either every pair applies, or (on ErrLengthMismatch)
	// none does.
	SetSubjectAttributes(ctx context.Context, caller, subject Identifier, keys []Key, values []Value) error
	// SetObjectAttributes is the object-store counterpart of SetSubjectAttributes.
	SetObjectAttributes(ctx context.Context, caller, object Identifier, keys []Key, values []Value) error

	// SubjectAttr reads a single subject attribute, zero value if unset.
	SubjectAttr(ctx context.Context, subject Identifier, key Key) (Value, error)
	// ObjectAttr reads a single object attribute, zero value if unset.
	ObjectAttr(ctx context.Context, object Identifier, key Key) (Value, error)

	// SubjectAttrs returns every attribute written for a subject.
	SubjectAttrs(ctx context.Context, subject Identifier) (map[Key]Value, error)
	// ObjectAttrs returns every attribute written for an object.
	ObjectAttrs(ctx context.Context, object Identifier) (map[Key]Value, error)

	// IsSubjectRegistered reports whether the subject has ever had an
	// attribute written (including via an empty batch, see spec.md section 9).
	IsSubjectRegistered(ctx context.Context, subject Identifier) (bool, error)
	// IsObjectRegistered is the object-store counterpart.
	IsObjectRegistered(ctx context.Context, object Identifier) (bool, error)
}

// Store is the narrower outbound port a Registry service depends on: raw,
// unauthenticated, unaudited storage of attribute maps. Registry
// implementations wrap a Store with the authorization and audit-emission
// behavior spec.md section 4.1 requires; Store implementations (memory,
// sqlite, ...) only need to get the bytes right.
type Store interface {
	Set(ctx context.Context, id Identifier, key Key, value Value) error
	SetBatch(ctx context.Context, id Identifier, keys []Key, values []Value) error
	Get(ctx context.Context, id Identifier, key Key) (Value, error)
	GetAll(ctx context.Context, id Identifier) (map[Key]Value, error)
	IsRegistered(ctx context.Context, id Identifier) (bool, error)
}
