package policy

import (
	"context"

	"github.com/abac-gate/engine/internal/domain/attribute"
)

// CatalogStore is the narrow outbound port a Catalog service depends on:
// raw, unauthenticated, unvalidated persistence of rules and the
// (resource, action) index. Catalog implementations wrap a CatalogStore
// with the authorization and shape-validation behavior spec.md section
// 4.2 requires.
type CatalogStore interface {
	// AllocateID returns the next strictly-increasing rule id (spec.md
	// invariant 5); ids start at 1.
	AllocateID(ctx context.Context) (ID, error)

	// PutRule inserts or overwrites a rule record by id. Used both for
	// creation and for the enabled/disabled and deleted-terminal updates.
	PutRule(ctx context.Context, rule Rule) error

	// GetRule returns a rule by id; ok is false if the id was never
	// allocated.
	GetRule(ctx context.Context, id ID) (Rule, bool, error)

	// AllRules returns every retained rule ordered by id, including
	// disabled and deleted ones, for audit replay.
	AllRules(ctx context.Context) ([]Rule, error)

	// AppendIndex adds id to the (resource, action) index.
	AppendIndex(ctx context.Context, resource attribute.Identifier, action Action, id ID) error

	// RemoveFromIndex removes id from the (resource, action) index via
	// swap-remove. A missing id is a no-op, not an error (spec.md
	// section 9 Open Question (a)).
	RemoveFromIndex(ctx context.Context, resource attribute.Identifier, action Action, id ID) error

	// Index returns the ids currently indexed under (resource, action),
	// in catalog order.
	Index(ctx context.Context, resource attribute.Identifier, action Action) ([]ID, error)
}
