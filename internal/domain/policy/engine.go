package policy

import (
	"context"
	"errors"

	"github.com/abac-gate/engine/internal/domain/attribute"
)

// Catalog errors (spec.md section 7).
var (
	// ErrBadPolicyShape is returned by Create when the condition list is
	// empty, exceeds MaxConditions, or any IN_SET condition's set exceeds
	// MaxSetValues.
	ErrBadPolicyShape = errors.New("abac: catalog: bad policy shape")
	// ErrUnknownPolicy is returned by Get/SetEnabled/Delete on a
	// nonexistent id.
	ErrUnknownPolicy = errors.New("abac: catalog: unknown policy")
	// ErrNotAuthorized is returned by mutating catalog calls when the
	// caller is not the admin.
	ErrNotAuthorized = errors.New("abac: catalog: not authorized")
)

// Catalog is the policy-catalog port (spec.md section 4.2): it persists
// rules and maintains the (resource, action) -> rule ids index. All
// mutating operations require the admin caller.
type Catalog interface {
	// CreatePolicy validates shape, assigns a strictly increasing id,
	// stores the rule enabled, and indexes it under (resource, action).
	CreatePolicy(ctx context.Context, caller attribute.Identifier, resource attribute.Identifier, action Action, conditions []Condition) (ID, error)

	// SetPolicyEnabled toggles a rule's enabled flag.
	SetPolicyEnabled(ctx context.Context, caller attribute.Identifier, id ID, enabled bool) error

	// DeletePolicy removes id from its (resource, action) index via
	// swap-remove and clears enabled; the record remains retrievable via
	// GetPolicy. Deleting an id already absent from the index succeeds
	// and still clears enabled (idempotent, spec.md section 9 Open
	// Question (a)).
	DeletePolicy(ctx context.Context, caller attribute.Identifier, id ID) error

	// GetPolicy returns a rule by id, including deleted/disabled ones,
	// for audit replay. Returns ErrUnknownPolicy if the id was never issued.
	GetPolicy(ctx context.Context, id ID) (Rule, error)

	// GetPolicyIDs returns the ids indexed under (resource, action), in
	// catalog-insertion order with possible swaps from deletes.
	GetPolicyIDs(ctx context.Context, resource attribute.Identifier, action Action) ([]ID, error)

	// ListPolicies returns the full Rule records indexed under
	// (resource, action), in the same order as GetPolicyIDs.
	ListPolicies(ctx context.Context, resource attribute.Identifier, action Action) ([]Rule, error)

	// ExportPolicies returns every retained rule, including deleted ones,
	// ordered by id. Supports audit replay per spec.md section 9.
	ExportPolicies(ctx context.Context) ([]Rule, error)
}

// Evaluator is the pure rule-matching port (spec.md section 4.3). It
// reads attributes from a Registry but never mutates state.
type Evaluator interface {
	// EvaluateCondition resolves both operands of cond against
	// (subject, object, env) and applies cond.Op.
	EvaluateCondition(ctx context.Context, cond Condition, subject, object attribute.Identifier, env Environment) (bool, error)

	// EvaluatePolicy reports whether rule id matches (subject, object, env):
	// enabled AND every condition true. Returns false, nil for an unknown
	// id (the orchestrator never passes one).
	EvaluatePolicy(ctx context.Context, id ID, subject, object attribute.Identifier, env Environment) (bool, error)

	// EvaluateRule is the id-free counterpart of EvaluatePolicy, useful
	// for evaluating a rule that has not been (or will never be) stored.
	EvaluateRule(ctx context.Context, rule Rule, subject, object attribute.Identifier, env Environment) (bool, error)
}
