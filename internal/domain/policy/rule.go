package policy

import "github.com/abac-gate/engine/internal/domain/attribute"

// ID is a monotonically assigned policy rule identifier. 0 means
// "no rule" (spec.md invariant 1).
type ID uint64

// NoRule is the reserved id meaning "no matching rule".
const NoRule ID = 0

// Rule is a single administrator-authored policy: a target
// (resource, action), an ordered conjunction of conditions, and an
// enabled flag. Conditions combine with AND; disjunction across rules
// happens at the catalog index / orchestrator level (spec.md sections
// 3-4).
type Rule struct {
	ID         ID
	Resource   attribute.Identifier
	Action     Action
	Conditions []Condition
	Enabled    bool
}
